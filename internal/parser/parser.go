// Package parser splits note files into front-matter and markdown body and
// derives plain-text facts (description, reading time) from the body.
package parser

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"

	"github.com/starford/folio/internal/apperr"
)

// FrontMatter holds the recognized header keys. Pointer and empty values
// mean "absent" so the loader can fall back to a derived value.
type FrontMatter struct {
	Title       string    `yaml:"title" toml:"title" json:"title"`
	Order       *int      `yaml:"order" toml:"order" json:"order"`
	Description string    `yaml:"description" toml:"description" json:"description"`
	Date        string    `yaml:"date" toml:"date" json:"date"`
	ReadTime    string    `yaml:"readTime" toml:"readTime" json:"readTime"`
	Tags        *[]string `yaml:"tags" toml:"tags" json:"tags"`
	Featured    *bool     `yaml:"featured" toml:"featured" json:"featured"`
}

// Result holds the output of parsing a note file.
type Result struct {
	FrontMatter FrontMatter
	Body        string
}

// Parse decodes the optional front-matter block (YAML between "---", TOML
// between "+++", or JSON) and returns the remaining markdown body. A file
// without a header is all body. A header that fails to decode yields an
// error wrapping apperr.ErrMalformedFrontMatter. A leading "---" block that
// is not a YAML mapping, such as a thematic break, is treated as body.
func Parse(data []byte) (*Result, error) {
	var fm FrontMatter
	body, err := frontmatter.Parse(bytes.NewReader(data), &fm)
	if err != nil {
		if !yamlMappingHeader(data) {
			return &Result{Body: strings.TrimLeft(string(data), "\r\n")}, nil
		}
		return nil, fmt.Errorf("parser: %w: %w", apperr.ErrMalformedFrontMatter, err)
	}

	fm.Title = strings.TrimSpace(fm.Title)
	fm.Description = strings.TrimSpace(fm.Description)
	fm.Date = strings.TrimSpace(fm.Date)
	fm.ReadTime = strings.TrimSpace(fm.ReadTime)
	if fm.Tags != nil {
		seen := make(map[string]struct{}, len(*fm.Tags))
		tags := make([]string, 0, len(*fm.Tags))
		for _, t := range *fm.Tags {
			t = strings.TrimSpace(t)
			if _, dup := seen[t]; dup || t == "" {
				continue
			}
			seen[t] = struct{}{}
			tags = append(tags, t)
		}
		fm.Tags = &tags
	}

	return &Result{
		FrontMatter: fm,
		Body:        strings.TrimLeft(string(body), "\r\n"),
	}, nil
}

// yamlMappingHeader reports whether data opens with a "---" block that
// could be front-matter: closed by a second "---" line and either invalid
// YAML or a YAML mapping. Anything else is markdown that happens to start
// with a thematic break.
func yamlMappingHeader(data []byte) bool {
	lines := strings.Split(string(data), "\n")
	if len(lines) == 0 || strings.TrimRight(lines[0], " \t\r") != "---" {
		return true
	}
	end := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimRight(lines[i], " \t\r") == "---" {
			end = i
			break
		}
	}
	if end < 0 {
		return false
	}
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(strings.Join(lines[1:end], "\n")), &doc); err != nil {
		return true
	}
	if len(doc.Content) == 0 {
		return true
	}
	return doc.Content[0].Kind == yaml.MappingNode
}
