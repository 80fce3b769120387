package index

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	defaultSearchLimit = 20
	snippetRadius      = 60
)

// likeSearch matches query as a substring of title, body or tags. It backs
// the non-FTS build and queries too short for the trigram tokenizer.
func (db *DB) likeSearch(query string, limit int) ([]SearchResult, error) {
	like := "%" + escapeLike(query) + "%"
	rows, err := db.conn.Query(`
		SELECT slug, title, body
		FROM notes
		WHERE title LIKE ? ESCAPE '\' OR body LIKE ? ESCAPE '\' OR tags LIKE ? ESCAPE '\'
		ORDER BY sort_order, title
		LIMIT ?
	`, like, like, like, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	defer rows.Close()

	out := []SearchResult{}
	for rows.Next() {
		var r SearchResult
		var body string
		if err := rows.Scan(&r.Slug, &r.Title, &body); err != nil {
			return nil, err
		}
		r.Snippet = snippet(body, query)
		out = append(out, r)
	}
	return out, rows.Err()
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// snippet cuts a window of body around the first case-insensitive match of
// query and marks the match with <b></b>, mirroring FTS5 snippet().
func snippet(body, query string) string {
	runes := []rune(body)
	if query == "" {
		return truncateRunes(runes, 0, 2*snippetRadius)
	}
	lowerBody := []rune(strings.ToLower(body))
	lowerQuery := []rune(strings.ToLower(query))
	at := indexRunes(lowerBody, lowerQuery)
	if at < 0 || len(lowerBody) != len(runes) {
		return truncateRunes(runes, 0, 2*snippetRadius)
	}
	end := at + len(lowerQuery)
	start := max(0, at-snippetRadius)
	stop := min(len(runes), end+snippetRadius)

	var b strings.Builder
	if start > 0 {
		b.WriteString("...")
	}
	b.WriteString(string(runes[start:at]))
	b.WriteString("<b>")
	b.WriteString(string(runes[at:end]))
	b.WriteString("</b>")
	b.WriteString(string(runes[end:stop]))
	if stop < len(runes) {
		b.WriteString("...")
	}
	return b.String()
}

func truncateRunes(runes []rune, start, n int) string {
	stop := min(len(runes), start+n)
	s := string(runes[start:stop])
	if stop < len(runes) {
		s += "..."
	}
	return s
}

func indexRunes(s, sub []rune) int {
	if len(sub) == 0 {
		return 0
	}
outer:
	for i := 0; i+len(sub) <= len(s); i++ {
		for j := range sub {
			if s[i+j] != sub[j] {
				continue outer
			}
		}
		return i
	}
	return -1
}

// shortestTerm returns the rune length of the shortest whitespace-separated
// term in query.
func shortestTerm(query string) int {
	shortest := -1
	for _, f := range strings.Fields(query) {
		if n := utf8.RuneCountInString(f); shortest < 0 || n < shortest {
			shortest = n
		}
	}
	return shortest
}
