package mcpserver

// NoteFormat documents the note file format Folio reads and how it fills
// in metadata a file leaves out.
const NoteFormat = `# Folio Note Format

Each note is one Markdown file at the top level of the content directory.
The file name without ` + "`.md`" + ` is the note's category. ` + "`README.md`" + ` and
hidden files are ignored.

## Front-matter

An optional header block at the very top of the file. YAML between ` + "`---`" + `
fences is the norm; TOML between ` + "`+++`" + ` fences is also accepted.

` + "```" + `markdown
---
title: RAG Best Practices   # default: the category (file name)
order: 2                    # default: position of the file in name order
description: One line.      # default: first sentence longer than 20 characters
date: 2024-05-06            # default: file modification date (UTC)
readTime: 5 min             # default: words / 200, rounded up
tags: [LLM, RAG]            # default: curated tags for the category, else AI, 学习笔记
featured: true              # default: among the first 3 notes in display order
---

Body text in standard Markdown.
` + "```" + `

## Rules

1. Every key is optional. Unknown keys are ignored.
2. ` + "`tags: []`" + ` means "no tags"; it does not fall back to defaults.
3. The slug comes from the category: a curated table for known categories,
   otherwise lowercase with spaces turned into ` + "`-`" + `. CJK characters are
   kept. Duplicate slugs get ` + "`-2`" + `, ` + "`-3`" + ` appended.
4. Notes are listed by ` + "`order`" + `, then by title.
5. A file whose header cannot be decoded is skipped; the rest still load.
6. Notes are read-only through this server. Edit the files on disk.
`
