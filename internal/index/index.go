package index

// NoteIndex is the read/write surface of the search mirror. HTTP handlers
// depend on the narrower Searcher.
type NoteIndex interface {
	Searcher
	UpsertNote(n NoteRow, body string) error
	DeleteNote(slug string) error
	GetChecksum(slug string) (string, error)
	AllChecksums() (map[string]string, error)
	Close() error
}

// Searcher answers full-text and tag statistics queries.
type Searcher interface {
	Search(query string, limit int) ([]SearchResult, error)
	TagCounts() (map[string]int, error)
}

var _ NoteIndex = (*DB)(nil)
