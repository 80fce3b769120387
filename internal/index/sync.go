package index

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/starford/folio/internal/checksum"
	"github.com/starford/folio/internal/models"
)

// SyncStats summarizes one Sync pass.
type SyncStats struct {
	Upserted  int
	Unchanged int
	Removed   int
}

// Sync brings the index up to date with notes:
//   - new or changed notes (by checksum of metadata and body) are upserted
//   - indexed slugs absent from notes are deleted
func Sync(ctx context.Context, db NoteIndex, notes []models.Note, logger *slog.Logger) (SyncStats, error) {
	var stats SyncStats

	checksums, err := db.AllChecksums()
	if err != nil {
		return stats, err
	}

	now := time.Now().UTC()
	present := make(map[string]struct{}, len(notes))
	for _, n := range notes {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		slug := n.Metadata.Slug
		present[slug] = struct{}{}

		cs, err := NoteChecksum(n)
		if err != nil {
			return stats, err
		}
		if checksums[slug] == cs {
			stats.Unchanged++
			continue
		}
		row := RowFromNote(n, cs, now)
		if err := db.UpsertNote(row, n.Content); err != nil {
			logger.Warn("sync: index failed", slog.String("slug", slug), slog.String("error", err.Error()))
			continue
		}
		stats.Upserted++
		logger.Debug("sync: indexed", slog.String("slug", slug))
	}

	for slug := range checksums {
		if _, ok := present[slug]; ok {
			continue
		}
		if err := db.DeleteNote(slug); err != nil {
			logger.Warn("sync: delete failed", slog.String("slug", slug), slog.String("error", err.Error()))
			continue
		}
		stats.Removed++
		logger.Debug("sync: removed stale", slog.String("slug", slug))
	}

	return stats, nil
}

// NoteChecksum fingerprints everything about a note that the index stores.
func NoteChecksum(n models.Note) (string, error) {
	data, err := json.Marshal(struct {
		Slug, Title, Category, Date, Content string
		Tags                                 []string
		Order                                int
		Featured                             bool
	}{
		Slug:     n.Metadata.Slug,
		Title:    n.Metadata.Title,
		Category: n.Metadata.Category,
		Date:     n.Metadata.Date,
		Content:  n.Content,
		Tags:     n.Metadata.Tags,
		Order:    n.Metadata.Order,
		Featured: n.Metadata.Featured,
	})
	if err != nil {
		return "", fmt.Errorf("index: checksum note: %w", err)
	}
	return checksum.Sum(data), nil
}

// RowFromNote maps a note onto its index row.
func RowFromNote(n models.Note, cs string, updatedAt time.Time) NoteRow {
	return NoteRow{
		Slug:      n.Metadata.Slug,
		Title:     n.Metadata.Title,
		Category:  n.Metadata.Category,
		Checksum:  cs,
		Tags:      n.Metadata.Tags,
		Order:     n.Metadata.Order,
		Date:      n.Metadata.Date,
		Featured:  n.Metadata.Featured,
		UpdatedAt: updatedAt,
	}
}
