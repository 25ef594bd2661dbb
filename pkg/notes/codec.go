package notes

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/aretw0/notehub/pkg/core"
)

// KeyPrefix namespaces every user's collection in storage.
const KeyPrefix = "notes_"

// StorageKey returns the storage key holding userID's notes.
func StorageKey(userID string) string {
	return KeyPrefix + userID
}

// record is the persisted shape of a note. Timestamps are Unix milliseconds,
// the same layout the browser app keeps in localStorage.
type record struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Content    string `json:"content"`
	Color      string `json:"color"`
	Category   string `json:"category"`
	IsPinned   bool   `json:"isPinned"`
	CreatedAt  int64  `json:"createdAt"`
	UpdatedAt  int64  `json:"updatedAt"`
	PaperStyle string `json:"paperStyle,omitempty"`
	PinStyle   string `json:"pinStyle,omitempty"`
}

// Encode serializes a collection to its storage representation.
func Encode(notes []core.Note) (string, error) {
	records := make([]record, 0, len(notes))
	for _, n := range notes {
		records = append(records, record{
			ID:         n.ID,
			Title:      n.Title,
			Content:    n.Content,
			Color:      string(n.Color),
			Category:   n.Category,
			IsPinned:   n.IsPinned,
			CreatedAt:  n.CreatedAt.UnixMilli(),
			UpdatedAt:  n.UpdatedAt.UnixMilli(),
			PaperStyle: n.PaperStyle,
			PinStyle:   n.PinStyle,
		})
	}
	data, err := json.Marshal(records)
	if err != nil {
		return "", fmt.Errorf("failed to encode notes: %w", err)
	}
	return string(data), nil
}

// Decode parses the storage representation of a collection. Entries without
// an id cannot be addressed and are dropped; the rest of the collection is kept.
func Decode(raw string) ([]core.Note, error) {
	notes, _, err := decode(raw)
	return notes, err
}

// decode is Decode that also reports how many entries were dropped.
func decode(raw string) ([]core.Note, int, error) {
	var records []record
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		return nil, 0, fmt.Errorf("failed to decode notes: %w", err)
	}

	notes := make([]core.Note, 0, len(records))
	skipped := 0
	for _, r := range records {
		if r.ID == "" {
			skipped++
			continue
		}
		notes = append(notes, core.Note{
			ID:         r.ID,
			Title:      r.Title,
			Content:    r.Content,
			Color:      core.Color(r.Color),
			Category:   r.Category,
			IsPinned:   r.IsPinned,
			CreatedAt:  time.UnixMilli(r.CreatedAt),
			UpdatedAt:  time.UnixMilli(r.UpdatedAt),
			PaperStyle: r.PaperStyle,
			PinStyle:   r.PinStyle,
		})
	}
	return notes, skipped, nil
}
