// Package core holds the domain types and ports of notehub.
package core

import (
	"fmt"
	"strings"
	"time"
)

// DefaultCategory is assigned to notes created without an explicit category.
const DefaultCategory = "general"

// Color is the sticky-note color.
type Color string

const (
	ColorYellow   Color = "yellow"
	ColorMint     Color = "mint"
	ColorLavender Color = "lavender"
	ColorPeach    Color = "peach"
	ColorBlue     Color = "blue"
)

// Colors lists every supported color in display order.
var Colors = []Color{ColorYellow, ColorMint, ColorLavender, ColorPeach, ColorBlue}

// Valid reports whether c is one of the supported colors.
func (c Color) Valid() bool {
	for _, known := range Colors {
		if c == known {
			return true
		}
	}
	return false
}

// ParseColor converts user input into a Color.
func ParseColor(s string) (Color, error) {
	c := Color(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	return c, nil
}

// User is the identity behind the cosmetic username gate.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Note is a single sticky note.
//
// PaperStyle and PinStyle are cosmetic and opaque to the core; they are
// carried through persistence untouched.
type Note struct {
	ID         string
	Title      string
	Content    string
	Color      Color
	Category   string
	IsPinned   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
	PaperStyle string
	PinStyle   string
}

// Patch describes a partial update. Nil fields are left untouched.
type Patch struct {
	Title      *string
	Content    *string
	Color      *Color
	Category   *string
	IsPinned   *bool
	PaperStyle *string
	PinStyle   *string
}

// IsEmpty reports whether the patch carries no field at all.
func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Content == nil && p.Color == nil && p.Category == nil &&
		p.IsPinned == nil && p.PaperStyle == nil && p.PinStyle == nil
}

// Ptr returns a pointer to v. Handy for building a Patch.
func Ptr[T any](v T) *T {
	return &v
}

// SaveStatus reports the durability of the in-memory collection.
type SaveStatus int

const (
	StatusSaved SaveStatus = iota
	StatusSaving
	StatusError
)

func (s SaveStatus) String() string {
	switch s {
	case StatusSaved:
		return "saved"
	case StatusSaving:
		return "saving"
	case StatusError:
		return "error"
	default:
		return fmt.Sprintf("SaveStatus(%d)", int(s))
	}
}
