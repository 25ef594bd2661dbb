package view

import (
	"fmt"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/aretw0/notehub/pkg/core"
)

// env is what an expression sees. Field names follow the stored JSON keys.
type env struct {
	ID        string    `expr:"id"`
	Title     string    `expr:"title"`
	Content   string    `expr:"content"`
	Color     string    `expr:"color"`
	Category  string    `expr:"category"`
	IsPinned  bool      `expr:"isPinned"`
	CreatedAt time.Time `expr:"createdAt"`
	UpdatedAt time.Time `expr:"updatedAt"`
}

// Expr is a compiled boolean filter such as
//
//	isPinned && category in ["work", "home"]
//	updatedAt > now() - duration("24h")
type Expr struct {
	source  string
	program *vm.Program
}

// Compile type-checks source against the note fields. The expression must
// evaluate to a bool.
func Compile(source string) (*Expr, error) {
	if source == "" {
		return nil, fmt.Errorf("expression must not be empty")
	}
	program, err := expr.Compile(source, expr.Env(env{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("invalid filter expression %q: %w", source, err)
	}
	return &Expr{source: source, program: program}, nil
}

// String returns the expression source.
func (e *Expr) String() string {
	return e.source
}

// Match evaluates the expression for n. Runtime errors count as no match.
func (e *Expr) Match(n core.Note) bool {
	out, err := expr.Run(e.program, env{
		ID:        n.ID,
		Title:     n.Title,
		Content:   n.Content,
		Color:     string(n.Color),
		Category:  n.Category,
		IsPinned:  n.IsPinned,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	})
	if err != nil {
		return false
	}
	ok, _ := out.(bool)
	return ok
}
