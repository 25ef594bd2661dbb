package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/notehub/pkg/core"
	"github.com/aretw0/notehub/pkg/view"
)

var (
	listSearch   string
	listCategory string
	listPinned   bool
	listWhere    string
	listJSON     bool
	listYAML     bool
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List notes, pinned first then most recently updated",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		q, err := buildQuery()
		if err != nil {
			return err
		}

		app, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		return renderNotes(cmd.OutOrStdout(), app.View(q))
	},
}

func buildQuery() (view.Query, error) {
	q := view.Query{
		Search:     listSearch,
		Category:   listCategory,
		PinnedOnly: listPinned,
	}
	if listWhere != "" {
		where, err := view.Compile(listWhere)
		if err != nil {
			return q, err
		}
		q.Where = where
	}
	return q, nil
}

// noteOutput is the machine-readable shape of a note.
type noteOutput struct {
	ID         string    `json:"id" yaml:"id"`
	Title      string    `json:"title" yaml:"title"`
	Content    string    `json:"content" yaml:"content"`
	Color      string    `json:"color" yaml:"color"`
	Category   string    `json:"category" yaml:"category"`
	IsPinned   bool      `json:"isPinned" yaml:"isPinned"`
	CreatedAt  time.Time `json:"createdAt" yaml:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt" yaml:"updatedAt"`
	PaperStyle string    `json:"paperStyle,omitempty" yaml:"paperStyle,omitempty"`
	PinStyle   string    `json:"pinStyle,omitempty" yaml:"pinStyle,omitempty"`
}

func toOutput(ns []core.Note) []noteOutput {
	out := make([]noteOutput, 0, len(ns))
	for _, n := range ns {
		out = append(out, noteOutput{
			ID:         n.ID,
			Title:      n.Title,
			Content:    n.Content,
			Color:      string(n.Color),
			Category:   n.Category,
			IsPinned:   n.IsPinned,
			CreatedAt:  n.CreatedAt.UTC(),
			UpdatedAt:  n.UpdatedAt.UTC(),
			PaperStyle: n.PaperStyle,
			PinStyle:   n.PinStyle,
		})
	}
	return out
}

func renderNotes(w io.Writer, ns []core.Note) error {
	switch {
	case listJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(toOutput(ns))
	case listYAML:
		encoder := yaml.NewEncoder(w)
		defer encoder.Close()
		return encoder.Encode(toOutput(ns))
	}

	if len(ns) == 0 {
		fmt.Fprintln(w, "No notes.")
		return nil
	}
	for _, n := range ns {
		marker := " "
		if n.IsPinned {
			marker = color.New(color.Bold).Sprint("*")
		}
		fmt.Fprintf(w, "%s %s  %s [%s]\n", marker, paint(n.Color)(n.Title), n.ID, n.Category)
		if line, _, _ := strings.Cut(n.Content, "\n"); line != "" {
			fmt.Fprintf(w, "    %s\n", line)
		}
	}
	return nil
}

// paint returns the terminal color matching a note color.
func paint(c core.Color) func(a ...interface{}) string {
	attr := color.FgYellow
	switch c {
	case core.ColorMint:
		attr = color.FgGreen
	case core.ColorLavender:
		attr = color.FgMagenta
	case core.ColorPeach:
		attr = color.FgRed
	case core.ColorBlue:
		attr = color.FgBlue
	}
	return color.New(attr).SprintFunc()
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List the categories in use",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		for _, c := range app.Categories() {
			fmt.Fprintln(cmd.OutOrStdout(), c)
		}
		return nil
	},
}

var statsJSON bool

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize notes by pin state, category and color",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		s := view.Stats(app.Notes.Notes())
		w := cmd.OutOrStdout()
		if statsJSON {
			encoder := json.NewEncoder(w)
			encoder.SetIndent("", "  ")
			return encoder.Encode(s)
		}

		fmt.Fprintf(w, "Total:  %d\n", s.Total)
		fmt.Fprintf(w, "Pinned: %d\n", s.Pinned)
		for _, c := range sortedKeys(s.ByCategory) {
			fmt.Fprintf(w, "  %-12s %d\n", c, s.ByCategory[c])
		}
		return nil
	},
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().StringVarP(&listSearch, "search", "s", "", "Case-insensitive text in title or content")
	listCmd.Flags().StringVarP(&listCategory, "category", "c", "", "Only this category")
	listCmd.Flags().BoolVar(&listPinned, "pinned", false, "Only pinned notes")
	listCmd.Flags().StringVarP(&listWhere, "where", "w", "", `Filter expression, e.g. 'color == "blue" && isPinned'`)
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	listCmd.Flags().BoolVar(&listYAML, "yaml", false, "Output in YAML format")
	listCmd.MarkFlagsMutuallyExclusive("json", "yaml")

	rootCmd.AddCommand(categoriesCmd)

	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "Output in JSON format")
}
