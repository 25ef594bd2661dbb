package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/notehub/pkg/core"
)

var errNothingToExport = errors.New("no notes to export")

const ruleWidth = 50

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export [id]",
	Short: "Export notes as plain text",
	Long: `export writes the listed notes (or the single note id) in the plain text
layout of the sticky notes app: a header, then each note with its creation
time and content. Filters are the same as for list.`,
	Args: cobra.MaximumNArgs(1),
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

		var selected []core.Note
		if len(args) == 1 {
			n, ok := app.Notes.Get(args[0])
			if !ok {
				return fmt.Errorf("%w: %s", errNoteNotFound, args[0])
			}
			selected = []core.Note{n}
		} else {
			selected = app.View(q)
		}
		if len(selected) == 0 {
			return errNothingToExport
		}

		if exportOut == "" {
			return writeExport(cmd.OutOrStdout(), selected)
		}

		var b strings.Builder
		if err := writeExport(&b, selected); err != nil {
			return err
		}
		if err := os.WriteFile(exportOut, []byte(b.String()), 0644); err != nil {
			return fmt.Errorf("failed to write export: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d notes to %s\n", len(selected), exportOut)
		return nil
	},
}

// writeExport renders notes in display order under a "Sticky Notes Export" header.
func writeExport(w io.Writer, ns []core.Note) error {
	var b strings.Builder
	b.WriteString("Sticky Notes Export\n")
	b.WriteString(strings.Repeat("=", ruleWidth) + "\n\n")

	for i, n := range ns {
		fmt.Fprintf(&b, "Note %d", i+1)
		if n.Title != "" {
			fmt.Fprintf(&b, ": %s", n.Title)
		}
		b.WriteString("\n")
		fmt.Fprintf(&b, "Created: %s\n", n.CreatedAt.Format(time.RFC3339))
		b.WriteString(strings.Repeat("-", ruleWidth) + "\n")
		b.WriteString(n.Content + "\n\n\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Write to this file instead of stdout")
	exportCmd.Flags().StringVarP(&listSearch, "search", "s", "", "Case-insensitive text in title or content")
	exportCmd.Flags().StringVarP(&listCategory, "category", "c", "", "Only this category")
	exportCmd.Flags().BoolVar(&listPinned, "pinned", false, "Only pinned notes")
	exportCmd.Flags().StringVarP(&listWhere, "where", "w", "", "Filter expression")
}
