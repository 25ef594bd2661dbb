package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/notehub/pkg/core"
)

var errNoteNotFound = errors.New("note not found")

var (
	addCategory   string
	addColor      string
	addPinned     bool
	addPaperStyle string
	addPinStyle   string
)

var addCmd = &cobra.Command{
	Use:   "add <title> [content]",
	Short: "Create a note",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var c core.Color
		if addColor != "" {
			parsed, err := core.ParseColor(addColor)
			if err != nil {
				return err
			}
			c = parsed
		}

		app, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		content := ""
		if len(args) > 1 {
			content = args[1]
		}
		note, _ := app.Notes.Add(args[0], content, addCategory)

		patch := core.Patch{}
		if c != "" {
			patch.Color = &c
		}
		if addPinned {
			patch.IsPinned = core.Ptr(true)
		}
		if addPaperStyle != "" {
			patch.PaperStyle = &addPaperStyle
		}
		if addPinStyle != "" {
			patch.PinStyle = &addPinStyle
		}
		if !patch.IsEmpty() {
			app.Notes.Update(note.ID, patch)
		}

		if err := persist(cmd, app); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", note.ID)
		return nil
	},
}

var (
	editTitle      string
	editContent    string
	editCategory   string
	editColor      string
	editPaperStyle string
	editPinStyle   string
)

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change fields of a note",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		patch := core.Patch{}
		if flags.Changed("title") {
			patch.Title = &editTitle
		}
		if flags.Changed("content") {
			patch.Content = &editContent
		}
		if flags.Changed("category") {
			patch.Category = &editCategory
		}
		if flags.Changed("color") {
			c, err := core.ParseColor(editColor)
			if err != nil {
				return err
			}
			patch.Color = &c
		}
		if flags.Changed("paper") {
			patch.PaperStyle = &editPaperStyle
		}
		if flags.Changed("pin-style") {
			patch.PinStyle = &editPinStyle
		}
		if patch.IsEmpty() {
			return fmt.Errorf("nothing to change, pass at least one field flag")
		}

		app, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		if !app.Notes.Update(args[0], patch) {
			return fmt.Errorf("%w: %s", errNoteNotFound, args[0])
		}
		if err := persist(cmd, app); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", args[0])
		return nil
	},
}

var rmCmd = &cobra.Command{
	Use:     "rm <id>...",
	Aliases: []string{"delete"},
	Short:   "Delete notes permanently",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		var missing []string
		for _, id := range args {
			if app.Notes.Delete(id) {
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", id)
			} else {
				missing = append(missing, id)
			}
		}
		if err := persist(cmd, app); err != nil {
			return err
		}
		if len(missing) > 0 {
			return fmt.Errorf("%w: %v", errNoteNotFound, missing)
		}
		return nil
	},
}

var pinCmd = &cobra.Command{
	Use:   "pin <id>",
	Short: "Pin or unpin a note",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		if !app.Notes.TogglePin(args[0]) {
			return fmt.Errorf("%w: %s", errNoteNotFound, args[0])
		}
		if err := persist(cmd, app); err != nil {
			return err
		}

		n, _ := app.Notes.Get(args[0])
		state := "Unpinned"
		if n.IsPinned {
			state = "Pinned"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", state, n.ID)
		return nil
	},
}

var colorCmd = &cobra.Command{
	Use:   "color <id> <color>",
	Short: "Recolor a note (yellow, mint, lavender, peach, blue)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := core.ParseColor(args[1])
		if err != nil {
			return err
		}

		app, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		if !app.Notes.SetColor(args[0], c) {
			return fmt.Errorf("%w: %s", errNoteNotFound, args[0])
		}
		if err := persist(cmd, app); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Colored %s %s\n", args[0], paint(c)(string(c)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(addCmd)
	addCmd.Flags().StringVarP(&addCategory, "category", "c", core.DefaultCategory, "Note category")
	addCmd.Flags().StringVar(&addColor, "color", "", "Note color (default yellow)")
	addCmd.Flags().BoolVarP(&addPinned, "pin", "p", false, "Pin the note")
	addCmd.Flags().StringVar(&addPaperStyle, "paper", "", "Paper style (cosmetic)")
	addCmd.Flags().StringVar(&addPinStyle, "pin-style", "", "Pin style (cosmetic)")

	rootCmd.AddCommand(editCmd)
	editCmd.Flags().StringVar(&editTitle, "title", "", "New title")
	editCmd.Flags().StringVar(&editContent, "content", "", "New content")
	editCmd.Flags().StringVarP(&editCategory, "category", "c", "", "New category")
	editCmd.Flags().StringVar(&editColor, "color", "", "New color")
	editCmd.Flags().StringVar(&editPaperStyle, "paper", "", "New paper style")
	editCmd.Flags().StringVar(&editPinStyle, "pin-style", "", "New pin style")

	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(pinCmd)
	rootCmd.AddCommand(colorCmd)
}
