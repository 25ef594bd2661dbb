package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	lifecycleadapter "github.com/aretw0/notehub/pkg/adapters/lifecycle"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-render the list whenever the notes change on disk",
	Long: `watch prints the current list, then prints it again every time the
current user's notes are saved by another notehub process. Stop with Ctrl+C.`,
	Args: cobra.NoArgs,
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

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		changes, err := app.Watch(ctx)
		if err != nil {
			return err
		}
		src := lifecycleadapter.NewSource(changes, lifecycleadapter.SkipRemovals())
		if err := src.Start(ctx); err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if err := renderNotes(w, app.View(q)); err != nil {
			return err
		}
		for e := range src.Events() {
			slog.Debug("notes changed", "event", e.String())
			app.Reload(ctx)
			fmt.Fprintln(w, "---")
			if err := renderNotes(w, app.View(q)); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringVarP(&listSearch, "search", "s", "", "Case-insensitive text in title or content")
	watchCmd.Flags().StringVarP(&listCategory, "category", "c", "", "Only this category")
	watchCmd.Flags().BoolVar(&listPinned, "pinned", false, "Only pinned notes")
	watchCmd.Flags().StringVarP(&listWhere, "where", "w", "", "Filter expression")
}
