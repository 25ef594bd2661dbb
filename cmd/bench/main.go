package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/aretw0/introspection"

	"github.com/aretw0/notehub"
	"github.com/aretw0/notehub/pkg/adapters/fs"
)

func main() {
	count := flag.Int("count", 1000, "Number of notes to generate")
	keystrokes := flag.Int("keystrokes", 200, "Edits typed into one note")
	delay := flag.Duration("debounce", 50*time.Millisecond, "Debounce delay")
	keep := flag.Bool("keep", false, "Keep the benchmark data directory after running")
	flag.Parse()

	benchDir, err := os.MkdirTemp("", "notehub_bench_")
	if err != nil {
		panic(err)
	}
	defer func() {
		if !*keep {
			os.RemoveAll(benchDir)
		} else {
			fmt.Printf("Keeping bench dir: %s\n", benchDir)
		}
	}()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	ctx := context.Background()

	app, err := notehub.New(benchDir,
		notehub.WithLogger(logger),
		notehub.WithDebounce(*delay),
		notehub.WithReadyDelay(-1),
	)
	if err != nil {
		panic(err)
	}
	user, err := app.Login(ctx, "bench")
	if err != nil {
		panic(err)
	}

	// 1. Bulk creation: one durable write for the whole burst.
	fmt.Printf("Generating %d notes in %s...\n", *count, benchDir)
	startGen := time.Now()
	for i := 0; i < *count; i++ {
		app.Notes.Add(fmt.Sprintf("Note %d", i), "This is a benchmark note.", fmt.Sprintf("cat-%d", i%7))
	}
	genDuration := time.Since(startGen)
	if err := app.Notes.Flush(ctx); err != nil {
		panic(err)
	}

	// 2. Typing: every keystroke is an update, faster than the debounce delay.
	target := app.Notes.Notes()[0].ID
	before := writes(app)
	startTyping := time.Now()
	var text strings.Builder
	for i := 0; i < *keystrokes; i++ {
		text.WriteByte('a' + byte(i%26))
		content := text.String()
		app.Notes.Update(target, notehub.Patch{Content: &content})
		time.Sleep(*delay / 10)
	}
	typingDuration := time.Since(startTyping)
	time.Sleep(*delay * 3)
	typingWrites := writes(app) - before
	app.Close()

	// 3. Cold load in a fresh process-like App.
	app2, err := notehub.New(benchDir, notehub.WithLogger(logger), notehub.WithReadyDelay(-1))
	if err != nil {
		panic(err)
	}
	defer app2.Close()
	startLoad := time.Now()
	app2.Notes.Load(ctx, user.ID)
	loadDuration := time.Since(startLoad)

	startView := time.Now()
	visible := app2.View(notehub.Query{Search: "note 9"})
	viewDuration := time.Since(startView)

	fmt.Printf("--------------------------------------------------\n")
	fmt.Printf("Benchmark Result (%d notes):\n", *count)
	fmt.Printf("  Generate:   %v\n", genDuration)
	fmt.Printf("  Typing:     %v (%d keystrokes, %d writes)\n", typingDuration, *keystrokes, typingWrites)
	fmt.Printf("  Cold load:  %v (Items: %d)\n", loadDuration, len(app2.Notes.Notes()))
	fmt.Printf("  View:       %v (Items: %d)\n", viewDuration, len(visible))
	fmt.Printf("--------------------------------------------------\n")
}

// writes reads the durable write counter of the fs adapter.
func writes(app *notehub.App) int {
	if intro, ok := app.Storage.(introspection.Introspectable); ok {
		if state, ok := intro.State().(fs.StorageState); ok {
			return state.Writes
		}
	}
	return 0
}
