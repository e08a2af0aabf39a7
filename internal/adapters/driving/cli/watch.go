package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/harborlight-labs/corpusqa/internal/logger"
)

// watchDebounce coalesces bursts of write events for the same file,
// editors typically emit several per save.
const watchDebounce = 500 * time.Millisecond

var watchExtensions []string

var watchCmd = &cobra.Command{
	Use:   "watch [directory]",
	Short: "Watch a directory and ingest files as they change",
	Long: `Watches the given directory and re-ingests any supported file that
is created or modified. Each file is ingested under its own source
identifier, so repeated saves replace the previous passages for that
file rather than duplicating them.

Runs until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringSliceVar(&watchExtensions, "ext", nil, "only watch these extensions (default: all supported)")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if pipelineService == nil || decoderRegistry == nil {
		return errors.New("pipeline service not configured")
	}

	dir := args[0]
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("watching %s: not a directory", dir)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd.Printf("Watching %s (Ctrl-C to stop)\n", dir)

	var mu sync.Mutex
	timers := make(map[string]*time.Timer)

	for {
		select {
		case <-ctx.Done():
			cmd.Println("\nStopped watching.")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !watchable(event.Name) {
				continue
			}

			// Debounce: reset the timer on every event for this path.
			path := event.Name
			mu.Lock()
			if timer, exists := timers[path]; exists {
				timer.Stop()
			}
			timers[path] = time.AfterFunc(watchDebounce, func() {
				mu.Lock()
				delete(timers, path)
				mu.Unlock()
				if err := ingestFile(ctx, cmd, path); err != nil {
					cmd.PrintErrf("Error: %v\n", err)
				}
			})
			mu.Unlock()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error: %v", err)
		}
	}
}

// watchable reports whether the path should trigger ingestion.
func watchable(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return false
	}
	if len(watchExtensions) == 0 {
		return true
	}
	for _, allowed := range watchExtensions {
		if !strings.HasPrefix(allowed, ".") {
			allowed = "." + allowed
		}
		if strings.EqualFold(allowed, ext) {
			return true
		}
	}
	return false
}
