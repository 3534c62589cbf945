package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"editcmd/internal/bundle"
)

// watchCmd reloads bundle commands as their files change
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch bundle directories and reload changed commands",
	RunE:  watchBundles,
}

func watchBundles(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	return watchUntil(ctx, cmd)
}

// watchUntil watches until ctx is done.
func watchUntil(ctx context.Context, cmd *cobra.Command) error {
	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.shutdown()

	w, err := bundle.NewWatcher(a.library, cfg.GetWatchDebounce())
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := w.Start(ctx); err != nil {
		return err
	}
	defer w.Stop()

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("watching %d bundles", len(a.library.Dirs()))))
	for _, dir := range a.library.Dirs() {
		fmt.Fprintln(out, mutedStyle.Render("  "+dir))
	}

	select {
	case <-ctx.Done():
	case <-w.Done():
	}
	stats := w.Stats()
	logger.Info("watcher stopped", zap.Int("reloads", stats.Reloads), zap.Int("errors", stats.Errors))
	return nil
}
