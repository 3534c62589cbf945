package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"editcmd/internal/command"
	"editcmd/internal/surface"
)

var (
	runFile   string
	runOffset int
	runSelect string
	runWrite  bool
)

// runCmd executes one command against a buffer
var runCmd = &cobra.Command{
	Use:   "run [command]",
	Short: "Run a command against a file buffer",
	Long: `Loads --file into a buffer, places the cursor and selection, runs the
named command and prints the resulting active tab.

Example:
  editcmd run Text/Case/upcase --file notes.txt --select 0:5 --write`,
	Args: cobra.ExactArgs(1),
	RunE: runCommand,
}

func init() {
	runCmd.Flags().StringVarP(&runFile, "file", "f", "", "File to load into the buffer (empty buffer when unset)")
	runCmd.Flags().IntVar(&runOffset, "offset", 0, "Cursor byte offset")
	runCmd.Flags().StringVar(&runSelect, "select", "", "Selection as START:END byte offsets")
	runCmd.Flags().BoolVar(&runWrite, "write", false, "Write the buffer back to --file")
}

func runCommand(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.shutdown()

	buf, err := openBuffer(runFile)
	if err != nil {
		return err
	}
	buf.SetCursor(runOffset)
	if runSelect != "" {
		start, end, err := parseSelection(runSelect)
		if err != nil {
			return err
		}
		buf.Select(start, end)
	}

	pane := surface.NewPane(buf)
	d := command.NewDispatcher(a.registry, a.history, pane)
	res := d.ExecuteByName(ctx, args[0])
	if !res.Found {
		return res.Err
	}
	logger.Debug("command finished", zap.String("command", res.Name), zap.Duration("duration", res.Duration))
	if res.Err != nil {
		return fmt.Errorf("command %s failed: %w", res.Name, res.Err)
	}

	printActive(cmd, pane, buf)

	if runWrite && runFile != "" {
		if err := os.WriteFile(runFile, []byte(buf.Text()), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", runFile, err)
		}
	}
	return nil
}

func openBuffer(path string) (*surface.Buffer, error) {
	if path == "" {
		b := surface.NewBuffer("")
		b.SetName("untitled")
		return b, nil
	}
	return surface.OpenFile(path)
}

// parseSelection parses "START:END".
func parseSelection(s string) (int, int, error) {
	a, b, ok := strings.Cut(s, ":")
	if !ok {
		return 0, 0, fmt.Errorf("invalid selection %q: want START:END", s)
	}
	start, err := strconv.Atoi(a)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid selection start %q: %w", a, err)
	}
	end, err := strconv.Atoi(b)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid selection end %q: %w", b, err)
	}
	return start, end, nil
}

func printActive(cmd *cobra.Command, pane *surface.Pane, buf *surface.Buffer) {
	out := cmd.OutOrStdout()
	switch tab := pane.Active().(type) {
	case surface.HTML:
		fmt.Fprintln(out, mutedStyle.Render("# "+tab.Name()))
		fmt.Fprint(out, tab.Content())
	case surface.Text:
		if tab != surface.Text(buf) {
			fmt.Fprintln(out, mutedStyle.Render("# "+tab.Name()))
		}
		fmt.Fprint(out, tab.Text())
	}
	if tip := buf.Tooltip(); tip != "" {
		fmt.Fprintln(cmd.ErrOrStderr(), tooltipStyle.Render(tip))
	}
}
