package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"squish/internal/scale"
	"squish/internal/tui"
)

var (
	resizeSize    int
	resizeSmooth  bool
	resizeWorkers int
	resizePlain   bool
)

var resizeCmd = &cobra.Command{
	Use:   "resize [flags] <source> <target>",
	Short: "Scale every image in a directory to fit a square bound",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		source, err := filepath.Abs(args[0])
		if err != nil {
			return err
		}
		target, err := filepath.Abs(args[1])
		if err != nil {
			return err
		}
		if source == target {
			return fmt.Errorf("source and target must be different")
		}
		if _, err := os.Stat(source); err != nil {
			return err
		}
		if err := os.MkdirAll(target, 0o755); err != nil {
			return err
		}

		// An interrupt abandons the wait for outstanding jobs; whatever
		// results already arrived still make it into the summary.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		opts := scale.Options{
			Size:    resizeSize,
			Smooth:  resizeSmooth,
			Source:  source,
			Target:  target,
			Workers: resizeWorkers,
		}

		var summary scale.Summary
		if resizePlain {
			rep := newLineReporter(os.Stderr)
			rep.Report("starting...")
			summary, err = scale.Run(ctx, opts, rep, nil)
			if err != nil {
				return err
			}
		} else {
			updates := make(chan scale.ProgressUpdate, 64)
			model := tui.NewModel(updates)
			program := tea.NewProgram(model)

			uiDone := make(chan struct{})
			go func() {
				_, _ = program.Run()
				close(uiDone)
			}()

			summary, err = scale.Run(ctx, opts, channelReporter{updates: updates}, updates)
			if summary.Canceled {
				// Abandoned workers may still emit updates, so the channel
				// must stay open; quit the program directly instead.
				program.Quit()
			} else {
				close(updates)
			}
			<-uiDone
			if err != nil {
				return err
			}
		}

		rows := []tui.SummaryRow{
			{Label: "Images found", Value: fmt.Sprintf("%d", summary.Todo)},
			{Label: "Copied unchanged", Value: fmt.Sprintf("%d", summary.Copied)},
			{Label: "Scaled down", Value: fmt.Sprintf("%d", summary.Scaled)},
			{Label: "Skipped (errors)", Value: fmt.Sprintf("%d", summary.Skipped())},
		}
		fmt.Fprintln(os.Stdout, tui.RenderSummary(rows))
		fmt.Fprintln(os.Stdout, summary.Describe(opts.Workers))
		return nil
	},
}

func init() {
	resizeCmd.Flags().IntVarP(&resizeWorkers, "concurrency", "c", runtime.NumCPU(), "number of parallel workers")
	resizeCmd.Flags().IntVarP(&resizeSize, "size", "s", 400, "make scaled images fit the given dimension")
	resizeCmd.Flags().BoolVarP(&resizeSmooth, "smooth", "S", false, "use smooth scaling (slow but good for text)")
	resizeCmd.Flags().BoolVar(&resizePlain, "plain", false, "line output instead of the progress view")

	rootCmd.AddCommand(resizeCmd)
}
