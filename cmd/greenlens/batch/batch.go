package cmd

import (
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/cozy-creator/greenlens/internal/app"
	"github.com/cozy-creator/greenlens/internal/config"
	"github.com/cozy-creator/greenlens/internal/worker"

	"github.com/spf13/cobra"
)

var Cmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Classify one claim per line from a text file",
	Long:  "Classify one claim per line from a text file, or stdin when the file is -, and write one JSON record per claim in input order.",
	Args:  cobra.ExactArgs(1),
	RunE:  runBatch,
}

func init() {
	flags := Cmd.Flags()

	flags.StringP("output", "o", "", "Write records to this file instead of stdout")
	flags.Int("workers", 4, "Number of claims analyzed concurrently")
	flags.Bool("no-progress", false, "Hide the progress bar")

	flags.String("backend", "", "Model backend: huggingface, openai or openai-compatible")
	flags.String("model", "", "Model name")
	flags.String("device", "", "Device: auto, gpu or cpu")
	flags.Bool("multi-label", false, "Score every label independently")
}

func runBatch(cmd *cobra.Command, args []string) error {
	claims, err := readClaims(cmd, args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if path, _ := cmd.Flags().GetString("output"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	cfg := config.MustGetConfig()
	app, err := app.NewApp(cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.LoadModel(cmd.Context()); err != nil {
		return err
	}

	opts := []worker.BatchOption{worker.WithLogger(app.Logger.Named("batch"))}
	if hide, _ := cmd.Flags().GetBool("no-progress"); !hide {
		opts = append(opts, worker.WithProgress(cmd.ErrOrStderr()))
	}

	workers := 1
	if cfg.Batch != nil {
		workers = cfg.Batch.Workers
	}

	summary, err := worker.NewBatchWorker(app.Classifier(), workers, opts...).Run(cmd.Context(), claims, out)
	if err != nil {
		return err
	}

	printSummary(cmd.ErrOrStderr(), summary)
	if summary.Failed == summary.Total {
		return fmt.Errorf("all %d claims failed", summary.Total)
	}

	return nil
}

func readClaims(cmd *cobra.Command, path string) ([]worker.Claim, error) {
	if path == "-" {
		return worker.ReadClaims(cmd.InOrStdin())
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open claims file: %w", err)
	}
	defer f.Close()

	return worker.ReadClaims(f)
}

func printSummary(w io.Writer, s *worker.Summary) {
	fmt.Fprintf(w, "\nAnalyzed %d claims in %s (%d failed)\n", s.Total, s.Elapsed.Round(time.Millisecond), s.Failed)

	labels := make([]string, 0, len(s.Predictions))
	for label := range s.Predictions {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	for _, label := range labels {
		fmt.Fprintf(w, "  %-24s %d\n", label, s.Predictions[label])
	}
}
