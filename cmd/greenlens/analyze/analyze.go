package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/cozy-creator/greenlens/internal/app"
	"github.com/cozy-creator/greenlens/internal/config"
	"github.com/cozy-creator/greenlens/internal/presenter"
	"github.com/cozy-creator/greenlens/internal/taxonomy"

	"github.com/spf13/cobra"
)

var Cmd = &cobra.Command{
	Use:   "analyze [claim...]",
	Short: "Classify a single claim",
	Long:  "Classify a single claim and print the prediction, the category scores and the top indicators. Use - to read the claim from stdin.",
	RunE:  runAnalyze,
}

func init() {
	flags := Cmd.Flags()

	flags.String("example", "", "Analyze a preset example instead of a claim")
	flags.Bool("json", false, "Print the raw analysis as JSON")
	flags.Int("width", 100, "Terminal width used for the report")

	flags.String("backend", "", "Model backend: huggingface, openai or openai-compatible")
	flags.String("model", "", "Model name")
	flags.String("device", "", "Device: auto, gpu or cpu")
	flags.Bool("multi-label", false, "Score every label independently")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	text, err := claimText(cmd, args)
	if err != nil {
		return err
	}

	app, err := app.NewApp(config.MustGetConfig())
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.LoadModel(cmd.Context()); err != nil {
		return err
	}

	analysis, err := app.Classifier().Analyze(cmd.Context(), text)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(analysis)
	}

	rep, err := presenter.Present(analysis)
	if err != nil {
		return err
	}

	width, _ := cmd.Flags().GetInt("width")
	r := presenter.NewTerminalRenderer(width)
	presenter.Render(r, rep)
	_, err = fmt.Fprintln(out, r.String())
	return err
}

// claimText resolves the claim from --example, stdin or the arguments. An
// empty claim is a usage error.
func claimText(cmd *cobra.Command, args []string) (string, error) {
	if name, _ := cmd.Flags().GetString("example"); name != "" {
		ex, ok := taxonomy.ExampleByName(name)
		if !ok {
			return "", fmt.Errorf("unknown example %q", name)
		}
		return ex.Text, nil
	}

	text := strings.Join(args, " ")
	if text == "-" {
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("failed to read claim: %w", err)
		}
		text = string(b)
	}

	if strings.TrimSpace(text) == "" {
		return "", errors.New("please provide a claim to analyze")
	}

	return strings.TrimSpace(text), nil
}
