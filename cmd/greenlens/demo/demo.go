package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/cozy-creator/greenlens/internal/app"
	"github.com/cozy-creator/greenlens/internal/config"
	"github.com/cozy-creator/greenlens/internal/inference"
	"github.com/cozy-creator/greenlens/internal/presenter"
	"github.com/cozy-creator/greenlens/internal/taxonomy"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var Cmd = &cobra.Command{
	Use:   "demo",
	Short: "Run the preset example claims and compare predictions with the expected categories",
	RunE:  runDemo,
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#28a745"))
	faintStyle = lipgloss.NewStyle().Faint(true)
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#28a745"))
	missStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#dc3545"))
)

func init() {
	flags := Cmd.Flags()

	flags.String("backend", "", "Model backend: huggingface, openai or openai-compatible")
	flags.String("model", "", "Model name")
	flags.String("device", "", "Device: auto, gpu or cpu")
}

func runDemo(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	rule := strings.Repeat("=", 40)

	fmt.Fprintln(out, titleStyle.Render("🌱 Greenwashing Detection Demo"))
	fmt.Fprintln(out, rule)

	app, err := app.NewApp(config.MustGetConfig())
	if err != nil {
		return err
	}
	defer app.Close()

	fmt.Fprintln(out, "Loading model... (this may take a moment)")
	if err := app.LoadModel(cmd.Context()); err != nil {
		fmt.Fprintf(out, "❌ Error loading model: %v\n", err)
		return err
	}
	info := app.Loader.Info()
	fmt.Fprintf(out, "✅ Model %s loaded on %s in %s\n", info.Name, info.Device, info.LoadedIn)

	fmt.Fprintln(out)
	fmt.Fprintln(out, titleStyle.Render("🔍 Analyzing claims"))
	fmt.Fprintln(out, rule)

	matched, analyzed := 0, 0
	for i, ex := range taxonomy.Examples() {
		fmt.Fprintf(out, "\n%d. Claim: %q\n", i+1, ex.Text)
		fmt.Fprintf(out, "   Expected: %s\n", ex.Expected.Label())

		analysis, err := app.Classifier().Analyze(cmd.Context(), ex.Text)
		if err != nil {
			fmt.Fprintf(out, "   ❌ Error: %v\n", err)
			continue
		}
		analyzed++

		top, _ := analysis.Coarse.Top()
		verdict := missStyle.Render("✗")
		if top.Label == ex.Expected.Label() {
			verdict = okStyle.Render("✓")
			matched++
		}

		fmt.Fprintf(out, "   🤖 Prediction: %s %s\n", top.Label, verdict)
		fmt.Fprintf(out, "   📊 Confidence: %s\n", presenter.Percent(top.Score))
		printScores(out, analysis.Coarse)
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, rule)
	fmt.Fprintf(out, "Demo completed: %d of %d predictions matched the expected category.\n", matched, analyzed)
	fmt.Fprintln(out, faintStyle.Render("Run `greenlens run` for the full interactive experience."))

	return nil
}

func printScores(out io.Writer, scores inference.Result) {
	fmt.Fprintln(out, "   📈 All scores:")
	for _, s := range scores {
		fmt.Fprintf(out, "      - %s: %s\n", s.Label, presenter.Percent(s.Score))
	}
}
