package cmd

import (
	"fmt"
	"io"

	"github.com/cozy-creator/greenlens/internal/app"
	"github.com/cozy-creator/greenlens/internal/config"
	"github.com/cozy-creator/greenlens/internal/inference"
	"github.com/cozy-creator/greenlens/internal/model"
	"github.com/cozy-creator/greenlens/internal/taxonomy"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var Cmd = &cobra.Command{
	Use:   "doctor",
	Short: "Verify the configuration, load the model and classify a test claim",
	RunE:  runDoctor,
}

var (
	passStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#28a745"))
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffc107"))
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#dc3545"))
)

func init() {
	flags := Cmd.Flags()

	flags.String("backend", "", "Model backend: huggingface, openai or openai-compatible")
	flags.String("model", "", "Model name")
	flags.String("device", "", "Device: auto, gpu or cpu")
}

type report struct {
	out    io.Writer
	failed int
}

func (r *report) pass(format string, args ...any) {
	fmt.Fprintln(r.out, passStyle.Render("✅ "+fmt.Sprintf(format, args...)))
}

func (r *report) warn(format string, args ...any) {
	fmt.Fprintln(r.out, warnStyle.Render("⚠️  "+fmt.Sprintf(format, args...)))
}

func (r *report) fail(format string, args ...any) {
	r.failed++
	fmt.Fprintln(r.out, failStyle.Render("❌ "+fmt.Sprintf(format, args...)))
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	r := &report{out: cmd.OutOrStdout()}
	cfg := config.MustGetConfig()

	fmt.Fprintln(r.out, "Testing configuration...")
	r.pass("config loaded from %s", cfg.Home)
	r.pass("backend %s, model %s, device %s", cfg.Model.Backend, cfg.Model.Name, cfg.Model.Device)
	checkCredentials(r, cfg)

	fmt.Fprintln(r.out, "\nTesting model...")
	app, err := app.NewApp(cfg)
	if err != nil {
		r.fail("backend: %v", err)
		return fmt.Errorf("%d check(s) failed", r.failed)
	}
	defer app.Close()

	if err := app.LoadModel(cmd.Context()); err != nil {
		r.fail("%v", err)
	} else {
		info := app.Loader.Info()
		r.pass("model %s loaded on %s in %s", info.Name, info.Device, info.LoadedIn)

		ex := taxonomy.Examples()[0]
		analysis, err := app.Classifier().Analyze(cmd.Context(), ex.Text)
		if err != nil {
			r.fail("test classification: %v", err)
		} else {
			top, _ := analysis.Coarse.Top()
			r.pass("test claim classified as %s in %s", top.Label, analysis.Elapsed)
		}
	}

	if cfg.Model.Backend == inference.BackendHuggingFace {
		puller := model.NewPuller(app.Logger.Named("pull"))
		if puller.IsPulled(cfg.Model.Name) {
			r.pass("snapshot of %s found in %s", cfg.Model.Name, puller.CacheDir())
		} else {
			r.warn("no local snapshot of %s; run `greenlens model pull` to serve it from your own endpoint", cfg.Model.Name)
		}
	}

	fmt.Fprintln(r.out)
	if r.failed > 0 {
		return fmt.Errorf("%d check(s) failed", r.failed)
	}

	fmt.Fprintln(r.out, "Setup verification complete! Start the app with `greenlens run`.")
	return nil
}

func checkCredentials(r *report, cfg *config.Config) {
	switch cfg.Model.Backend {
	case inference.BackendHuggingFace:
		if cfg.HuggingFace == nil || cfg.HuggingFace.Token == "" {
			r.warn("HF_TOKEN is not set; anonymous requests are heavily rate limited")
			return
		}
		r.pass("HF_TOKEN is set")
	case inference.BackendOpenAI:
		if cfg.OpenAI == nil || cfg.OpenAI.APIKey == "" {
			r.fail("OPENAI_API_KEY is not set")
			return
		}
		r.pass("OPENAI_API_KEY is set")
	case inference.BackendCompatible:
		if cfg.OpenAI == nil || cfg.OpenAI.BaseURL == "" {
			r.fail("openai.base_url is not set")
			return
		}
		r.pass("OpenAI-compatible endpoint %s", cfg.OpenAI.BaseURL)
	}
}
