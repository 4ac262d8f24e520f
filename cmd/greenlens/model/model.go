package cmd

import (
	"fmt"

	"github.com/cozy-creator/greenlens/internal/app"
	"github.com/cozy-creator/greenlens/internal/config"
	"github.com/cozy-creator/greenlens/internal/model"
	"github.com/cozy-creator/greenlens/pkg/logger"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var Cmd = &cobra.Command{
	Use:   "model",
	Short: "Inspect and fetch the classification model",
}

var pullCmd = &cobra.Command{
	Use:   "pull [repo-id]",
	Short: "Download the model snapshot into the local Hugging Face cache",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runPull,
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the configured model and, with --load, load it",
	RunE:  runInfo,
}

func init() {
	pullCmd.Flags().String("model", "", "Model name")

	infoCmd.Flags().Bool("load", false, "Load the model and report the device it runs on")
	infoCmd.Flags().String("backend", "", "Model backend: huggingface, openai or openai-compatible")
	infoCmd.Flags().String("model", "", "Model name")
	infoCmd.Flags().String("device", "", "Device: auto, gpu or cpu")

	Cmd.AddCommand(pullCmd, infoCmd)
}

func runPull(cmd *cobra.Command, args []string) error {
	cfg := config.MustGetConfig()

	repoID := cfg.Model.Name
	if len(args) == 1 {
		repoID = args[0]
	}

	l, err := logger.NewLogger(cfg)
	if err != nil {
		return err
	}
	defer l.Sync()

	path, err := model.NewPuller(l.Named("pull")).Pull(cmd.Context(), repoID)
	if err != nil {
		return fmt.Errorf("failed to pull %s: %w", repoID, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✅ %s is available at %s\n", repoID, path)
	return nil
}

type infoOutput struct {
	model.Info `yaml:",inline"`
	MultiLabel bool   `yaml:"multi_label"`
	Endpoint   string `yaml:"endpoint,omitempty"`
	Pulled     bool   `yaml:"pulled"`
	CacheDir   string `yaml:"cache_dir"`
}

func runInfo(cmd *cobra.Command, _ []string) error {
	cfg := config.MustGetConfig()

	app, err := app.NewApp(cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	if load, _ := cmd.Flags().GetBool("load"); load {
		// The failure is part of the reported info.
		_ = app.LoadModel(cmd.Context())
	}

	puller := model.NewPuller(app.Logger.Named("pull"))
	out := infoOutput{
		Info:       app.Loader.Info(),
		MultiLabel: cfg.Model.MultiLabel,
		Endpoint:   cfg.Model.Endpoint,
		Pulled:     puller.IsPulled(cfg.Model.Name),
		CacheDir:   puller.CacheDir(),
	}

	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	defer enc.Close()

	return enc.Encode(out)
}
