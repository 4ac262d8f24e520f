package cmd

import (
	"fmt"
	"os"

	// Subcommands
	analyze "github.com/cozy-creator/greenlens/cmd/greenlens/analyze"
	batch "github.com/cozy-creator/greenlens/cmd/greenlens/batch"
	configCmd "github.com/cozy-creator/greenlens/cmd/greenlens/config"
	demo "github.com/cozy-creator/greenlens/cmd/greenlens/demo"
	doctor "github.com/cozy-creator/greenlens/cmd/greenlens/doctor"
	model "github.com/cozy-creator/greenlens/cmd/greenlens/model"
	run "github.com/cozy-creator/greenlens/cmd/greenlens/run"
	"github.com/cozy-creator/greenlens/internal/config"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// flagKeys maps command line flags to their config keys. Subcommands share
// flag names, so flags are bound for the command being run only.
var flagKeys = map[string]string{
	"home":        "home",
	"config-file": "config_file",
	"env-file":    "env_file",

	"host":        "host",
	"port":        "port",
	"environment": "environment",
	"public-dir":  "public_dir",

	"backend":     "model.backend",
	"model":       "model.name",
	"device":      "model.device",
	"endpoint":    "model.endpoint",
	"multi-label": "model.multi_label",
	"timeout":     "model.timeout",

	"workers": "batch.workers",
}

var Cmd = &cobra.Command{
	Use:   "greenlens",
	Short: "Greenwashing claim classifier",
	Long:  "Classify environmental marketing claims as greenwashing, genuine sustainability or marketing hype with a zero-shot model",

	SilenceUsage: true,

	// Runs before this command and any subcommands
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config.SetDefaults()
		config.BindEnvs()

		var bindErr error
		cmd.Flags().VisitAll(func(f *pflag.Flag) {
			if key, ok := flagKeys[f.Name]; ok && bindErr == nil {
				bindErr = viper.BindPFlag(key, f)
			}
		})
		if bindErr != nil {
			return bindErr
		}

		// Load config and env files
		return config.LoadEnvAndConfigFiles()
	},
}

func Execute() {
	if err := Cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	pflags := Cmd.PersistentFlags()

	pflags.String("home", "", "Path to the greenlens home directory (default ~/.greenlens)")
	pflags.String("config-file", "", "Path to the config file")
	pflags.String("env-file", "", "Path to the env file")

	Cmd.AddCommand(run.Cmd, analyze.Cmd, demo.Cmd, batch.Cmd, model.Cmd, doctor.Cmd, configCmd.Cmd)
	Cmd.CompletionOptions.HiddenDefaultCmd = true
}
