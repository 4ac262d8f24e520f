package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cozy-creator/greenlens/internal/config"
	"github.com/cozy-creator/greenlens/internal/templates"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

var Cmd = &cobra.Command{
	Use:   "config",
	Short: "Show or initialize the configuration",
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration with secrets masked",
	RunE: func(cmd *cobra.Command, _ []string) error {
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		defer enc.Close()

		return enc.Encode(config.MustGetConfig().Redacted())
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default config file",
	RunE:  runInit,
}

func init() {
	initCmd.Flags().Bool("force", false, "Overwrite an existing config file")

	Cmd.AddCommand(showCmd, initCmd)
}

func runInit(cmd *cobra.Command, _ []string) error {
	path := viper.GetString("config_file")
	if path == "" {
		path = filepath.Join(config.MustGetConfig().Home, "config.yaml")
	}

	force, _ := cmd.Flags().GetBool("force")
	if _, err := os.Stat(path); err == nil && !force {
		fmt.Fprintf(cmd.OutOrStdout(), "%s already exists, use --force to overwrite it\n", path)
		return nil
	}

	if err := templates.WriteConfig(path); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✅ wrote %s\n", path)
	return nil
}
