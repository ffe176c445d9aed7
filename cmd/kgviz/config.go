package main

import (
	"os"

	"github.com/spf13/cobra"
)

var configShowPath bool

func init() {
	configCmd.Flags().BoolVar(&configShowPath, "path", false, "Print only the resolved settings file path")
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective rendering settings",
	Long: `Show the settings render would use: built-in defaults overlaid with the
settings file from --config, $KGVIZ_CONFIG or ~/.config/kgviz/config.yml.

With --human the settings are printed as YAML, ready to save as a
settings file.`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

// ConfigResponse is the response for the config command.
type ConfigResponse struct {
	Path     string `json:"path"`
	Settings any    `json:"settings,omitempty"`
}

func runConfig(cmd *cobra.Command, args []string) error {
	s, path, err := loadSettings()
	if err != nil {
		return err
	}

	if configShowPath {
		if humanOutput {
			if path == "" {
				outputHuman("(built-in defaults)\n")
			} else {
				outputHuman("%s\n", path)
			}
			return nil
		}
		return outputJSON(ConfigResponse{Path: path})
	}

	if humanOutput {
		data, err := s.Marshal()
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(data)
		return err
	}
	return outputJSON(ConfigResponse{Path: path, Settings: s})
}
