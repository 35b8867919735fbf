package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const configFileName = ".waymark.yaml"

// initCmd scaffolds a project-local config file.
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a .waymark.yaml config file in the current directory",
	Long: `Write a starter configuration file to the current directory. The file
records where the plan database lives and the default actor name used when
claiming steps. Existing files are never overwritten.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(configFileName); err == nil {
			return fmt.Errorf("%s already exists", configFileName)
		}

		scaffold := struct {
			Database struct {
				Path string `yaml:"path"`
			} `yaml:"database"`
			Claim struct {
				Actor string `yaml:"actor"`
			} `yaml:"claim"`
		}{}
		scaffold.Database.Path = defaultDatabasePath()
		scaffold.Claim.Actor = GetConfig().Claim.Actor

		data, err := yaml.Marshal(&scaffold)
		if err != nil {
			return fmt.Errorf("failed to render config: %w", err)
		}
		if err := os.WriteFile(configFileName, data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", configFileName, err)
		}

		cmd.Printf("Created %s\n", configFileName)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
