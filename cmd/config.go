package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/waymark-dev/waymark/internal/planner"
	"github.com/waymark-dev/waymark/internal/storage"
	"github.com/waymark-dev/waymark/models"
	"github.com/waymark-dev/waymark/types"
)

const (
	configName = ".waymark"
	envPrefix  = "WAYMARK"
)

// GlobalAppConfig holds the global application configuration instance.
var GlobalAppConfig types.AppConfig

// InitConfig reads in config file and ENV variables if set.
func InitConfig() {
	// Load .env file first if present; absence is fine.
	_ = godotenv.Load()

	viper.SetEnvPrefix(envPrefix) // e.g., WAYMARK_VERBOSE
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfgFileFlag := viper.GetString("config")
	if cfgFileFlag != "" {
		viper.SetConfigFile(cfgFileFlag)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)
		viper.AddConfigPath(".")
		viper.AddConfigPath(home)
		viper.SetConfigName(configName)
	}

	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("verbose") {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	} else {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			if cfgFileFlag != "" {
				fmt.Fprintln(os.Stderr, "Error: Specified config file not found:", cfgFileFlag)
			}
		} else {
			fmt.Fprintln(os.Stderr, "Error reading config file:", viper.ConfigFileUsed(), "-", err)
		}
	}

	viper.SetDefault("database.path", defaultDatabasePath())
	viper.SetDefault("claim.actor", "")

	if err := viper.Unmarshal(&GlobalAppConfig); err != nil {
		fmt.Fprintf(os.Stderr, "Error unmarshaling config: %s\n", err)
		os.Exit(1)
	}
	if GlobalAppConfig.Database.Path == "" {
		GlobalAppConfig.Database.Path = viper.GetString("database.path")
	}

	if err := models.ValidateStruct(&GlobalAppConfig); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration validation error: %s\n", err)
		os.Exit(1)
	}
}

func defaultDatabasePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".waymark", "waymark.db")
	}
	return filepath.Join(home, ".waymark", "waymark.db")
}

// GetConfig returns a pointer to the global types.AppConfig instance.
func GetConfig() *types.AppConfig {
	return &GlobalAppConfig
}

// GetPlanner opens the configured store and wires a Planner on top of it.
// The caller owns the store and must close it via planner.DB().Close().
func GetPlanner() (*planner.Planner, error) {
	config := GetConfig()
	db, err := storage.Open(config.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open store at %s: %w", config.Database.Path, err)
	}
	log.Debug().Str("path", db.Path()).Msg("store opened")
	return planner.New(db), nil
}
