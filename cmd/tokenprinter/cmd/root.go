package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MeKo-Tech/tokenprinter/internal/config"
	"github.com/MeKo-Tech/tokenprinter/internal/settings"
	"github.com/MeKo-Tech/tokenprinter/internal/version"
)

var (
	// Global configuration loader.
	configLoader *config.Loader
	// Global configuration.
	globalConfig *config.Config
	// Configuration file path.
	cfgFile string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "tokenprinter",
	Short: "Lay out a folder of token images in a printable Word document",
	Long: `tokenprinter turns a folder of images into a single .docx file ready for
printing. Every image is rotated a quarter turn clockwise, flattened onto
white and placed two per row at a fixed width of 88 mm on a page with 10 mm
margins.

Supported formats: JPEG, PNG, BMP, GIF

Examples:
  tokenprinter convert --input ./tokens --output ./print --name goblins
  tokenprinter settings set --default-input ./tokens --default-output ./print
  tokenprinter serve --port 8080`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		v, _ := cmd.Flags().GetBool("version")
		if v {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "tokenprinter version "+version.String())
			return nil
		}
		return cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// GetRootCommand returns the root command for testing purposes.
// This allows tests to execute commands without calling os.Exit().
func GetRootCommand() *cobra.Command {
	return rootCmd
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default is search in ., $HOME/.config/tokenprinter, $HOME, /etc/tokenprinter)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output (equivalent to --log-level=debug)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("settings-file", "", "preferences file (default is <user config dir>/tokenprinter/settings.json)")
	rootCmd.Flags().Bool("version", false, "print version information and exit")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("settings_file", rootCmd.PersistentFlags().Lookup("settings-file"))

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if err := initConfig(); err != nil {
			return err
		}
		cfg := GetConfig()

		// Logs go to stderr so command output on stdout stays machine readable.
		logger := slog.New(slog.NewJSONHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
			Level: cfg.SlogLevel(),
		}))
		slog.SetDefault(logger)
		return nil
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() error {
	configLoader = config.NewLoader()

	var err error
	globalConfig, err = configLoader.LoadWithFile(cfgFile)
	if err != nil {
		return fmt.Errorf("error loading configuration: %w", err)
	}
	return nil
}

// GetConfig returns the global configuration with command-line flags applied.
func GetConfig() *config.Config {
	if globalConfig == nil {
		if err := initConfig(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			cfg := config.DefaultConfig()
			return &cfg
		}
	}

	// Flags are bound to viper after the first load, so resolve again.
	var cfg config.Config
	if err := GetConfigLoader().GetViper().Unmarshal(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error unmarshaling updated configuration: %v\n", err)
		return globalConfig
	}
	return &cfg
}

// GetConfigLoader returns the global configuration loader.
func GetConfigLoader() *config.Loader {
	if configLoader == nil {
		configLoader = config.NewLoader()
	}
	return configLoader
}

// openSettingsStore returns the preferences store named by the configuration.
func openSettingsStore(cfg *config.Config) (*settings.Store, error) {
	path := cfg.SettingsFile
	if path == "" {
		var err error
		if path, err = settings.DefaultPath(); err != nil {
			return nil, err
		}
	}
	return settings.NewStore(path), nil
}
