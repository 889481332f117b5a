package cmd

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/tokenprinter/internal/settings"
)

const notSet = "(not set)"

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change the remembered input and output folders",
	Long: `The remembered folders are used by "convert" and the server when a request
leaves the input or output folder blank. They are stored in a small JSON file
in the user configuration directory unless --settings-file says otherwise.`,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the remembered folders",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		store, err := openSettingsStore(GetConfig())
		if err != nil {
			return err
		}
		st, err := store.Load()
		if err != nil {
			slog.Warn("Ignoring unreadable settings", "path", store.Path(), "error", err)
		}

		rows := [][]string{
			{"default_input", valueOrNotSet(st.DefaultInput)},
			{"default_output", valueOrNotSet(st.DefaultOutput)},
			{"file", store.Path()},
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Setting", "Value"}, rows))
		return nil
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Remember default input and output folders",
	Long: `Store default folders. Only the flags that are given are changed; pass an
empty value to forget a folder.

Examples:
  tokenprinter settings set --default-input ./tokens
  tokenprinter settings set --default-output ""`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		inputChanged := cmd.Flags().Changed("default-input")
		outputChanged := cmd.Flags().Changed("default-output")
		if !inputChanged && !outputChanged {
			return errors.New("nothing to set: pass --default-input and/or --default-output")
		}
		input, _ := cmd.Flags().GetString("default-input")
		output, _ := cmd.Flags().GetString("default-output")

		store, err := openSettingsStore(GetConfig())
		if err != nil {
			return err
		}
		st, err := store.Update(func(st *settings.Settings) {
			if inputChanged {
				st.DefaultInput = input
			}
			if outputChanged {
				st.DefaultOutput = output
			}
		})
		if err != nil {
			return fmt.Errorf("failed to save settings: %w", err)
		}

		slog.Debug("Settings saved", "path", store.Path())
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Default input: %s\nDefault output: %s\n",
			valueOrNotSet(st.DefaultInput), valueOrNotSet(st.DefaultOutput))
		return nil
	},
}

var settingsPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the location of the settings file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		store, err := openSettingsStore(GetConfig())
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), store.Path())
		return nil
	},
}

func valueOrNotSet(s string) string {
	if s == "" {
		return notSet
	}
	return s
}

func init() {
	rootCmd.AddCommand(settingsCmd)
	settingsCmd.AddCommand(settingsShowCmd, settingsSetCmd, settingsPathCmd)

	settingsSetCmd.Flags().String("default-input", "", "folder used when no input folder is given")
	settingsSetCmd.Flags().String("default-output", "", "folder used when no output folder is given")
}
