package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MeKo-Tech/tokenprinter/internal/convert"
)

// convertCmd represents the convert command.
var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert a folder of images into a .docx document",
	Long: `Convert every supported image directly inside the input folder into one
.docx file written to the output folder. Images are placed two per row in the
order the folder lists them. An existing file with the same name is replaced.

When --input or --output is omitted the stored defaults are used
(see "tokenprinter settings").

Examples:
  tokenprinter convert -i ./tokens -o ./print -n goblins
  tokenprinter convert --name goblins --prefetch --page-size a4`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         runConvert,
}

func runConvert(cmd *cobra.Command, _ []string) error {
	cfg := GetConfig()
	if err := cfg.Validate(); err != nil {
		return err
	}

	input, _ := cmd.Flags().GetString("input")
	output, _ := cmd.Flags().GetString("output")
	name, _ := cmd.Flags().GetString("name")
	quiet, _ := cmd.Flags().GetBool("quiet")

	req := convert.Request{InputDir: input, OutputDir: output, Filename: name}
	if store, err := openSettingsStore(cfg); err != nil {
		slog.Warn("No settings location available", "error", err)
	} else {
		st, err := store.Load()
		if err != nil {
			slog.Warn("Ignoring unreadable settings", "path", store.Path(), "error", err)
		}
		req = req.WithDefaults(st.DefaultInput, st.DefaultOutput)
	}

	opts := cfg.ToConvertOptions()
	opts.Logger = slog.Default()
	opts.Progress = progressFor(cmd.ErrOrStderr(), quiet, isTerminal(cmd.ErrOrStderr()))

	res := convert.New(opts).Run(req)
	if !res.Success {
		return res.Err
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Processed %d images!\nSaved to: %s\n", res.Count, res.OutputPath)
	return nil
}

// progressFor draws a bar on a terminal and falls back to log lines otherwise.
// With a bar the same updates are also logged at debug level for --verbose runs.
func progressFor(w io.Writer, quiet, tty bool) convert.ProgressCallback {
	if quiet {
		return convert.NoOpProgressCallback{}
	}
	if tty {
		return convert.NewMultiProgressCallback(
			convert.NewConsoleProgressCallback(w, ""),
			convert.NewLogProgressCallback(slog.Default(), slog.LevelDebug),
		)
	}
	return convert.NewLogProgressCallback(slog.Default(), slog.LevelInfo)
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func init() {
	rootCmd.AddCommand(convertCmd)
	convertCmd.Flags().StringP("input", "i", "", "folder containing the images")
	convertCmd.Flags().StringP("output", "o", "", "folder to write the document into")
	convertCmd.Flags().StringP("name", "n", "", "document file name without the .docx extension")
	convertCmd.Flags().BoolP("quiet", "q", false, "do not report progress")
	convertCmd.Flags().Bool("prefetch", false, "decode the next row while the current one is embedded")
	convertCmd.Flags().String("page-size", "letter", "paper size: letter or a4")
	convertCmd.Flags().Int("jpeg-quality", 75, "JPEG quality for embedded pictures (1-100)")

	_ = viper.BindPFlag("conversion.prefetch", convertCmd.Flags().Lookup("prefetch"))
	_ = viper.BindPFlag("document.page_size", convertCmd.Flags().Lookup("page-size"))
	_ = viper.BindPFlag("document.jpeg_quality", convertCmd.Flags().Lookup("jpeg-quality"))
}
