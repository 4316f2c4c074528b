package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/chriscorrea/tally/internal/app"
	"github.com/chriscorrea/tally/internal/config"
	"github.com/chriscorrea/tally/internal/counter"
	"github.com/chriscorrea/tally/internal/extract"

	"github.com/spf13/cobra"
)

// buildConfig constructs an app.Config from the config file, command flags and arguments.
// Flags that were set explicitly win over the file.
func buildConfig(cmd *cobra.Command, args []string) (app.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")
	fileCfg, err := config.Load(configPath)
	if err != nil {
		return app.Config{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("pattern") {
		fileCfg.Pattern, _ = flags.GetString("pattern")
	}
	if flags.Changed("chunk-size") {
		fileCfg.ChunkSize, _ = flags.GetInt("chunk-size")
	}
	if flags.Changed("limit") {
		fileCfg.TextLimit, _ = flags.GetInt("limit")
	}
	if flags.Changed("fold") {
		fileCfg.Fold, _ = flags.GetString("fold")
	}
	if flags.Changed("measure") {
		fileCfg.Measures, _ = flags.GetStringSlice("measure")
	}
	if flags.Changed("match-timeout") {
		d, _ := flags.GetDuration("match-timeout")
		fileCfg.MatchTimeout = d.String()
	}
	if flags.Changed("json") {
		fileCfg.JSON, _ = flags.GetBool("json")
	}
	if flags.Changed("readable") {
		fileCfg.Readable.Enabled, _ = flags.GetBool("readable")
	}
	if flags.Changed("selector") {
		fileCfg.Readable.Selector, _ = flags.GetString("selector")
	}
	if flags.Changed("include-all") {
		fileCfg.Readable.IncludeAll, _ = flags.GetBool("include-all")
	}
	if flags.Changed("markdown") {
		fileCfg.Readable.Markdown, _ = flags.GetBool("markdown")
	}

	// --preview without a value uses the configured length
	usePreview := flags.Changed("preview")
	if usePreview {
		if n, _ := flags.GetInt("preview"); n > 0 {
			fileCfg.PreviewLength = n
		}
	}

	if err := fileCfg.Validate(); err != nil {
		return app.Config{}, err
	}

	fold, err := counter.ParseFoldMode(fileCfg.Fold)
	if err != nil {
		return app.Config{}, err
	}

	// Validate has already parsed it
	matchTimeout, _ := fileCfg.Timeout()
	if matchTimeout == 0 {
		matchTimeout = -1 // disabled
	}

	raw, _ := flags.GetBool("raw")
	quiet, _ := flags.GetBool("quiet")

	// no arguments provided - use stdin
	sources := args
	if len(sources) == 0 && !raw {
		sources = []string{"-"}
	}

	outputFormat := app.Text
	if fileCfg.JSON {
		outputFormat = app.JSON
	}

	return app.Config{
		Sources:       sources,
		Raw:           raw,
		Pattern:       fileCfg.Pattern,
		MatchTimeout:  matchTimeout,
		ChunkSize:     fileCfg.ChunkSize,
		TextLimit:     fileCfg.TextLimit,
		Fold:          fold,
		Measures:      fileCfg.Measures,
		Preview:       usePreview,
		PreviewLength: fileCfg.PreviewLength,
		Readable:      fileCfg.Readable.Enabled,
		Extract: extract.Options{
			Selector:   fileCfg.Readable.Selector,
			IncludeAll: fileCfg.Readable.IncludeAll,
			Markdown:   fileCfg.Readable.Markdown,
		},
		OutputFormat: outputFormat,
		Quiet:        quiet,
	}, nil
}

// setupLogger configures the default slog logger based on debug mode
func setupLogger(debug bool) {
	var level slog.Level
	if debug {
		level = slog.LevelDebug
	} else {
		level = slog.LevelError
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}

var rootCmd = &cobra.Command{
	Use:   "tally [sources...]",
	Short: "Count tokens and distinct tokens in large text",
	Long: `Tally streams text from files, URLs or standard input and reports how many tokens it
contains and how many of them are distinct (case-insensitive). Input is processed in chunks,
so files far larger than memory can be counted.

Examples:
  tally book.txt
  tally --pattern '\b[A-Za-z]+\b' corpus.txt
  cat notes.md | tally --json
  tally --raw "The THE the tHe ThE"`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		debug, _ := cmd.Flags().GetBool("debug")
		setupLogger(debug)

		cfg, err := buildConfig(cmd, args)
		if err != nil {
			return fmt.Errorf("configuration error: %w", err)
		}

		// create context with signal handling for graceful shutdown
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		result, err := app.Run(ctx, cfg)
		if err != nil {
			return fmt.Errorf("tally failed: %w", err)
		}

		fmt.Print(result)
		return nil
	},
}

var initConfigCmd = &cobra.Command{
	Use:   "init-config [path]",
	Short: "Write the default configuration file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.DefaultPath()
		if len(args) == 1 {
			path, err = args[0], nil
		}
		if err != nil {
			return fmt.Errorf("cannot determine config path: %w", err)
		}

		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists", path)
		}
		if err := config.Save(path, config.Default()); err != nil {
			return err
		}

		fmt.Println(path)
		return nil
	},
}

func init() {
	rootCmd.Flags().StringP("pattern", "p", "", "Token pattern (default: letter/digit runs or single punctuation marks)")
	rootCmd.Flags().Int("chunk-size", 0, "Bytes per streamed chunk (default: 1 MiB)")
	rootCmd.Flags().Int("limit", 0, "Chunk limit in bytes for --raw and --readable text (default: 100000)")
	rootCmd.Flags().Duration("match-timeout", 0, "Abort a single pattern match after this long; 0 disables (default: 5s)")
	rootCmd.Flags().BoolP("raw", "r", false, "Count the arguments themselves instead of reading them as sources")

	// counting options
	rootCmd.Flags().String("fold", "lower", "Unique-token normalization: lower, fold or stem")
	rootCmd.Flags().StringSlice("measure", nil, "Extra measures to report: bpe, words, characters (repeatable)")

	// preview
	rootCmd.Flags().Int("preview", 0, "Print a preview of each source; use --preview=N to set the length in bytes (default: 500)")
	rootCmd.Flags().Lookup("preview").NoOptDefVal = "0"

	// HTML extraction
	rootCmd.Flags().Bool("readable", false, "Count the readable text of HTML sources instead of the markup")
	rootCmd.Flags().StringP("selector", "s", "", "CSS selector for --readable extraction")
	rootCmd.Flags().BoolP("include-all", "i", false, "With --readable, use the whole page instead of the main article")
	rootCmd.Flags().Bool("markdown", false, "With --readable, count the Markdown rendering of the page")

	// output
	rootCmd.Flags().Bool("json", false, "Output in JSON format")
	rootCmd.Flags().BoolP("quiet", "q", false, "Suppress progress and preview output")
	rootCmd.Flags().String("config", "", "Config file (default: ~/.config/tally/config.toml)")

	rootCmd.Flags().BoolP("debug", "D", false, "Enable debug logging")
	_ = rootCmd.Flags().MarkHidden("debug")

	rootCmd.AddCommand(initConfigCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
