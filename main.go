package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/lipgloss"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// version is the application version, set via ldflags.
var version string = "dev"

var rootCmd = &cobra.Command{
	Use:   "repodigest [SOURCE]",
	Short: "repodigest writes a single Markdown summary of a repository.",
	Long: `repodigest clones or updates a Git repository (or reads a local directory),
embeds the content of source and config files, lists asset files per directory,
and writes everything into one Markdown document.`,
	Version:       version,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			viper.Set("source", args[0])
		}
		log := ptermLogger{}

		cfg, err := loadRunConfig()
		if err != nil {
			return err
		}

		if viper.GetBool("interactive") {
			err := pickBranch(cmd.Context(), &cfg, log)
			if errors.Is(err, errSelectionAborted) {
				log.Info("Interactive selection aborted.")
				return nil
			}
			if err != nil {
				return err
			}
		}

		workdir := viper.GetString("workdir")
		collector := &sectionCollector{}
		r := &runner{
			acquirer: &spinnerAcquirer{inner: &GitAcquirer{Workdir: workdir, Log: log}},
			log:      log,
		}
		if viper.GetString("pdf") != "" {
			r.onSection = collector.Add
		}

		summary, err := r.Run(cmd.Context(), cfg)
		if err != nil {
			return err
		}

		finishOutputs(cfg, &summary, collector, log)
		printSummary(summary)
		return nil
	},
}

// finishOutputs runs the optional steps that need the completed document.
// Failures here are logged and never fail the run.
func finishOutputs(cfg RunConfig, summary *Summary, collector *sectionCollector, log Logger) {
	wantTokens, wantCopy := viper.GetBool("tokens"), viper.GetBool("copy")
	var document string
	if wantTokens || wantCopy {
		data, err := os.ReadFile(summary.Output)
		if err != nil {
			log.Warn("Skipping token count and clipboard, cannot re-read %s: %v", summary.Output, err)
			wantTokens, wantCopy = false, false
		}
		document = string(data)
	}

	if wantTokens {
		tokenizer, err := getTokenizer(TokenizerConfig{
			Type:  viper.GetString("tokenizer"),
			Model: viper.GetString("tokenizer_model"),
			File:  viper.GetString("tokenizer_file"),
		}, log)
		if err != nil {
			log.Warn("Token counting disabled: %v", err)
		} else {
			summary.TotalTokens = tokenizer.CountTokens(document)
			tokenizer.Close()
		}
	}

	if pdfPath := viper.GetString("pdf"); pdfPath != "" {
		header := ReportHeader{
			RepoName:    repoNameFromURL(cfg.Source),
			SourceURL:   cfg.Source,
			Branch:      cfg.Branch,
			Destination: filepath.Base(summary.Output),
		}
		if err := generatePDF(header, collector.sections, *summary, pdfPath); err != nil {
			log.Error("Error generating PDF: %v", err)
		} else {
			log.Success("Saved PDF to %s", pdfPath)
		}
	}

	if wantCopy {
		if err := clipboard.WriteAll(document); err != nil {
			log.Warn("Error writing to clipboard: %v", err)
		} else {
			log.Info("Output copied to clipboard.")
		}
	}
}

// loadRunConfig resolves the run configuration from viper
// (defaults < config file < environment < flags).
func loadRunConfig() (RunConfig, error) {
	tablePath := viper.GetString("extensions_file")
	if tablePath == "" {
		tablePath = findExtensionTable()
	}
	table, err := loadExtensionTable(tablePath)
	if err != nil {
		return RunConfig{}, err
	}
	table = table.Merge(
		viper.GetStringSlice("text_ext"),
		viper.GetStringSlice("asset_ext"),
		viper.GetStringSlice("ignore_dir"),
	)
	if viper.GetBool("detect_languages") {
		table = table.DetectLanguages()
	}

	source := viper.GetString("source")
	if source == "" {
		return RunConfig{}, errors.New("no source given")
	}
	return RunConfig{
		Source:           source,
		Branch:           viper.GetString("branch"),
		Output:           viper.GetString("output"),
		Table:            table,
		RespectGitIgnore: viper.GetBool("respect_gitignore"),
		MaxSize:          viper.GetInt64("max_size"),
	}, nil
}

// spinnerAcquirer shows a spinner while the wrapped acquirer runs.
type spinnerAcquirer struct {
	inner Acquirer
}

func (s *spinnerAcquirer) Acquire(ctx context.Context, source, branch string) (string, error) {
	spinner, _ := pterm.DefaultSpinner.WithStyle(pterm.NewStyle(pterm.FgLightBlue)).
		WithRemoveWhenDone(true).
		Start(fmt.Sprintf("Acquiring %s", source))
	root, err := s.inner.Acquire(ctx, source, branch)
	if spinner != nil {
		_ = spinner.Stop()
	}
	return root, err
}

var summaryBox = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("#04B575")).
	Padding(0, 1)

func printSummary(summary Summary) {
	lines := []string{
		fmt.Sprintf("Output file: %s", summary.Output),
		fmt.Sprintf("Code files: %d, Asset files: %d", summary.Textual, summary.Asset),
		fmt.Sprintf("Directories visited: %d", summary.Directories),
		fmt.Sprintf("Content digest: %016x", summary.Digest),
	}
	if summary.TotalTokens > 0 {
		lines = append(lines, fmt.Sprintf("Total tokens: %d", summary.TotalTokens))
	}
	pterm.Success.Println("Done!")
	fmt.Println(summaryBox.Render(strings.Join(lines, "\n")))
}

func init() {
	cobra.OnInitialize(initConfig)

	defaults := DefaultExtensionTable()

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/repodigest/config.toml)")

	// Acquisition
	rootCmd.Flags().StringP("branch", "b", "", "Branch to clone or check out (default: remote HEAD)")
	viper.BindPFlag("branch", rootCmd.Flags().Lookup("branch"))
	rootCmd.Flags().String("workdir", ".", "Directory that holds clones of remote repositories")
	viper.BindPFlag("workdir", rootCmd.Flags().Lookup("workdir"))
	rootCmd.Flags().BoolP("interactive", "I", false, "Pick the branch from the remote's branches")
	viper.BindPFlag("interactive", rootCmd.Flags().Lookup("interactive"))

	// Classification
	rootCmd.Flags().String("extensions-file", "", "YAML extension table (default: extensions.yml in config dir or .)")
	viper.BindPFlag("extensions_file", rootCmd.Flags().Lookup("extensions-file"))
	rootCmd.Flags().StringSlice("text-ext", nil, "Extra textual extensions, optionally with a language tag (e.g. .kt=kotlin)")
	viper.BindPFlag("text_ext", rootCmd.Flags().Lookup("text-ext"))
	rootCmd.Flags().StringSlice("asset-ext", nil, "Extra asset extensions (e.g. .webp)")
	viper.BindPFlag("asset_ext", rootCmd.Flags().Lookup("asset-ext"))
	rootCmd.Flags().StringSlice("ignore-dir", nil, fmt.Sprintf("Extra directory names to skip (always skipped: %s)", strings.Join(defaults.IgnoreDirs, ",")))
	viper.BindPFlag("ignore_dir", rootCmd.Flags().Lookup("ignore-dir"))
	rootCmd.Flags().Bool("detect-languages", false, "Tag untagged textual extensions using chroma's lexer registry")
	viper.BindPFlag("detect_languages", rootCmd.Flags().Lookup("detect-languages"))
	rootCmd.Flags().Bool("respect-gitignore", false, "Skip entries matched by the repository's root .gitignore")
	viper.BindPFlag("respect_gitignore", rootCmd.Flags().Lookup("respect-gitignore"))
	rootCmd.Flags().Int64P("max-size", "s", 0, "Maximum size in bytes of an embedded file (0 for no limit)")
	viper.BindPFlag("max_size", rootCmd.Flags().Lookup("max-size"))

	// Output
	rootCmd.Flags().StringP("output", "o", "", "Output file (default: <repo>_<branch>_summary.md)")
	viper.BindPFlag("output", rootCmd.Flags().Lookup("output"))
	rootCmd.Flags().String("pdf", "", "Also render the summary to this PDF file")
	viper.BindPFlag("pdf", rootCmd.Flags().Lookup("pdf"))
	rootCmd.Flags().BoolP("copy", "c", false, "Copy the summary to the clipboard")
	viper.BindPFlag("copy", rootCmd.Flags().Lookup("copy"))

	// Token Counting
	rootCmd.Flags().Bool("tokens", false, "Count tokens in the finished summary")
	viper.BindPFlag("tokens", rootCmd.Flags().Lookup("tokens"))
	rootCmd.Flags().String("tokenizer", "tiktoken", "Tokenizer to use: tiktoken or huggingface")
	viper.BindPFlag("tokenizer", rootCmd.Flags().Lookup("tokenizer"))
	rootCmd.Flags().String("tokenizer-model", "", "Tokenizer model name")
	viper.BindPFlag("tokenizer_model", rootCmd.Flags().Lookup("tokenizer-model"))
	rootCmd.Flags().String("tokenizer-file", "", "Local tokenizer.json (huggingface only)")
	viper.BindPFlag("tokenizer_file", rootCmd.Flags().Lookup("tokenizer-file"))

	viper.SetDefault("source", ".")
	viper.SetDefault("workdir", ".")
	viper.SetDefault("tokenizer", "tiktoken")
	viper.SetDefault("max_size", 0)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(filepath.Join(home, ".config", "repodigest"))
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
		viper.SetConfigType("toml")
	}

	viper.SetEnvPrefix("REPODIGEST")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv() // read in environment variables that match REPODIGEST_*

	if err := viper.ReadInConfig(); err == nil {
		pterm.Info.Println("Using config file:", viper.ConfigFileUsed())
	} else {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			pterm.Warning.Printfln("Error reading config file: %v", err)
		}
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		pterm.Error.Println(err)
		stop()
		os.Exit(1)
	}
}
