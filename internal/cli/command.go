package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"codeberg.org/snonux/bookletgen/internal"
	"codeberg.org/snonux/bookletgen/internal/translation"
)

// RunFunc runs a subcommand with the resolved flags
type RunFunc func(ctx context.Context, flags *Flags) error

// Handlers are the subcommand implementations
type Handlers struct {
	Generate  RunFunc
	Translate RunFunc
	Assign    RunFunc
	Responses RunFunc
	Models    RunFunc
}

// CreateRootCommand creates and configures the root cobra command
func CreateRootCommand(flags *Flags, h Handlers) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "bookletgen",
		Short: "Matrix-sampling booklet generator",
		Long: `bookletgen prepares test booklets for matrix-sampling surveys.

It splits an item bank into balanced booklets that share linking items,
adds translated questions through a language model API and hands out
booklets to respondents.

Examples:
  bookletgen generate --input items.csv --image-root data/   # Build booklets
  bookletgen translate --provider deepseek                   # Add question_zh
  bookletgen assign                                          # Pick a booklet
  bookletgen assign --report                                 # Assignment counts
  bookletgen responses answers.json                          # Store answers`,
		Version:       internal.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	setupPersistentFlags(rootCmd, flags)

	rootCmd.AddCommand(
		newGenerateCommand(flags, h.Generate),
		newTranslateCommand(flags, h.Translate),
		newAssignCommand(flags, h.Assign),
		newResponsesCommand(flags, h.Responses),
		newModelsCommand(flags, h.Models),
	)

	return rootCmd
}

func setupPersistentFlags(cmd *cobra.Command, flags *Flags) {
	pf := cmd.PersistentFlags()
	pf.StringVar(&flags.CfgFile, "config", "", "config file (default is $HOME/.bookletgen.yaml)")
	pf.StringVarP(&flags.OutputDir, "output", "o", flags.OutputDir, "Booklet directory")
	pf.StringVar(&flags.LogLevel, "log-level", flags.LogLevel, "Log level: debug, info, warn, error")
	pf.StringVar(&flags.LogFormat, "log-format", flags.LogFormat, "Log format: pretty or json")

	viper.BindPFlag("output.directory", pf.Lookup("output"))
	viper.BindPFlag("log.level", pf.Lookup("log-level"))
	viper.BindPFlag("log.format", pf.Lookup("log-format"))
}

func newGenerateCommand(flags *Flags, run RunFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Split the item bank into linked booklets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWith(cmd, flags, &flags.Generate, run)
		},
	}

	g := &flags.Generate
	cmd.Flags().StringVarP(&g.InputCSV, "input", "i", g.InputCSV, "Item bank CSV")
	cmd.Flags().StringVar(&g.ImageRoot, "image-root", "", "Directory image paths are relative to")
	cmd.Flags().StringVar(&g.ImagePrefix, "image-prefix", "", "Prefix stripped from image paths before joining them to --image-root")
	cmd.Flags().IntVarP(&g.ItemsPerBooklet, "items-per-booklet", "k", g.ItemsPerBooklet, "Items per booklet before linking")
	cmd.Flags().IntVar(&g.Overlap, "overlap", g.Overlap, "Linking items copied from the previous booklet")
	cmd.Flags().Int64Var(&g.Seed, "seed", g.Seed, "Random seed")
	cmd.Flags().IntVar(&g.TotalItems, "total-items", 0, "Expected number of items (warns on mismatch)")
	cmd.Flags().IntVar(&g.Categories, "categories", 0, "Expected number of categories (warns on mismatch)")
	cmd.Flags().BoolVar(&g.Archive, "archive", false, "Move existing booklets to <output>/../archive first")

	bindFlagsToViper(cmd, map[string]string{
		"input.csv":                  "input",
		"input.image_root":           "image-root",
		"input.image_prefix":         "image-prefix",
		"generate.items_per_booklet": "items-per-booklet",
		"generate.overlap":           "overlap",
		"generate.seed":              "seed",
		"generate.total_items":       "total-items",
		"generate.categories":        "categories",
		"generate.archive":           "archive",
	})
	return cmd
}

func newTranslateCommand(flags *Flags, run RunFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "translate",
		Short: "Add translated questions to generated booklets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWith(cmd, flags, &flags.Translate, run)
		},
	}

	tr := &flags.Translate
	cmd.Flags().StringVar(&tr.Provider, "provider", tr.Provider, "Translation provider: deepseek, openai or gemini")
	cmd.Flags().StringVar(&tr.Model, "model", "", "Model name (default depends on the provider)")
	cmd.Flags().StringVar(&tr.BaseURL, "base-url", "", "Override the provider API URL")
	cmd.Flags().StringVar(&tr.Language, "language", tr.Language, "Target language")
	cmd.Flags().StringVar(&tr.Field, "field", tr.Field, "Field receiving the translation")
	cmd.Flags().DurationVar(&tr.Delay, "delay", tr.Delay, "Pause before each API call")
	cmd.Flags().IntVar(&tr.Retries, "retries", tr.Retries, "Retries per question")
	cmd.Flags().BoolVar(&tr.DryRun, "dry-run", false, "Only count the questions needing translation")

	bindFlagsToViper(cmd, map[string]string{
		"translate.provider": "provider",
		"translate.model":    "model",
		"translate.base_url": "base-url",
		"translate.language": "language",
		"translate.field":    "field",
		"translate.delay":    "delay",
		"translate.retries":  "retries",
		"translate.dry_run":  "dry-run",
	})
	return cmd
}

func newAssignCommand(flags *Flags, run RunFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assign",
		Short: "Assign a random booklet and count assignments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWith(cmd, flags, &flags.Assign, run)
		},
	}

	a := &flags.Assign
	cmd.Flags().IntVarP(&a.Booklets, "booklets", "n", 0, "Number of booklets (default: read from stats.json)")
	cmd.Flags().IntVarP(&a.Count, "count", "c", a.Count, "Number of assignments to draw")
	cmd.Flags().StringVar(&a.Database, "db", "", "Assignment database (default: <output>/assignments.db)")
	cmd.Flags().BoolVar(&a.Report, "report", false, "Print assignment counts instead of assigning")

	bindFlagsToViper(cmd, map[string]string{
		"assign.booklets": "booklets",
		"assign.count":    "count",
		"assign.database": "db",
		"assign.report":   "report",
	})
	return cmd
}

func newResponsesCommand(flags *Flags, run RunFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "responses FILE...",
		Short: "Store submitted answers in the assignment database",
		Long: `Import respondent submissions into the assignment database.

Each FILE holds one JSON submission or a list of them:

  {"user_id": "u1", "booklet_id": 3, "ts": 1700000000000,
   "responses": {"ITEM-1": "A", "ITEM-7": "C"}}

A later answer to the same question by the same user replaces the
earlier one.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags.Responses.Files = args
			return runWith(cmd, flags, &flags.Responses, run)
		},
	}

	cmd.Flags().StringVar(&flags.Responses.Database, "db", "", "Assignment database (default: <output>/assignments.db)")

	bindFlagsToViper(cmd, map[string]string{
		"responses.database": "db",
	})
	return cmd
}

func newModelsCommand(flags *Flags, run RunFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models",
		Short: "List chat models available for translation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWith(cmd, flags, &flags.Models, run)
		},
	}

	m := &flags.Models
	cmd.Flags().StringVar(&m.Provider, "provider", m.Provider, "Provider: deepseek or openai")
	cmd.Flags().StringVar(&m.BaseURL, "base-url", "", "Override the provider API URL")

	bindFlagsToViper(cmd, map[string]string{
		"models.provider": "provider",
		"models.base_url": "base-url",
	})
	return cmd
}

func bindFlagsToViper(cmd *cobra.Command, keys map[string]string) {
	for key, name := range keys {
		viper.BindPFlag(key, cmd.Flags().Lookup(name))
	}
}

// runWith resolves config values into flags, validates the section used
// by the subcommand and runs it
func runWith(cmd *cobra.Command, flags *Flags, section any, run RunFunc) error {
	LoadConfig(flags)
	if err := flags.Validate(section); err != nil {
		return err
	}
	if run == nil {
		return fmt.Errorf("%s is not available", cmd.Name())
	}
	return run(cmd.Context(), flags)
}

// LoadConfig copies the effective settings (flag, then config file, then
// default) from viper into flags
func LoadConfig(flags *Flags) {
	flags.OutputDir = viper.GetString("output.directory")
	flags.LogLevel = viper.GetString("log.level")
	flags.LogFormat = viper.GetString("log.format")

	g := &flags.Generate
	g.InputCSV = viper.GetString("input.csv")
	g.ImageRoot = viper.GetString("input.image_root")
	g.ImagePrefix = viper.GetString("input.image_prefix")
	g.ItemsPerBooklet = viper.GetInt("generate.items_per_booklet")
	g.Overlap = viper.GetInt("generate.overlap")
	g.Seed = viper.GetInt64("generate.seed")
	g.TotalItems = viper.GetInt("generate.total_items")
	g.Categories = viper.GetInt("generate.categories")
	g.Archive = viper.GetBool("generate.archive")

	tr := &flags.Translate
	tr.Provider = viper.GetString("translate.provider")
	tr.Model = viper.GetString("translate.model")
	tr.BaseURL = viper.GetString("translate.base_url")
	tr.Language = viper.GetString("translate.language")
	tr.Field = viper.GetString("translate.field")
	tr.Delay = viper.GetDuration("translate.delay")
	tr.Retries = viper.GetInt("translate.retries")
	tr.DryRun = viper.GetBool("translate.dry_run")

	a := &flags.Assign
	a.Booklets = viper.GetInt("assign.booklets")
	a.Count = viper.GetInt("assign.count")
	a.Database = viper.GetString("assign.database")
	a.Report = viper.GetBool("assign.report")

	flags.Responses.Database = viper.GetString("responses.database")

	m := &flags.Models
	m.Provider = viper.GetString("models.provider")
	m.BaseURL = viper.GetString("models.base_url")
}

// InitConfig initializes viper configuration
func InitConfig(cfgFile string) {
	// .env is optional
	_ = godotenv.Load()

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting home directory: %v\n", err)
			return
		}

		// Search config in home directory with name ".bookletgen" (without extension)
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".bookletgen")
	}

	// Environment variables
	viper.SetEnvPrefix("BOOKLETGEN")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Read config file
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// GetAPIKey retrieves the provider's API key from environment or config
func GetAPIKey(provider string) string {
	// First check environment variable
	if key := os.Getenv(translation.APIKeyEnv(provider)); key != "" {
		return key
	}

	// Then check config file
	return viper.GetString("api_keys." + provider)
}
