package cli

import (
	"time"

	"codeberg.org/snonux/bookletgen/internal/booklet"
	"codeberg.org/snonux/bookletgen/internal/translation"
)

// Flags holds all command-line flag values
type Flags struct {
	// General flags
	CfgFile   string
	OutputDir string
	LogLevel  string
	LogFormat string

	Generate  GenerateFlags
	Translate TranslateFlags
	Assign    AssignFlags
	Responses ResponsesFlags
	Models    ModelsFlags
}

// GenerateFlags configures booklet generation
type GenerateFlags struct {
	InputCSV        string `flag:"input" validate:"required"`
	ImageRoot       string
	ImagePrefix     string
	ItemsPerBooklet int   `flag:"items-per-booklet" validate:"gt=0"`
	Overlap         int   `flag:"overlap" validate:"gte=0"`
	Seed            int64
	TotalItems      int `flag:"total-items" validate:"gte=0"` // expected, 0 skips the check
	Categories      int `flag:"categories" validate:"gte=0"`  // expected, 0 skips the check
	Archive         bool
}

// TranslateFlags configures the translation run
type TranslateFlags struct {
	Provider string `flag:"provider" validate:"oneof=deepseek openai gemini"`
	Model    string
	BaseURL  string `flag:"base-url" validate:"omitempty,url"`
	Language string `flag:"language" validate:"required"`
	Field    string `flag:"field" validate:"required"`
	Delay    time.Duration `flag:"delay" validate:"gte=0"`
	Retries  int           `flag:"retries" validate:"gte=0"`
	DryRun   bool
}

// AssignFlags configures booklet assignment
type AssignFlags struct {
	Booklets int `flag:"booklets" validate:"gte=0"` // 0 reads the count from stats.json
	Count    int `flag:"count" validate:"gt=0"`
	Database string
	Report   bool
}

// ResponsesFlags configures the response import
type ResponsesFlags struct {
	Files    []string `validate:"min=1,dive,required"` // positional arguments
	Database string
}

// ModelsFlags configures the model listing
type ModelsFlags struct {
	Provider string `flag:"provider" validate:"oneof=deepseek openai"`
	BaseURL  string `flag:"base-url" validate:"omitempty,url"`
}

// NewFlags creates a new Flags instance with default values
func NewFlags() *Flags {
	params := booklet.DefaultParams()
	opts := translation.DefaultOptions()

	return &Flags{
		OutputDir: "public/booklets",
		LogLevel:  "info",
		LogFormat: "pretty",
		Generate: GenerateFlags{
			InputCSV:        "items.csv",
			ItemsPerBooklet: params.ItemsPerBooklet,
			Overlap:         params.Overlap,
			Seed:            params.Seed,
		},
		Translate: TranslateFlags{
			Provider: translation.ProviderDeepSeek,
			Language: opts.Language,
			Field:    translation.DefaultField,
			Delay:    opts.Delay,
			Retries:  opts.Retries,
		},
		Assign: AssignFlags{
			Count: 1,
		},
		Models: ModelsFlags{
			Provider: translation.ProviderOpenAI,
		},
	}
}
