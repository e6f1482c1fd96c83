package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// resetViper isolates a test from the global viper state
func resetViper(t *testing.T) {
	t.Helper()

	originalConfig := viper.New()
	*originalConfig = *viper.GetViper()
	t.Cleanup(func() {
		*viper.GetViper() = *originalConfig
	})
	viper.Reset()
}

func TestCreateRootCommand(t *testing.T) {
	resetViper(t)

	flags := NewFlags()
	cmd := CreateRootCommand(flags, Handlers{})

	if cmd.Use != "bookletgen" {
		t.Errorf("Expected Use to be 'bookletgen', got %s", cmd.Use)
	}
	if !strings.Contains(cmd.Short, "booklet generator") {
		t.Errorf("Unexpected Short description: %s", cmd.Short)
	}

	for _, name := range []string{"config", "output", "log-level", "log-format"} {
		if cmd.PersistentFlags().Lookup(name) == nil {
			t.Errorf("Expected persistent flag %s to exist", name)
		}
	}

	// Test that subcommands and their flags are set up
	flagTests := map[string][]string{
		"generate":  {"input", "image-root", "image-prefix", "items-per-booklet", "overlap", "seed", "total-items", "categories", "archive"},
		"translate": {"provider", "model", "base-url", "language", "field", "delay", "retries", "dry-run"},
		"assign":    {"booklets", "count", "db", "report"},
		"responses": {"db"},
		"models":    {"provider", "base-url"},
	}

	for sub, names := range flagTests {
		t.Run(sub, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{sub})
			if err != nil || subCmd.Name() != sub {
				t.Fatalf("subcommand %s not found: %v", sub, err)
			}
			for _, name := range names {
				var flag *pflag.Flag = subCmd.Flags().Lookup(name)
				if flag == nil {
					t.Errorf("Expected flag %s to exist", name)
				}
			}
		})
	}

	if subs := cmd.Commands(); len(subs) != 5 {
		t.Errorf("Expected 5 subcommands, got %d", len(subs))
	}
}

func TestFlagDefaults(t *testing.T) {
	resetViper(t)

	cmd := CreateRootCommand(NewFlags(), Handlers{})
	gen, _, _ := cmd.Find([]string{"generate"})

	tests := map[string]string{
		"items-per-booklet": "30",
		"overlap":           "3",
		"seed":              "42",
		"input":             "items.csv",
	}
	for name, want := range tests {
		if got := gen.Flags().Lookup(name).DefValue; got != want {
			t.Errorf("default of --%s = %s, want %s", name, got, want)
		}
	}

	if got := cmd.PersistentFlags().Lookup("output").DefValue; got != "public/booklets" {
		t.Errorf("default of --output = %s, want public/booklets", got)
	}
}

func TestRunDispatch(t *testing.T) {
	resetViper(t)

	flags := NewFlags()
	var got *Flags
	var ran string
	handler := func(name string) RunFunc {
		return func(ctx context.Context, f *Flags) error {
			ran = name
			got = f
			return nil
		}
	}

	cmd := CreateRootCommand(flags, Handlers{
		Generate:  handler("generate"),
		Translate: handler("translate"),
		Assign:    handler("assign"),
		Models:    handler("models"),
	})
	cmd.SetArgs([]string{"generate", "-k", "12", "--overlap", "2", "--seed", "7", "-o", "out"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if ran != "generate" {
		t.Fatalf("ran %q, want generate", ran)
	}
	if got.Generate.ItemsPerBooklet != 12 || got.Generate.Overlap != 2 || got.Generate.Seed != 7 {
		t.Errorf("unexpected generate flags: %+v", got.Generate)
	}
	if got.OutputDir != "out" {
		t.Errorf("OutputDir = %s, want out", got.OutputDir)
	}
}

func TestResponsesCommand(t *testing.T) {
	resetViper(t)

	var got *Flags
	cmd := CreateRootCommand(NewFlags(), Handlers{
		Responses: func(ctx context.Context, f *Flags) error {
			got = f
			return nil
		},
	})
	cmd.SetArgs([]string{"responses", "--db", "answers.db", "a.json", "b.json"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if got == nil {
		t.Fatal("responses handler did not run")
	}
	if diff := cmp.Diff([]string{"a.json", "b.json"}, got.Responses.Files); diff != "" {
		t.Errorf("Files mismatch (-want +got):\n%s", diff)
	}
	if got.Responses.Database != "answers.db" {
		t.Errorf("Database = %s, want answers.db", got.Responses.Database)
	}

	resetViper(t)
	cmd = CreateRootCommand(NewFlags(), Handlers{})
	cmd.SetArgs([]string{"responses"})
	if err := cmd.Execute(); err == nil {
		t.Error("Expected an error without input files")
	}
}

func TestRunValidationFails(t *testing.T) {
	resetViper(t)

	called := false
	cmd := CreateRootCommand(NewFlags(), Handlers{
		Generate: func(ctx context.Context, f *Flags) error {
			called = true
			return nil
		},
	})
	cmd.SetArgs([]string{"generate", "-k", "0"})

	err := cmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "--items-per-booklet") {
		t.Errorf("Expected validation error for --items-per-booklet, got %v", err)
	}
	if called {
		t.Error("handler ran despite invalid flags")
	}
}

func TestInitConfig(t *testing.T) {
	tests := []struct {
		name      string
		setupFunc func(t *testing.T) string
		check     func(t *testing.T)
	}{
		{
			name: "with config file",
			setupFunc: func(t *testing.T) string {
				cfgPath := filepath.Join(t.TempDir(), "test-config.yaml")
				content := `generate:
  items_per_booklet: 25
  seed: 9
translate:
  provider: gemini
  delay: 250ms
output:
  directory: /test/output`
				if err := os.WriteFile(cfgPath, []byte(content), 0644); err != nil {
					t.Fatalf("Failed to create test config: %v", err)
				}
				return cfgPath
			},
			check: func(t *testing.T) {
				flags := NewFlags()
				CreateRootCommand(flags, Handlers{})
				LoadConfig(flags)

				if flags.Generate.ItemsPerBooklet != 25 || flags.Generate.Seed != 9 {
					t.Errorf("config values not applied: %+v", flags.Generate)
				}
				// not in the file, flag default wins
				if flags.Generate.Overlap != 3 {
					t.Errorf("Overlap = %d, want 3", flags.Generate.Overlap)
				}
				if flags.Translate.Provider != "gemini" || flags.Translate.Delay != 250*time.Millisecond {
					t.Errorf("translate config not applied: %+v", flags.Translate)
				}
				if flags.OutputDir != "/test/output" {
					t.Errorf("OutputDir = %s, want /test/output", flags.OutputDir)
				}
			},
		},
		{
			name: "without config file",
			setupFunc: func(t *testing.T) string {
				return ""
			},
			check: func(t *testing.T) {
				flags := NewFlags()
				CreateRootCommand(flags, Handlers{})
				LoadConfig(flags)

				if flags.Generate.ItemsPerBooklet != 30 {
					t.Errorf("ItemsPerBooklet = %d, want 30", flags.Generate.ItemsPerBooklet)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetViper(t)
			t.Chdir(t.TempDir())
			t.Setenv("HOME", t.TempDir())

			InitConfig(tt.setupFunc(t))
			tt.check(t)

			// Test environment variable prefix
			t.Setenv("BOOKLETGEN_TEST_VAR", "test-value")
			if viper.GetString("test_var") != "test-value" {
				t.Error("Environment variable not properly loaded")
			}
		})
	}
}

func TestInitConfig_EnvOverridesNestedKeys(t *testing.T) {
	resetViper(t)
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("BOOKLETGEN_GENERATE_OVERLAP", "5")

	InitConfig("")

	flags := NewFlags()
	CreateRootCommand(flags, Handlers{})
	LoadConfig(flags)

	if flags.Generate.Overlap != 5 {
		t.Errorf("Overlap = %d, want 5", flags.Generate.Overlap)
	}
}

func TestInitConfig_DotEnv(t *testing.T) {
	resetViper(t)
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", t.TempDir())
	t.Setenv("DEEPSEEK_API_KEY", "")
	os.Unsetenv("DEEPSEEK_API_KEY")

	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("DEEPSEEK_API_KEY=from-dotenv\n"), 0644); err != nil {
		t.Fatal(err)
	}

	InitConfig("")

	if got := GetAPIKey("deepseek"); got != "from-dotenv" {
		t.Errorf("GetAPIKey(deepseek) = %q, want from-dotenv", got)
	}
}

func TestGetAPIKey(t *testing.T) {
	tests := []struct {
		name      string
		provider  string
		envVar    string
		envKey    string
		configKey string
		expected  string
	}{
		{
			name:      "from environment",
			provider:  "deepseek",
			envVar:    "DEEPSEEK_API_KEY",
			envKey:    "env-test-key",
			configKey: "config-test-key",
			expected:  "env-test-key",
		},
		{
			name:      "from config when no env",
			provider:  "openai",
			envVar:    "OPENAI_API_KEY",
			configKey: "config-test-key",
			expected:  "config-test-key",
		},
		{
			name:     "empty when neither set",
			provider: "gemini",
			envVar:   "GEMINI_API_KEY",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetViper(t)

			// t.Setenv restores the variable, Unsetenv covers the empty case
			t.Setenv(tt.envVar, tt.envKey)
			if tt.envKey == "" {
				os.Unsetenv(tt.envVar)
			}

			if tt.configKey != "" {
				viper.Set("api_keys."+tt.provider, tt.configKey)
			}

			if got := GetAPIKey(tt.provider); got != tt.expected {
				t.Errorf("GetAPIKey() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{
		"--overlap": "--overlap must be 0 or greater",
		"--input":   "--input is a required field",
	}}
	want := "invalid configuration: --input is a required field; --overlap must be 0 or greater"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
