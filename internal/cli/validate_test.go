package cli

import (
	"errors"
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name       string
		modify     func(f *Flags)
		section    func(f *Flags) any
		wantFields []string
	}{
		{
			name:    "valid generate",
			modify:  func(f *Flags) {},
			section: func(f *Flags) any { return f.Generate },
		},
		{
			name: "bad generate",
			modify: func(f *Flags) {
				f.Generate.ItemsPerBooklet = 0
				f.Generate.Overlap = -1
				f.Generate.InputCSV = ""
			},
			section:    func(f *Flags) any { return f.Generate },
			wantFields: []string{"--items-per-booklet", "--overlap", "--input"},
		},
		{
			name:       "unknown provider",
			modify:     func(f *Flags) { f.Translate.Provider = "babelfish" },
			section:    func(f *Flags) any { return f.Translate },
			wantFields: []string{"--provider"},
		},
		{
			name:       "bad base url",
			modify:     func(f *Flags) { f.Translate.BaseURL = "not a url" },
			section:    func(f *Flags) any { return &f.Translate },
			wantFields: []string{"--base-url"},
		},
		{
			name:       "missing output",
			modify:     func(f *Flags) { f.OutputDir = "" },
			section:    func(f *Flags) any { return f.Assign },
			wantFields: []string{"--output"},
		},
		{
			name:       "bad log format",
			modify:     func(f *Flags) { f.LogFormat = "xml" },
			section:    func(f *Flags) any { return nil },
			wantFields: []string{"--log-format"},
		},
		{
			name: "generate section ignored by translate",
			modify: func(f *Flags) {
				f.Generate.ItemsPerBooklet = 0
			},
			section: func(f *Flags) any { return f.Translate },
		},
		{
			name:       "gemini cannot list models",
			modify:     func(f *Flags) { f.Models.Provider = "gemini" },
			section:    func(f *Flags) any { return f.Models },
			wantFields: []string{"--provider"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flags := NewFlags()
			tt.modify(flags)

			err := flags.Validate(tt.section(flags))
			if len(tt.wantFields) == 0 {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if len(ve.Fields) != len(tt.wantFields) {
				t.Errorf("got fields %v, want %v", ve.Fields, tt.wantFields)
			}
			for _, name := range tt.wantFields {
				msg, ok := ve.Fields[name]
				if !ok {
					t.Errorf("missing error for %s in %v", name, ve.Fields)
					continue
				}
				if !strings.Contains(msg, name) {
					t.Errorf("message %q does not name %s", msg, name)
				}
				if !strings.Contains(err.Error(), msg) {
					t.Errorf("Error() %q does not contain %q", err.Error(), msg)
				}
			}
		})
	}
}
