package itembank

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"

	"codeberg.org/snonux/bookletgen/internal/testutil"
)

func floatPtr(f float64) *float64 { return &f }

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []Item
		wantErr error
	}{
		{
			name:    "empty input",
			content: "",
			want:    nil,
		},
		{
			name:    "header only",
			content: "category,difficulty,question\n",
			want:    nil,
		},
		{
			name:    "core columns with row ids",
			content: "category,difficulty,question\nrotation,0.5,Which cube?\nscaling,,Which is larger?\n",
			want: []Item{
				{ID: "0", Category: "rotation", Difficulty: floatPtr(0.5), Question: "Which cube?"},
				{ID: "1", Category: "scaling", Question: "Which is larger?"},
			},
		},
		{
			name:    "explicit id column and pass-through fields",
			content: "id,category,difficulty,question,answer,source\nq7,rotation,1,Pick one,B,\n",
			want: []Item{
				{
					ID: "q7", Category: "rotation", Difficulty: floatPtr(1), Question: "Pick one",
					Extra: []Field{
						{Key: "answer", Value: json.RawMessage(`"B"`)},
						{Key: "source", Value: json.RawMessage(`null`)},
					},
				},
			},
		},
		{
			name:    "numeric pass-through stays a number",
			content: "category,question,year,code\nrotation,Q,2021,007\n",
			want: []Item{
				{
					ID: "0", Category: "rotation", Question: "Q",
					Extra: []Field{
						{Key: "year", Value: json.RawMessage(`2021`)},
						{Key: "code", Value: json.RawMessage(`"007"`)},
					},
				},
			},
		},
		{
			name:    "blank category becomes Unknown",
			content: "category,question\n  ,orphan\n",
			want:    []Item{{ID: "0", Category: UnknownCategory, Question: "orphan"}},
		},
		{
			name:    "non numeric difficulty is missing",
			content: "category,difficulty,question\nrotation,hard,Q\nrotation,NaN,Q2\n",
			want: []Item{
				{ID: "0", Category: "rotation", Question: "Q"},
				{ID: "1", Category: "rotation", Question: "Q2"},
			},
		},
		{
			name:    "byte order mark and header case",
			content: "\ufeffCategory,Question\nrotation,Q\n",
			want:    []Item{{ID: "0", Category: "rotation", Question: "Q"}},
		},
		{
			name:    "short rows tolerated",
			content: "category,question,answer\nrotation\n",
			want: []Item{
				{ID: "0", Category: "rotation", Extra: []Field{{Key: "answer", Value: json.RawMessage(`null`)}}},
			},
		},
		{
			name:    "booklet metadata column",
			content: "category,question,Position\nrotation,Q,3\n",
			wantErr: ErrReservedColumn,
		},
		{
			name:    "is_linking column",
			content: "category,question,is_linking\nrotation,Q,true\n",
			wantErr: ErrReservedColumn,
		},
		{
			name:    "core column twice in different case",
			content: "category,question,Category\nrotation,Q,scaling\n",
			wantErr: ErrDuplicateColumn,
		},
		{
			name:    "pass-through column twice",
			content: "category,question,answer,answer\nrotation,Q,A,B\n",
			wantErr: ErrDuplicateColumn,
		},
		{
			name:    "missing category column",
			content: "question,difficulty\nQ,1\n",
			wantErr: ErrMissingColumn,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(strings.NewReader(tt.content), nil)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Parse() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse() unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoad_ResolvesImages(t *testing.T) {
	tmpDir := testutil.CreateTestDirectory(t)
	gen := &testutil.TestDataGenerator{}
	testutil.CreateTestFile(t, filepath.Join(tmpDir, "images", "cube.png"), gen.GeneratePNGData())

	path := testutil.CreateItemBank(t, tmpDir,
		[]string{"category", "difficulty", "question", "image"},
		[][]string{
			{"rotation", "0.1", "Q1", "dataset/images/cube.png"},
			{"rotation", "0.2", "Q2", "dataset/images/missing.png"},
			{"rotation", "0.3", "Q3", ""},
		})

	resolver := NewResolver(tmpDir, "dataset/", zerolog.Nop())
	items, err := Load(path, resolver)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("Expected 3 items, got %d", len(items))
	}

	if items[0].Image == nil || !strings.HasPrefix(*items[0].Image, "data:image/png;base64,") {
		t.Errorf("Expected PNG data URI for first item, got %v", items[0].Image)
	}
	if items[1].Image != nil {
		t.Errorf("Expected missing image to resolve to nil, got %q", *items[1].Image)
	}
	if items[2].Image != nil {
		t.Errorf("Expected empty reference to resolve to nil, got %q", *items[2].Image)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.csv"), nil)
	if err == nil {
		t.Error("Expected error for missing item bank")
	}
}
