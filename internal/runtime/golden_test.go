package runtime

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"lava-lang/internal/lexer"
	"lava-lang/internal/parser"
)

// goldenCase is one program in testdata/*.yaml with its queued input and
// expected output.
type goldenCase struct {
	Source string   `yaml:"source"`
	Input  []string `yaml:"input"`
	Stdout string   `yaml:"stdout"`
	Error  string   `yaml:"error"`
	Halted bool     `yaml:"halted"`
}

func loadGolden(t *testing.T, path string) goldenCase {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open %s: %v", path, err)
	}
	defer f.Close()

	var gc goldenCase
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&gc); err != nil {
		t.Fatalf("failed to decode %s: %v", path, err)
	}
	return gc
}

// goldenTest runs a fixture and compares its output line by line.
func goldenTest(t *testing.T, path string) {
	t.Helper()
	gc := loadGolden(t, path)

	tokens, lexDiags := lexer.New(gc.Source, filepath.Base(path)).Tokenize()
	if len(lexDiags) > 0 {
		t.Fatalf("lex errors: %v", lexDiags)
	}
	file, _ := parser.New(tokens).ParseFile()

	var buf bytes.Buffer
	halted, err := NewInterpreter(&buf, WithInput(NewQueueInput(gc.Input...))).Run(file)
	switch {
	case gc.Error == "" && err != nil:
		t.Fatalf("runtime error: %v", err)
	case gc.Error != "" && err == nil:
		t.Fatalf("expected error containing %q, got nil", gc.Error)
	case gc.Error != "" && !strings.Contains(err.Error(), gc.Error):
		t.Errorf("expected error containing %q, got: %v", gc.Error, err)
	}
	if halted != gc.Halted {
		t.Errorf("expected halted=%v, got %v", gc.Halted, halted)
	}

	expectedStr := strings.TrimRight(gc.Stdout, "\n")
	gotStr := strings.TrimRight(buf.String(), "\n")
	if gotStr == expectedStr {
		return
	}

	expectedLines := strings.Split(expectedStr, "\n")
	gotLines := strings.Split(gotStr, "\n")
	t.Errorf("output mismatch for %s", path)
	maxLines := max(len(expectedLines), len(gotLines))
	for i := 0; i < maxLines; i++ {
		exp, g := "<missing>", "<missing>"
		if i < len(expectedLines) {
			exp = expectedLines[i]
		}
		if i < len(gotLines) {
			g = gotLines[i]
		}
		prefix := "  "
		if exp != g {
			prefix = "! "
		}
		t.Logf("%sline %d: expected=%q got=%q", prefix, i+1, exp, g)
	}
}

func TestGolden(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("..", "..", "testdata", "*.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) == 0 {
		t.Fatal("no golden fixtures found")
	}
	for _, path := range paths {
		name := strings.TrimSuffix(filepath.Base(path), ".yaml")
		t.Run(name, func(t *testing.T) {
			goldenTest(t, path)
		})
	}
}
