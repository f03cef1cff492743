package driver

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"paw/interpreter-go/pkg/ast"
	"paw/interpreter-go/pkg/diag"
	"paw/interpreter-go/pkg/interpreter"
)

var _ interpreter.ModuleLoader = (*Loader)(nil)

const sayProgram = `{
	"type": "Program",
	"body": [{"type": "Say", "value": {"type": "LiteralString", "value": "woof"}}]
}`

func TestLoaderResolvesFromImportingDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "pets", "utils.paw"), sayProgram)

	l := NewLoader(nil, zerolog.Nop())
	stmts, path, err := l.LoadModule([]string{"pets", "utils"}, dir)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if path != filepath.Join(dir, "pets", "utils.paw") {
		t.Fatalf("unexpected resolved path %s", path)
	}
	if len(stmts) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(stmts))
	}
	if _, ok := stmts[0].(*ast.SayStatement); !ok {
		t.Fatalf("expected Say, got %T", stmts[0])
	}
}

func TestLoaderSearchPathsFromManifest(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ManifestFileName), "name: kennel\nsearch_paths:\n  - lib\n")
	writeFile(t, filepath.Join(root, "lib", "shared.paw"), sayProgram)

	m, err := LoadManifest(filepath.Join(root, ManifestFileName))
	if err != nil {
		t.Fatalf("manifest load failed: %v", err)
	}
	l := NewLoader(m, zerolog.Nop())

	// The importing directory has no such file; the manifest search path
	// must supply it.
	elsewhere := t.TempDir()
	_, path, err := l.LoadModule([]string{"shared"}, elsewhere)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if path != filepath.Join(root, "lib", "shared.paw") {
		t.Fatalf("unexpected resolved path %s", path)
	}
}

func TestLoaderMissingModuleIsInternal(t *testing.T) {
	l := NewLoader(nil, zerolog.Nop())
	_, _, err := l.LoadModule([]string{"ghost"}, t.TempDir())
	if err == nil {
		t.Fatalf("expected a missing module to fail")
	}
	var d *diag.Error
	if !errors.As(err, &d) || d.Kind != diag.KindInternal {
		t.Fatalf("expected an internal error, got %v", err)
	}
}

func TestLoaderCustomExtensionAndParse(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "mod.pup"), "custom-source")

	l := NewLoader(nil, zerolog.Nop())
	l.Extension = "pup"
	l.Parse = func(source []byte, file string) ([]ast.Statement, error) {
		if string(source) != "custom-source" {
			t.Fatalf("unexpected source %q", source)
		}
		return []ast.Statement{ast.Say(ast.Str("parsed"))}, nil
	}
	stmts, _, err := l.LoadModule([]string{"mod"}, dir)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(stmts) != 1 {
		t.Fatalf("expected the custom parser's output, got %d statements", len(stmts))
	}
}
