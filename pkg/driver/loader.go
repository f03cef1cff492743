package driver

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"paw/interpreter-go/pkg/ast"
	"paw/interpreter-go/pkg/diag"
)

// ParseFunc turns a script's source bytes into a statement list. The default
// reads the serialized syntax-tree format produced by the companion front
// end.
type ParseFunc func(source []byte, file string) ([]ast.Statement, error)

// Loader resolves dotted import paths to script files on disk. Resolution
// tries the importing script's directory first, then each search path in
// order.
type Loader struct {
	SearchPaths []string
	Extension   string
	Parse       ParseFunc
	Log         zerolog.Logger
}

// NewLoader builds a loader from manifest settings. The manifest may be nil,
// in which case defaults apply and only the importing directory is searched.
func NewLoader(m *Manifest, log zerolog.Logger) *Loader {
	l := &Loader{
		Extension: DefaultScriptExtension,
		Parse: func(source []byte, _ string) ([]ast.Statement, error) {
			return ast.DecodeProgram(source)
		},
		Log: log,
	}
	if m == nil {
		return l
	}
	l.Extension = m.ScriptExtension()
	base := filepath.Dir(m.Path)
	for _, p := range m.SearchPaths {
		if !filepath.IsAbs(p) {
			p = filepath.Join(base, filepath.FromSlash(p))
		}
		l.SearchPaths = append(l.SearchPaths, p)
	}
	return l
}

// LoadModule implements the interpreter's module loading hook.
func (l *Loader) LoadModule(segments []string, fromDir string) ([]ast.Statement, string, error) {
	if len(segments) == 0 {
		return nil, "", diag.Internalf("import with no path segments")
	}
	rel := filepath.Join(segments...) + "." + l.Extension
	dirs := make([]string, 0, len(l.SearchPaths)+1)
	if fromDir != "" {
		dirs = append(dirs, fromDir)
	}
	dirs = append(dirs, l.SearchPaths...)

	dotted := strings.Join(segments, ".")
	for _, dir := range dirs {
		path := filepath.Join(dir, rel)
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, "", diag.Internalf("module %s: read %s: %v", dotted, path, err)
		}
		stmts, err := l.Parse(data, path)
		if err != nil {
			return nil, "", err
		}
		l.Log.Debug().Str("module", dotted).Str("path", path).Msg("loaded module")
		return stmts, path, nil
	}
	return nil, "", diag.Internalf("module %s not found (searched %s)", dotted, strings.Join(dirs, ", "))
}
