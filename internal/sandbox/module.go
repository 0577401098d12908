package sandbox

import (
	"errors"
	"fmt"
	"go/ast"
	"os"
	"path/filepath"
	"strings"
)

// ErrModuleNotFound is returned when a locator names nothing loadable.
var ErrModuleNotFound = errors.New("module not found")

// ResolveModule turns a locator into the path of the source file to load.
// A locator is either a .go file or a directory containing main.go.
func ResolveModule(locator string) (string, error) {
	loc := strings.TrimSpace(locator)
	if loc == "" {
		return "", fmt.Errorf("%w: empty locator", ErrModuleNotFound)
	}
	loc = filepath.Clean(filepath.FromSlash(strings.ReplaceAll(loc, `\`, "/")))

	info, err := os.Stat(loc)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrModuleNotFound, loc)
	}
	if info.IsDir() {
		loc = filepath.Join(loc, "main.go")
		info, err = os.Stat(loc)
		if err != nil {
			return "", fmt.Errorf("%w: %s", ErrModuleNotFound, loc)
		}
	}
	if !info.Mode().IsRegular() || filepath.Ext(loc) != ".go" {
		return "", fmt.Errorf("%w: %s is not a Go source file", ErrModuleNotFound, loc)
	}
	return loc, nil
}

// EntryKind says how a module exposes its move function.
type EntryKind int

const (
	EntryNone EntryKind = iota
	EntryFunc
	EntryMethod
)

func (k EntryKind) String() string {
	switch k {
	case EntryFunc:
		return "GetMove"
	case EntryMethod:
		return "MyAI.GetMove"
	default:
		return "none"
	}
}

// Entry identifies the resolved entry point of a parsed module.
type Entry struct {
	Package string
	Kind    EntryKind
}

// Expr is the interpreter expression that evaluates to the move function.
// Package main shares the interpreter's top-level scope, so its names are
// unqualified.
func (e Entry) Expr() string {
	prefix := e.Package + "."
	if e.Package == "main" {
		prefix = ""
	}
	switch e.Kind {
	case EntryFunc:
		return prefix + "GetMove"
	case EntryMethod:
		return "(&" + prefix + "MyAI{}).GetMove"
	default:
		return ""
	}
}

// FindEntry looks for a top-level GetMove function, then for a GetMove
// method on MyAI. Signatures are checked after loading.
func FindEntry(file *ast.File) (Entry, bool) {
	entry := Entry{Package: file.Name.Name}
	method := false
	for _, decl := range file.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if !ok || fn.Name.Name != "GetMove" {
			continue
		}
		if fn.Recv == nil {
			entry.Kind = EntryFunc
			return entry, true
		}
		if receiverName(fn.Recv) == "MyAI" {
			method = true
		}
	}
	if method {
		entry.Kind = EntryMethod
		return entry, true
	}
	return entry, false
}

func receiverName(recv *ast.FieldList) string {
	if recv == nil || len(recv.List) != 1 {
		return ""
	}
	t := recv.List[0].Type
	if star, ok := t.(*ast.StarExpr); ok {
		t = star.X
	}
	if id, ok := t.(*ast.Ident); ok {
		return id.Name
	}
	return ""
}

// Report is the outcome of a static check without execution.
type Report struct {
	Module     string      `json:"module"`
	Package    string      `json:"package,omitempty"`
	Entry      string      `json:"entry,omitempty"`
	Violations []Violation `json:"-"`
	Problems   []string    `json:"problems,omitempty"`
}

// OK reports whether the module would pass the gate and has an entry point.
func (r *Report) OK() bool {
	return len(r.Problems) == 0
}

// Check resolves, gates and inspects a module without running any of it.
// The returned error is non-nil only when the module cannot be read.
func Check(locator string, gate *Gate) (*Report, error) {
	if gate == nil {
		gate = DefaultGate()
	}
	path, err := ResolveModule(locator)
	if err != nil {
		return nil, err
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read module: %w", err)
	}

	report := &Report{Module: path}
	file, err := gate.Parse(path, src)
	if err != nil {
		var gerr *GateError
		if errors.As(err, &gerr) {
			report.Violations = gerr.Violations
			for _, v := range gerr.Violations {
				report.Problems = append(report.Problems, v.String())
			}
			return report, nil
		}
		return nil, err
	}

	report.Package = file.Name.Name
	entry, ok := FindEntry(file)
	if !ok {
		report.Problems = append(report.Problems, "no GetMove function or MyAI.GetMove method")
		return report, nil
	}
	report.Entry = entry.Kind.String()
	return report, nil
}
