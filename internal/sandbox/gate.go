package sandbox

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"sort"
	"strconv"
	"strings"
)

// DeniedImports are import paths a module may not reference. An entry also
// denies every path below it ("net" denies "net/http").
var DeniedImports = []string{
	// filesystem
	"os", "io/ioutil", "io/fs", "path/filepath", "embed",
	// process spawning and raw system access
	"syscall", "golang.org/x/sys",
	// networking
	"net", "crypto/tls",
	// foreign-function interfaces
	"C", "unsafe", "plugin", "runtime",
	// concurrency primitives
	"sync", "context",
	// dynamic evaluation
	"reflect", "go", "github.com/traefik/yaegi", "text/template", "html/template",
	// debugging hooks
	"debug", "testing",
}

// DeniedCalls are call targets rejected by name, whether called directly or
// as a selector (pkg.Name or value.Name).
var DeniedCalls = []string{
	"Open", "OpenFile", "Create", "ReadFile", "WriteFile", "ReadDir",
	"Command", "CommandContext", "StartProcess", "Exec", "ForkExec",
	"Dial", "DialTimeout", "Listen",
	"Eval", "EvalPath", "EvalWithContext",
	"Syscall", "RawSyscall", "Getenv", "Setenv",
}

// ViolationKind classifies a gate finding.
type ViolationKind string

const (
	ViolationSyntax ViolationKind = "syntax"
	ViolationImport ViolationKind = "import"
	ViolationCall   ViolationKind = "call"
	ViolationGo     ViolationKind = "go"
)

// Violation is one gate finding.
type Violation struct {
	Pos  token.Position
	Kind ViolationKind
	Name string
}

func (v Violation) String() string {
	if v.Pos.IsValid() {
		return fmt.Sprintf("%s: banned %s: %s", v.Pos, v.Kind, v.Name)
	}
	return fmt.Sprintf("banned %s: %s", v.Kind, v.Name)
}

// GateError reports why a module was rejected before execution.
type GateError struct {
	Violations []Violation
}

func (e *GateError) Error() string {
	if len(e.Violations) == 0 {
		return "module rejected"
	}
	if len(e.Violations) == 1 {
		return e.Violations[0].String()
	}
	return fmt.Sprintf("%s (and %d more)", e.Violations[0], len(e.Violations)-1)
}

// Gate is the static syntax-tree check.
type Gate struct {
	imports []string
	calls   map[string]bool
}

// NewGate builds a gate from explicit denylists.
func NewGate(imports, calls []string) *Gate {
	g := &Gate{
		imports: append([]string(nil), imports...),
		calls:   make(map[string]bool, len(calls)),
	}
	for _, c := range calls {
		g.calls[c] = true
	}
	return g
}

// DefaultGate uses DeniedImports and DeniedCalls.
func DefaultGate() *Gate {
	return NewGate(DeniedImports, DeniedCalls)
}

// Parse parses src and checks it. On success the parsed file is returned so
// callers can resolve the entry point without parsing twice.
func (g *Gate) Parse(filename string, src []byte) (*ast.File, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, filename, src, parser.SkipObjectResolution)
	if err != nil {
		return nil, &GateError{Violations: []Violation{{Kind: ViolationSyntax, Name: err.Error()}}}
	}
	if vs := g.inspect(fset, file); len(vs) > 0 {
		return nil, &GateError{Violations: vs}
	}
	return file, nil
}

func (g *Gate) inspect(fset *token.FileSet, file *ast.File) []Violation {
	var vs []Violation

	for _, imp := range file.Imports {
		path, err := strconv.Unquote(imp.Path.Value)
		if err != nil {
			path = imp.Path.Value
		}
		if g.importDenied(path) {
			vs = append(vs, Violation{Pos: fset.Position(imp.Pos()), Kind: ViolationImport, Name: path})
		}
	}

	ast.Inspect(file, func(n ast.Node) bool {
		switch node := n.(type) {
		case *ast.GoStmt:
			vs = append(vs, Violation{Pos: fset.Position(node.Pos()), Kind: ViolationGo, Name: "go statement"})
		case *ast.CallExpr:
			if name := callName(node.Fun); name != "" && g.calls[name] {
				vs = append(vs, Violation{Pos: fset.Position(node.Pos()), Kind: ViolationCall, Name: name})
			}
		}
		return true
	})

	sort.SliceStable(vs, func(i, j int) bool { return vs[i].Pos.Offset < vs[j].Pos.Offset })
	return vs
}

func (g *Gate) importDenied(path string) bool {
	for _, denied := range g.imports {
		if path == denied || strings.HasPrefix(path, denied+"/") {
			return true
		}
	}
	return false
}

// callName returns the called identifier for f() and x.f(), or "" for
// anything else (closures, index expressions, conversions of literals).
func callName(fun ast.Expr) string {
	switch f := fun.(type) {
	case *ast.Ident:
		return f.Name
	case *ast.SelectorExpr:
		return f.Sel.Name
	case *ast.ParenExpr:
		return callName(f.X)
	case *ast.IndexExpr:
		return callName(f.X)
	default:
		return ""
	}
}
