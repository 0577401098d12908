package sandbox

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cleanModule = `package main

import "math/rand"

func GetMove(board [][][]int) (int, int) {
	return rand.Intn(4), rand.Intn(4)
}
`

// TestGate_AcceptsCleanModule tests that ordinary stdlib use passes.
func TestGate_AcceptsCleanModule(t *testing.T) {
	file, err := DefaultGate().Parse("clean.go", []byte(cleanModule))
	require.NoError(t, err)
	assert.Equal(t, "main", file.Name.Name)
}

// TestGate_RejectsDeniedImports tests every import category on the denylist.
func TestGate_RejectsDeniedImports(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{"filesystem", "os"},
		{"ioutil", "io/ioutil"},
		{"process", "os/exec"},
		{"syscall", "syscall"},
		{"network", "net"},
		{"http", "net/http"},
		{"unsafe", "unsafe"},
		{"cgo", "C"},
		{"concurrency", "sync"},
		{"atomic", "sync/atomic"},
		{"reflection", "reflect"},
		{"interpreter", "github.com/traefik/yaegi/interp"},
		{"runtime", "runtime/debug"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := "package main\n\nimport _ \"" + tt.path + "\"\n\nfunc GetMove(b [][][]int) (int, int) { return 0, 0 }\n"
			_, err := DefaultGate().Parse("m.go", []byte(src))
			require.Error(t, err)

			var gerr *GateError
			require.ErrorAs(t, err, &gerr)
			require.Len(t, gerr.Violations, 1)
			assert.Equal(t, ViolationImport, gerr.Violations[0].Kind)
			assert.Equal(t, tt.path, gerr.Violations[0].Name)
			assert.Equal(t, 3, gerr.Violations[0].Pos.Line)
		})
	}
}

// TestGate_PrefixDoesNotOvermatch tests that "os" does not deny "osutil"-like paths.
func TestGate_PrefixDoesNotOvermatch(t *testing.T) {
	g := DefaultGate()
	assert.True(t, g.importDenied("os"))
	assert.True(t, g.importDenied("os/signal"))
	assert.False(t, g.importDenied("strings"))
	assert.False(t, g.importDenied("netip"))
	assert.False(t, g.importDenied("math/rand"))
}

// TestGate_RejectsGoStatement tests that spawning goroutines is refused.
func TestGate_RejectsGoStatement(t *testing.T) {
	src := `package main

func GetMove(b [][][]int) (int, int) {
	go func() {}()
	return 0, 0
}
`
	_, err := DefaultGate().Parse("m.go", []byte(src))
	var gerr *GateError
	require.ErrorAs(t, err, &gerr)
	require.Len(t, gerr.Violations, 1)
	assert.Equal(t, ViolationGo, gerr.Violations[0].Kind)
	assert.Equal(t, 4, gerr.Violations[0].Pos.Line)
}

// TestGate_RejectsDeniedCalls tests call-name matching for plain and selector calls.
func TestGate_RejectsDeniedCalls(t *testing.T) {
	src := `package main

type fs struct{}

func (fs) Open() {}

func Getenv() string { return "" }

func GetMove(b [][][]int) (int, int) {
	var f fs
	f.Open()
	_ = Getenv()
	return 0, 0
}
`
	_, err := DefaultGate().Parse("m.go", []byte(src))
	var gerr *GateError
	require.ErrorAs(t, err, &gerr)
	require.Len(t, gerr.Violations, 2)
	assert.Equal(t, ViolationCall, gerr.Violations[0].Kind)
	assert.Equal(t, "Open", gerr.Violations[0].Name)
	assert.Equal(t, "Getenv", gerr.Violations[1].Name)
	assert.Contains(t, gerr.Error(), "and 1 more")
}

// TestGate_SyntaxError tests that unparsable source is rejected.
func TestGate_SyntaxError(t *testing.T) {
	_, err := DefaultGate().Parse("m.go", []byte("package main\nfunc {"))
	var gerr *GateError
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, ViolationSyntax, gerr.Violations[0].Kind)
}

// TestNewGate_CustomLists tests a gate with explicit denylists.
func TestNewGate_CustomLists(t *testing.T) {
	g := NewGate([]string{"math"}, []string{"Intn"})
	_, err := g.Parse("clean.go", []byte(cleanModule))
	var gerr *GateError
	require.ErrorAs(t, err, &gerr)
	require.Len(t, gerr.Violations, 3)
	assert.Equal(t, ViolationImport, gerr.Violations[0].Kind)
	assert.Equal(t, "math/rand", gerr.Violations[0].Name)
	assert.Equal(t, ViolationCall, gerr.Violations[1].Kind)

	permissive := NewGate(nil, nil)
	_, err = permissive.Parse("os.go", []byte("package main\nimport \"os\"\nvar _ = os.Args\n"))
	assert.NoError(t, err)
}
