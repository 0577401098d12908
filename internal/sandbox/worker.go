package sandbox

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"
	"testing/fstest"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
)

// maxBoardPayload bounds the stdin read. A full grid is well under 1 KiB.
const maxBoardPayload = 64 << 10

var (
	gridType = reflect.TypeOf([][][]int(nil))

	errBadSignature = errors.New("GetMove must have signature func([][][]int) (int, int)")
)

// Worker runs one participant module for one move.
type Worker struct {
	// Limits are applied before any module code is touched. Zero fields
	// disable the matching ceiling.
	Limits Limits
	// ApplyLimits installs Limits. Nil skips resource ceilings entirely.
	ApplyLimits func(Limits) error
	// Gate is the static check; nil means DefaultGate.
	Gate *Gate
}

// NewWorker returns a worker that applies limits with ApplyLimits.
func NewWorker(limits Limits) *Worker {
	return &Worker{Limits: limits, ApplyLimits: ApplyLimits, Gate: DefaultGate()}
}

// Run executes the pipeline and returns the process exit code. stdout is the
// primary channel and only ever receives a single JSON object. stderr is the
// side channel for diagnostics and anything the module prints.
func (w *Worker) Run(ctx context.Context, locator string, stdin io.Reader, stdout, stderr io.Writer) int {
	if w.ApplyLimits != nil {
		if err := w.ApplyLimits(w.Limits); err != nil {
			fmt.Fprintf(stderr, "worker: limits not fully applied: %v\n", err)
		}
	}

	if strings.TrimSpace(locator) == "" {
		fmt.Fprintln(stderr, "worker: missing module locator")
		writeFailure(stdout, CategoryUsage)
		return ExitUsage
	}

	grid, err := readGrid(stdin)
	if err != nil {
		fmt.Fprintf(stderr, "worker: %v\n", err)
		writeFailure(stdout, CategoryBadInput)
		return ExitFault
	}

	path, err := ResolveModule(locator)
	if err != nil {
		fmt.Fprintf(stderr, "worker: %v\n", err)
		writeFailure(stdout, CategoryNoEntryPoint)
		return ExitNoEntryPoint
	}
	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(stderr, "worker: read module: %v\n", err)
		writeFailure(stdout, CategoryNoEntryPoint)
		return ExitNoEntryPoint
	}

	gate := w.Gate
	if gate == nil {
		gate = DefaultGate()
	}
	file, err := gate.Parse(path, src)
	if err != nil {
		fmt.Fprintf(stderr, "worker: rejected: %v\n", err)
		writeFailure(stdout, CategoryGateRejected)
		return ExitGateRejected
	}
	entry, ok := FindEntry(file)
	if !ok {
		fmt.Fprintln(stderr, "worker: no GetMove entry point")
		writeFailure(stdout, CategoryNoEntryPoint)
		return ExitNoEntryPoint
	}

	fn, err := load(ctx, string(src), entry, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "worker: load: %v\n", err)
		if errors.Is(err, errBadSignature) {
			writeFailure(stdout, CategoryNoEntryPoint)
			return ExitNoEntryPoint
		}
		writeFailure(stdout, CategoryLoadFailed)
		return ExitFault
	}

	x, y, err := invoke(fn, grid)
	if err != nil {
		fmt.Fprintf(stderr, "worker: %v\n", err)
		writeFailure(stdout, CategoryFault)
		return ExitFault
	}

	if err := writeResult(stdout, Result{X: x, Y: y}); err != nil {
		fmt.Fprintf(stderr, "worker: write result: %v\n", err)
		return ExitFault
	}
	return ExitOK
}

func readGrid(r io.Reader) ([][][]int, error) {
	if r == nil {
		return nil, errors.New("no board payload")
	}
	data, err := io.ReadAll(io.LimitReader(r, maxBoardPayload+1))
	if err != nil {
		return nil, fmt.Errorf("read board: %w", err)
	}
	if len(data) > maxBoardPayload {
		return nil, errors.New("board payload too large")
	}
	var grid [][][]int
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&grid); err != nil {
		return nil, fmt.Errorf("decode board: %w", err)
	}
	if grid == nil {
		return nil, errors.New("board payload is null")
	}
	return grid, nil
}

// allowedSymbols is the stdlib symbol table minus every DeniedImports entry.
// It does not follow a custom gate: the runtime restriction holds even when
// the static check is relaxed.
func allowedSymbols() interp.Exports {
	deny := NewGate(DeniedImports, nil)
	out := make(interp.Exports, len(stdlib.Symbols))
	for key, symbols := range stdlib.Symbols {
		// Keys are "import/path/pkgname".
		path := key
		if i := strings.LastIndex(key, "/"); i > 0 {
			path = key[:i]
		}
		if deny.importDenied(path) {
			continue
		}
		out[key] = symbols
	}
	return out
}

func load(ctx context.Context, src string, entry Entry, side io.Writer) (fn reflect.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("interpreter panic: %v", r)
		}
	}()

	i := interp.New(interp.Options{
		Stdin:                strings.NewReader(""),
		Stdout:               side,
		Stderr:               side,
		Env:                  []string{},
		Args:                 []string{"module"},
		SourcecodeFilesystem: fstest.MapFS{},
	})
	if err := i.Use(allowedSymbols()); err != nil {
		return reflect.Value{}, fmt.Errorf("install symbols: %w", err)
	}
	if _, err := i.EvalWithContext(ctx, src); err != nil {
		return reflect.Value{}, err
	}
	v, err := i.EvalWithContext(ctx, entry.Expr())
	if err != nil {
		return reflect.Value{}, fmt.Errorf("%w: %v", errBadSignature, err)
	}
	if err := checkSignature(v); err != nil {
		return reflect.Value{}, err
	}
	return v, nil
}

func checkSignature(v reflect.Value) error {
	if !v.IsValid() || v.Kind() != reflect.Func || v.IsNil() {
		return errBadSignature
	}
	t := v.Type()
	if t.NumIn() != 1 || t.In(0) != gridType || t.NumOut() != 2 {
		return errBadSignature
	}
	for i := 0; i < 2; i++ {
		switch t.Out(i).Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		default:
			return errBadSignature
		}
	}
	return nil
}

func invoke(fn reflect.Value, grid [][][]int) (x, y int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("GetMove panicked: %v", r)
		}
	}()
	out := fn.Call([]reflect.Value{reflect.ValueOf(grid)})
	return int(out[0].Int()), int(out[1].Int()), nil
}
