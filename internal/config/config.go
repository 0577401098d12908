// Package config loads server configuration from an optional CUE file
// validated against an embedded schema.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/cubefour/internal/arbiter"
	"github.com/roach88/cubefour/internal/sandbox"
)

//go:embed schema.cue
var schemaCUE string

// Error codes reported in LoadError.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeNotFound    = "E005" // Config file not found
	ErrCodeLoadFailed  = "E004" // CUE syntax error
	ErrCodeBuildFailed = "E006" // Schema validation failed
)

// LoadError represents an error that occurred while loading configuration.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Config is the resolved server configuration.
type Config struct {
	Timeout       time.Duration
	Mode          arbiter.Mode
	Limits        sandbox.Limits
	WorkerCommand []string
	WorkerEnv     []string
	RosterDB      string
	ServeAddr     string
}

// file mirrors the schema for decoding.
type file struct {
	TimeoutSeconds int    `json:"timeout_seconds"`
	Mode           string `json:"mode"`
	Limits         struct {
		MemoryMB   int `json:"memory_mb"`
		CPUSeconds int `json:"cpu_seconds"`
	} `json:"limits"`
	Worker struct {
		Command []string `json:"command"`
		Env     []string `json:"env"`
	} `json:"worker"`
	Roster struct {
		DB string `json:"db"`
	} `json:"roster"`
	Serve struct {
		Addr string `json:"addr"`
	} `json:"serve"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg, err := LoadBytes("default.cue", nil)
	if err != nil {
		// The embedded schema is fixed; failing here is a build defect.
		panic(fmt.Sprintf("config: default configuration invalid: %v", err))
	}
	return cfg
}

// Load reads the CUE file at path. An empty path yields Default().
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("config file not found: %s", path)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("reading config: %v", err)}
	}
	return LoadBytes(path, data)
}

// LoadBytes validates data (CUE source, possibly empty) against the schema
// and fills in defaults. name is used in error positions.
func LoadBytes(name string, data []byte) (*Config, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, &LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("compiling schema: %v", err)}
	}
	def := schema.LookupPath(cue.ParsePath("#Config"))

	user := ctx.CompileBytes(data, cue.Filename(name))
	if err := user.Err(); err != nil {
		return nil, cueLoadError(ErrCodeLoadFailed, err)
	}

	value := def.Unify(user)
	if err := value.Validate(cue.Concrete(true)); err != nil {
		return nil, cueLoadError(ErrCodeBuildFailed, err)
	}

	var raw file
	if err := value.Decode(&raw); err != nil {
		return nil, &LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("decoding config: %v", err)}
	}

	mode, err := arbiter.ParseMode(raw.Mode)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeBuildFailed, Message: err.Error()}
	}

	return &Config{
		Timeout: time.Duration(raw.TimeoutSeconds) * time.Second,
		Mode:    mode,
		Limits: sandbox.Limits{
			MemoryMB:   raw.Limits.MemoryMB,
			CPUSeconds: raw.Limits.CPUSeconds,
		},
		WorkerCommand: nilIfEmpty(raw.Worker.Command),
		WorkerEnv:     nilIfEmpty(raw.Worker.Env),
		RosterDB:      raw.Roster.DB,
		ServeAddr:     raw.Serve.Addr,
	}, nil
}

func cueLoadError(code string, err error) *LoadError {
	le := &LoadError{Code: code, Message: cueerrors.Details(err, nil)}
	if pos := cueerrors.Positions(err); len(pos) > 0 {
		le.Pos = pos[0]
	}
	return le
}

func nilIfEmpty(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	return s
}
