package sandbox

import (
	"encoding/json"
	"io"
)

// Exit codes of the worker process.
const (
	ExitOK           = 0 // result payload written
	ExitFault        = 1 // load failure, panic, malformed input
	ExitUsage        = 2 // missing module argument
	ExitGateRejected = 3 // static gate violation
	ExitNoEntryPoint = 4 // module not found or no usable GetMove
	ExitCPULimit     = 5 // CPU ceiling reached (SIGXCPU)
)

// Result is the success payload on the primary channel.
type Result struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// ErrorPayload is the optional failure payload. It carries a category only.
type ErrorPayload struct {
	Error string `json:"error"`
}

// Failure categories written in ErrorPayload.
const (
	CategoryUsage        = "usage"
	CategoryBadInput     = "bad_input"
	CategoryGateRejected = "gate_rejected"
	CategoryNoEntryPoint = "no_entry_point"
	CategoryLoadFailed   = "load_failed"
	CategoryFault        = "fault"
	CategoryCPULimit     = "cpu_limit"
)

func writeResult(w io.Writer, r Result) error {
	return json.NewEncoder(w).Encode(r)
}

func writeFailure(w io.Writer, category string) {
	_ = json.NewEncoder(w).Encode(ErrorPayload{Error: category})
}
