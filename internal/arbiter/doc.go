// Package arbiter obtains moves from untrusted participant modules.
//
// Each request launches the worker command in a fresh process group, feeds
// it the board once, and classifies what comes back:
//
//	Timeout       wall-clock deadline, or the CPU ceiling
//	AbnormalExit  crash, rejection, unparseable or incomplete payload
//	InvalidMove   non-integer or out-of-range coordinate, full column
//
// Submit applies the move to a game. In permissive mode a failure becomes a
// forced placement in the first open column (y ascending, then x), with a
// Reason describing it. In strict mode the failure is returned and the
// caller decides.
package arbiter
