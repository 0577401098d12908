// Package sandbox is the child side of the move-execution boundary.
//
// A participant module is Go source exposing either
//
//	func GetMove(board [][][]int) (x, y int)
//
// or a type MyAI with a GetMove method of the same signature. The board is
// indexed [z][y][x] with 0 for empty and 1/2 for the players.
//
// The worker runs inside its own process (see `cubefour worker`) and executes
// this pipeline, in order:
//
//  1. Resource ceilings (best-effort rlimits: address space, CPU time, no file growth).
//  2. Read the board payload once from stdin.
//  3. Static gate: parse the source and reject denylisted imports, calls and go statements.
//  4. Load the source into a restricted interpreter and resolve the entry point.
//  5. Invoke the entry point with interpreter output routed to the side channel.
//  6. Emit {"x":..,"y":..} as the only content of stdout and exit 0.
//
// Failures are reported through the exit code (see ExitOK and friends) and an
// optional {"error": "<category>"} payload. Diagnostics go to stderr only.
//
// The static gate is defence in depth. Containment comes from the process
// boundary and the OS limits applied before any untrusted code runs.
package sandbox
