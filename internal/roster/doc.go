// Package roster stores the participants known to the server: a display
// name and the locator of their module.
//
// The roster is an SQLite database (WAL mode, single writer). Registration
// is an upsert: a submission whose canonical path is already known renames
// that participant; otherwise a submission whose name is already known
// repoints it; otherwise a new participant is created with a "usr_" id.
package roster
