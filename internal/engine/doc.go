// Package engine holds the threshold evaluation and auto-control rules.
//
// Everything here is pure: no I/O, no shared state. The ingestion pipeline,
// the dashboard status view and the simulator all call the same functions,
// so classification can never drift between them.
package engine
