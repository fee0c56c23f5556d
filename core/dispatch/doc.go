// Package dispatch implements the tick-driven dispatch loop. Each tick it
// advances the simulation clock, ingests and expires orders, prunes the
// pending pool through the feasibility filter, asks the route optimizer
// for assignments over the available fleet and commits them, emitting an
// append-only event trail and a read-only snapshot for observers.
package dispatch
