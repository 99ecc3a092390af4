// Package cell provides a single-slot blocking container.
//
// A Cell is either full or empty. Take removes the value from a full cell
// and blocks on an empty one; Put fills an empty cell and blocks on a full
// one. Any take/compute/put sequence against a cell is linearizable: no two
// such sequences interleave. The cell is the only synchronization primitive
// the driver runtime uses.
package cell
