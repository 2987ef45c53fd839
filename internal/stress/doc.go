// Package stress runs the CPU load: a Harness launches one Worker per
// logical processor, lets them execute random tasks for a fixed duration,
// stops them cooperatively and aggregates their operation counts.
//
// The only state shared between workers is the RunState: an atomic running
// flag polled at the top of every loop iteration and counters each worker
// adds to exactly once, when it exits.
package stress
