// Package tasks implements the compute-bound micro-tasks executed by the
// stress workers, and the dispatch table mapping each task kind to its
// function.
//
// Every task is a pure function of its size parameter. Results are
// throwaway values that exist only to consume CPU time and memory
// bandwidth; callers discard them.
package tasks
