package tasks

import (
	"fmt"
	"math/rand/v2"
)

// Kind identifies one of the task library entries.
type Kind int

const (
	KindPrimeSum Kind = iota + 1
	KindMatrixMultiply
	KindMath
	KindFibonacci
	KindSort
)

// NumKinds is the number of task kinds. Valid kinds are 1..NumKinds.
const NumKinds = 5

// Fixed task parameters used by the default registry.
const (
	DefaultPrimeLimit     = 100000
	DefaultMatrixSize     = 100
	DefaultMathIterations = 100000
	DefaultFibonacciN     = 60
	DefaultSortSize       = 1000000
)

var kindNames = [...]string{
	KindPrimeSum:       "prime-sum",
	KindMatrixMultiply: "matrix-multiply",
	KindMath:           "intensive-math",
	KindFibonacci:      "fibonacci",
	KindSort:           "intensive-sort",
}

// String returns the stable name of the kind, used for logs and metric labels.
func (k Kind) String() string {
	if k.Valid() {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Valid reports whether k is one of the five task kinds.
func (k Kind) Valid() bool {
	return k >= KindPrimeSum && k <= KindSort
}

// AllKinds returns every task kind in ascending order.
func AllKinds() []Kind {
	return []Kind{KindPrimeSum, KindMatrixMultiply, KindMath, KindFibonacci, KindSort}
}

// Pick draws a uniformly distributed kind in [1, NumKinds].
func Pick(rng *rand.Rand) Kind {
	return Kind(rng.IntN(NumKinds) + 1)
}
