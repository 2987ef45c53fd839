package tasks

import "math"

// IntensiveMath accumulates a running sum of mixed transcendental
// evaluations over iterations steps. The result is a pure function of
// iterations.
func IntensiveMath(iterations int) float64 {
	var result float64
	for i := 1; i <= iterations; i++ {
		x := float64(i)
		result += math.Sin(x)*math.Cos(x) + math.Tan(x*0.01)
		result += math.Sqrt(x*x + 1)
		result += math.Log(x + 1)
		result += math.Pow(float64(i%100), 2.5)
		result += math.Exp(x * 0.001)
	}
	return result
}
