package tasks

// MaxFibonacciN is the largest index whose Fibonacci number fits in an int64.
const MaxFibonacciN = 92

// Fibonacci returns F(n) with an O(n) dynamic-programming sweep over a
// buffer of n+1 entries. n <= 1 returns n. Results for n > MaxFibonacciN
// overflow.
func Fibonacci(n int) int64 {
	if n <= 1 {
		return int64(n)
	}
	fib := make([]int64, n+1)
	fib[0], fib[1] = 0, 1
	for i := 2; i <= n; i++ {
		fib[i] = fib[i-1] + fib[i-2]
	}
	return fib[n]
}
