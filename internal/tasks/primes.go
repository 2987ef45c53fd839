package tasks

// PrimeSum returns the sum of all primes strictly below limit, testing each
// candidate by trial division up to its square root.
func PrimeSum(limit int) int64 {
	var sum int64
	for n := 2; n < limit; n++ {
		isPrime := true
		for i := 2; i*i <= n; i++ {
			if n%i == 0 {
				isPrime = false
				break
			}
		}
		if isPrime {
			sum += int64(n)
		}
	}
	return sum
}
