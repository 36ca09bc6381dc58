package main

import (
	"context"
	"errors"
)

// errNotFactorable is returned for inputs below 2, which have no prime
// factorization.
var errNotFactorable = errors.New("factorizer: input has no prime factorization")

// factor returns the prime factors of n in ascending order by trial
// division. ctx is checked every few thousand divisions so that large
// primes do not outlive a cancelled request.
func factor(ctx context.Context, n uint64) ([]uint64, error) {
	if n < 2 {
		return nil, errNotFactorable
	}

	var factors []uint64
	for n%2 == 0 {
		factors = append(factors, 2)
		n /= 2
	}

	for d, steps := uint64(3), 0; d <= n/d; d += 2 {
		steps++
		if steps%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		for n%d == 0 {
			factors = append(factors, d)
			n /= d
		}
	}

	if n > 1 {
		factors = append(factors, n)
	}
	return factors, nil
}
