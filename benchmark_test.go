package memoslot

import (
	"context"
	"testing"
)

/*
Benchmarks for the two GetOrCompute paths.

    go test -bench=. -benchmem

BenchmarkGetOrCompute_Hit measures critical section 1 alone: lock,
count, compare, copy out. BenchmarkGetOrCompute_Miss adds a trivial
compute and critical section 2. The parallel variant shows lock
contention on the hit path.
*/

func square(_ context.Context, n int) (int, error) { return n * n, nil }

func BenchmarkGetOrCompute_Hit(b *testing.B) {
	c := MustNew(square)
	ctx := context.Background()
	_, _ = c.GetOrCompute(ctx, 1)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = c.GetOrCompute(ctx, 1)
	}
}

func BenchmarkGetOrCompute_Miss(b *testing.B) {
	c := MustNew(square)
	ctx := context.Background()

	for i := 0; i < b.N; i++ {
		_, _ = c.GetOrCompute(ctx, i)
	}
}

func BenchmarkGetOrCompute_HitParallel(b *testing.B) {
	c := MustNew(square)
	ctx := context.Background()
	_, _ = c.GetOrCompute(ctx, 1)

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_, _ = c.GetOrCompute(ctx, 1)
		}
	})
}

func BenchmarkGetOrCompute_CopiedSliceHit(b *testing.B) {
	c := MustNew(divisors, WithCopy(CloneSlice[int]))
	ctx := context.Background()
	_, _ = c.GetOrCompute(ctx, 360)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = c.GetOrCompute(ctx, 360)
	}
}
