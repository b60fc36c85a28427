package rng

import (
	"math"
	"testing"
)

func TestFloat64_HalfOpenUnitInterval(t *testing.T) {
	t.Parallel()

	for i := 0; i < 100_000; i++ {
		v := Float64()
		if v < 0 || v >= 1 {
			t.Fatalf("Float64() = %v, want [0,1)", v)
		}
	}
}

func TestIntN_RangeAndRoughUniformity(t *testing.T) {
	t.Parallel()

	const (
		n      = 10
		draws  = 100_000
		expect = draws / n
	)

	counts := make([]int, n)
	for i := 0; i < draws; i++ {
		v := IntN(n)
		if v < 0 || v >= n {
			t.Fatalf("IntN(%d) = %d", n, v)
		}
		counts[v]++
	}

	// 5% slack per bucket is about 10 standard deviations at this sample
	// size, loose enough to never flake.
	for v, c := range counts {
		if math.Abs(float64(c-expect)) > 0.05*float64(expect) {
			t.Fatalf("value %d drawn %d times, expected about %d", v, c, expect)
		}
	}
}

func TestIntN_PanicsOnNonPositive(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Fatal("IntN(0) did not panic")
		}
	}()
	IntN(0)
}

func TestPickN_Properties(t *testing.T) {
	t.Parallel()

	for i := 0; i < 1000; i++ {
		picked := PickN(3, 25)
		if len(picked) != 3 {
			t.Fatalf("PickN(3, 25) returned %d values", len(picked))
		}
		seen := map[int]bool{}
		for _, v := range picked {
			if v < 1 || v > 25 {
				t.Fatalf("picked value %d out of [1,25]", v)
			}
			if seen[v] {
				t.Fatalf("duplicate value %d in %v", v, picked)
			}
			seen[v] = true
		}
	}
}

func TestPickN_EachPositionEquallyLikely(t *testing.T) {
	t.Parallel()

	if testing.Short() {
		t.Skip("statistical test")
	}

	const draws = 50_000

	counts := make([]int, 26)
	for i := 0; i < draws; i++ {
		for _, v := range PickN(5, 25) {
			counts[v]++
		}
	}

	expect := float64(draws) * 5 / 25
	for v := 1; v <= 25; v++ {
		if math.Abs(float64(counts[v])-expect) > 0.05*expect {
			t.Fatalf("position %d picked %d times, expected about %.0f", v, counts[v], expect)
		}
	}
}
