package stats

import (
	"testing"

	"github.com/matryer/is"
)

func TestRunningStat(t *testing.T) {
	is := is.New(t)
	type tc struct {
		scores []int
		mean   float64
		stdev  float64
	}
	cases := []tc{
		{[]int{10, 12, 23, 23, 16, 23, 21, 16}, 18, 5.2372293656638},
		{[]int{14, 35, 71, 124, 10, 24, 55, 33, 87, 19}, 47.2, 36.937785531891},
		{[]int{1}, 1, 0},
		{[]int{}, 0, 0},
		{[]int{1, 1}, 1, 0},
	}
	for _, c := range cases {
		s := &Statistic{}
		for _, score := range c.scores {
			s.Push(float64(score))
		}
		is.True(FuzzyEqual(s.Mean(), c.mean))
		is.True(FuzzyEqual(s.Stdev(), c.stdev))
		is.Equal(s.Iterations(), len(c.scores))
	}
}

func TestMinMaxLast(t *testing.T) {
	is := is.New(t)
	s := &Statistic{}
	for _, v := range []float64{4, -2, 9, 3} {
		s.Push(v)
	}
	is.Equal(s.Min(), -2.0)
	is.Equal(s.Max(), 9.0)
	is.Equal(s.Last(), 3.0)
}

func TestZVal(t *testing.T) {
	is := is.New(t)
	is.True(math3(ZVal(95)) == 1.960)
	is.True(math3(ZVal(99)) == 2.576)

	s := &Statistic{}
	for _, v := range []float64{10, 12, 23, 23, 16, 23, 21, 16} {
		s.Push(v)
	}
	is.True(FuzzyEqual(s.ConfidenceInterval(95), ZVal(95)*s.Stdev()/2.8284271247461903))
}

func math3(f float64) float64 {
	return float64(int(f*1000+0.5)) / 1000
}
