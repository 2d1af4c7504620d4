package split

import (
	"math"
	"testing"
)

func TestScoreClosedFormWhenNoL1(t *testing.T) {
	s := score[float64](4, 2, 0, 1) // w* = -G/(H+lambda) = -4/3
	want := -4.0 / 3.0
	if math.Abs(s.weight-want) > 1e-9 {
		t.Fatalf("weight = %v, want %v", s.weight, want)
	}
	if s.score != -s.loss {
		t.Fatalf("score should be -loss")
	}
}

func TestScoreSoftThresholdsWithL1(t *testing.T) {
	s := score[float64](4, 2, 5, 1) // |G|-alpha = -1 -> clamps to 0 -> w*=0
	if s.weight != 0 {
		t.Fatalf("weight = %v, want 0 (fully shrunk by L1)", s.weight)
	}
}

func TestScoreHandlesNegativeGradient(t *testing.T) {
	s := score[float64](-4, 2, 1, 1) // sign=-1, mag=max(4-1,0)=3, w=-(-1)*3/3=1
	if math.Abs(s.weight-1) > 1e-9 {
		t.Fatalf("weight = %v, want 1", s.weight)
	}
}
