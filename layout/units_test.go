package layout

import (
	"math"
	"testing"
)

const eps = 1e-9

func approx(a, b float64) bool { return math.Abs(a-b) <= eps }

// TestPtExact 验证换算逐位等于两个系数依次相乘，而不是某个近似值。
func TestPtExact(t *testing.T) {
	px, scale := 37.7952755906, 0.74999943307122
	for _, cm := range []float64{0, 1, 2, 2.5, 5.916, 10.346, 26.5, 27} {
		want := (cm * px) * scale
		if got := Pt(cm); got != want {
			t.Fatalf("Pt(%g) = %.17g, want %.17g", cm, got, want)
		}
	}
	if Pt(1) == 28.35 {
		t.Fatalf("Pt(1) must not be rounded")
	}
	if got := Pt(1); math.Abs(got-28.3464) > 1e-3 {
		t.Fatalf("Pt(1) should be about 28.3464, got %g", got)
	}
}

func TestPtLinear(t *testing.T) {
	samples := []float64{0.5, 1, 3.25, 12.5, 19}
	for _, a := range samples {
		for _, b := range samples {
			if !approx(Pt(a+b), Pt(a)+Pt(b)) {
				t.Fatalf("Pt(%g+%g) = %g, want %g", a, b, Pt(a+b), Pt(a)+Pt(b))
			}
		}
		if !approx(Cm(Pt(a)), a) {
			t.Fatalf("Cm(Pt(%g)) = %g", a, Cm(Pt(a)))
		}
	}
}

// TestPtMmRoundTrip 验证 pt↔mm 换算的往返精度（允许极小的浮点误差）。
func TestPtMmRoundTrip(t *testing.T) {
	samples := []float64{0, 0.001, 1, 12, 14.4, 72, 96, 144, 1000}
	for _, pt := range samples {
		mm := pt * PtToMm
		back := mm * MmToPt
		if diff := math.Abs(back - pt); diff > eps {
			t.Fatalf("pt→mm→pt 往返误差过大: in=%gpt mm=%g back=%g diff=%g", pt, mm, back, diff)
		}
	}
	if got := A4Width * PtToMm; math.Abs(got-210) > 0.01 {
		t.Fatalf("A4 宽度应约为 210mm，实际 %g", got)
	}
}
