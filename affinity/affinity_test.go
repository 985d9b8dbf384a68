package affinity

import (
	"math"
	"testing"
)

func TestTransformBoundsAndMonotonicity(t *testing.T) {
	prev := math.Inf(1)
	for _, v := range []float64{0.5, 1, 10, 100, 500, 5000, 49999, 50000} {
		y, err := Transform(v, DefaultMaxIC50)
		if err != nil {
			t.Fatalf("Transform(%f): %v", v, err)
		}
		if y < 0 || y > 1 {
			t.Fatalf("Transform(%f) = %f, out of [0, 1]", v, y)
		}
		if y > prev {
			t.Fatalf("Transform is not decreasing: Transform(%f) = %f > %f", v, y, prev)
		}
		prev = y
	}
}

func TestTransformEndpoints(t *testing.T) {
	if y, _ := Transform(DefaultMaxIC50, DefaultMaxIC50); y != 0 {
		t.Fatalf("Transform(maxIC50) = %f, expected exactly 0", y)
	}
	if y, _ := Transform(DefaultMaxIC50*10, DefaultMaxIC50); y != 0 {
		t.Fatalf("Transform above maxIC50 = %f, expected exactly 0", y)
	}
	if y, _ := Transform(1, DefaultMaxIC50); y != 1 {
		t.Fatalf("Transform(1) = %f, expected 1", y)
	}
	// Approaching zero from above, y saturates at 1.
	if y, _ := Transform(1e-9, DefaultMaxIC50); y != 1 {
		t.Fatalf("Transform(1e-9) = %f, expected clamp to 1", y)
	}
}

func TestTransformInvalid(t *testing.T) {
	if _, err := Transform(0, DefaultMaxIC50); err == nil {
		t.Fatalf("expected an error for ic50 = 0")
	}
	if _, err := Transform(-100, DefaultMaxIC50); err == nil {
		t.Fatalf("expected an error for a negative ic50")
	}
	if _, err := Transform(100, 1); err == nil {
		t.Fatalf("expected an error for maxIC50 = 1")
	}
}

func TestRoundTrip(t *testing.T) {
	for _, v := range []float64{2, 50, 500, 5000, 50000} {
		y, err := Transform(v, DefaultMaxIC50)
		if err != nil {
			t.Fatal(err)
		}
		back := Inverse(y, DefaultMaxIC50)
		if math.Abs(back-v)/v > 1e-9 {
			t.Fatalf("Inverse(Transform(%f)) = %f", v, back)
		}
	}
}

func TestBinderLabels(t *testing.T) {
	labels := BinderLabels([]float64{100, 500, 501, 40000})
	want := []bool{true, true, false, false}
	for i := range want {
		if labels[i] != want[i] {
			t.Fatalf("label %d: got %v, expected %v", i, labels[i], want[i])
		}
	}
}
