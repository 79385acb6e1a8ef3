package engine

import (
	"math"
	"math/rand"
	"testing"

	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/models"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		min, max float64
		want     models.Severity
	}{
		{"inside band", 21.2, 18, 23, models.SeverityNormal},
		{"at min", 18, 18, 23, models.SeverityNormal},
		{"at max", 23, 18, 23, models.SeverityNormal},
		{"just below min", 17.9, 18, 23, models.SeverityWarning},
		{"just above max", 23.1, 18, 23, models.SeverityWarning},
		{"just inside low critical", 16.3, 18, 23, models.SeverityWarning},
		{"below low critical", 15.5, 18, 23, models.SeverityCritical},
		{"above high critical", 25.4, 18, 23, models.SeverityCritical},
		{"tds far above", 1000, 560, 840, models.SeverityCritical},
		{"tds warning", 900, 560, 840, models.SeverityWarning},
		{"zero bounds", 0, 0, 0, models.SeverityNormal},
		{"zero bounds above", 0.01, 0, 0, models.SeverityCritical},
		// negative min: 10% margin moves the critical bound inwards
		{"negative min", -10.5, -10, 5, models.SeverityCritical},
		// inverted band: 20 is below min-10% (20.7), so it is critical
		{"inverted band", 20, 23, 18, models.SeverityCritical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.value, tt.min, tt.max); got != tt.want {
				t.Errorf("Classify(%v, %v, %v) = %s, want %s", tt.value, tt.min, tt.max, got, tt.want)
			}
		})
	}
}

func TestClassifyNormalIffInBand(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for i := 0; i < 5000; i++ {
		min := r.Float64() * 100
		max := min + r.Float64()*100
		value := r.Float64()*300 - 50

		got := Classify(value, min, max)
		inBand := value >= min && value <= max
		if (got == models.SeverityNormal) != inBand {
			t.Fatalf("Classify(%v, %v, %v) = %s, inBand = %v", value, min, max, got, inBand)
		}
	}
}

func TestClassifyBelowLowCriticalIsCritical(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 5000; i++ {
		min := r.Float64() * 100
		max := min + r.Float64()*100
		value := min - 0.1*min - r.Float64()*50 - 1e-9

		if got := Classify(value, min, max); got != models.SeverityCritical {
			t.Fatalf("Classify(%v, %v, %v) = %s, want critical", value, min, max, got)
		}
	}
}

func TestClassifyLowCriticalBoundary(t *testing.T) {
	min, max := 18.0, 23.0
	lowCritical := min - 0.1*min
	eps := 1e-9

	if got := Classify(min, min, max); got != models.SeverityNormal {
		t.Errorf("at min: got %s, want normal", got)
	}
	if got := Classify(lowCritical-eps, min, max); got != models.SeverityCritical {
		t.Errorf("just below low critical: got %s, want critical", got)
	}
	if got := Classify(math.Nextafter(min, math.Inf(-1)), min, max); got != models.SeverityWarning {
		t.Errorf("just below min: got %s, want warning", got)
	}
}
