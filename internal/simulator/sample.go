package simulator

import (
	"math"
	"math/rand"

	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/models"
)

// SampleVariance widens each band by this fraction of its width on both sides,
// so samples land in all three severity bands.
const SampleVariance = 0.2

// GenerateSample draws an independent uniform value per metric from
// [min - v*range, max + v*range] of profile.
func GenerateSample(profile *models.CropProfile, rng *rand.Rand) models.Measurements {
	draw := func(metric models.Metric) float64 {
		min, max := profile.Bounds(metric)
		spread := (max - min) * SampleVariance
		lo, hi := min-spread, max+spread
		return round(lo+rng.Float64()*(hi-lo), 1)
	}
	return models.Measurements{
		AirTemp:   draw(models.MetricAirTemp),
		WaterTemp: draw(models.MetricWaterTemp),
		Humidity:  round(draw(models.MetricHumidity), 0),
		PH:        draw(models.MetricPH),
		TDS:       round(draw(models.MetricTDS), 0),
	}
}

func round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
