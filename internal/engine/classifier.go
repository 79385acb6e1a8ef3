package engine

import "github.com/PNS-Srivardhan/grow-flow-automata-system/internal/models"

// criticalMargin is applied to each bound itself, not to the band width.
const criticalMargin = 0.1

// Classify grades value against the [min, max] band.
// Values beyond the band by more than 10% of the nearest bound are critical,
// values merely outside the band are warnings.
func Classify(value, min, max float64) models.Severity {
	lowCritical := min - criticalMargin*min
	highCritical := max + criticalMargin*max

	if value < lowCritical || value > highCritical {
		return models.SeverityCritical
	}
	if value < min || value > max {
		return models.SeverityWarning
	}
	return models.SeverityNormal
}
