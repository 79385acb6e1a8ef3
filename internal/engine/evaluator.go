package engine

import (
	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/errors"
	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/models"
)

// Evaluate classifies every metric of m against the matching bounds of profile.
// A nil profile yields an all-normal vector.
func Evaluate(m models.Measurements, profile *models.CropProfile) models.StatusVector {
	status := models.NormalStatus()
	if profile == nil {
		return status
	}
	for _, metric := range models.AllMetrics {
		min, max := profile.Bounds(metric)
		status.Set(metric, Classify(m.Get(metric), min, max))
	}
	return status
}

// EvaluateForDisplay is the tolerant policy used by dashboards and the simulator:
// a missing profile masks every excursion instead of failing.
func EvaluateForDisplay(m models.Measurements, profile *models.CropProfile) models.StatusVector {
	return Evaluate(m, profile)
}

// EvaluateForIngestion is the strict policy: a reading is never classified
// without a profile.
func EvaluateForIngestion(m models.Measurements, profile *models.CropProfile) (models.StatusVector, error) {
	if profile == nil {
		return models.StatusVector{}, errors.NewConfigurationError("no crop profile available to evaluate reading", nil)
	}
	return Evaluate(m, profile), nil
}
