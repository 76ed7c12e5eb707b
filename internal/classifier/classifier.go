package classifier

import (
	"context"
	"errors"
)

// ErrUnavailable is returned by the disabled service variant. Callers treat
// it as "no model configured" rather than a failure.
var ErrUnavailable = errors.New("classifier service unavailable")

// Prediction is one scored category returned by the model service.
// Confidence is expected in (threshold, 1.0]; multiple categories may exceed
// the threshold at once.
type Prediction struct {
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
	Severity   string  `json:"severity"`
	Source     string  `json:"source"`
}

// Service is the inference contract consumed by the detection engine. The
// model itself is an external collaborator; only code-in, scored-categories-out
// is specified here.
type Service interface {
	// Predict scores the code against the vulnerability categories and
	// returns every category whose confidence exceeds threshold.
	Predict(ctx context.Context, code string, threshold float64) ([]Prediction, error)

	// Available reports whether the service is configured at all.
	Available() bool
}

type disabled struct{}

// Disabled returns the explicit "no classifier" variant. Predict always
// fails with ErrUnavailable and detection proceeds pattern-only.
func Disabled() Service {
	return disabled{}
}

func (disabled) Predict(ctx context.Context, code string, threshold float64) ([]Prediction, error) {
	return nil, ErrUnavailable
}

func (disabled) Available() bool {
	return false
}
