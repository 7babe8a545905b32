// Package effects models per-clip visual transforms as an explicit ordered
// list the caller supplies with each request.
package effects

import (
	"fmt"

	"clipstudio/internal/domain/timeline"
)

const (
	KindSaturationBoost = "saturation_boost"
	KindSpeedChange     = "speed_change"
)

// Spec is one tagged transform. SaturationBoost multiplies the saturation
// channel by Factor and clamps to the channel range; SpeedChange rescales
// the clip's time axis by 1/Factor.
type Spec struct {
	Kind   string  `json:"kind"`
	Factor float64 `json:"factor"`
}

func SaturationBoost(factor float64) Spec {
	return Spec{Kind: KindSaturationBoost, Factor: factor}
}

func SpeedChange(factor float64) Spec {
	return Spec{Kind: KindSpeedChange, Factor: factor}
}

func (s Spec) Validate() error {
	switch s.Kind {
	case KindSaturationBoost, KindSpeedChange:
	default:
		return fmt.Errorf("%w: unknown effect kind %q", timeline.ErrInvalidConfig, s.Kind)
	}
	if s.Factor <= 0 {
		return fmt.Errorf("%w: %s factor must be positive, got %v", timeline.ErrInvalidConfig, s.Kind, s.Factor)
	}
	return nil
}

// ScaleDuration reports the clip duration once the effect is applied.
// Only SpeedChange alters time.
func (s Spec) ScaleDuration(d float64) float64 {
	if s.Kind == KindSpeedChange {
		return d / s.Factor
	}
	return d
}

// Validate checks every spec of an ordered effect list.
func Validate(specs []Spec) error {
	for i, s := range specs {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("effect %d: %w", i, err)
		}
	}
	return nil
}

// ScaleDuration folds the duration consequence of the whole list, in order.
func ScaleDuration(d float64, specs []Spec) float64 {
	for _, s := range specs {
		d = s.ScaleDuration(d)
	}
	return d
}

// MontageDefaults is the montage look: a saturation push, then a mild
// speed-up.
func MontageDefaults() []Spec {
	return []Spec{SaturationBoost(1.5), SpeedChange(1.25)}
}
