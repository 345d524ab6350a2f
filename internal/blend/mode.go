// Package blend mixes sequence-model output with the fused prior.
package blend

import (
	"fmt"
	"strconv"
	"strings"
)

// Mode selects how the model weight is chosen.
type Mode struct {
	adaptive bool
	alpha    float64
}

// Fixed uses a constant model weight clipped to [0,1].
func Fixed(alpha float64) Mode {
	if alpha < 0 {
		alpha = 0
	}
	if alpha > 1 {
		alpha = 1
	}
	return Mode{alpha: alpha}
}

// Adaptive derives the model weight from the model/prior divergence.
func Adaptive() Mode {
	return Mode{adaptive: true}
}

// IsAdaptive reports whether the mode is divergence driven.
func (m Mode) IsAdaptive() bool {
	return m.adaptive
}

// Alpha returns the fixed weight; meaningless for adaptive modes.
func (m Mode) Alpha() float64 {
	return m.alpha
}

func (m Mode) String() string {
	if m.adaptive {
		return "auto"
	}
	return strconv.FormatFloat(m.alpha, 'f', -1, 64)
}

// ParseMode accepts "auto" or a number in [0,1].
func ParseMode(s string) (Mode, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" || s == "auto" {
		return Adaptive(), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Mode{}, fmt.Errorf("invalid blend mode %q: %w", s, err)
	}
	if v < 0 || v > 1 {
		return Mode{}, fmt.Errorf("blend alpha %v out of range [0,1]", v)
	}
	return Fixed(v), nil
}
