// Package scoring holds the tunable points policy and the pure score
// accumulator used by drill sessions.
package scoring

import (
	"errors"
	"fmt"
	"math"

	"github.com/abhisek/codedrills/internal/catalog"
)

// Policy holds the scoring constants. A correct answer earns
// BasePoints(difficulty) * Multiplier(streak), where streak is the run of
// correct answers before this one.
type Policy struct {
	EasyPoints   int
	MediumPoints int
	HardPoints   int

	// StreakBonus is added to the multiplier per consecutive correct
	// answer, up to MaxMultiplier.
	StreakBonus   float64
	MaxMultiplier float64
}

// DefaultPolicy returns the production scoring constants.
func DefaultPolicy() Policy {
	return Policy{
		EasyPoints:    10,
		MediumPoints:  20,
		HardPoints:    30,
		StreakBonus:   0.1,
		MaxMultiplier: 2.0,
	}
}

// Validate checks the policy keeps harder problems worth more and the
// multiplier bounded.
func (p Policy) Validate() error {
	var errs []error
	if p.EasyPoints <= 0 {
		errs = append(errs, fmt.Errorf("easy points must be positive, got %d", p.EasyPoints))
	}
	if p.MediumPoints <= p.EasyPoints {
		errs = append(errs, fmt.Errorf("medium points (%d) must exceed easy points (%d)", p.MediumPoints, p.EasyPoints))
	}
	if p.HardPoints <= p.MediumPoints {
		errs = append(errs, fmt.Errorf("hard points (%d) must exceed medium points (%d)", p.HardPoints, p.MediumPoints))
	}
	if p.StreakBonus < 0 || math.IsNaN(p.StreakBonus) {
		errs = append(errs, fmt.Errorf("streak bonus must be non-negative, got %v", p.StreakBonus))
	}
	if p.MaxMultiplier < 1 || math.IsInf(p.MaxMultiplier, 0) || math.IsNaN(p.MaxMultiplier) {
		errs = append(errs, fmt.Errorf("max multiplier must be finite and at least 1, got %v", p.MaxMultiplier))
	}
	return errors.Join(errs...)
}

// BasePoints returns the points for a correct answer at the given
// difficulty before the streak multiplier.
func (p Policy) BasePoints(d catalog.Difficulty) int {
	switch d {
	case catalog.DifficultyEasy:
		return p.EasyPoints
	case catalog.DifficultyMedium:
		return p.MediumPoints
	case catalog.DifficultyHard:
		return p.HardPoints
	default:
		return 0
	}
}

// Multiplier returns the streak multiplier for a streak of the given
// length. It is non-decreasing in streak and never exceeds MaxMultiplier.
func (p Policy) Multiplier(streak int) float64 {
	if streak <= 0 {
		return 1
	}
	return min(1+float64(streak)*p.StreakBonus, max(p.MaxMultiplier, 1))
}

// Points returns the points for a correct answer at difficulty d with the
// given prior streak.
func (p Policy) Points(d catalog.Difficulty, streak int) int {
	return int(math.Round(float64(p.BasePoints(d)) * p.Multiplier(streak)))
}

// MaxScore bounds the score of a session of n problems.
func (p Policy) MaxScore(n int) int {
	return int(math.Ceil(float64(n*p.HardPoints) * max(p.MaxMultiplier, 1)))
}
