package partnership

import (
	"errors"
	"fmt"
	"math"
)

// ShareTolerance is how far the partner share sum may drift from 1.0.
const ShareTolerance = 0.001

// Configuration errors. These abort a distribution before any allocation
// work begins; they are never silently corrected.
var (
	ErrNoPartners        = errors.New("partnership has no partners")
	ErrDuplicateName     = errors.New("partner names must be unique")
	ErrShareSum          = errors.New("partner shares must sum to 1.0")
	ErrInvalidShare      = errors.New("partner share must be in [0, 1]")
	ErrNoGeneralPartner  = errors.New("at least one general partner is required")
	ErrNoLimitedPartner  = errors.New("at least one limited partner is required")
	ErrPromoteRequired   = errors.New("waterfall method requires a promote structure")
	ErrPromoteForbidden  = errors.New("pari passu method forbids a promote structure")
	ErrUnknownMethod     = errors.New("unknown distribution method")
	ErrUnknownPromote    = errors.New("unknown promote type")
	ErrTierOrder         = errors.New("tier hurdles must be strictly ascending")
	ErrInvalidRate       = errors.New("rate must be a finite, non-negative fraction")
	ErrHybridIncomplete  = errors.New("hybrid promote requires both irr and em waterfalls")
	ErrInvalidCombine    = errors.New("hybrid combine rule must be min or max")
)

// Validate checks the full partnership configuration. The upstream
// configuration layer is the primary gate; the distribution engine calls
// this again defensively before allocating.
func (s Structure) Validate() error {
	if len(s.Partners) == 0 {
		return ErrNoPartners
	}

	seen := make(map[string]bool, len(s.Partners))
	var shareSum float64
	for _, p := range s.Partners {
		if p.Name == "" {
			return fmt.Errorf("%w: empty partner name", ErrDuplicateName)
		}
		if seen[p.Name] {
			return fmt.Errorf("%w: %q", ErrDuplicateName, p.Name)
		}
		seen[p.Name] = true

		if p.Kind != KindGP && p.Kind != KindLP {
			return fmt.Errorf("partner %q has unknown kind %q", p.Name, p.Kind)
		}
		if p.Share < 0 || p.Share > 1 || math.IsNaN(p.Share) {
			return fmt.Errorf("%w: partner %q has share %g", ErrInvalidShare, p.Name, p.Share)
		}
		shareSum += p.Share
	}
	if math.Abs(shareSum-1.0) > ShareTolerance {
		return fmt.Errorf("%w: got %.6f", ErrShareSum, shareSum)
	}

	if len(s.GeneralPartners()) == 0 {
		return ErrNoGeneralPartner
	}

	switch s.Method {
	case MethodPariPassu:
		if s.Promote != nil {
			return ErrPromoteForbidden
		}
		return nil
	case MethodWaterfall:
		if s.Promote == nil {
			return ErrPromoteRequired
		}
		if len(s.LimitedPartners()) == 0 {
			return ErrNoLimitedPartner
		}
		return s.Promote.Validate()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownMethod, s.Method)
	}
}

// Validate checks the promote structure for its declared type.
func (p Promote) Validate() error {
	switch p.Type {
	case PromoteIRRWaterfall:
		if err := validRate(p.PreferredRate, "preferred_rate"); err != nil {
			return err
		}
		return validateTiers(p.Tiers, p.FinalPromote, p.PreferredRate)
	case PromoteEMWaterfall:
		// EM hurdles are multiples of invested capital; anything at or below
		// 1.0 is inside return of capital and therefore meaningless.
		return validateTiers(p.Tiers, p.FinalPromote, 1.0)
	case PromoteHybrid:
		if p.IRR == nil || p.EM == nil {
			return ErrHybridIncomplete
		}
		if p.IRR.Type != PromoteIRRWaterfall || p.EM.Type != PromoteEMWaterfall {
			return fmt.Errorf("%w: wrapped types are %q and %q", ErrHybridIncomplete, p.IRR.Type, p.EM.Type)
		}
		if p.Combine != CombineMin && p.Combine != CombineMax {
			return fmt.Errorf("%w: %q", ErrInvalidCombine, p.Combine)
		}
		if err := p.IRR.Validate(); err != nil {
			return fmt.Errorf("hybrid irr leg: %w", err)
		}
		if err := p.EM.Validate(); err != nil {
			return fmt.Errorf("hybrid em leg: %w", err)
		}
		return nil
	case PromoteCarry:
		if err := validRate(p.PreferredRate, "preferred_rate"); err != nil {
			return err
		}
		return validPromoteRate(p.CarryRate, "carry_rate")
	default:
		return fmt.Errorf("%w: %q", ErrUnknownPromote, p.Type)
	}
}

// validateTiers checks that hurdles strictly ascend starting above the
// floor, and that every promote rate is a valid fraction.
func validateTiers(tiers []Tier, finalPromote, floor float64) error {
	previous := floor
	for i, tier := range tiers {
		if math.IsNaN(tier.Hurdle) || math.IsInf(tier.Hurdle, 0) {
			return fmt.Errorf("%w: tier %d hurdle %g", ErrInvalidRate, i, tier.Hurdle)
		}
		if tier.Hurdle <= previous {
			return fmt.Errorf("%w: tier %d hurdle %g follows %g", ErrTierOrder, i, tier.Hurdle, previous)
		}
		if err := validPromoteRate(tier.Promote, fmt.Sprintf("tier %d promote", i)); err != nil {
			return err
		}
		previous = tier.Hurdle
	}
	return validPromoteRate(finalPromote, "final_promote")
}

func validRate(rate float64, field string) error {
	if rate < 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		return fmt.Errorf("%w: %s is %g", ErrInvalidRate, field, rate)
	}
	return nil
}

func validPromoteRate(rate float64, field string) error {
	if rate < 0 || rate > 1 || math.IsNaN(rate) {
		return fmt.Errorf("%w: %s is %g (must be in [0, 1])", ErrInvalidRate, field, rate)
	}
	return nil
}
