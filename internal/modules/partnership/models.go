package partnership

// PartnerKind distinguishes the sponsor side from the capital side.
type PartnerKind string

const (
	// KindGP is a general partner: the sponsor, and the only kind eligible
	// to receive promote or carry.
	KindGP PartnerKind = "gp"
	// KindLP is a limited partner: the passive capital provider.
	KindLP PartnerKind = "lp"
)

// Method selects how distributions are allocated.
type Method string

const (
	// MethodPariPassu splits every period by static ownership share.
	MethodPariPassu Method = "pari_passu"
	// MethodWaterfall applies the configured promote structure.
	MethodWaterfall Method = "waterfall"
)

// PromoteType discriminates the promote structure variants.
type PromoteType string

const (
	PromoteIRRWaterfall PromoteType = "irr_waterfall"
	PromoteEMWaterfall  PromoteType = "em_waterfall"
	PromoteHybrid       PromoteType = "hybrid"
	PromoteCarry        PromoteType = "carry"
)

// HybridCombine selects which candidate allocation a hybrid waterfall keeps.
type HybridCombine string

const (
	// CombineMin keeps the candidate that pays LPs more (the LP floor).
	CombineMin HybridCombine = "min"
	// CombineMax keeps the candidate that pays GPs more.
	CombineMax HybridCombine = "max"
)

// Partner is one capital partner in a deal.
type Partner struct {
	Name       string      `json:"name" toml:"name"`
	Kind       PartnerKind `json:"kind" toml:"kind"`
	Share      float64     `json:"share" toml:"share"`
	Commitment *float64    `json:"commitment,omitempty" toml:"commitment"`
}

// Tier is one hurdle step in a tiered waterfall. Hurdle is an IRR for
// irr_waterfall promotes and an equity multiple for em_waterfall promotes.
// Promote is the GP's share of distributions inside the tier.
type Tier struct {
	Hurdle  float64 `json:"hurdle" toml:"hurdle"`
	Promote float64 `json:"promote" toml:"promote"`
}

// Promote is a tagged union over the four promote variants. Type selects
// which fields are meaningful; Validate enforces the combination.
type Promote struct {
	Type PromoteType `json:"type" toml:"type"`

	// irr_waterfall and carry: the preferred return hurdle rate.
	PreferredRate float64 `json:"preferred_rate,omitempty" toml:"preferred_rate"`

	// irr_waterfall and em_waterfall: intermediate tiers (may be empty) and
	// the promote rate applied above the last tier.
	Tiers        []Tier  `json:"tiers,omitempty" toml:"tiers"`
	FinalPromote float64 `json:"final_promote,omitempty" toml:"final_promote"`

	// hybrid: the two wrapped waterfalls and the combination rule.
	IRR     *Promote      `json:"irr,omitempty" toml:"irr"`
	EM      *Promote      `json:"em,omitempty" toml:"em"`
	Combine HybridCombine `json:"combine,omitempty" toml:"combine"`

	// carry: the flat promote rate on profit above the preferred return.
	CarryRate float64 `json:"carry_rate,omitempty" toml:"carry_rate"`
}

// Structure is a validated partnership: an ordered set of partners, a
// distribution method, and the promote structure waterfall methods require.
type Structure struct {
	Name     string    `json:"name" toml:"name"`
	Method   Method    `json:"method" toml:"method"`
	Partners []Partner `json:"partners" toml:"partners"`
	Promote  *Promote  `json:"promote,omitempty" toml:"promote"`
}

// GeneralPartners returns the GP-kind partners in declaration order.
func (s Structure) GeneralPartners() []Partner {
	var gps []Partner
	for _, p := range s.Partners {
		if p.Kind == KindGP {
			gps = append(gps, p)
		}
	}
	return gps
}

// LimitedPartners returns the LP-kind partners in declaration order.
func (s Structure) LimitedPartners() []Partner {
	var lps []Partner
	for _, p := range s.Partners {
		if p.Kind == KindLP {
			lps = append(lps, p)
		}
	}
	return lps
}

// TotalShare sums ownership shares across partners of the given kind.
func (s Structure) TotalShare(kind PartnerKind) float64 {
	var total float64
	for _, p := range s.Partners {
		if p.Kind == kind {
			total += p.Share
		}
	}
	return total
}
