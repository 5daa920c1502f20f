package waterfall

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"github.com/aristath/dealflow/internal/domain"
	"github.com/aristath/dealflow/internal/modules/partnership"
)

// Distribute allocates a single aggregate cash-flow series to the partners
// of a structure under its configured method. It is a pure function of its
// inputs: no shared state, safe to call concurrently on independent pairs,
// and bit-identical results for identical inputs.
//
// Configuration and numerical errors abort the call with no partial result.
// Undefined per-partner metrics (nil IRR, nil multiple) do not abort.
func Distribute(structure partnership.Structure, series domain.CashFlowSeries) (*AllocationResult, error) {
	// The upstream configuration layer validates first; re-check defensively.
	if err := structure.Validate(); err != nil {
		return nil, fmt.Errorf("invalid partnership: %w", err)
	}
	if err := series.Validate(); err != nil {
		return nil, fmt.Errorf("invalid series: %w", err)
	}

	if structure.Method == partnership.MethodPariPassu {
		return allocatePariPassu(structure, series), nil
	}

	switch structure.Promote.Type {
	case partnership.PromoteIRRWaterfall:
		return allocateIRRWaterfall(structure, series, *structure.Promote)
	case partnership.PromoteEMWaterfall:
		return allocateEMWaterfall(structure, series, *structure.Promote)
	case partnership.PromoteHybrid:
		return allocateHybrid(structure, series, *structure.Promote)
	case partnership.PromoteCarry:
		return allocateCarry(structure, series, *structure.Promote)
	default:
		return nil, fmt.Errorf("%w: %q", partnership.ErrUnknownPromote, structure.Promote.Type)
	}
}

// Service wraps Distribute with a TTL result cache. Allocation results are
// immutable values computed from immutable inputs, so caching on an input
// digest is safe.
type Service struct {
	cache *gocache.Cache
	log   zerolog.Logger
}

// NewService creates a new waterfall service.
func NewService(cacheTTL time.Duration, log zerolog.Logger) *Service {
	return &Service{
		cache: gocache.New(cacheTTL, 2*cacheTTL),
		log:   log.With().Str("service", "waterfall").Logger(),
	}
}

// Distribute computes (or returns the cached) allocation for the pair.
func (s *Service) Distribute(structure partnership.Structure, series domain.CashFlowSeries) (*AllocationResult, error) {
	key, err := inputDigest(structure, series)
	if err != nil {
		return nil, err
	}

	if cached, found := s.cache.Get(key); found {
		s.log.Debug().Str("digest", key).Msg("Allocation served from cache")
		return cached.(*AllocationResult), nil
	}

	result, err := Distribute(structure, series)
	if err != nil {
		return nil, err
	}

	s.cache.Set(key, result, gocache.DefaultExpiration)
	s.log.Debug().
		Str("digest", key).
		Str("method", string(structure.Method)).
		Int("partners", len(structure.Partners)).
		Int("periods", series.Len()).
		Msg("Allocation computed")

	return result, nil
}

// InputDigest exposes the cache key for callers that persist results and
// need to detect stale inputs.
func (s *Service) InputDigest(structure partnership.Structure, series domain.CashFlowSeries) (string, error) {
	return inputDigest(structure, series)
}

// inputDigest builds a deterministic key for a (structure, series) pair.
func inputDigest(structure partnership.Structure, series domain.CashFlowSeries) (string, error) {
	payload, err := json.Marshal(struct {
		Structure partnership.Structure `json:"structure"`
		Series    domain.CashFlowSeries `json:"series"`
	}{structure, series})
	if err != nil {
		return "", fmt.Errorf("failed to digest distribution inputs: %w", err)
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}
