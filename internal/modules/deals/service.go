package deals

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/dealflow/internal/events"
	"github.com/aristath/dealflow/internal/modules/cash_flows"
	"github.com/aristath/dealflow/internal/modules/partnership"
	"github.com/aristath/dealflow/internal/modules/waterfall"
)

var (
	ErrDealNotFound = errors.New("deal not found")
	ErrNoCashFlows  = errors.New("deal has no cash flow series")
)

// Service orchestrates the deal registry: it ties the partnership loader,
// the stored cash flow series and the waterfall engine together, and
// persists the latest allocation result per deal.
type Service struct {
	repo   *Repository
	flows  *cash_flows.Repository
	engine *waterfall.Service
	loader *partnership.Loader
	events *events.Manager
	log    zerolog.Logger
}

// NewService creates a new deal service.
func NewService(
	repo *Repository,
	flows *cash_flows.Repository,
	engine *waterfall.Service,
	loader *partnership.Loader,
	eventManager *events.Manager,
	log zerolog.Logger,
) *Service {
	return &Service{
		repo:   repo,
		flows:  flows,
		engine: engine,
		loader: loader,
		events: eventManager,
		log:    log.With().Str("service", "deals").Logger(),
	}
}

// CreateDeal validates the TOML partnership definition and registers the
// deal. The definition is stored verbatim so round-trips preserve it.
func (s *Service) CreateDeal(name, structureTOML string) (*Deal, error) {
	if name == "" {
		return nil, fmt.Errorf("deal name is required")
	}
	if _, err := s.loader.LoadFromString(structureTOML); err != nil {
		return nil, err
	}

	deal, err := s.repo.Create(name, structureTOML)
	if err != nil {
		return nil, err
	}

	s.events.Emit(events.DealCreated, "deals", map[string]interface{}{
		"deal_id": deal.ID,
		"name":    deal.Name,
	})
	return deal, nil
}

// UpdateStructure validates and replaces a deal's partnership definition.
func (s *Service) UpdateStructure(dealID, structureTOML string) error {
	if _, err := s.loader.LoadFromString(structureTOML); err != nil {
		return err
	}
	if err := s.repo.UpdateStructure(dealID, structureTOML); err != nil {
		return err
	}

	s.events.Emit(events.DealStructureUpdated, "deals", map[string]interface{}{
		"deal_id": dealID,
	})
	return nil
}

// GetDeal retrieves a deal by ID.
func (s *Service) GetDeal(dealID string) (*Deal, error) {
	deal, err := s.repo.GetByID(dealID)
	if err != nil {
		return nil, err
	}
	if deal == nil {
		return nil, fmt.Errorf("%w: %s", ErrDealNotFound, dealID)
	}
	return deal, nil
}

// ListDeals retrieves all registered deals.
func (s *Service) ListDeals() ([]Deal, error) {
	return s.repo.List()
}

// ComputeDistribution runs the waterfall for a deal's current structure and
// series, persists the result, and returns it.
func (s *Service) ComputeDistribution(dealID string) (*waterfall.AllocationResult, error) {
	deal, err := s.GetDeal(dealID)
	if err != nil {
		return nil, err
	}

	structure, err := s.loader.LoadFromString(deal.Structure)
	if err != nil {
		return nil, fmt.Errorf("stored structure for deal %s is invalid: %w", dealID, err)
	}

	series, err := s.flows.GetSeries(dealID)
	if err != nil {
		return nil, err
	}
	if series == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoCashFlows, dealID)
	}

	result, err := s.engine.Distribute(*structure, *series)
	if err != nil {
		s.events.EmitError("deals", err, map[string]interface{}{"deal_id": dealID})
		return nil, err
	}

	digest, err := s.engine.InputDigest(*structure, *series)
	if err != nil {
		return nil, err
	}

	resultJSON, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize allocation result: %w", err)
	}

	rec := DistributionRecord{
		DealID:     dealID,
		Digest:     digest,
		ResultJSON: string(resultJSON),
		ComputedAt: time.Now().UTC(),
	}
	if err := s.repo.SaveDistribution(rec); err != nil {
		return nil, err
	}

	s.events.Emit(events.DistributionComputed, "deals", map[string]interface{}{
		"deal_id": dealID,
		"digest":  digest,
		"method":  string(structure.Method),
	})
	return result, nil
}

// RefreshAll recomputes the distribution for every deal that has a stored
// series. Deals that fail are skipped so one bad configuration cannot block
// the rest of the refresh.
func (s *Service) RefreshAll() (int, error) {
	ids, err := s.flows.DealIDs()
	if err != nil {
		return 0, err
	}

	refreshed := 0
	for _, id := range ids {
		if _, err := s.ComputeDistribution(id); err != nil {
			s.log.Warn().Err(err).Str("deal_id", id).Msg("Skipping deal during refresh")
			continue
		}
		refreshed++
	}

	s.events.Emit(events.DistributionsRefresh, "deals", map[string]interface{}{
		"refreshed": refreshed,
		"total":     len(ids),
	})
	return refreshed, nil
}

// Bootstrap registers deals for every TOML definition in a directory,
// keyed by structure name. Definitions already registered are skipped.
func (s *Service) Bootstrap(dir string) (int, error) {
	structures, err := s.loader.LoadDirectory(dir)
	if err != nil {
		return 0, err
	}

	created := 0
	for _, structure := range structures {
		existing, err := s.repo.GetByName(structure.Name)
		if err != nil {
			return created, err
		}
		if existing != nil {
			continue
		}

		tomlString, err := s.loader.ToString(structure)
		if err != nil {
			return created, err
		}
		if _, err := s.CreateDeal(structure.Name, tomlString); err != nil {
			return created, err
		}
		created++
	}

	s.log.Info().Int("created", created).Str("dir", dir).Msg("Deal definitions bootstrapped")
	return created, nil
}
