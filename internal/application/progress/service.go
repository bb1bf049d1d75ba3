// Package progress implements client weight tracking and plan
// effectiveness analysis.
package progress

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nutriplan/core/internal/application/pipeline"
	"github.com/nutriplan/core/internal/domain/plan"
	"github.com/nutriplan/core/internal/domain/progress"
	"github.com/nutriplan/core/internal/ports/inbound"
	"github.com/nutriplan/core/internal/ports/outbound"
	"github.com/nutriplan/core/pkg/errors"
	"go.uber.org/zap"
)

const analysisCache = "progress_analysis"

// Metrics records analysis cache lookups
type Metrics interface {
	RecordCacheLookup(cache string, hit bool)
}

// Options configures the progress service
type Options struct {
	// CacheTTL of a stored analysis; zero disables caching.
	CacheTTL time.Duration
}

// ProgressService implements inbound.ProgressService
type ProgressService struct {
	clients   outbound.ClientRepository
	entries   outbound.ProgressRepository
	templates outbound.TemplateRepository
	cache     outbound.CacheRepository
	options   Options
	metrics   Metrics
	logger    *zap.Logger
	now       func() time.Time
}

// NewProgressService creates a new progress service. cache and metrics may
// be nil.
func NewProgressService(
	clients outbound.ClientRepository,
	entries outbound.ProgressRepository,
	templates outbound.TemplateRepository,
	cache outbound.CacheRepository,
	options Options,
	metrics Metrics,
	logger *zap.Logger,
) *ProgressService {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &ProgressService{
		clients:   clients,
		entries:   entries,
		templates: templates,
		cache:     cache,
		options:   options,
		metrics:   metrics,
		logger:    logger.Named("progress-service"),
		now:       time.Now,
	}
}

var _ inbound.ProgressService = (*ProgressService)(nil)

// RegisterClient creates a client whose current weight starts at the
// starting weight
func (s *ProgressService) RegisterClient(ctx context.Context, cmd inbound.RegisterClientCommand) (*inbound.ClientDTO, error) {
	c, err := progress.NewClient(cmd.OwnerID, cmd.Name)
	if err != nil {
		return nil, errors.NewValidationError(err.Error()).WithCause(err)
	}
	for field, w := range map[string]*float64{"starting_weight": cmd.StartingWeight, "goal_weight": cmd.GoalWeight} {
		if w != nil && *w <= 0 {
			return nil, errors.NewValidationError(field + " must be positive")
		}
	}
	c.Email = cmd.Email
	c.StartingWeight = cmd.StartingWeight
	c.GoalWeight = cmd.GoalWeight
	c.ProjectCurrentWeight(nil)

	if err := s.clients.Create(ctx, c); err != nil {
		return nil, errors.NewDatabaseError("create client", err)
	}

	s.logger.Info("Client registered",
		zap.String("client_id", c.ID.String()),
		zap.String("owner_id", c.OwnerID.String()),
	)
	return clientToDTO(c), nil
}

// GetClient returns one of the owner's clients
func (s *ProgressService) GetClient(ctx context.Context, ownerID, clientID uuid.UUID) (*inbound.ClientDTO, error) {
	c, err := s.client(ctx, ownerID, clientID)
	if err != nil {
		return nil, err
	}
	return clientToDTO(c), nil
}

// RecordEntry stores a measurement and refreshes the client's current weight
func (s *ProgressService) RecordEntry(ctx context.Context, cmd inbound.RecordEntryCommand) (*inbound.ProgressEntryDTO, error) {
	c, err := s.client(ctx, cmd.OwnerID, cmd.ClientID)
	if err != nil {
		return nil, err
	}

	e, err := progress.NewEntry(c.ID, cmd.Date, cmd.Weight)
	if err != nil {
		return nil, errors.NewValidationError(err.Error()).WithCause(err)
	}
	e.BodyFat = cmd.BodyFat
	e.Waist = cmd.Waist
	e.Hips = cmd.Hips
	e.Chest = cmd.Chest
	e.Notes = cmd.Notes

	if err := s.entries.Create(ctx, e); err != nil {
		return nil, errors.NewDatabaseError("record progress entry", err)
	}
	if err := s.refresh(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Debug("Progress entry recorded",
		zap.String("client_id", c.ID.String()),
		zap.Float64("weight", e.Weight),
	)
	return entryToDTO(e), nil
}

// ListEntries returns the client's entries newest first
func (s *ProgressService) ListEntries(ctx context.Context, ownerID, clientID uuid.UUID) ([]inbound.ProgressEntryDTO, error) {
	if _, err := s.client(ctx, ownerID, clientID); err != nil {
		return nil, err
	}
	entries, err := s.entries.FindByClient(ctx, clientID)
	if err != nil {
		return nil, errors.NewDatabaseError("list progress entries", err)
	}

	dtos := make([]inbound.ProgressEntryDTO, 0, len(entries))
	for i := range entries {
		dtos = append(dtos, *entryToDTO(&entries[i]))
	}
	return dtos, nil
}

// DeleteEntry removes a measurement and recomputes the current weight
func (s *ProgressService) DeleteEntry(ctx context.Context, ownerID, entryID uuid.UUID) (*inbound.ClientDTO, error) {
	e, err := s.entries.FindByID(ctx, entryID)
	if err != nil {
		if stderrors.Is(err, outbound.ErrNotFound) {
			return nil, errors.NewNotFoundError("Progress entry")
		}
		return nil, errors.NewDatabaseError("find progress entry", err)
	}

	c, err := s.client(ctx, ownerID, e.ClientID)
	if err != nil {
		if errors.Is(err, errors.CodeClientNotFound) {
			return nil, errors.NewNotFoundError("Progress entry")
		}
		return nil, err
	}

	if err := s.entries.Delete(ctx, entryID); err != nil {
		if stderrors.Is(err, outbound.ErrNotFound) {
			return nil, errors.NewNotFoundError("Progress entry")
		}
		return nil, errors.NewDatabaseError("delete progress entry", err)
	}
	if err := s.refresh(ctx, c); err != nil {
		return nil, err
	}
	return clientToDTO(c), nil
}

// Analyze computes the client's progress analysis. Results are cached until
// the next entry change or the configured TTL.
func (s *ProgressService) Analyze(ctx context.Context, ownerID, clientID uuid.UUID) (*progress.Analysis, error) {
	c, err := s.client(ctx, ownerID, clientID)
	if err != nil {
		return nil, err
	}
	if cached := s.cachedAnalysis(ctx, clientID); cached != nil {
		return cached, nil
	}
	if c.GoalWeight == nil {
		return nil, errors.NewValidationError("client has no goal weight").
			WithMetadata("client_id", clientID.String())
	}

	entries, err := s.entries.FindByClient(ctx, clientID)
	if err != nil {
		return nil, errors.NewDatabaseError("list progress entries", err)
	}

	a, err := progress.Analyze(progress.Input{
		Entries:        entries,
		GoalWeight:     *c.GoalWeight,
		StartingWeight: c.StartingWeight,
		Now:            s.now(),
	})
	if err != nil {
		if stderrors.Is(err, progress.ErrNoProgressData) {
			return nil, errors.NewNoProgressDataError(clientID.String())
		}
		return nil, errors.Wrap(err, "analysis failed")
	}

	s.storeAnalysis(ctx, clientID, a)
	return a, nil
}

// RecommendTemplates selects the owner's templates matching the analysis
func (s *ProgressService) RecommendTemplates(ctx context.Context, ownerID, clientID uuid.UUID) (*inbound.RecommendationDTO, error) {
	a, err := s.Analyze(ctx, ownerID, clientID)
	if err != nil {
		return nil, err
	}

	stored, err := s.templates.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, errors.NewDatabaseError("list templates", err)
	}
	templates := make([]plan.Template, 0, len(stored))
	for _, t := range stored {
		templates = append(templates, *t)
	}

	ranked := progress.RankTemplates(a, templates)
	rec := &inbound.RecommendationDTO{
		Analysis:  a,
		Goal:      string(progress.RecommendedGoal(a)),
		Standing:  progress.StandingOf(a.Effectiveness.Score),
		Templates: make([]inbound.TemplateDTO, 0, len(ranked)),
	}
	for i := range ranked {
		rec.Templates = append(rec.Templates, *pipeline.TemplateToDTO(&ranked[i]))
	}
	return rec, nil
}

func (s *ProgressService) client(ctx context.Context, ownerID, clientID uuid.UUID) (*progress.Client, error) {
	c, err := s.clients.FindByID(ctx, clientID)
	if err != nil {
		if stderrors.Is(err, outbound.ErrNotFound) {
			return nil, errors.NewClientNotFoundError(clientID.String())
		}
		return nil, errors.NewDatabaseError("find client", err)
	}
	if c.OwnerID != ownerID {
		return nil, errors.NewClientNotFoundError(clientID.String())
	}
	return c, nil
}

// refresh recomputes the current weight and drops the cached analysis
func (s *ProgressService) refresh(ctx context.Context, c *progress.Client) error {
	entries, err := s.entries.FindByClient(ctx, c.ID)
	if err != nil {
		return errors.NewDatabaseError("list progress entries", err)
	}
	c.ProjectCurrentWeight(entries)
	if err := s.clients.Update(ctx, c); err != nil {
		return errors.NewDatabaseError("update client", err)
	}

	if s.cache != nil {
		if err := s.cache.Delete(ctx, cacheKey(c.ID)); err != nil {
			s.logger.Warn("Failed to invalidate analysis cache",
				zap.String("client_id", c.ID.String()),
				zap.Error(err),
			)
		}
	}
	return nil
}

func (s *ProgressService) cachedAnalysis(ctx context.Context, clientID uuid.UUID) *progress.Analysis {
	if s.cache == nil || s.options.CacheTTL <= 0 {
		return nil
	}
	data, err := s.cache.Get(ctx, cacheKey(clientID))
	if err != nil {
		if !stderrors.Is(err, outbound.ErrCacheMiss) {
			s.logger.Warn("Analysis cache read failed", zap.Error(err))
		}
		s.metrics.RecordCacheLookup(analysisCache, false)
		return nil
	}

	var a progress.Analysis
	if err := json.Unmarshal(data, &a); err != nil {
		s.logger.Warn("Discarding unreadable cached analysis", zap.Error(err))
		s.metrics.RecordCacheLookup(analysisCache, false)
		return nil
	}
	s.metrics.RecordCacheLookup(analysisCache, true)
	return &a
}

func (s *ProgressService) storeAnalysis(ctx context.Context, clientID uuid.UUID, a *progress.Analysis) {
	if s.cache == nil || s.options.CacheTTL <= 0 {
		return
	}
	data, err := json.Marshal(a)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, cacheKey(clientID), data, s.options.CacheTTL); err != nil {
		s.logger.Warn("Analysis cache write failed", zap.Error(err))
	}
}

func cacheKey(clientID uuid.UUID) string {
	return fmt.Sprintf("progress:analysis:%s", clientID)
}

func clientToDTO(c *progress.Client) *inbound.ClientDTO {
	return &inbound.ClientDTO{
		ID:             c.ID,
		Name:           c.Name,
		Email:          c.Email,
		StartingWeight: c.StartingWeight,
		CurrentWeight:  c.CurrentWeight,
		GoalWeight:     c.GoalWeight,
	}
}

func entryToDTO(e *progress.Entry) *inbound.ProgressEntryDTO {
	return &inbound.ProgressEntryDTO{
		ID:       e.ID,
		ClientID: e.ClientID,
		Date:     e.Date.Format("2006-01-02"),
		Weight:   e.Weight,
		BodyFat:  e.BodyFat,
		Waist:    e.Waist,
		Hips:     e.Hips,
		Chest:    e.Chest,
		Notes:    e.Notes,
	}
}

type nopMetrics struct{}

func (nopMetrics) RecordCacheLookup(string, bool) {}
