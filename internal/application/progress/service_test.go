package progress

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nutriplan/core/internal/domain/plan"
	"github.com/nutriplan/core/internal/domain/progress"
	"github.com/nutriplan/core/internal/infrastructure/persistence/gorm"
	"github.com/nutriplan/core/internal/infrastructure/persistence/memory"
	"github.com/nutriplan/core/internal/ports/inbound"
	"github.com/nutriplan/core/internal/ports/outbound"
	"github.com/nutriplan/core/pkg/errors"
	"github.com/nutriplan/core/test/testutils"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zaptest"
)

type lookups struct {
	hits, misses int
}

func (l *lookups) RecordCacheLookup(_ string, hit bool) {
	if hit {
		l.hits++
	} else {
		l.misses++
	}
}

type ProgressServiceTestSuite struct {
	suite.Suite
	ctx       context.Context
	ownerID   uuid.UUID
	now       time.Time
	cache     *memory.CacheRepository
	templates outbound.TemplateRepository
	lookups   *lookups
	service   *ProgressService
}

func TestProgressServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ProgressServiceTestSuite))
}

func (s *ProgressServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.ownerID = uuid.New()
	s.now = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	db := testutils.NewSQLiteDB(s.T())
	s.cache = memory.NewCacheRepository()
	s.T().Cleanup(s.cache.Close)
	s.templates = gorm.NewTemplateRepository(db)
	s.lookups = &lookups{}
	s.service = NewProgressService(
		gorm.NewClientRepository(db),
		gorm.NewProgressRepository(db),
		s.templates,
		s.cache,
		Options{CacheTTL: 10 * time.Minute},
		s.lookups,
		zaptest.NewLogger(s.T()),
	)
	s.service.now = func() time.Time { return s.now }
}

func (s *ProgressServiceTestSuite) register(start, goal *float64) *inbound.ClientDTO {
	c, err := s.service.RegisterClient(s.ctx, inbound.RegisterClientCommand{
		OwnerID:        s.ownerID,
		Name:           "Camille Martin",
		Email:          "camille@example.com",
		StartingWeight: start,
		GoalWeight:     goal,
	})
	s.Require().NoError(err)
	return c
}

// record stores weekly entries ending at s.now, oldest first.
func (s *ProgressServiceTestSuite) record(clientID uuid.UUID, weights ...float64) []*inbound.ProgressEntryDTO {
	var out []*inbound.ProgressEntryDTO
	for i, w := range weights {
		e, err := s.service.RecordEntry(s.ctx, inbound.RecordEntryCommand{
			OwnerID:  s.ownerID,
			ClientID: clientID,
			Date:     s.now.AddDate(0, 0, -7*(len(weights)-1-i)),
			Weight:   w,
		})
		s.Require().NoError(err)
		out = append(out, e)
	}
	return out
}

func (s *ProgressServiceTestSuite) TestRegisterClient() {
	s.Run("CurrentWeightStartsAtStartingWeight", func() {
		c := s.register(testutils.Float(80), testutils.Float(70))

		s.Require().NotNil(c.CurrentWeight)
		s.Equal(80.0, *c.CurrentWeight)

		got, err := s.service.GetClient(s.ctx, s.ownerID, c.ID)
		s.Require().NoError(err)
		s.Equal("Camille Martin", got.Name)
	})

	s.Run("RejectsInvalidInput", func() {
		_, err := s.service.RegisterClient(s.ctx, inbound.RegisterClientCommand{OwnerID: s.ownerID, Name: " "})
		s.True(errors.Is(err, errors.CodeValidationFailed))

		_, err = s.service.RegisterClient(s.ctx, inbound.RegisterClientCommand{
			OwnerID: s.ownerID, Name: "Léa", GoalWeight: testutils.Float(-1),
		})
		s.True(errors.Is(err, errors.CodeValidationFailed))
	})

	s.Run("OtherOwnerCannotSeeClient", func() {
		c := s.register(nil, nil)
		_, err := s.service.GetClient(s.ctx, uuid.New(), c.ID)
		s.True(errors.Is(err, errors.CodeClientNotFound))
	})
}

func (s *ProgressServiceTestSuite) TestEntries() {
	c := s.register(testutils.Float(80), testutils.Float(70))
	entries := s.record(c.ID, 78, 77, 76)

	got, err := s.service.GetClient(s.ctx, s.ownerID, c.ID)
	s.Require().NoError(err)
	s.Equal(76.0, *got.CurrentWeight)

	list, err := s.service.ListEntries(s.ctx, s.ownerID, c.ID)
	s.Require().NoError(err)
	s.Require().Len(list, 3)
	s.Equal(76.0, list[0].Weight)
	s.Equal("2026-03-02", list[0].Date)

	_, err = s.service.RecordEntry(s.ctx, inbound.RecordEntryCommand{
		OwnerID: s.ownerID, ClientID: c.ID, Date: s.now, Weight: 0,
	})
	s.True(errors.Is(err, errors.CodeValidationFailed))

	// Deleting the newest entry moves the current weight back.
	updated, err := s.service.DeleteEntry(s.ctx, s.ownerID, entries[2].ID)
	s.Require().NoError(err)
	s.Equal(77.0, *updated.CurrentWeight)

	_, err = s.service.DeleteEntry(s.ctx, uuid.New(), entries[1].ID)
	s.True(errors.Is(err, errors.CodeNotFound))

	_, err = s.service.DeleteEntry(s.ctx, s.ownerID, entries[1].ID)
	s.Require().NoError(err)
	updated, err = s.service.DeleteEntry(s.ctx, s.ownerID, entries[0].ID)
	s.Require().NoError(err)
	s.Equal(80.0, *updated.CurrentWeight)

	_, err = s.service.DeleteEntry(s.ctx, s.ownerID, entries[0].ID)
	s.True(errors.Is(err, errors.CodeNotFound))
}

func (s *ProgressServiceTestSuite) TestAnalyze() {
	s.Run("HalfwayToGoal", func() {
		c := s.register(testutils.Float(80), testutils.Float(70))
		s.record(c.ID, 76.5, 76, 75.5, 75)

		a, err := s.service.Analyze(s.ctx, s.ownerID, c.ID)

		s.Require().NoError(err)
		s.Equal(4, a.EntryCount)
		s.InDelta(50, a.ProgressPercentage, 1e-9)
		s.Equal(progress.TrendLosing, a.Trend)
		s.Require().NotNil(a.NextMilestone)
		s.InDelta(73, a.NextMilestone.Target, 1e-9)
		s.Equal(4, a.NextMilestone.Weeks)
	})

	s.Run("NoEntries", func() {
		c := s.register(testutils.Float(80), testutils.Float(70))
		_, err := s.service.Analyze(s.ctx, s.ownerID, c.ID)
		s.True(errors.Is(err, errors.CodeNoProgressData))
	})

	s.Run("NoGoalWeight", func() {
		c := s.register(testutils.Float(80), nil)
		s.record(c.ID, 79)
		_, err := s.service.Analyze(s.ctx, s.ownerID, c.ID)
		s.True(errors.Is(err, errors.CodeValidationFailed))
	})
}

func (s *ProgressServiceTestSuite) TestAnalyze_CachesUntilNextEntry() {
	c := s.register(testutils.Float(80), testutils.Float(70))
	s.record(c.ID, 78, 77)

	first, err := s.service.Analyze(s.ctx, s.ownerID, c.ID)
	s.Require().NoError(err)
	cached, err := s.service.Analyze(s.ctx, s.ownerID, c.ID)
	s.Require().NoError(err)

	s.Equal(first.CurrentWeight, cached.CurrentWeight)
	s.Equal(1, s.lookups.hits)
	s.Equal(1, s.lookups.misses)

	exists, err := s.cache.Exists(s.ctx, cacheKey(c.ID))
	s.Require().NoError(err)
	s.True(exists)

	s.now = s.now.AddDate(0, 0, 7)
	s.record(c.ID, 76)

	exists, err = s.cache.Exists(s.ctx, cacheKey(c.ID))
	s.Require().NoError(err)
	s.False(exists)

	fresh, err := s.service.Analyze(s.ctx, s.ownerID, c.ID)
	s.Require().NoError(err)
	s.Equal(76.0, fresh.CurrentWeight)
	s.Equal(3, fresh.EntryCount)
}

func (s *ProgressServiceTestSuite) TestRecommendTemplates() {
	for _, t := range []struct {
		name string
		goal plan.Goal
	}{
		{"Sèche progressive", plan.GoalWeightLoss},
		{"Maintien", plan.GoalMaintenance},
		{"Prise de masse", plan.GoalWeightGain},
	} {
		tpl, err := plan.NewTemplate(s.ownerID, t.name, t.goal, nil)
		s.Require().NoError(err)
		s.Require().NoError(s.templates.Create(s.ctx, tpl))
	}

	c := s.register(testutils.Float(80), testutils.Float(70))
	s.record(c.ID, 76.5, 76, 75.5, 75)

	rec, err := s.service.RecommendTemplates(s.ctx, s.ownerID, c.ID)

	s.Require().NoError(err)
	s.Equal(string(plan.GoalWeightLoss), rec.Goal)
	// 0.5*50 + 0.3*33.3 + 0.2*100
	s.InDelta(55, rec.Analysis.Effectiveness.Score, 1e-9)
	s.Equal(progress.StandingNeedsAdjustment, rec.Standing)
	s.Require().Len(rec.Templates, 1)
	s.Equal("Sèche progressive", rec.Templates[0].Name)
}
