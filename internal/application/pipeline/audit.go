package pipeline

import (
	"time"

	"github.com/google/uuid"
	"github.com/nutriplan/core/internal/ports/inbound"
	"go.uber.org/zap"
)

// AuditEntry is one recorded event of a pipeline run
type AuditEntry struct {
	Stage    string
	Event    string
	Item     string
	Detail   string
	Duration time.Duration
	At       time.Time
}

// Audit is the trail of one pipeline run. A new Audit is created for every
// invocation and is not safe for concurrent use.
type Audit struct {
	RunID   uuid.UUID
	entries []AuditEntry
	started map[string]time.Time
	logger  *zap.Logger
	now     func() time.Time
}

// NewAudit creates the trail for one run
func NewAudit(runID uuid.UUID, logger *zap.Logger) *Audit {
	return &Audit{
		RunID:   runID,
		started: make(map[string]time.Time),
		logger:  logger.With(zap.String("run_id", runID.String())),
		now:     time.Now,
	}
}

// Begin marks the start of a stage
func (a *Audit) Begin(stage string) {
	at := a.now()
	a.started[stage] = at
	a.entries = append(a.entries, AuditEntry{Stage: stage, Event: "started", At: at})
}

// End marks the end of a stage and returns its duration
func (a *Audit) End(stage string, detail string) time.Duration {
	at := a.now()
	d := at.Sub(a.started[stage])
	a.entries = append(a.entries, AuditEntry{Stage: stage, Event: "finished", Detail: detail, Duration: d, At: at})
	a.logger.Debug("Stage finished",
		zap.String("stage", stage),
		zap.String("detail", detail),
		zap.Duration("duration", d),
	)
	return d
}

// Fail records a skipped row
func (a *Audit) Fail(stage, item string, err error) {
	a.entries = append(a.entries, AuditEntry{Stage: stage, Event: "failed", Item: item, Detail: err.Error(), At: a.now()})
}

// Stages summarizes every finished stage in run order
func (a *Audit) Stages() []inbound.StageSummary {
	failed := make(map[string]int)
	var out []inbound.StageSummary
	for _, e := range a.entries {
		switch e.Event {
		case "failed":
			failed[e.Stage]++
		case "finished":
			out = append(out, inbound.StageSummary{
				Stage:      e.Stage,
				Detail:     e.Detail,
				DurationMs: e.Duration.Milliseconds(),
				Failures:   failed[e.Stage],
			})
		}
	}
	return out
}
