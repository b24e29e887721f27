package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// Directory is the household store the pipeline reconciles against.
//
// Implementations must enforce household number uniqueness themselves and
// return ErrAlreadyRegistered from CreateHousehold on a conflict, and
// ErrNotFound for unknown ids.
type Directory interface {
	ExistsByHouseholdNumber(ctx context.Context, number string) (bool, error)
	CreateHousehold(ctx context.Context, h *Household) (string, error)
	ListHouseholds(ctx context.Context) ([]Household, error)
	GetHouseholdByNumber(ctx context.Context, number string) (*Household, error)
	GetHousehold(ctx context.Context, id string) (*Household, error)
	UpdateHousehold(ctx context.Context, id string, patch HouseholdPatch) error
	UpdateVerificationStatus(ctx context.Context, id string, status VerificationStatus, actorID string) error
	DeleteHousehold(ctx context.Context, id string) error
	AddMember(ctx context.Context, householdID string, m Member) (Member, error)
	GetMember(ctx context.Context, id string) (Member, error)
	UpdateMember(ctx context.Context, m Member) error
	DeleteMember(ctx context.Context, id string) error
}

// Engine creates grouped households in a Directory and tallies the outcome.
type Engine struct {
	dir         Directory
	logger      *slog.Logger
	metrics     *Metrics
	concurrency int
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithConcurrency sets how many households are created at once.
// Values below 2 keep the sequential behavior.
func WithConcurrency(n int) EngineOption {
	return func(e *Engine) { e.concurrency = n }
}

// WithLogger sets the logger used for per-household failures.
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) { e.logger = l }
}

// WithMetrics records household outcomes.
func WithMetrics(m *Metrics) EngineOption {
	return func(e *Engine) { e.metrics = m }
}

// NewEngine creates an engine over dir.
func NewEngine(dir Directory, opts ...EngineOption) *Engine {
	e := &Engine{dir: dir, logger: slog.Default(), concurrency: 1}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ImportHouseholds checks and creates every household in g.
//
// A failure is recorded per household and never stops the run. Earlier
// successes are never rolled back. The tally lists successes and failures in
// the grouping's input order for any concurrency setting, and carries the
// grouping's row warnings.
func (e *Engine) ImportHouseholds(ctx context.Context, g *Grouping) *Tally {
	households := g.Households()
	outcomes := make([]error, len(households))

	if e.concurrency < 2 {
		for i, h := range households {
			outcomes[i] = e.importOne(ctx, h)
		}
	} else {
		var eg errgroup.Group
		eg.SetLimit(e.concurrency)
		for i, h := range households {
			eg.Go(func() error {
				outcomes[i] = e.importOne(ctx, h)
				return nil
			})
		}
		_ = eg.Wait()
	}

	tally := &Tally{Warnings: append([]RowWarning(nil), g.Warnings...)}
	for i, err := range outcomes {
		e.metrics.IncrementOutcome(err)
		if err != nil {
			tally.fail(households[i].Number, err.Error())
			continue
		}
		tally.succeed()
	}
	e.metrics.AddSkippedRows(g.SkippedRows)

	return tally
}

// importOne runs the check-then-create sequence for a single household.
// The existence check only short-circuits the common case: the directory's
// ErrAlreadyRegistered on create is the authoritative duplicate signal.
func (e *Engine) importOne(ctx context.Context, h *Household) error {
	if err := validateHousehold(h); err != nil {
		e.logFailure(ctx, h, err)
		return err
	}

	exists, err := e.dir.ExistsByHouseholdNumber(ctx, h.Number)
	if err != nil {
		err = fmt.Errorf("check household: %w", err)
		e.logFailure(ctx, h, err)
		return err
	}
	if exists {
		e.logFailure(ctx, h, ErrAlreadyRegistered)
		return ErrAlreadyRegistered
	}

	id, err := e.dir.CreateHousehold(ctx, h)
	if err != nil {
		if errors.Is(err, ErrAlreadyRegistered) {
			err = ErrAlreadyRegistered
		}
		e.logFailure(ctx, h, err)
		return err
	}
	h.ID = id
	return nil
}

// validateHousehold enforces the creation invariants: at least one member and
// at most one head.
func validateHousehold(h *Household) error {
	if len(h.Members) == 0 {
		return ErrNoMembers
	}
	heads := 0
	for _, m := range h.Members {
		if m.IsHead() {
			heads++
		}
	}
	if heads > 1 {
		return ErrMultipleHeads
	}
	return nil
}

func (e *Engine) logFailure(ctx context.Context, h *Household, err error) {
	e.logger.WarnContext(ctx, "household import failed",
		"household_number", h.Number,
		"members", len(h.Members),
		"error", err,
	)
}
