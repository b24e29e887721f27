package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultImportTimeout is the maximum duration of one import run.
const DefaultImportTimeout = 10 * time.Minute

// ServiceConfig configures a Service. Zero values select defaults.
type ServiceConfig struct {
	Schema               *Schema
	Concurrency          int // households created at once within a run
	MaxConcurrentImports int // runs allowed at once
	ImportWait           time.Duration
	ImportTimeout        time.Duration
	Metrics              *Metrics
	Logger               *slog.Logger
	Clock                func() time.Time
}

// Service is the entry point for import, export and directory administration.
type Service struct {
	dir        Directory
	normalizer *Normalizer
	engine     *Engine
	limiter    *ImportLimiter
	metrics    *Metrics
	logger     *slog.Logger
	now        func() time.Time
	timeout    time.Duration
}

// NewService creates a Service over dir.
func NewService(dir Directory, cfg ServiceConfig) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := cfg.Clock
	if now == nil {
		now = time.Now
	}
	timeout := cfg.ImportTimeout
	if timeout <= 0 {
		timeout = DefaultImportTimeout
	}

	return &Service{
		dir:        dir,
		normalizer: NewNormalizer(cfg.Schema),
		engine: NewEngine(dir,
			WithConcurrency(cfg.Concurrency),
			WithLogger(logger),
			WithMetrics(cfg.Metrics),
		),
		limiter: NewImportLimiter(cfg.MaxConcurrentImports, cfg.ImportWait),
		metrics: cfg.Metrics,
		logger:  logger,
		now:     now,
		timeout: timeout,
	}
}

// Schema returns the schema used for imports.
func (s *Service) Schema() *Schema {
	return s.normalizer.Schema()
}

// ============================================================================
// Import
// ============================================================================

// ImportFile imports a roster file.
//
// File-level errors (too large, unreadable, no data rows, no import slot)
// are returned. Everything else is reported in the result's tally.
func (s *Service) ImportFile(ctx context.Context, fileName string, data []byte) (*ImportResult, error) {
	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	// The caller cannot cancel a run; request values stay for logging.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	start := time.Now()
	runID := uuid.New().String()
	logger := s.logger.With("run_id", runID, "file", fileName)

	records, err := ReadSheet(fileName, data)
	if err != nil {
		logger.WarnContext(ctx, "import rejected", "error", err)
		return nil, err
	}
	sheet, err := ResolveRows(records, s.Schema())
	if err != nil {
		logger.WarnContext(ctx, "import rejected", "error", err)
		return nil, err
	}

	grouping := GroupSheet(sheet, s.normalizer, s.now())
	tally := s.engine.ImportHouseholds(ctx, grouping)

	result := &ImportResult{
		RunID:      runID,
		FileName:   fileName,
		HeaderRow:  sheet.HeaderRow,
		DataRows:   len(sheet.Rows),
		Households: grouping.Len(),
		Tally:      tally,
		Summary:    tally.Summary(),
		Duration:   time.Since(start),
	}
	s.metrics.ObserveImportDuration(result.Duration)

	logger.InfoContext(ctx, "import complete",
		"header_row", result.HeaderRow,
		"rows", result.DataRows,
		"households", result.Households,
		"succeeded", tally.Succeeded,
		"failed", tally.Failed,
		"warnings", len(tally.Warnings),
		"duration_ms", result.Duration.Milliseconds(),
	)
	return result, nil
}

// ImportRows groups already-parsed rows and imports them. Row i is reported
// as line i+1 in warnings.
func (s *Service) ImportRows(ctx context.Context, rows []ImportRow) *Tally {
	grouping := GroupHouseholds(rows, s.normalizer, s.now())
	return s.engine.ImportHouseholds(ctx, grouping)
}

// LimiterStatus reports import slot occupancy.
func (s *Service) LimiterStatus() LimiterStatus {
	return s.limiter.Status()
}

// Drain waits for running imports to finish.
func (s *Service) Drain(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

// ============================================================================
// Export
// ============================================================================

// Export flattens the directory into a sheet.
func (s *Service) Export(ctx context.Context, mode ExportMode, opts ExportOptions) (*Sheet, error) {
	households, err := s.dir.ListHouseholds(ctx)
	if err != nil {
		return nil, fmt.Errorf("list households: %w", err)
	}
	sheet, err := ExportHouseholds(households, mode, opts, s.now())
	if err != nil {
		return nil, err
	}
	s.metrics.AddExportRows(mode, len(sheet.Rows))
	return sheet, nil
}

// ExportFileName returns the download name for an export run now.
func (s *Service) ExportFileName(mode ExportMode, opts ExportOptions) string {
	return ExportFileName(mode, opts, s.now())
}

// Template returns the import template.
func (s *Service) Template() *Sheet {
	return ImportTemplate()
}

// ============================================================================
// Directory administration
// ============================================================================

// ListHouseholds returns the households passing opts' filters.
// opts.Month is ignored.
func (s *Service) ListHouseholds(ctx context.Context, opts ExportOptions) ([]Household, error) {
	all, err := s.dir.ListHouseholds(ctx)
	if err != nil {
		return nil, fmt.Errorf("list households: %w", err)
	}
	out := all[:0]
	for i := range all {
		if opts.Matches(&all[i]) {
			out = append(out, all[i])
		}
	}
	return out, nil
}

// GetHousehold looks a household up by its number.
func (s *Service) GetHousehold(ctx context.Context, number string) (*Household, error) {
	return s.dir.GetHouseholdByNumber(ctx, NumericID(number))
}

// UpdateHousehold applies a patch to household-level fields.
// A status change goes through SetVerificationStatus so the verifier is kept.
func (s *Service) UpdateHousehold(ctx context.Context, id string, patch HouseholdPatch) error {
	if patch.Status != nil && !patch.Status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, *patch.Status)
	}
	if patch.Number != nil {
		n := NumericID(*patch.Number)
		if n == "" {
			return fmt.Errorf("household number must not be empty")
		}
		patch.Number = &n
	}
	if patch.Sector != nil {
		sec := s.normalizer.Sector(string(*patch.Sector))
		patch.Sector = &sec
	}
	status := patch.Status
	patch.Status = nil

	if err := s.dir.UpdateHousehold(ctx, id, patch); err != nil {
		return err
	}
	if status != nil {
		return s.SetVerificationStatus(ctx, id, *status)
	}
	return nil
}

// SetVerificationStatus changes a household's status. The actor is taken
// from ctx (see ContextWithActor).
func (s *Service) SetVerificationStatus(ctx context.Context, id string, status VerificationStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	actor := ActorFromContext(ctx)
	if err := s.dir.UpdateVerificationStatus(ctx, id, status, actor); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "verification status changed", "household_id", id, "status", status, "actor", actor)
	return nil
}

// DeleteHousehold removes a household and all of its members.
func (s *Service) DeleteHousehold(ctx context.Context, id string) error {
	if err := s.dir.DeleteHousehold(ctx, id); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "household deleted", "household_id", id, "actor", ActorFromContext(ctx))
	return nil
}

// AddMember adds a member to a household. A second head is refused.
func (s *Service) AddMember(ctx context.Context, householdID string, m Member) (Member, error) {
	h, err := s.dir.GetHousehold(ctx, householdID)
	if err != nil {
		return Member{}, err
	}
	m = s.cleanMember(m)
	if _, hasHead := h.Head(); hasHead && m.IsHead() {
		return Member{}, ErrMultipleHeads
	}
	if m.DomicileAddress == "" {
		m.DomicileAddress = h.Address
	}
	return s.dir.AddMember(ctx, householdID, m)
}

// UpdateMember replaces a member's fields. The head keeps the head role and
// no other member may take it.
func (s *Service) UpdateMember(ctx context.Context, m Member) error {
	current, err := s.dir.GetMember(ctx, m.ID)
	if err != nil {
		return err
	}
	m = s.cleanMember(m)
	m.HouseholdID = current.HouseholdID

	switch {
	case current.IsHead() && !m.IsHead():
		return ErrHeadMember
	case !current.IsHead() && m.IsHead():
		h, err := s.dir.GetHousehold(ctx, current.HouseholdID)
		if err != nil {
			return err
		}
		if _, hasHead := h.Head(); hasHead {
			return ErrMultipleHeads
		}
	}
	return s.dir.UpdateMember(ctx, m)
}

// DeleteMember removes a member. The head can only leave with the household.
func (s *Service) DeleteMember(ctx context.Context, id string) error {
	m, err := s.dir.GetMember(ctx, id)
	if err != nil {
		return err
	}
	if m.IsHead() {
		return ErrHeadMember
	}
	return s.dir.DeleteMember(ctx, id)
}

// cleanMember applies import normalization to a hand-entered member.
func (s *Service) cleanMember(m Member) Member {
	n := s.normalizer
	m.FullName = strings.TrimSpace(m.FullName)
	m.NationalID = NumericID(m.NationalID)
	m.BirthPlace = strings.TrimSpace(m.BirthPlace)
	if m.BirthDate != "" {
		m.BirthDate = n.Date(m.BirthDate)
	}
	if m.Gender != GenderUnspecified {
		m.Gender = n.Gender(string(m.Gender))
	}
	m.Relationship = n.Relationship(string(m.Relationship))
	m.ChurchStatus = n.ChurchStatus(string(m.ChurchStatus))
	m.MaritalStatus = n.MaritalStatus(string(m.MaritalStatus))
	m.BloodType = n.BloodType(string(m.BloodType))
	return m
}

// IsNotFound reports whether err means the household or member is unknown.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
