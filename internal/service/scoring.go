// Package service orchestrates the scoring ledger, the game calculators and
// settlement for the request handlers.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/attaboy/fairway/internal/domain"
	"github.com/attaboy/fairway/internal/games"
	"github.com/attaboy/fairway/internal/ledger"
	"github.com/attaboy/fairway/internal/metrics"
	"github.com/attaboy/fairway/internal/projection"
	"github.com/attaboy/fairway/internal/repository"
	"github.com/attaboy/fairway/internal/settlement"
	"github.com/attaboy/fairway/internal/strokes"
	"github.com/google/uuid"
)

// ScoringService handles scoring, verification, game and settlement operations.
type ScoringService struct {
	engine      *ledger.Engine
	views       *projection.Views
	db          repository.DBTX
	settlements repository.SettlementRepository
	metrics     metrics.Metrics
	logger      *slog.Logger
}

// ScoringDeps are the collaborators of a ScoringService. Settlements may be
// nil, in which case settlements are computed but not recorded.
type ScoringDeps struct {
	Engine      *ledger.Engine
	Views       *projection.Views
	DB          repository.DBTX
	Settlements repository.SettlementRepository
	Metrics     metrics.Metrics
	Logger      *slog.Logger
}

// NewScoringService creates a ScoringService.
func NewScoringService(d ScoringDeps) *ScoringService {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Metrics == nil {
		d.Metrics = metrics.Noop{}
	}
	if d.Views == nil {
		d.Views = projection.NewViews(projection.NewInMemoryStore(), 0, d.Logger, d.Metrics)
	}
	return &ScoringService{
		engine:      d.Engine,
		views:       d.Views,
		db:          d.DB,
		settlements: d.Settlements,
		metrics:     d.Metrics,
		logger:      d.Logger,
	}
}

// AllocateInput holds the fields for a one-off stroke allocation.
type AllocateInput struct {
	CourseHandicap int               `json:"course_handicap"`
	Format         domain.Format     `json:"format"`
	Teebox         domain.Teebox     `json:"teebox"`
	Config         domain.GameConfig `json:"config"`
}

// AllocateStrokes spreads a course handicap over a teebox for one format.
func (s *ScoringService) AllocateStrokes(_ context.Context, input AllocateInput) (domain.StrokeAllocation, error) {
	if !input.Format.Valid() {
		return domain.StrokeAllocation{}, domain.ErrValidation(fmt.Sprintf("unknown format %q", input.Format))
	}
	if err := input.Teebox.Validate(); err != nil {
		return domain.StrokeAllocation{}, err
	}
	return strokes.Allocate(input.CourseHandicap, input.Teebox, strokes.RulesFor(input.Format, input.Config))
}

// SetupGroup creates or redoes a group's game setup.
func (s *ScoringService) SetupGroup(ctx context.Context, input ledger.GroupSetup) (*domain.Group, error) {
	return s.engine.SetupGroup(ctx, input)
}

// Group returns the current group document.
func (s *ScoringService) Group(ctx context.Context, ref domain.GroupRef) (*domain.Group, error) {
	return s.engine.Snapshot(ctx, ref)
}

// ApplyHoleUpdate records one channel's entries for one hole.
func (s *ScoringService) ApplyHoleUpdate(ctx context.Context, u ledger.HoleUpdate) (*domain.Group, error) {
	return s.engine.ApplyHoleUpdate(ctx, u)
}

// GetVerificationStatus returns the stored verification state of a hole.
func (s *ScoringService) GetVerificationStatus(ctx context.Context, ref domain.GroupRef, hole int) (domain.HoleVerification, error) {
	return s.engine.GetVerificationStatus(ctx, ref, hole)
}

// PerformVerificationCheck re-derives a hole's status and discrepancies.
func (s *ScoringService) PerformVerificationCheck(ctx context.Context, ref domain.GroupRef, hole int) (ledger.CheckResult, error) {
	return s.engine.PerformVerificationCheck(ctx, ref, hole)
}

// OverrideDiscrepancy accepts the scorer's numbers for a discrepant hole.
func (s *ScoringService) OverrideDiscrepancy(ctx context.Context, ref domain.GroupRef, hole int, actor string) (*domain.Group, error) {
	g, err := s.engine.OverrideDiscrepancy(ctx, ref, hole, actor)
	if err != nil {
		return nil, err
	}
	s.logger.Info("discrepancy overridden",
		"tournament_id", ref.TournamentID, "group_id", ref.GroupID, "hole", hole, "actor", actor)
	return g, nil
}

// SyncVerifier copies the scorer's entries onto the verifier channel.
func (s *ScoringService) SyncVerifier(ctx context.Context, ref domain.GroupRef, hole int, actor string) (*domain.Group, error) {
	return s.engine.SyncVerifierToScorer(ctx, ref, hole, actor)
}

// FinalizeHole fails with IncompleteHole unless every player has an entry.
func (s *ScoringService) FinalizeHole(ctx context.Context, ref domain.GroupRef, hole int, ch domain.Channel) error {
	return s.engine.FinalizeHole(ctx, ref, hole, ch)
}

// ComputeGames runs every calculator the group plays against the current snapshot.
func (s *ScoringService) ComputeGames(ctx context.Context, ref domain.GroupRef) (*games.Summary, error) {
	g, err := s.engine.Snapshot(ctx, ref)
	if err != nil {
		return nil, err
	}
	return s.views.Games(ctx, g)
}

// SettleMoney settles every format for the current snapshot. When a settlement
// repository is configured the result is recorded once per group version.
func (s *ScoringService) SettleMoney(ctx context.Context, ref domain.GroupRef) (*settlement.Statement, error) {
	g, err := s.engine.Snapshot(ctx, ref)
	if err != nil {
		return nil, err
	}
	st, err := s.views.Settlement(ctx, g)
	if err != nil {
		return nil, err
	}
	for f := range st.ByFormat {
		s.metrics.IncSettlements(string(f))
	}

	if err := s.record(ctx, g, st); err != nil {
		return nil, err
	}
	return st, nil
}

// Subscribe delivers the current group document and every committed version
// after it to fn until the returned cancel func is called or ctx ends.
func (s *ScoringService) Subscribe(ctx context.Context, ref domain.GroupRef, fn func(*domain.Group)) (func(), error) {
	return s.engine.Subscribe(ctx, ref, fn)
}

// VerificationSummary counts holes per verification status.
func (s *ScoringService) VerificationSummary(ctx context.Context, ref domain.GroupRef) (map[domain.VerificationStatus]int, error) {
	return s.engine.VerificationSummary(ctx, ref)
}

// Events returns a group's audit log in commit order.
func (s *ScoringService) Events(ctx context.Context, ref domain.GroupRef) ([]domain.AuditEvent, error) {
	return s.engine.Events(ctx, ref)
}

func (s *ScoringService) record(ctx context.Context, g *domain.Group, st *settlement.Statement) error {
	if s.settlements == nil {
		return nil
	}
	latest, err := s.settlements.Latest(ctx, s.db, g.Ref())
	if err != nil {
		return domain.ErrInternal("load settlement", err)
	}
	if latest != nil && latest.GroupVersion == g.Version {
		return nil
	}

	rec := &domain.SettlementRecord{
		ID:           uuid.New(),
		TournamentID: g.TournamentID,
		GroupID:      g.GroupID,
		GroupVersion: g.Version,
		Lines:        st.Lines(),
		CreatedAt:    time.Now().UTC(),
	}
	inserted, err := s.settlements.Insert(ctx, s.db, rec)
	if err != nil {
		return domain.ErrInternal("record settlement", err)
	}
	if !inserted {
		s.logger.Debug("settlement already recorded",
			"tournament_id", g.TournamentID, "group_id", g.GroupID, "group_version", g.Version)
		return nil
	}
	s.logger.Info("settlement recorded",
		"tournament_id", g.TournamentID, "group_id", g.GroupID,
		"group_version", g.Version, "settlement_id", rec.ID)
	return nil
}
