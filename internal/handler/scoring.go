package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/attaboy/fairway/internal/domain"
	"github.com/attaboy/fairway/internal/games"
	"github.com/attaboy/fairway/internal/ledger"
	"github.com/attaboy/fairway/internal/service"
	"github.com/attaboy/fairway/internal/settlement"
	"github.com/go-chi/chi/v5"
)

// ScoringService is the subset of service.ScoringService the handlers call.
type ScoringService interface {
	AllocateStrokes(ctx context.Context, input service.AllocateInput) (domain.StrokeAllocation, error)
	SetupGroup(ctx context.Context, input ledger.GroupSetup) (*domain.Group, error)
	Group(ctx context.Context, ref domain.GroupRef) (*domain.Group, error)
	ApplyHoleUpdate(ctx context.Context, u ledger.HoleUpdate) (*domain.Group, error)
	FinalizeHole(ctx context.Context, ref domain.GroupRef, hole int, ch domain.Channel) error
	GetVerificationStatus(ctx context.Context, ref domain.GroupRef, hole int) (domain.HoleVerification, error)
	PerformVerificationCheck(ctx context.Context, ref domain.GroupRef, hole int) (ledger.CheckResult, error)
	OverrideDiscrepancy(ctx context.Context, ref domain.GroupRef, hole int, actor string) (*domain.Group, error)
	SyncVerifier(ctx context.Context, ref domain.GroupRef, hole int, actor string) (*domain.Group, error)
	VerificationSummary(ctx context.Context, ref domain.GroupRef) (map[domain.VerificationStatus]int, error)
	ComputeGames(ctx context.Context, ref domain.GroupRef) (*games.Summary, error)
	SettleMoney(ctx context.Context, ref domain.GroupRef) (*settlement.Statement, error)
	Events(ctx context.Context, ref domain.GroupRef) ([]domain.AuditEvent, error)
	Subscribe(ctx context.Context, ref domain.GroupRef, fn func(*domain.Group)) (func(), error)
}

// ScoringHandler handles the group scoring endpoints.
type ScoringHandler struct {
	svc ScoringService
}

// NewScoringHandler creates a new ScoringHandler.
func NewScoringHandler(svc ScoringService) *ScoringHandler {
	return &ScoringHandler{svc: svc}
}

// SetupRequest is the body of PUT /tournaments/{tournamentID}/groups/{groupID}.
type SetupRequest struct {
	StartingHole int                  `json:"starting_hole"`
	HasVerifier  bool                 `json:"has_verifier"`
	Teebox       domain.Teebox        `json:"teebox"`
	Players      []domain.GroupPlayer `json:"players"`
	Config       domain.GameConfig    `json:"config"`
	Actor        string               `json:"actor"`
}

// HoleRequest is the body of a channel's hole submission.
type HoleRequest struct {
	Actor   string                       `json:"actor"`
	Entries map[string]domain.ScoreEntry `json:"entries"`
}

// ActorRequest is the body of override and sync requests.
type ActorRequest struct {
	Actor string `json:"actor"`
}

// HoleResponse reports the hole's verification state after a write.
type HoleResponse struct {
	Version      int64                   `json:"version"`
	Hole         int                     `json:"hole"`
	Verification domain.HoleVerification `json:"verification"`
}

// AllocateStrokes handles POST /strokes/allocate.
func (h *ScoringHandler) AllocateStrokes(w http.ResponseWriter, r *http.Request) {
	var input service.AllocateInput
	if err := DecodeJSON(r, &input); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}
	alloc, err := h.svc.AllocateStrokes(r.Context(), input)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, alloc)
}

// SetupGroup handles PUT /tournaments/{tournamentID}/groups/{groupID}.
func (h *ScoringHandler) SetupGroup(w http.ResponseWriter, r *http.Request) {
	var req SetupRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}
	g, err := h.svc.SetupGroup(r.Context(), ledger.GroupSetup{
		Ref:          groupRef(r),
		StartingHole: req.StartingHole,
		HasVerifier:  req.HasVerifier,
		Teebox:       req.Teebox,
		Players:      req.Players,
		Config:       req.Config,
		Actor:        req.Actor,
	})
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, g)
}

// GetGroup handles GET /tournaments/{tournamentID}/groups/{groupID}.
func (h *ScoringHandler) GetGroup(w http.ResponseWriter, r *http.Request) {
	g, err := h.svc.Group(r.Context(), groupRef(r))
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, g)
}

// SubmitHole handles PUT /tournaments/{tournamentID}/groups/{groupID}/holes/{hole}/{channel}.
func (h *ScoringHandler) SubmitHole(w http.ResponseWriter, r *http.Request) {
	hole, err := holeParam(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	var req HoleRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}
	g, err := h.svc.ApplyHoleUpdate(r.Context(), ledger.HoleUpdate{
		Ref:     groupRef(r),
		Hole:    hole,
		Channel: domain.Channel(chi.URLParam(r, "channel")),
		Actor:   req.Actor,
		Entries: req.Entries,
	})
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, HoleResponse{Version: g.Version, Hole: hole, Verification: g.HoleStatus(hole)})
}

// FinalizeHole handles POST .../holes/{hole}/finalize?channel=.
func (h *ScoringHandler) FinalizeHole(w http.ResponseWriter, r *http.Request) {
	hole, err := holeParam(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	ch := domain.Channel(r.URL.Query().Get("channel"))
	if ch == "" {
		ch = domain.ChannelScorer
	}
	if !ch.Valid() {
		RespondError(w, domain.ErrValidation(fmt.Sprintf("unknown channel %q", ch)))
		return
	}
	if err := h.svc.FinalizeHole(r.Context(), groupRef(r), hole, ch); err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]any{"hole": hole, "channel": ch, "complete": true})
}

// GetVerification handles GET .../holes/{hole}/verification.
func (h *ScoringHandler) GetVerification(w http.ResponseWriter, r *http.Request) {
	hole, err := holeParam(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	hv, err := h.svc.GetVerificationStatus(r.Context(), groupRef(r), hole)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, hv)
}

// CheckVerification handles POST .../holes/{hole}/verification/check.
func (h *ScoringHandler) CheckVerification(w http.ResponseWriter, r *http.Request) {
	hole, err := holeParam(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	res, err := h.svc.PerformVerificationCheck(r.Context(), groupRef(r), hole)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, res)
}

// OverrideDiscrepancy handles POST .../holes/{hole}/verification/override.
func (h *ScoringHandler) OverrideDiscrepancy(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, h.svc.OverrideDiscrepancy)
}

// SyncVerifier handles POST .../holes/{hole}/verification/sync.
func (h *ScoringHandler) SyncVerifier(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, h.svc.SyncVerifier)
}

func (h *ScoringHandler) resolve(w http.ResponseWriter, r *http.Request,
	op func(context.Context, domain.GroupRef, int, string) (*domain.Group, error)) {
	hole, err := holeParam(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	var req ActorRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}
	if req.Actor == "" {
		RespondError(w, domain.ErrValidation("actor is required"))
		return
	}
	g, err := op(r.Context(), groupRef(r), hole, req.Actor)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, HoleResponse{Version: g.Version, Hole: hole, Verification: g.HoleStatus(hole)})
}

// VerificationSummary handles GET .../verification.
func (h *ScoringHandler) VerificationSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := h.svc.VerificationSummary(r.Context(), groupRef(r))
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, sum)
}

// GetGames handles GET .../games.
func (h *ScoringHandler) GetGames(w http.ResponseWriter, r *http.Request) {
	sum, err := h.svc.ComputeGames(r.Context(), groupRef(r))
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, sum)
}

// SettlementResponse is a settlement statement with its flattened lines.
type SettlementResponse struct {
	*settlement.Statement
	Lines []domain.SettlementLine `json:"lines"`
}

// GetSettlement handles GET .../settlement.
func (h *ScoringHandler) GetSettlement(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.SettleMoney(r.Context(), groupRef(r))
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, SettlementResponse{Statement: st, Lines: st.Lines()})
}

// ListEvents handles GET .../events.
func (h *ScoringHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.svc.Events(r.Context(), groupRef(r))
	if err != nil {
		RespondError(w, err)
		return
	}
	if events == nil {
		events = []domain.AuditEvent{}
	}
	RespondJSON(w, http.StatusOK, events)
}

func groupRef(r *http.Request) domain.GroupRef {
	return domain.GroupRef{
		TournamentID: chi.URLParam(r, "tournamentID"),
		GroupID:      chi.URLParam(r, "groupID"),
	}
}

func holeParam(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "hole")
	hole, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.ErrValidation(fmt.Sprintf("invalid hole %q", raw))
	}
	if err := domain.ValidateHole(hole); err != nil {
		return 0, err
	}
	return hole, nil
}
