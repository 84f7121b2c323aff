package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"

	"github.com/Devansh171021/swpl/internal/domain/auction"
	"github.com/Devansh171021/swpl/internal/domain/player"
	"github.com/Devansh171021/swpl/internal/domain/team"
	"github.com/Devansh171021/swpl/internal/domain/transaction"
	"github.com/Devansh171021/swpl/internal/platform/logging"
	"github.com/Devansh171021/swpl/internal/usecase"
)

type Handler struct {
	auctionService *usecase.AuctionService
	historyService *usecase.HistoryService
	logger         *logging.Logger
	validator      *validator.Validate
}

func NewHandler(
	auctionService *usecase.AuctionService,
	historyService *usecase.HistoryService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		auctionService: auctionService,
		historyService: historyService,
		logger:         logger,
		validator:      validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) StartAuction(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.StartAuction")
	defer span.End()

	var req startAuctionRequest
	if r.Body != nil && r.ContentLength != 0 {
		decoder := sonic.ConfigDefault.NewDecoder(r.Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&req); err != nil {
			writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
			return
		}
	}

	state, err := h.auctionService.StartAuction(ctx, req.Refresh)
	if err != nil {
		h.logger.ErrorContext(ctx, "start auction failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, auctionStateToDTO(ctx, state))
}

func (h *Handler) GetAuctionState(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetAuctionState")
	defer span.End()

	state, err := h.auctionService.GetState(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, auctionStateToDTO(ctx, state))
}

func (h *Handler) SellPlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SellPlayer")
	defer span.End()

	var req sellRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	state, err := h.auctionService.Sell(ctx, usecase.SellInput{
		Team:   req.Team,
		Amount: req.Amount,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "sell failed", "team", req.Team, "amount", req.Amount, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, auctionStateToDTO(ctx, state))
}

func (h *Handler) PassPlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.PassPlayer")
	defer span.End()

	state, err := h.auctionService.Pass(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "pass failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, auctionStateToDTO(ctx, state))
}

func (h *Handler) NavigateAuction(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.NavigateAuction")
	defer span.End()

	var req navigateRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	delta := 1
	if req.Direction == "previous" {
		delta = -1
	}

	state, err := h.auctionService.Navigate(ctx, delta)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, auctionStateToDTO(ctx, state))
}

func (h *Handler) ListTeams(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTeams")
	defer span.End()

	teams, err := h.auctionService.ListTeams(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list teams failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]teamDTO, 0, len(teams))
	for _, t := range teams {
		items = append(items, teamToDTO(ctx, t))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetTeamSummary(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetTeamSummary")
	defer span.End()

	teamName := strings.TrimSpace(r.PathValue("teamName"))
	summary, err := h.auctionService.GetTeamSummary(ctx, teamName)
	if err != nil {
		h.logger.WarnContext(ctx, "get team summary failed", "team", teamName, "error", err)
		writeError(ctx, w, err)
		return
	}

	players := make([]dispositionDTO, 0, len(summary.Players))
	for _, d := range summary.Players {
		players = append(players, dispositionToDTO(ctx, d))
	}

	writeSuccess(ctx, w, http.StatusOK, teamSummaryDTO{
		Team:    teamToDTO(ctx, summary.Team),
		Players: players,
	})
}

func (h *Handler) ListHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListHistory")
	defer span.End()

	records, err := h.historyService.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list history failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]transactionDTO, 0, len(records))
	for _, record := range records {
		items = append(items, transactionToDTO(ctx, record))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) ExportHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ExportHistory")
	defer span.End()

	csvOut, err := h.historyService.ExportCSV(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "export history failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="auction-history.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(csvOut))
}

func (h *Handler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ClearHistory")
	defer span.End()

	var req clearHistoryRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}

	if err := h.historyService.Clear(ctx, req.Confirm); err != nil {
		h.logger.WarnContext(ctx, "clear history failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "cleared"})
}

func (h *Handler) ResyncHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ResyncHistory")
	defer span.End()

	result, err := h.historyService.Resync(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "resync history failed",
			"total", result.Total,
			"failed", result.Failed,
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

type startAuctionRequest struct {
	Refresh bool `json:"refresh"`
}

type sellRequest struct {
	Team   string `json:"team" validate:"required"`
	Amount int64  `json:"amount" validate:"gte=0"`
}

type navigateRequest struct {
	Direction string `json:"direction" validate:"required,oneof=next previous"`
}

type clearHistoryRequest struct {
	Confirm bool `json:"confirm"`
}

type playerDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	Category  string `json:"category,omitempty"`
	BasePrice int64  `json:"basePrice"`
	ImageURL  string `json:"imageUrl,omitempty"`
}

type dispositionDTO struct {
	Player playerDTO `json:"player"`
	Round  int       `json:"round"`
	Status string    `json:"status"`
	Team   string    `json:"team,omitempty"`
	Amount int64     `json:"amount"`
}

type teamDTO struct {
	Name        string `json:"name"`
	Purse       int64  `json:"purse"`
	PlayerCount int    `json:"playerCount"`
	Color       string `json:"color,omitempty"`
	Captain     string `json:"captain,omitempty"`
	Mentor      string `json:"mentor,omitempty"`
}

type teamSummaryDTO struct {
	Team    teamDTO          `json:"team"`
	Players []dispositionDTO `json:"players"`
}

type auctionStateDTO struct {
	SessionID string           `json:"sessionId"`
	Round     int              `json:"round"`
	Phase     string           `json:"phase"`
	Current   *playerDTO       `json:"current,omitempty"`
	Position  int              `json:"position"`
	QueueSize int              `json:"queueSize"`
	Remaining int              `json:"remaining"`
	Sold      []dispositionDTO `json:"sold"`
	Unsold    []dispositionDTO `json:"unsold"`
	Teams     []teamDTO        `json:"teams"`
}

type transactionDTO struct {
	Timestamp  string `json:"timestamp"`
	PlayerName string `json:"playerName"`
	PlayerRole string `json:"playerRole"`
	BasePrice  int64  `json:"basePrice"`
	Status     string `json:"status"`
	Team       string `json:"team,omitempty"`
	Amount     int64  `json:"amount"`
	Round      int    `json:"round"`
}

func playerToDTO(_ context.Context, p player.Player) playerDTO {
	return playerDTO{
		ID:        p.ID,
		Name:      p.Name,
		Role:      string(p.Role),
		Category:  p.Category,
		BasePrice: p.BasePrice,
		ImageURL:  p.ImageURL,
	}
}

func dispositionToDTO(ctx context.Context, d auction.Disposition) dispositionDTO {
	return dispositionDTO{
		Player: playerToDTO(ctx, d.Player),
		Round:  d.Round,
		Status: string(d.Status),
		Team:   d.Team,
		Amount: d.Amount,
	}
}

func teamToDTO(_ context.Context, t team.Team) teamDTO {
	return teamDTO{
		Name:        t.Name,
		Purse:       t.Purse,
		PlayerCount: t.PlayerCount,
		Color:       t.Color,
		Captain:     t.Captain,
		Mentor:      t.Mentor,
	}
}

func auctionStateToDTO(ctx context.Context, state usecase.AuctionState) auctionStateDTO {
	dto := auctionStateDTO{
		SessionID: state.SessionID,
		Round:     state.Round,
		Phase:     string(state.Phase),
		Position:  state.Position,
		QueueSize: state.QueueSize,
		Remaining: state.Remaining,
		Sold:      make([]dispositionDTO, 0, len(state.Sold)),
		Unsold:    make([]dispositionDTO, 0, len(state.Unsold)),
		Teams:     make([]teamDTO, 0, len(state.Teams)),
	}
	if state.Current != nil {
		current := playerToDTO(ctx, *state.Current)
		dto.Current = &current
	}
	for _, d := range state.Sold {
		dto.Sold = append(dto.Sold, dispositionToDTO(ctx, d))
	}
	for _, d := range state.Unsold {
		dto.Unsold = append(dto.Unsold, dispositionToDTO(ctx, d))
	}
	for _, t := range state.Teams {
		dto.Teams = append(dto.Teams, teamToDTO(ctx, t))
	}

	return dto
}

func transactionToDTO(_ context.Context, r transaction.Record) transactionDTO {
	return transactionDTO{
		Timestamp:  r.Timestamp.UTC().Format(time.RFC3339),
		PlayerName: r.PlayerName,
		PlayerRole: r.PlayerRole,
		BasePrice:  r.BasePrice,
		Status:     r.Status,
		Team:       r.Team,
		Amount:     r.Amount,
		Round:      r.Round,
	}
}
