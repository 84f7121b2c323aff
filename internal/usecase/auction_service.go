package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Devansh171021/swpl/internal/domain/auction"
	"github.com/Devansh171021/swpl/internal/domain/player"
	"github.com/Devansh171021/swpl/internal/domain/team"
	"github.com/Devansh171021/swpl/internal/domain/transaction"
	"github.com/Devansh171021/swpl/internal/platform/id"
	"github.com/Devansh171021/swpl/internal/platform/logging"
)

// RosterImporter pulls players and franchises from the configured
// spreadsheet source. An unconfigured importer reports Configured false
// and the service falls back to the seed roster.
type RosterImporter interface {
	Configured() bool
	FetchAll(ctx context.Context) ([]player.Player, []team.Team, error)
	InvalidateCache(ctx context.Context)
}

// DispositionWriter mirrors dispositions to the spreadsheet endpoint.
type DispositionWriter interface {
	Configured() bool
	Notify(ctx context.Context, record transaction.Record, rowIndex int) error
	SyncAll(ctx context.Context, records []transaction.Record) (ResyncResult, error)
}

// ResyncResult summarizes one full-history write-back replay.
type ResyncResult struct {
	Total   int `json:"total"`
	Success int `json:"success"`
	Failed  int `json:"failed"`
}

// SellInput is the operator's winning bid for the player on the block.
type SellInput struct {
	Team   string
	Amount int64
}

// AuctionState is a read-only snapshot of the running session.
type AuctionState struct {
	SessionID string
	Round     int
	Phase     auction.Phase
	Current   *player.Player
	Position  int
	QueueSize int
	Remaining int
	Sold      []auction.Disposition
	Unsold    []auction.Disposition
	Teams     []team.Team
}

// TeamSummary is one franchise with the players it has bought this session.
type TeamSummary struct {
	Team    team.Team
	Players []auction.Disposition
}

type AuctionServiceConfig struct {
	Sessions          auction.Repository
	Teams             team.Repository
	Recorder          transaction.Recorder
	Importer          RosterImporter
	Writer            DispositionWriter
	SeedPlayers       []player.Player
	SeedTeams         []team.Team
	RoleOrder         []player.Role
	AllowZeroPurchase bool
	WriteBackTimeout  time.Duration
	Logger            *logging.Logger
	IDGenerator       id.Generator
	Now               func() time.Time
}

// AuctionService drives the live auction: roster assembly, the round state
// machine, the team ledger, and the transaction log.
type AuctionService struct {
	sessions          auction.Repository
	teams             team.Repository
	recorder          transaction.Recorder
	importer          RosterImporter
	writer            DispositionWriter
	seedPlayers       []player.Player
	seedTeams         []team.Team
	roleOrder         []player.Role
	allowZeroPurchase bool
	writeBackTimeout  time.Duration
	logger            *logging.Logger
	ids               id.Generator
	now               func() time.Time
}

func NewAuctionService(cfg AuctionServiceConfig) *AuctionService {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	ids := cfg.IDGenerator
	if ids == nil {
		ids = id.NewRandomGenerator()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	writeBackTimeout := cfg.WriteBackTimeout
	if writeBackTimeout <= 0 {
		writeBackTimeout = 10 * time.Second
	}

	return &AuctionService{
		sessions:          cfg.Sessions,
		teams:             cfg.Teams,
		recorder:          cfg.Recorder,
		importer:          cfg.Importer,
		writer:            cfg.Writer,
		seedPlayers:       cfg.SeedPlayers,
		seedTeams:         cfg.SeedTeams,
		roleOrder:         cfg.RoleOrder,
		allowZeroPurchase: cfg.AllowZeroPurchase,
		writeBackTimeout:  writeBackTimeout,
		logger:            logger,
		ids:               ids,
		now:               now,
	}
}

// StartAuction assembles the roster, resets the team ledger, and opens
// round 1. Import failures are non-fatal: the seed roster takes over.
func (s *AuctionService) StartAuction(ctx context.Context, refresh bool) (AuctionState, error) {
	ctx, span := startUsecaseSpan(ctx, "AuctionService.StartAuction")
	defer span.End()

	players, teams := s.assembleRoster(ctx, refresh)

	if err := s.teams.Reset(ctx, teams); err != nil {
		return AuctionState{}, fmt.Errorf("reset team ledger: %w", err)
	}

	players = filterCaptainsAndMentors(players, teams)
	players = auction.SequenceByRole(players, s.roleOrder)

	sessionID, err := s.ids.NewID()
	if err != nil {
		return AuctionState{}, fmt.Errorf("generate session id: %w", err)
	}

	session := auction.NewSession(sessionID, players, s.roleOrder)
	state, err := s.snapshot(ctx, session)
	if err != nil {
		return AuctionState{}, err
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return AuctionState{}, fmt.Errorf("save session: %w", err)
	}

	s.logger.InfoContext(ctx, "auction started",
		"session_id", sessionID,
		"players", len(players),
		"teams", len(teams),
		"phase", session.Phase,
	)

	return state, nil
}

// GetState returns the current session snapshot.
func (s *AuctionService) GetState(ctx context.Context) (AuctionState, error) {
	ctx, span := startUsecaseSpan(ctx, "AuctionService.GetState")
	defer span.End()

	var state AuctionState
	err := s.withSession(ctx, func(session *auction.Session) error {
		var err error
		state, err = s.snapshot(ctx, session)
		return err
	})
	if err != nil {
		return AuctionState{}, err
	}
	return state, nil
}

// Sell assigns the player on the block to a team for the given amount.
func (s *AuctionService) Sell(ctx context.Context, input SellInput) (AuctionState, error) {
	ctx, span := startUsecaseSpan(ctx, "AuctionService.Sell")
	defer span.End()

	var (
		state       AuctionState
		disposition auction.Disposition
		disposed    bool
	)
	err := s.withSession(ctx, func(session *auction.Session) error {
		if session.Phase != auction.PhaseActive {
			return fmt.Errorf("%w: phase=%s", ErrAuctionConcluded, session.Phase)
		}

		teamName := strings.TrimSpace(input.Team)
		if teamName == "" {
			return fmt.Errorf("%w: team is required", ErrInvalidInput)
		}
		if input.Amount <= 0 && !s.allowZeroPurchase {
			return fmt.Errorf("%w: amount must be greater than zero", ErrInvalidInput)
		}
		if input.Amount < 0 {
			return fmt.Errorf("%w: amount cannot be negative", ErrInvalidInput)
		}

		debited, err := s.teams.Debit(ctx, teamName, input.Amount)
		if err != nil {
			if errors.Is(err, team.ErrUnknownTeam) {
				return fmt.Errorf("%w: team=%s", ErrNotFound, teamName)
			}
			return err
		}

		// The disposition carries the ledger's canonical name, not the
		// operator's casing.
		d, err := session.Dispose(auction.StatusSold, debited.Name, input.Amount)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrAuctionConcluded, err)
		}
		disposition, disposed = d, true

		state, err = s.snapshot(ctx, session)
		return err
	})
	if err != nil {
		return AuctionState{}, err
	}
	if disposed {
		s.recordDisposition(ctx, disposition)
	}
	return state, nil
}

// Pass marks the player on the block unsold and advances.
func (s *AuctionService) Pass(ctx context.Context) (AuctionState, error) {
	ctx, span := startUsecaseSpan(ctx, "AuctionService.Pass")
	defer span.End()

	var (
		state       AuctionState
		disposition auction.Disposition
		disposed    bool
	)
	err := s.withSession(ctx, func(session *auction.Session) error {
		if session.Phase != auction.PhaseActive {
			return fmt.Errorf("%w: phase=%s", ErrAuctionConcluded, session.Phase)
		}

		d, err := session.Dispose(auction.StatusUnsold, "", 0)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrAuctionConcluded, err)
		}
		disposition, disposed = d, true

		state, err = s.snapshot(ctx, session)
		return err
	})
	if err != nil {
		return AuctionState{}, err
	}
	if disposed {
		s.recordDisposition(ctx, disposition)
	}
	return state, nil
}

// Navigate moves the cursor without recording anything.
func (s *AuctionService) Navigate(ctx context.Context, delta int) (AuctionState, error) {
	ctx, span := startUsecaseSpan(ctx, "AuctionService.Navigate")
	defer span.End()

	if delta != 1 && delta != -1 {
		return AuctionState{}, fmt.Errorf("%w: navigate delta must be 1 or -1", ErrInvalidInput)
	}

	var state AuctionState
	err := s.withSession(ctx, func(session *auction.Session) error {
		session.Navigate(delta)

		var err error
		state, err = s.snapshot(ctx, session)
		return err
	})
	if err != nil {
		return AuctionState{}, err
	}
	return state, nil
}

// ListTeams returns every franchise with its live purse.
func (s *AuctionService) ListTeams(ctx context.Context) ([]team.Team, error) {
	ctx, span := startUsecaseSpan(ctx, "AuctionService.ListTeams")
	defer span.End()

	teams, err := s.teams.ListTeams(ctx)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	return teams, nil
}

// GetTeamSummary returns one franchise and the players it bought this
// session.
func (s *AuctionService) GetTeamSummary(ctx context.Context, teamName string) (TeamSummary, error) {
	ctx, span := startUsecaseSpan(ctx, "AuctionService.GetTeamSummary")
	defer span.End()

	teamName = strings.TrimSpace(teamName)
	if teamName == "" {
		return TeamSummary{}, fmt.Errorf("%w: team name is required", ErrInvalidInput)
	}

	item, exists, err := s.teams.GetByName(ctx, teamName)
	if err != nil {
		return TeamSummary{}, fmt.Errorf("get team: %w", err)
	}
	if !exists {
		return TeamSummary{}, fmt.Errorf("%w: team=%s", ErrNotFound, teamName)
	}

	summary := TeamSummary{Team: item}
	err = s.withSession(ctx, func(session *auction.Session) error {
		for _, d := range session.Sold {
			if strings.EqualFold(d.Team, item.Name) {
				summary.Players = append(summary.Players, d)
			}
		}
		return nil
	})
	if err != nil && !errors.Is(err, ErrNoAuctionInProgress) {
		return TeamSummary{}, err
	}
	return summary, nil
}

// withSession runs fn against the current session while the repository
// holds it exclusively.
func (s *AuctionService) withSession(ctx context.Context, fn func(*auction.Session) error) error {
	exists, err := s.sessions.Update(ctx, fn)
	if err != nil {
		return err
	}
	if !exists {
		return ErrNoAuctionInProgress
	}
	return nil
}

func (s *AuctionService) assembleRoster(ctx context.Context, refresh bool) ([]player.Player, []team.Team) {
	players := s.seedPlayers
	teams := s.seedTeams

	if s.importer != nil && s.importer.Configured() {
		if refresh {
			s.importer.InvalidateCache(ctx)
		}
		imported, importedTeams, err := s.importer.FetchAll(ctx)
		switch {
		case err != nil:
			s.logger.WarnContext(ctx, "roster import failed, using seed roster", "error", err)
		case len(imported) == 0:
			s.logger.WarnContext(ctx, "roster import yielded no players, using seed roster")
		default:
			players = imported
			if len(importedTeams) > 0 {
				teams = importedTeams
			}
		}
	}

	return players, teams
}

func (s *AuctionService) snapshot(ctx context.Context, session *auction.Session) (AuctionState, error) {
	teams, err := s.teams.ListTeams(ctx)
	if err != nil {
		return AuctionState{}, fmt.Errorf("list teams: %w", err)
	}

	// Copies, not aliases: the live slices keep growing after the lock is
	// released.
	state := AuctionState{
		SessionID: session.ID,
		Round:     session.Round,
		Phase:     session.Phase,
		Position:  session.CurrentIndex,
		QueueSize: len(session.Players),
		Remaining: session.Remaining(),
		Sold:      append([]auction.Disposition(nil), session.Sold...),
		Unsold:    append([]auction.Disposition(nil), session.Unsold...),
		Teams:     teams,
	}
	if current, ok := session.Current(); ok {
		state.Current = &current
	}
	return state, nil
}

// recordDisposition appends to the transaction log and mirrors the row to
// the spreadsheet. Neither write can fail the disposition itself.
func (s *AuctionService) recordDisposition(ctx context.Context, d auction.Disposition) {
	record := transaction.Record{
		Timestamp:  s.now().UTC(),
		PlayerName: d.Player.Name,
		PlayerRole: string(d.Player.Role),
		BasePrice:  d.Player.BasePrice,
		Status:     string(d.Status),
		Team:       d.Team,
		Amount:     d.Amount,
		Round:      d.Round,
	}

	if s.recorder != nil {
		if err := s.recorder.Append(ctx, record); err != nil {
			s.logger.ErrorContext(ctx, "append transaction record failed",
				"player", record.PlayerName,
				"status", record.Status,
				"error", err,
			)
		}
	}

	if s.writer == nil || !s.writer.Configured() {
		return
	}
	writeCtx := context.WithoutCancel(ctx)
	go func() {
		writeCtx, cancel := context.WithTimeout(writeCtx, s.writeBackTimeout)
		defer cancel()
		if err := s.writer.Notify(writeCtx, record, 0); err != nil {
			s.logger.WarnContext(writeCtx, "spreadsheet write-back failed",
				"player", record.PlayerName,
				"status", record.Status,
				"error", err,
			)
		}
	}()
}

// filterCaptainsAndMentors drops imported rows that name a franchise
// captain or mentor; those people are pre-assigned and never auctioned.
func filterCaptainsAndMentors(players []player.Player, teams []team.Team) []player.Player {
	reserved := make(map[string]struct{}, len(teams)*2)
	for _, t := range teams {
		if name := strings.ToLower(strings.TrimSpace(t.Captain)); name != "" {
			reserved[name] = struct{}{}
		}
		if name := strings.ToLower(strings.TrimSpace(t.Mentor)); name != "" {
			reserved[name] = struct{}{}
		}
	}
	if len(reserved) == 0 {
		return players
	}

	out := make([]player.Player, 0, len(players))
	for _, p := range players {
		if _, ok := reserved[strings.ToLower(strings.TrimSpace(p.Name))]; ok {
			continue
		}
		out = append(out, p)
	}
	return out
}
