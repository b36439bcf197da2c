package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/mauv0809/mafia-stats/internal/club"
	"github.com/mauv0809/mafia-stats/internal/metrics"
	"golang.org/x/sync/errgroup"
)

// New creates a session over the given store. The initial tab is the leaderboard.
func New(store club.ClubStore, recorder Recorder, m metrics.Metrics, opts Options) *Session {
	newID := opts.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	return &Session{
		store:       store,
		recorder:    recorder,
		metrics:     m,
		counters:    opts.Counters,
		recordGames: opts.RecordGames,
		newID:       newID,
		tab:         TabLeaderboard,
	}
}

func (s *Session) count(key string) {
	if s.counters != nil {
		s.counters.Increment(key)
	}
}

func (s *Session) Tab() Tab {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tab
}

func parseTab(tab string) (Tab, error) {
	t := Tab(tab)
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownTab, tab)
	}
	return t, nil
}

// SelectTab switches the active view. An unknown tab leaves the state
// unchanged; a dry run only checks the tab.
func (s *Session) SelectTab(tab string, dryRun bool) error {
	t, err := parseTab(tab)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if dryRun {
		log.Info("[Dry Run] Would switch tab", "from", s.tab, "to", t)
		return nil
	}
	if s.tab != t {
		log.Debug("Switching tab", "from", s.tab, "to", t)
		s.count(metrics.KeyTabSwitches)
	}
	s.tab = t
	return nil
}

// RecordingEnabled reports whether submitted games are kept.
func (s *Session) RecordingEnabled() bool {
	return s.recordGames
}

// AddPlayer appends a new player with zeroed statistics. The name is
// trimmed; an empty name returns club.ErrEmptyName and adds nothing. A dry
// run returns the player that would be added.
func (s *Session) AddPlayer(ctx context.Context, name string, dryRun bool) (*club.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addPlayerLocked(ctx, name, dryRun)
}

func (s *Session) addPlayerLocked(ctx context.Context, name string, dryRun bool) (*club.Player, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, club.ErrEmptyName
	}

	player := club.Player{
		ID:       s.newID(),
		Name:     name,
		BestRole: club.Unset,
		Avatar:   club.DefaultAvatar,
	}
	if dryRun {
		log.Info("[Dry Run] Would add player", "name", player.Name)
		return &player, nil
	}
	if err := s.store.AddPlayer(player); err != nil {
		return nil, fmt.Errorf("adding player: %w", err)
	}
	s.metrics.IncPlayersAdded()
	s.count(metrics.KeyPlayersAdded)
	log.Info("Player added", "playerID", player.ID, "name", player.Name)
	s.recorder.AnnouncePlayer(ctx, player, dryRun)
	return &player, nil
}

// RenamePlayer changes a player's display name. Recorded games follow the
// new name because they reference the player by id.
func (s *Session) RenamePlayer(playerID, name string, dryRun bool) (*club.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if dryRun {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, club.ErrEmptyName
		}
		p, err := s.store.GetPlayer(playerID)
		if err != nil {
			return nil, err
		}
		log.Info("[Dry Run] Would rename player", "playerID", playerID, "from", p.Name, "to", name)
		p.Name = name
		return p, nil
	}

	if err := s.store.RenamePlayer(playerID, name); err != nil {
		return nil, err
	}
	return s.store.GetPlayer(playerID)
}

func (s *Session) AddPlayerForm() AddPlayerForm {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form
}

// SetAddPlayerForm replaces the add-player form state, e.g. as the user
// opens the form or types a name. A dry run echoes the form back.
func (s *Session) SetAddPlayerForm(form AddPlayerForm, dryRun bool) AddPlayerForm {
	s.mu.Lock()
	defer s.mu.Unlock()
	if dryRun {
		return form
	}
	s.form = form
	return s.form
}

// SubmitAddPlayer adds a player from the add-player form. A blank name is
// rejected silently: it returns a nil player and the form stays as it is.
// On success the form is cleared and collapsed.
func (s *Session) SubmitAddPlayer(ctx context.Context, dryRun bool) (*club.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	player, err := s.addPlayerLocked(ctx, s.form.Name, dryRun)
	if errors.Is(err, club.ErrEmptyName) {
		log.Debug("Ignoring add-player submission with empty name")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !dryRun {
		s.form = AddPlayerForm{}
	}
	return player, nil
}

// SubmitGame handles the add-game form. With recording disabled the
// submission is logged and discarded, leaving the games list unchanged.
// Otherwise the form is validated against the current roster and the game
// is recorded; an invalid form returns a *club.ValidationError.
func (s *Session) SubmitGame(ctx context.Context, form club.GameForm, dryRun bool) (*GameResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.recordGames {
		log.Info("Game recording is disabled, discarding submission", "date", form.Date, "winner", form.Outcome, "participants", len(form.Participants))
		s.metrics.IncGameSubmissionsIgnored()
		s.count(metrics.KeyGameSubmissionsIgnored)
		return &GameResult{Recorded: false}, nil
	}

	players, err := s.store.GetAllPlayers()
	if err != nil {
		return nil, fmt.Errorf("loading players: %w", err)
	}
	if err := form.Validate(players); err != nil {
		log.Warn("Rejected game submission", "error", err)
		return nil, err
	}

	game, err := form.Build(s.newID())
	if err != nil {
		return nil, err
	}
	deltas, err := s.recorder.RecordGame(ctx, game, dryRun)
	if err != nil {
		return nil, err
	}
	if !dryRun {
		s.count(metrics.KeyGamesRecorded)
	}
	return &GameResult{Recorded: !dryRun, Game: &game, Deltas: deltas}, nil
}

// AddExtraPoints awards a participant of a recorded game bonus or penalty
// points. Only the player's total score changes.
func (s *Session) AddExtraPoints(gameID string, form club.ExtraPointsForm, dryRun bool) (*club.ExtraPoints, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	game, err := s.store.GetGame(gameID)
	if err != nil {
		return nil, err
	}
	if err := form.Validate(*game); err != nil {
		log.Warn("Rejected extra points", "gameID", gameID, "error", err)
		return nil, err
	}

	extra := club.ExtraPoints{
		GameID:   gameID,
		PlayerID: form.PlayerID,
		Points:   form.Points,
		Reason:   strings.TrimSpace(form.Reason),
	}
	if dryRun {
		log.Info("[Dry Run] Would add extra points", "gameID", gameID, "playerID", extra.PlayerID, "points", extra.Points)
		return &extra, nil
	}
	return s.store.AddExtraPoints(extra)
}

func (s *Session) ExtraPoints(gameID string) ([]club.ExtraPoints, error) {
	return s.store.ListExtraPoints(gameID)
}

// DeleteExtraPoints withdraws an award and its points.
func (s *Session) DeleteExtraPoints(extraID int64, dryRun bool) (*club.ExtraPoints, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if dryRun {
		extra, err := s.store.GetExtraPoints(extraID)
		if err != nil {
			return nil, err
		}
		log.Info("[Dry Run] Would delete extra points", "extraID", extraID, "playerID", extra.PlayerID, "points", extra.Points)
		return extra, nil
	}
	return s.store.DeleteExtraPoints(extraID)
}

func (s *Session) Players() ([]club.Player, error) {
	return s.store.GetAllPlayers()
}

func (s *Session) Player(playerID string) (*club.Player, error) {
	return s.store.GetPlayer(playerID)
}

// Leaderboard returns the ranked players and the club aggregates.
func (s *Session) Leaderboard(ctx context.Context) ([]club.LeaderboardEntry, club.Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	players, games, err := s.load(ctx)
	if err != nil {
		return nil, club.Summary{}, err
	}
	return club.Leaderboard(players), club.Summarize(players, games), nil
}

// Games returns the game history with player names resolved.
func (s *Session) Games(ctx context.Context) ([]club.GameRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	players, games, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return club.ResolveGames(games, players), nil
}

// View renders the selected tab.
func (s *Session) View(ctx context.Context) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked(ctx, s.tab)
}

// Preview renders a tab without selecting it.
func (s *Session) Preview(ctx context.Context, tab string) (View, error) {
	t, err := parseTab(tab)
	if err != nil {
		return View{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked(ctx, t)
}

func (s *Session) viewLocked(ctx context.Context, tab Tab) (View, error) {
	players, games, err := s.load(ctx)
	if err != nil {
		return View{}, err
	}

	v := View{
		Tab:           tab,
		Summary:       club.Summarize(players, games),
		AddPlayerForm: s.form,
	}
	switch tab {
	case TabGames:
		v.Games = &GamesView{Games: club.ResolveGames(games, players)}
	case TabAddGame:
		v.AddGame = s.addGameView(players)
	default:
		v.Leaderboard = &LeaderboardView{Entries: club.Leaderboard(players)}
	}
	return v, nil
}

func (s *Session) addGameView(players []club.Player) *AddGameView {
	view := &AddGameView{RecordingEnabled: s.recordGames}
	for _, p := range players {
		view.Players = append(view.Players, Option{Value: p.ID, Label: p.Name})
	}
	for _, r := range club.Roles {
		view.Roles = append(view.Roles, Option{Value: string(r), Label: string(r), Style: club.RoleStyle(string(r))})
	}
	for _, o := range club.Outcomes {
		view.Outcomes = append(view.Outcomes, Option{Value: string(o), Label: club.OutcomeLabel(o), Style: club.OutcomeStyle(o)})
	}
	return view
}

// load reads players and games concurrently. The caller holds s.mu so that
// no command lands between the two reads.
func (s *Session) load(ctx context.Context) ([]club.Player, []club.Game, error) {
	var players []club.Player
	var games []club.Game

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		players, err = s.store.GetAllPlayers()
		if err != nil {
			return fmt.Errorf("loading players: %w", err)
		}
		return ctx.Err()
	})
	g.Go(func() error {
		var err error
		games, err = s.store.GetAllGames()
		if err != nil {
			return fmt.Errorf("loading games: %w", err)
		}
		return ctx.Err()
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return players, games, nil
}

// Reset restores the sample data and the initial view.
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.store.Clear()
	if err := club.Seed(s.store); err != nil {
		return fmt.Errorf("reseeding store: %w", err)
	}
	s.tab = TabLeaderboard
	s.form = AddPlayerForm{}
	log.Info("Session reset to sample data")
	return nil
}
