package club

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// New creates a new ClubStore.
func New(db *sql.DB) ClubStore {
	return &store{
		db: db,
	}
}

func (s *store) AddPlayer(player Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := strings.TrimSpace(player.Name)
	if name == "" {
		return ErrEmptyName
	}
	bestRole := player.BestRole
	if bestRole == "" {
		bestRole = Unset
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}

	_, err = tx.Exec(`
		INSERT INTO players (id, name, games_played, wins, losses, total_score, best_role, last_played, avatar)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		player.ID, name, player.GamesPlayed, player.Wins, player.Losses, player.TotalScore,
		bestRole, nullDate(player.LastPlayed), player.Avatar,
	)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("inserting player %s: %w", player.ID, err)
	}

	for _, rs := range player.RoleStats {
		_, err = tx.Exec(`INSERT INTO player_role_stats (player_id, role, games, wins) VALUES (?, ?, ?, ?)`,
			player.ID, rs.Role, rs.Games, rs.Wins)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("inserting role stats for player %s: %w", player.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	log.Info("Added player to the store", "playerID", player.ID, "name", name)
	return nil
}

// RenamePlayer changes a player's display name. Games reference players by
// id, so history follows the new name.
func (s *store) RenamePlayer(playerID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}

	res, err := s.db.Exec("UPDATE players SET name = ? WHERE id = ?", name, playerID)
	if err != nil {
		return fmt.Errorf("renaming player %s: %w", playerID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("renaming player %s: %w", playerID, ErrPlayerNotFound)
	}
	log.Info("Renamed player", "playerID", playerID, "name", name)
	return nil
}

func (s *store) GetPlayer(playerID string) (*Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(`
		SELECT id, name, games_played, wins, losses, total_score, best_role, last_played, avatar
		FROM players WHERE id = ?`, playerID)
	p, err := scanPlayer(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("player %s: %w", playerID, ErrPlayerNotFound)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	roleStats, err := s.roleStatsLocked(playerID)
	if err != nil {
		return nil, err
	}
	p.RoleStats = roleStats[playerID]
	return p, nil
}

func (s *store) GetAllPlayers() ([]Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, name, games_played, wins, losses, total_score, best_role, last_played, avatar
		FROM players ORDER BY rowid`)
	if err != nil {
		log.Error("Failed to query all players", "error", err)
		return nil, err
	}
	defer rows.Close()

	players := []Player{}
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		players = append(players, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	roleStats, err := s.roleStatsLocked("")
	if err != nil {
		return nil, err
	}
	for i := range players {
		players[i].RoleStats = roleStats[players[i].ID]
	}
	return players, nil
}

// roleStatsLocked loads per-role results keyed by player id. An empty
// playerID loads every player. The caller must hold the lock.
func (s *store) roleStatsLocked(playerID string) (map[string][]RoleStats, error) {
	query := "SELECT player_id, role, games, wins FROM player_role_stats"
	var args []any
	if playerID != "" {
		query += " WHERE player_id = ?"
		args = append(args, playerID)
	}
	rows, err := s.db.Query(query+" ORDER BY rowid", args...)
	if err != nil {
		return nil, fmt.Errorf("querying role stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[string][]RoleStats)
	for rows.Next() {
		var id string
		var rs RoleStats
		if err := rows.Scan(&id, &rs.Role, &rs.Games, &rs.Wins); err != nil {
			return nil, err
		}
		stats[id] = append(stats[id], rs)
	}
	return stats, rows.Err()
}

// scanPlayer is a helper function to scan a single player row.
func scanPlayer(scanner interface{ Scan(...any) error }) (*Player, error) {
	var p Player
	var lastPlayed, avatar sql.NullString
	err := scanner.Scan(&p.ID, &p.Name, &p.GamesPlayed, &p.Wins, &p.Losses, &p.TotalScore, &p.BestRole, &lastPlayed, &avatar)
	if err != nil {
		return nil, err
	}
	p.Avatar = avatar.String
	if lastPlayed.Valid && lastPlayed.String != "" {
		t, err := time.Parse(DateLayout, lastPlayed.String)
		if err != nil {
			log.Error("Failed to parse last_played", "error", err, "playerID", p.ID, "value", lastPlayed.String)
		} else {
			p.LastPlayed = t
		}
	}
	return &p, nil
}

func (s *store) AddGame(game Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	if err := insertGameTx(tx, game); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	log.Info("Added game to the store", "gameID", game.ID, "winner", game.Outcome, "participants", len(game.Participants))
	return nil
}

// RecordGame appends the game and applies its deltas in one transaction.
// Either both land or neither does.
func (s *store) RecordGame(game Game, deltas []StatsDelta) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	if err := insertGameTx(tx, game); err != nil {
		tx.Rollback()
		return err
	}
	if err := applyStatsTx(tx, deltas); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing game %s: %w", game.ID, err)
	}
	log.Info("Recorded game", "gameID", game.ID, "winner", game.Outcome, "participants", len(game.Participants))
	return nil
}

func insertGameTx(tx *sql.Tx, game Game) error {
	var mvp any
	if game.MVP != "" {
		mvp = game.MVP
	}
	_, err := tx.Exec(`
		INSERT INTO games (id, played_on, winner, duration_minutes, mvp_id)
		VALUES (?, ?, ?, ?, ?)`,
		game.ID, game.Date.Format(DateLayout), game.Outcome, game.DurationMinutes, mvp,
	)
	if err != nil {
		return fmt.Errorf("inserting game %s: %w", game.ID, err)
	}

	stmt, err := tx.Prepare(`INSERT INTO game_participants (game_id, seat, player_id, role) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for seat, p := range game.Participants {
		var role any
		if p.Role != "" {
			role = p.Role
		}
		if _, err := stmt.Exec(game.ID, seat, p.PlayerID, role); err != nil {
			return fmt.Errorf("inserting participant %s of game %s: %w", p.PlayerID, game.ID, err)
		}
	}
	return nil
}

func (s *store) GetGame(gameID string) (*Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	games, err := s.gamesLocked("WHERE id = ?", gameID)
	if err != nil {
		return nil, err
	}
	if len(games) == 0 {
		return nil, fmt.Errorf("game %s: %w", gameID, ErrGameNotFound)
	}
	return &games[0], nil
}

func (s *store) GetAllGames() ([]Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gamesLocked("")
}

// gamesLocked loads games matching the where clause together with their
// participants. The caller must hold the lock.
func (s *store) gamesLocked(where string, args ...any) ([]Game, error) {
	rows, err := s.db.Query(`
		SELECT id, played_on, winner, duration_minutes, mvp_id
		FROM games `+where+` ORDER BY rowid`, args...)
	if err != nil {
		log.Error("Failed to query games", "error", err)
		return nil, err
	}
	defer rows.Close()

	games := []Game{}
	index := make(map[string]int)
	for rows.Next() {
		var g Game
		var playedOn string
		var mvp sql.NullString
		if err := rows.Scan(&g.ID, &playedOn, &g.Outcome, &g.DurationMinutes, &mvp); err != nil {
			return nil, err
		}
		g.Date, err = time.Parse(DateLayout, playedOn)
		if err != nil {
			return nil, fmt.Errorf("parsing date of game %s: %w", g.ID, err)
		}
		g.MVP = mvp.String
		index[g.ID] = len(games)
		games = append(games, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(games) == 0 {
		return games, nil
	}

	prows, err := s.db.Query(`SELECT game_id, player_id, role FROM game_participants ORDER BY game_id, seat`)
	if err != nil {
		return nil, fmt.Errorf("querying participants: %w", err)
	}
	defer prows.Close()

	for prows.Next() {
		var gameID string
		var p Participant
		var role sql.NullString
		if err := prows.Scan(&gameID, &p.PlayerID, &role); err != nil {
			return nil, err
		}
		i, ok := index[gameID]
		if !ok {
			continue
		}
		p.Role = Role(role.String)
		games[i].Participants = append(games[i].Participants, p)
	}
	return games, prows.Err()
}

// ApplyStats adds the deltas to the players' totals in a single
// transaction. An unknown player aborts the whole batch.
func (s *store) ApplyStats(deltas []StatsDelta) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	if err := applyStatsTx(tx, deltas); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// applyStatsTx updates the players' counters. A delta without a date leaves
// last played alone; one without a role leaves the role stats alone.
func applyStatsTx(tx *sql.Tx, deltas []StatsDelta) error {
	for _, d := range deltas {
		date := nullDate(d.Date)
		res, err := tx.Exec(`
			UPDATE players SET
				games_played = games_played + ?,
				wins = wins + ?,
				losses = losses + ?,
				total_score = total_score + ?,
				last_played = CASE
					WHEN ? IS NULL THEN last_played
					WHEN last_played IS NULL OR last_played < ? THEN ?
					ELSE last_played END
			WHERE id = ?`,
			d.Played, d.Won, d.Lost, d.Score, date, date, date, d.PlayerID,
		)
		if err != nil {
			return fmt.Errorf("updating stats for player %s: %w", d.PlayerID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("updating stats for player %s: %w", d.PlayerID, err)
		}
		if n == 0 {
			return fmt.Errorf("updating stats for player %s: %w", d.PlayerID, ErrPlayerNotFound)
		}

		if d.Role == "" {
			continue
		}
		_, err = tx.Exec(`
			INSERT INTO player_role_stats (player_id, role, games, wins)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(player_id, role) DO UPDATE SET
				games = games + excluded.games,
				wins = wins + excluded.wins`,
			d.PlayerID, d.Role, d.Played, d.Won,
		)
		if err != nil {
			return fmt.Errorf("updating role stats for player %s: %w", d.PlayerID, err)
		}
		log.Debug("Updated player stats", "playerID", d.PlayerID, "score", d.Score)
	}
	return nil
}

// AddExtraPoints awards a participant of a game bonus or penalty points.
// The row and the score change are written together.
func (s *store) AddExtraPoints(extra ExtraPoints) (*ExtraPoints, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	if err := participantTx(tx, extra.GameID, extra.PlayerID); err != nil {
		tx.Rollback()
		return nil, err
	}
	if extra.CreatedAt.IsZero() {
		extra.CreatedAt = time.Now().UTC()
	}
	res, err := tx.Exec(`
		INSERT INTO extra_points (game_id, player_id, points, reason, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		extra.GameID, extra.PlayerID, extra.Points, extra.Reason, extra.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("inserting extra points for game %s: %w", extra.GameID, err)
	}
	if extra.ID, err = res.LastInsertId(); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := applyStatsTx(tx, []StatsDelta{{PlayerID: extra.PlayerID, Score: extra.Points}}); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	log.Info("Added extra points", "gameID", extra.GameID, "playerID", extra.PlayerID, "points", extra.Points)
	return &extra, nil
}

// participantTx checks that the game exists and that the player took part in it.
func participantTx(tx *sql.Tx, gameID, playerID string) error {
	var inGame, seated bool
	err := tx.QueryRow(`
		SELECT EXISTS(SELECT 1 FROM games WHERE id = ?),
		       EXISTS(SELECT 1 FROM game_participants WHERE game_id = ? AND player_id = ?)`,
		gameID, gameID, playerID,
	).Scan(&inGame, &seated)
	if err != nil {
		return fmt.Errorf("looking up game %s: %w", gameID, err)
	}
	if !inGame {
		return fmt.Errorf("game %s: %w", gameID, ErrGameNotFound)
	}
	if !seated {
		return fmt.Errorf("player %s in game %s: %w", playerID, gameID, ErrNotParticipant)
	}
	return nil
}

// ListExtraPoints returns the extra points of a game, oldest first.
func (s *store) ListExtraPoints(gameID string) ([]ExtraPoints, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var exists bool
	if err := s.db.QueryRow("SELECT EXISTS(SELECT 1 FROM games WHERE id = ?)", gameID).Scan(&exists); err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("game %s: %w", gameID, ErrGameNotFound)
	}

	rows, err := s.db.Query(`
		SELECT id, game_id, player_id, points, reason, created_at
		FROM extra_points WHERE game_id = ? ORDER BY id`, gameID)
	if err != nil {
		return nil, fmt.Errorf("querying extra points: %w", err)
	}
	defer rows.Close()

	extras := []ExtraPoints{}
	for rows.Next() {
		var e ExtraPoints
		var createdAt string
		if err := rows.Scan(&e.ID, &e.GameID, &e.PlayerID, &e.Points, &e.Reason, &createdAt); err != nil {
			return nil, err
		}
		if e.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
			log.Error("Failed to parse created_at", "error", err, "extraID", e.ID, "value", createdAt)
		}
		extras = append(extras, e)
	}
	return extras, rows.Err()
}

func (s *store) GetExtraPoints(extraID int64) (*ExtraPoints, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var e ExtraPoints
	var createdAt string
	err := s.db.QueryRow(`
		SELECT id, game_id, player_id, points, reason, created_at
		FROM extra_points WHERE id = ?`, extraID,
	).Scan(&e.ID, &e.GameID, &e.PlayerID, &e.Points, &e.Reason, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("extra points %d: %w", extraID, ErrExtraPointsNotFound)
	}
	if err != nil {
		return nil, err
	}
	e.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &e, nil
}

// DeleteExtraPoints removes an award and takes its points back.
func (s *store) DeleteExtraPoints(extraID int64) (*ExtraPoints, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}

	var e ExtraPoints
	var createdAt string
	err = tx.QueryRow(`
		SELECT id, game_id, player_id, points, reason, created_at
		FROM extra_points WHERE id = ?`, extraID,
	).Scan(&e.ID, &e.GameID, &e.PlayerID, &e.Points, &e.Reason, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		tx.Rollback()
		return nil, fmt.Errorf("extra points %d: %w", extraID, ErrExtraPointsNotFound)
	}
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	e.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)

	if _, err := tx.Exec("DELETE FROM extra_points WHERE id = ?", extraID); err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("deleting extra points %d: %w", extraID, err)
	}
	if err := applyStatsTx(tx, []StatsDelta{{PlayerID: e.PlayerID, Score: -e.Points}}); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	log.Info("Deleted extra points", "extraID", extraID, "playerID", e.PlayerID, "points", e.Points)
	return &e, nil
}

func (s *store) IsEmpty() (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var exists bool
	err := s.db.QueryRow("SELECT EXISTS(SELECT 1 FROM players) OR EXISTS(SELECT 1 FROM games)").Scan(&exists)
	if err != nil {
		return false, err
	}
	return !exists, nil
}

func (s *store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		log.Error("Failed to begin transaction for clearing store", "error", err)
		return
	}

	for _, table := range []string{"extra_points", "game_participants", "games", "player_role_stats", "players"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			log.Error("Failed to clear table", "table", table, "error", err)
			tx.Rollback()
			return
		}
	}

	if err := tx.Commit(); err != nil {
		log.Error("Failed to commit transaction for clearing store", "error", err)
	}
}

func nullDate(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.Format(DateLayout)
}
