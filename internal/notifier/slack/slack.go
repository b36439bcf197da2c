package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/mafia-stats/internal/club"
	"github.com/mauv0809/mafia-stats/internal/metrics"
	"github.com/mauv0809/mafia-stats/internal/notifier"
	"github.com/slack-go/slack"
)

// slackClient is an interface that contains the methods from the slack.Client that we use.
// This allows for easy mocking in tests.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

var _ notifier.Notifier = &Notifier{}

// Notifier handles sending notifications to Slack.
type Notifier struct {
	api       slackClient
	channelID string
	metrics   metrics.Metrics
}

// NewNotifier creates a new Notifier.
func NewNotifier(token, channelID string, metrics metrics.Metrics) *Notifier {
	api := slack.New(token)
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

// NewNotifierWithAPI creates a new Notifier with a specific slack.Client instance.
// Useful for tests that need to intercept API calls.
func NewNotifierWithAPI(api slackClient, channelID string, metrics metrics.Metrics) *Notifier {
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

func (s *Notifier) sendMessage(message slack.Message, dryRun bool) (string, string, error) {
	if dryRun {
		jsonMsg, _ := json.MarshalIndent(message, "", "  ")
		log.Info("[Dry Run] Would send Slack message", "channel", s.channelID, "message", string(jsonMsg))
		return "dry-run-ts", "dry-run-thread-ts", nil
	}
	if s.channelID == "" {
		log.Warn("No Slack channel configured, skipping message")
		return "", "", nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	channelID, timestamp, err := s.api.PostMessageContext(
		ctx,
		s.channelID,
		slack.MsgOptionBlocks(message.Blocks.BlockSet...),
		slack.MsgOptionAsUser(true),
	)

	if err != nil {
		s.metrics.IncSlackNotifFailed()
		log.Error("Failed to send Slack message", "error", err, "channel", s.channelID)
		return "", "", fmt.Errorf("failed to post message: %w", err)
	}

	s.metrics.IncSlackNotifSent()
	log.Info("Successfully sent Slack message", "channel", channelID, "timestamp", timestamp)
	return channelID, timestamp, nil
}

func (s *Notifier) SendResultNotification(game club.Game, players []club.Player, dryRun bool) error {
	msg := s.formatResultNotification(game, players)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

func (s *Notifier) SendLeaderboard(entries []club.LeaderboardEntry, summary club.Summary, dryRun bool) error {
	msg := s.formatLeaderboard(entries, summary)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

// FormatLeaderboardResponse formats a leaderboard message for a slash command response.
func (s *Notifier) FormatLeaderboardResponse(entries []club.LeaderboardEntry, summary club.Summary) (any, error) {
	return s.formatLeaderboard(entries, summary), nil
}

// FormatPlayerStatsResponse formats a player stats message for a slash command response.
func (s *Notifier) FormatPlayerStatsResponse(entry club.LeaderboardEntry, query string) (any, error) {
	return s.formatPlayerStats(entry, query), nil
}

// FormatPlayerNotFoundResponse formats a player not found message for a slash command response.
func (s *Notifier) FormatPlayerNotFoundResponse(query string) (any, error) {
	return s.formatPlayerNotFound(query), nil
}

func plainText(text string) *slack.TextBlockObject {
	return slack.NewTextBlockObject("plain_text", text, true, false)
}

// formatResultNotification creates the Slack message for a finished game using Block Kit.
func (s *Notifier) formatResultNotification(game club.Game, players []club.Player) slack.Message {
	names := make(map[string]string, len(players))
	for _, p := range players {
		names[p.ID] = p.Name
	}
	nameOf := func(id string) string {
		if name, ok := names[id]; ok {
			return name
		}
		return club.Unset
	}

	blocks := make([]slack.Block, 0)

	// Header
	blocks = append(blocks, slack.NewHeaderBlock(plainText("🎭 Game finished! 🎭")))

	// Details
	detailsText := fmt.Sprintf("%s, %d min", game.Date.Format(club.DateLayout), game.DurationMinutes)
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", detailsText, false, false), nil, nil))

	// Result
	resultText := fmt.Sprintf("Result: %s won! 🏆", club.OutcomeLabel(game.Outcome))
	if game.Outcome == club.OutcomeNeutral {
		resultText = fmt.Sprintf("Result: %s 🤝", club.OutcomeLabel(game.Outcome))
	}
	blocks = append(blocks, slack.NewSectionBlock(plainText(resultText), nil, nil))

	// Players
	var playerLines []string
	for _, p := range game.Participants {
		line := "• " + nameOf(p.PlayerID)
		if p.Role != "" {
			line += fmt.Sprintf(" (%s)", p.Role)
		}
		playerLines = append(playerLines, line)
	}
	if len(playerLines) > 0 {
		playersText := "Players:\n" + strings.Join(playerLines, "\n")
		blocks = append(blocks, slack.NewSectionBlock(plainText(playersText), nil, nil))
	}

	// Context (MVP)
	if game.MVP != "" {
		mvpText := fmt.Sprintf("⭐ MVP: %s", nameOf(game.MVP))
		blocks = append(blocks, slack.NewContextBlock("", plainText(mvpText)))
	}

	return slack.NewBlockMessage(blocks...)
}

func medal(rank int) string {
	switch rank {
	case 1:
		return "🥇"
	case 2:
		return "🥈"
	case 3:
		return "🥉"
	}
	return ""
}

// formatLeaderboard creates a Slack message to display the player leaderboard.
func (s *Notifier) formatLeaderboard(entries []club.LeaderboardEntry, summary club.Summary) slack.Message {
	blocks := make([]slack.Block, 0)

	// Header
	blocks = append(blocks, slack.NewHeaderBlock(plainText("🏆 Player Leaderboard 🏆")))

	if len(entries) == 0 {
		blocks = append(blocks, slack.NewSectionBlock(plainText("No players yet. Add some and play a game!"), nil, nil))
		return slack.NewBlockMessage(blocks...)
	}

	// Player Ranks
	for _, e := range entries {
		p := e.Player
		playerText := fmt.Sprintf("%d. %s %s %s\n> Score: %d | Win %%: %.1f%% (%d/%d) | Best role: %s",
			e.Rank,
			medal(e.Rank),
			p.Avatar,
			p.Name,
			p.TotalScore,
			e.WinRate,
			p.Wins,
			p.GamesPlayed,
			p.EffectiveBestRole(),
		)
		blocks = append(blocks, slack.NewSectionBlock(plainText(playerText), nil, nil))
	}

	summaryText := fmt.Sprintf("Games: %d | Players: %d | Average win rate: %s",
		summary.TotalGames, summary.TotalPlayers, summary.AverageWinRateLabel())
	blocks = append(blocks, slack.NewContextBlock("", plainText(summaryText)))

	return slack.NewBlockMessage(blocks...)
}

// formatPlayerStats creates a Slack message to display a single player's stats.
func (s *Notifier) formatPlayerStats(entry club.LeaderboardEntry, query string) slack.Message {
	p := entry.Player
	blocks := make([]slack.Block, 0)

	// Header
	headerText := fmt.Sprintf("📊 Stats for %s", p.Name)
	blocks = append(blocks, slack.NewHeaderBlock(plainText(headerText)))

	statsText := fmt.Sprintf("> *Rank*: #%d\n> *Score*: %d\n> *Win %%*: %.1f%% (%d/%d)\n> *Wins / Losses / Draws*: %d / %d / %d\n> *Best role*: %s\n> *Last played*: %s",
		entry.Rank,
		p.TotalScore,
		entry.WinRate,
		p.Wins,
		p.GamesPlayed,
		p.Wins,
		p.Losses,
		p.Draws(),
		p.EffectiveBestRole(),
		p.LastPlayedLabel(),
	)
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", statsText, false, false), nil, nil))

	if len(p.RoleStats) > 0 {
		var lines []string
		for _, rs := range p.RoleStats {
			lines = append(lines, fmt.Sprintf("• %s: %d/%d", rs.Role, rs.Wins, rs.Games))
		}
		blocks = append(blocks, slack.NewSectionBlock(plainText("By role (wins/games):\n"+strings.Join(lines, "\n")), nil, nil))
	}

	return slack.NewBlockMessage(blocks...)
}

// formatPlayerNotFound creates a Slack message for when a player's stats are not found.
func (s *Notifier) formatPlayerNotFound(query string) slack.Message {
	text := fmt.Sprintf("Sorry, I couldn't find a player matching *%s*. Try a different name.", query)
	return slack.NewBlockMessage(
		slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", text, false, false), nil, nil),
	)
}
