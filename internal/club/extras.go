package club

import "time"

// ExtraPoints is a manual bonus or penalty given to one participant of a
// game, e.g. by the host for an outstanding or unsporting play.
type ExtraPoints struct {
	ID        int64     `json:"id"`
	GameID    string    `json:"game_id"`
	PlayerID  string    `json:"player_id"`
	Points    int       `json:"points"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

// ExtraPointsForm is a request to award extra points. Points may be
// negative but never zero.
type ExtraPointsForm struct {
	PlayerID string `json:"player_id" validate:"required"`
	Points   int    `json:"points" validate:"required,min=-1000,max=1000"`
	Reason   string `json:"reason" validate:"required,max=255"`
}

// Validate checks the form against the game it is meant for.
func (f ExtraPointsForm) Validate(game Game) error {
	verr := &ValidationError{Fields: map[string]string{}, Subject: "extra points"}

	collectFieldErrors(verr, validate.Struct(f))
	if _, ok := verr.Fields["player_id"]; !ok {
		seated := false
		for _, p := range game.Participants {
			if p.PlayerID == f.PlayerID {
				seated = true
				break
			}
		}
		if !seated {
			verr.Fields["player_id"] = "must be one of the participants"
		}
	}

	if len(verr.Fields) > 0 {
		return verr
	}
	return nil
}
