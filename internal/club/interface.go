package club

// ClubStore defines the interface for interacting with the club's data.
// Players and games are returned in the order they were added.
type ClubStore interface {
	AddPlayer(player Player) error
	RenamePlayer(playerID, name string) error
	GetPlayer(playerID string) (*Player, error)
	GetAllPlayers() ([]Player, error)
	AddGame(game Game) error
	RecordGame(game Game, deltas []StatsDelta) error
	GetGame(gameID string) (*Game, error)
	GetAllGames() ([]Game, error)
	ApplyStats(deltas []StatsDelta) error
	AddExtraPoints(extra ExtraPoints) (*ExtraPoints, error)
	ListExtraPoints(gameID string) ([]ExtraPoints, error)
	GetExtraPoints(extraID int64) (*ExtraPoints, error)
	DeleteExtraPoints(extraID int64) (*ExtraPoints, error)
	IsEmpty() (bool, error)
	Clear()
}
