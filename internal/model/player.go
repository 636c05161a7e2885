package model

// PlayerID identifies a stored player. Zero means the player has not been
// persisted yet and the backend will assign an ID on save.
type PlayerID int64

// Player is a footballer record managed through the player pages
type Player struct {
	ID          PlayerID `json:"id"`
	Name        string   `json:"name"`
	LastName    string   `json:"last_name"`
	MarketValue int64    `json:"market_value"`
	Country     string   `json:"country"`
	Club        string   `json:"club"`
}

// IsNew reports whether the player still needs an ID from the backend
func (p Player) IsNew() bool {
	return p.ID == 0
}

// Validate checks the attribute constraints enforced before persisting
func (p Player) Validate() error {
	if p.ID < 0 {
		return ErrInvalidID
	}
	if p.MarketValue < 0 {
		return ErrNegativeMarketValue
	}
	return nil
}
