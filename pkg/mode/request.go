package mode

// Request is the body posted to the lineup service.
type Request struct {
	Game              string  `json:"game"`
	Scheme            Scheme  `json:"scheme"`
	Price             float64 `json:"price"`
	MaxPlayersPerClub int     `json:"max_players_per_club"`
	Bench             bool    `json:"bench"`
	Dropout           float64 `json:"dropout"`
	// Date is null unless a specific game day was requested.
	Date *string `json:"date"`
}

// NewRequest validates m and builds its request for the given base scheme.
func NewRequest(m Mode, base Scheme) (Request, error) {
	if err := m.Validate(); err != nil {
		return Request{}, err
	}
	s := m.Scheme(base)
	if err := s.Validate(); err != nil {
		return Request{}, err
	}
	return m.request(s), nil
}
