package domain

// Holding is a single portfolio position: how many units of a launched token
// a user currently holds. Quantity is always non-negative.
type Holding struct {
	Ticker   string `json:"ticker"`
	Quantity int64  `json:"quantity"`
}
