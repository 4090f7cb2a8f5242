package domain

import "time"

// LaunchedToken is the immutable record created when a launch flow completes.
type LaunchedToken struct {
	Ticker      string    `json:"ticker"`
	Name        string    `json:"name"`
	Supply      int64     `json:"supply"`
	Liquidity   float64   `json:"liquidity"`
	Description string    `json:"description"`
	Community   string    `json:"community"`
	Owner       string    `json:"owner"`
	CreatedAt   time.Time `json:"created_at"`
}
