package models

import (
	"encoding/json"
	"time"
)

// Scenario is one saved calculator run: the calculator name plus the raw
// input and result records. Input and Result are kept as raw JSON so a saved
// scenario round-trips byte-for-byte through export and import.
type Scenario struct {
	ID         int64           `json:"id"`
	Calculator string          `json:"calculator"`
	Input      json.RawMessage `json:"input"`
	Result     json.RawMessage `json:"result"`
	CreatedAt  time.Time       `json:"created_at"`
}

// PostedRate is a lender qualifying rate observed from the posted-rate feed.
type PostedRate struct {
	RatePct     float64   `json:"rate_pct"`
	RetrievedAt time.Time `json:"retrieved_at"`
}
