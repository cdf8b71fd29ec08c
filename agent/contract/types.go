package contract

import "time"

// PlaceOrderArgs carries the validated arguments of a place_order tool call.
// AccountID, PurchaseType, Platform and Phone are required; the contact
// fields are optional extras the model may pass through.
type PlaceOrderArgs struct {
	AccountID    int64  `json:"accountId"`
	PurchaseType string `json:"purchaseType"`
	Platform     string `json:"platform"`
	Phone        string `json:"phone"`
	Name         string `json:"name,omitempty"`
	Email        string `json:"email,omitempty"`
	Telegram     string `json:"telegram,omitempty"`
}

// Order is the record returned by the order creation service.
type Order struct {
	ID           int64     `json:"id"`
	AccountID    int64     `json:"account_id"`
	PurchaseType string    `json:"purchase_type"`
	Platform     string    `json:"platform"`
	Phone        string    `json:"phone"`
	Name         string    `json:"name,omitempty"`
	Email        string    `json:"email,omitempty"`
	Telegram     string    `json:"telegram,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Account is an open marketplace account offered for sale, injected wholesale
// into the grounding block.
type Account struct {
	ID       int64   `json:"id"`
	Title    string  `json:"title"`
	Platform string  `json:"platform"`
	Price    float64 `json:"price"`
	Active   bool    `json:"active"`
}

// CatalogItem is a catalog entry; only the name reaches the prompt.
type CatalogItem struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// AssistantReply is the outcome of one processed dialogue turn.
type AssistantReply struct {
	Text         string    `json:"text"`
	SessionToken string    `json:"session_token"`
	Timestamp    time.Time `json:"timestamp"`
}
