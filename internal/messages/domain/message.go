package domain

import "time"

// SmsMessage is an inbound SMS tied to exactly one virtual number. Immutable
// once stored; history is retained even after the number leaves active.
type SmsMessage struct {
	ID         string    `json:"id"`
	NumberID   string    `json:"number_id"`
	Sender     string    `json:"sender"`
	Content    string    `json:"content"`
	ReceivedAt time.Time `json:"received_at"`
}
