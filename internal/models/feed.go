package models

import "time"

// FeedType classifies a synthetic detection event.
type FeedType string

const (
	FeedSpam     FeedType = "spam"
	FeedPhishing FeedType = "phishing"
	FeedScam     FeedType = "scam"
)

// LiveFeedItem is a detection event rebuilt on every poll; it is never
// persisted. IDs are deterministic so the client can de-duplicate across
// polls.
type LiveFeedItem struct {
	ID        string   `json:"id"`
	Message   string   `json:"message"`
	Type      FeedType `json:"type"`
	Sender    string   `json:"sender"`
	Recipient string   `json:"recipient"`
}

// Message is a chat message read from the app's store. Read-only here.
type Message struct {
	ID         string
	Text       string
	Sender     string
	Recipient  string
	CreatedAt  time.Time
	RoomID     string
	SenderName string // display-name hint carried on the message or room doc
}
