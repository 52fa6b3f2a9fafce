package entity

import "time"

// Conversation is a thread between two users about one item at a time
type Conversation struct {
	ID            string
	Participants  []string
	ItemID        string
	LastMessageID string // empty until the first message
	LastUpdated   time.Time
	CreatedAt     time.Time
	IsArchived    bool
}

// HasParticipant reports whether userID takes part in the conversation
func (c *Conversation) HasParticipant(userID string) bool {
	for _, p := range c.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

// OtherParticipants returns the participants except userID
func (c *Conversation) OtherParticipants(userID string) []string {
	out := make([]string, 0, len(c.Participants))
	for _, p := range c.Participants {
		if p != userID {
			out = append(out, p)
		}
	}
	return out
}
