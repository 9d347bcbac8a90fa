package entity

import "time"

// Notification is an in-app message addressed to one user
type Notification struct {
	ID          string     `json:"id"`
	Recipient   string     `json:"recipient"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Type        string     `json:"type"`
	Status      string     `json:"status"`
	IsRead      bool       `json:"is_read"`
	RecordKind  string     `json:"record_kind,omitempty"`
	RecordID    string     `json:"record_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	SentAt      *time.Time `json:"sent_at,omitempty"`
}
