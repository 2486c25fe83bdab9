package domain

import "time"

// Notification is a per-user feed entry created by system events such as
// ticket status changes. Only the read flag mutates after creation.
type Notification struct {
	ID        string
	UserID    string
	Title     string
	Message   string
	IsRead    bool
	CreatedAt time.Time
}
