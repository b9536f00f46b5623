package domain

import "time"

// Record carries the identity and timestamps shared by every persisted entity.
type Record struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// InitTimestamps sets both CreatedAt and UpdatedAt to now.
func (r *Record) InitTimestamps() {
	now := time.Now().UTC()
	r.CreatedAt = now
	r.UpdatedAt = now
}

// Touch updates UpdatedAt. Call it whenever the entity changes.
func (r *Record) Touch() {
	r.UpdatedAt = time.Now().UTC()
}
