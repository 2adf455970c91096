// Package domain defines the persistence models for the contact-form
// fallback store. This file holds the idempotency record used to deduplicate
// retried submissions.
package domain

import "time"

// Idempotency records the outcome of a previously processed contact
// submission, keyed by the client-supplied Idempotency-Key. It lets a client
// that retries after a timeout receive the original {status, ref} without the
// relay re-sending emails or writing a second fallback record.
type Idempotency struct {
	ID        string    `gorm:"type:TEXT NOT NULL;primaryKey"`
	Key       string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_idem_key"`
	Status    int       `gorm:"type:INTEGER NOT NULL"`
	Ref       string    `gorm:"type:TEXT NOT NULL"`
	CreatedAt time.Time `gorm:"type:DATETIME NOT NULL;autoCreateTime"`
	ExpiresAt time.Time `gorm:"type:DATETIME NOT NULL;index"`
}

// TableName implements the GORM tabler interface.
func (Idempotency) TableName() string { return "idempotency" }
