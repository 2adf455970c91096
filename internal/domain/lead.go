// Package domain defines the persistence models for the contact-form
// fallback store. These types are mapped with GORM and form the durable
// failure buffer for leads whose live email delivery did not succeed.
package domain

import "time"

// Lead statuses. Only StatusPending is ever written by the relay; the later
// values exist for out-of-band human triage of saved leads.
const (
	LeadStatusPending   = "pending"
	LeadStatusProcessed = "processed"
	LeadStatusContacted = "contacted"
)

// LeadRecord captures a contact submission that could not be delivered by
// email. It is written exactly once per failed delivery attempt and expires
// after a fixed retention window; the application never reads it back.
//
// Fields:
//   - Key: primary key of the form "lead_<RFC3339Nano UTC>_<6 hex chars>",
//     lexically sortable by creation time and collision-resistant via the
//     random suffix.
//   - Payload: the submitted contact fields, serialized as JSON.
//   - ErrMessage / ErrStack: the delivery error that triggered the fallback
//     (stack may be empty when unavailable).
//   - Status: triage state; the relay only ever writes "pending".
//   - CreatedAt / ExpiresAt: creation time and retention deadline.
type LeadRecord struct {
	Key        string    `json:"key"        gorm:"type:TEXT NOT NULL;primaryKey"`
	Payload    string    `json:"payload"    gorm:"type:TEXT NOT NULL"`
	ErrMessage string    `json:"error"      gorm:"type:TEXT NOT NULL"`
	ErrStack   string    `json:"stack,omitempty" gorm:"type:TEXT"`
	Status     string    `json:"status"     gorm:"type:TEXT NOT NULL;default:'pending';check:status IN ('pending','processed','contacted')"`
	CreatedAt  time.Time `json:"created_at" gorm:"type:DATETIME NOT NULL;autoCreateTime"`
	ExpiresAt  time.Time `json:"expires_at" gorm:"type:DATETIME NOT NULL;index"`
}

// TableName returns the database table name for LeadRecord.
func (LeadRecord) TableName() string { return "leads" }
