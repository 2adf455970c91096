// Package repo implements the data persistence layer for the fallback lead
// store. This file provides the put-only lead repository: records are
// written once when email delivery fails and are never read back by the
// application. Keys embed a high-resolution UTC timestamp plus a random hex
// suffix, so concurrent writes cannot collide and rows sort lexically by
// creation time with no read-modify-write step.
package repo

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"time"

	"gorm.io/gorm"

	"github.com/domindev/site-backend/internal/domain"
)

// DefaultLeadTTL is the retention window for fallback records: long enough
// for a human to notice and triage, short enough not to hoard PII.
const DefaultLeadTTL = 7 * 24 * time.Hour

// NewLeadKey returns a fresh fallback key of the form
// "lead_<RFC3339Nano UTC>_<6 hex chars>".
func NewLeadKey(now time.Time) string {
	var buf [3]byte
	// rand.Read on crypto/rand never fails on supported platforms.
	_, _ = rand.Read(buf[:])
	return "lead_" + now.UTC().Format(time.RFC3339Nano) + "_" + hex.EncodeToString(buf[:])
}

// PutLead writes one fallback record for the given payload and delivery
// error, returning the generated key. The payload is stored as JSON so a
// human can act on it without re-deriving state from logs.
func PutLead(ctx context.Context, db *gorm.DB, payload any, deliveryErr error, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = DefaultLeadTTL
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	now := time.Now().UTC()
	rec := &domain.LeadRecord{
		Key:       NewLeadKey(now),
		Payload:   string(raw),
		Status:    domain.LeadStatusPending,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	if deliveryErr != nil {
		rec.ErrMessage = deliveryErr.Error()
	}
	if err := db.WithContext(ctx).Create(rec).Error; err != nil {
		return "", err
	}
	return rec.Key, nil
}

// LeadStore binds PutLead to a database handle so callers that expect a
// put-style collaborator do not need to carry the *gorm.DB themselves.
type LeadStore struct {
	DB *gorm.DB
}

// Put writes one fallback record and returns its key.
func (s LeadStore) Put(ctx context.Context, payload any, deliveryErr error, ttl time.Duration) (string, error) {
	return PutLead(ctx, s.DB, payload, deliveryErr, ttl)
}

// PruneExpired deletes records past their retention deadline. Called
// opportunistically at startup; the store has no background janitor.
func PruneExpired(ctx context.Context, db *gorm.DB, now time.Time) (int64, error) {
	res := db.WithContext(ctx).
		Where("expires_at <= ?", now.UTC()).
		Delete(&domain.LeadRecord{})
	return res.RowsAffected, res.Error
}
