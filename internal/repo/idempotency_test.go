package repo

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestIdempotencyRoundTrip(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	rec, err := CreateIdempotency(ctx, db, "key-1", "lead_x", 502, time.Hour)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if rec.Ref != "lead_x" || rec.Status != 502 {
		t.Fatalf("stored record %+v", rec)
	}

	got, err := GetIdempotency(ctx, db, "key-1", time.Now().UTC())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Ref != "lead_x" || got.Status != 502 {
		t.Fatalf("fetched record %+v", got)
	}
}

func TestIdempotencyDuplicate(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if _, err := CreateIdempotency(ctx, db, "key-1", "", 200, time.Hour); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := CreateIdempotency(ctx, db, "key-1", "", 200, time.Hour); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("err = %v, want ErrDuplicate", err)
	}
}

func TestIdempotencyExpiry(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if _, err := CreateIdempotency(ctx, db, "key-1", "", 200, time.Millisecond); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := GetIdempotency(ctx, db, "key-1", time.Now().UTC().Add(time.Second)); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expired key should be ErrNotFound, got %v", err)
	}
}

func TestIdempotencyEmptyKey(t *testing.T) {
	db := newTestDB(t)
	if _, err := GetIdempotency(context.Background(), db, "  ", time.Now()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("blank key should be ErrNotFound, got %v", err)
	}
}
