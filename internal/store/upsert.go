package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/guardline/incident-agent/internal/retry"
	"github.com/guardline/incident-agent/internal/types"
)

// UpsertResult reports the outcome of a persist operation.
type UpsertResult struct {
	YearMonth  string
	IncidentID string
	Duplicate  bool // true when the incident was already stored; no write happened
}

// Upserter performs idempotent monthly-partition upserts against a Store,
// retrying transient failures. Persistence failures escalate: unlike the
// alert path, an error here propagates to the caller.
type Upserter struct {
	store Store
	retry retry.Config
}

// NewUpserter wraps a Store with the executor retry policy.
func NewUpserter(s Store) *Upserter {
	return &Upserter{store: s, retry: retry.DefaultConfig()}
}

// Upsert stores the incident in its month partition. If an entry with the
// same fingerprint already exists there, it reports Duplicate=true and
// writes nothing.
//
// The read-then-write is not atomic: two concurrent runs can both read the
// partition before either writes and both append. Appends commute, so no
// update is lost, but a genuine duplicate submitted twice concurrently can
// be stored twice. Accepted limitation.
func (u *Upserter) Upsert(ctx context.Context, inc types.Incident) (UpsertResult, error) {
	if err := inc.Validate(); err != nil {
		return UpsertResult{}, fmt.Errorf("invalid incident: %w", err)
	}

	entry := NewEntry(inc)
	yearMonth := PartitionKey(inc.CreatedAt)
	result := UpsertResult{YearMonth: yearMonth, IncidentID: entry.IncidentID}

	slog.Info("upserting incident",
		"year_month", yearMonth,
		"incident_id", entry.IncidentID)

	var existing *Partition
	err := retry.Do(ctx, u.retry, "store get", func() error {
		p, err := u.store.GetPartition(ctx, yearMonth)
		if err != nil {
			return err
		}
		existing = p
		return nil
	})
	if err != nil {
		return UpsertResult{}, err
	}

	if existing != nil {
		for _, e := range existing.Incidents {
			if e.IncidentID == entry.IncidentID {
				slog.Info("duplicate incident, skipping write",
					"year_month", yearMonth,
					"incident_id", entry.IncidentID)
				result.Duplicate = true
				return result, nil
			}
		}

		err = retry.Do(ctx, u.retry, "store append", func() error {
			return u.store.AppendIncident(ctx, yearMonth, entry)
		})
		if err != nil {
			return UpsertResult{}, err
		}
		slog.Info("appended incident to existing partition",
			"year_month", yearMonth,
			"incident_id", entry.IncidentID)
		return result, nil
	}

	err = retry.Do(ctx, u.retry, "store put", func() error {
		return u.store.PutPartition(ctx, &Partition{
			YearMonth: yearMonth,
			Incidents: []Entry{entry},
		})
	})
	if err != nil {
		return UpsertResult{}, err
	}
	slog.Info("created new partition with incident",
		"year_month", yearMonth,
		"incident_id", entry.IncidentID)
	return result, nil
}
