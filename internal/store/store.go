// Package store persists incidents in monthly partitions with idempotent
// upserts keyed by a content-addressed incident fingerprint.
package store

import (
	"context"
	"time"

	"github.com/guardline/incident-agent/internal/types"
)

// Entry is one stored incident inside a partition record.
type Entry struct {
	IncidentID string `json:"incident_id"`
	Location   string `json:"location"`
	Crime      string `json:"crime"`
	CreatedAt  string `json:"created_at"`
}

// Partition groups the incidents of one calendar month.
type Partition struct {
	YearMonth string  `json:"year_month"`
	Incidents []Entry `json:"incidents"`
}

// Store is the durable key-value contract: partitions addressed by their
// "YYYY-MM" key, with append as the only mutation of an existing record.
type Store interface {
	// GetPartition returns the record for the month, or nil if absent.
	GetPartition(ctx context.Context, yearMonth string) (*Partition, error)
	// PutPartition creates (or replaces) a partition record.
	PutPartition(ctx context.Context, p *Partition) error
	// AppendIncident appends an entry to an existing partition's list.
	AppendIncident(ctx context.Context, yearMonth string, e Entry) error
	// Close releases the underlying resources.
	Close() error
}

// NewEntry builds the stored form of an incident, including its fingerprint.
func NewEntry(inc types.Incident) Entry {
	return Entry{
		IncidentID: IncidentID(inc),
		Location:   inc.Location,
		Crime:      string(inc.Crime),
		CreatedAt:  Timestamp(inc.CreatedAt),
	}
}

// Timestamp renders a time in the stored wire form: RFC 3339, UTC, second
// granularity.
func Timestamp(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format(time.RFC3339)
}

// PartitionKey returns the month key ("YYYY-MM") an incident timestamp
// belongs to.
func PartitionKey(t time.Time) string {
	return t.UTC().Format("2006-01")
}
