// Package auditstore persists decoded-session audit records to Postgres,
// for the paginated read API over a session's history.
package auditstore

import (
	"time"

	"github.com/google/uuid"
)

// RecordKind distinguishes the three audit record shapes the spec defines.
type RecordKind string

const (
	KindPacket   RecordKind = "PKT"
	KindCommand  RecordKind = "CMD"
	KindResponse RecordKind = "RSP"
)

// Record is one persisted row of a session's audit trail.
type Record struct {
	SessionID     uuid.UUID
	Seq           int64
	Kind          RecordKind
	OccurredAt    time.Time
	Mnemonic      string
	DisplayName   string
	ParamsSummary string
	RawHex        string
}

// Session is one persisted row describing a connection's lifetime.
type Session struct {
	ID         uuid.UUID
	StartedAt  time.Time
	EndedAt    *time.Time
	RemoteAddr string
}
