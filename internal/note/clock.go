package note

import (
	"time"

	"github.com/google/uuid"
)

// Clock stamps messages when they are created or edited. The ledger
// stores its readings in UTC at whole-second resolution.
type Clock interface {
	Now() time.Time
}

// RealClock reads the wall clock.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// IDGenerator names new messages. Ids only need to be unique within one record.
type IDGenerator interface {
	New() string
}

// UUIDGenerator names messages with random (version 4) UUIDs.
type UUIDGenerator struct{}

func (UUIDGenerator) New() string { return uuid.NewString() }
