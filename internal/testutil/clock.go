package testutil

import (
	"strconv"
	"sync/atomic"
	"time"

	"gitnote/internal/note"
)

// fixedInstant is where every FixedClock starts: 2024-01-15 10:30:00 UTC.
var fixedInstant = time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

// StubClock is a note.Clock that only moves when a test calls Advance.
// Readings are kept as nanoseconds since fixedInstant so concurrent readers
// never need a lock.
type StubClock struct {
	offset atomic.Int64
}

var _ note.Clock = (*StubClock)(nil)

// FixedClock returns a StubClock reading 2024-01-15 10:30:00 UTC, which
// serializes as "2024-01-15T10:30:00Z".
func FixedClock() *StubClock {
	return &StubClock{}
}

func (c *StubClock) Now() time.Time {
	return fixedInstant.Add(time.Duration(c.offset.Load()))
}

// Advance moves the clock forward by d. Sub-second steps are visible here
// but vanish once the ledger stamps a message.
func (c *StubClock) Advance(d time.Duration) {
	c.offset.Add(int64(d))
}

// StubIDGenerator names messages "msg-1", "msg-2", ... in append order,
// which is the order FindIDAt breaks ties in.
type StubIDGenerator struct {
	next atomic.Int64
}

var _ note.IDGenerator = (*StubIDGenerator)(nil)

func NewStubIDGenerator() *StubIDGenerator {
	return &StubIDGenerator{}
}

func (g *StubIDGenerator) New() string {
	return "msg-" + strconv.FormatInt(g.next.Add(1), 10)
}
