package service

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/joshwa2003/hr-helpdesk/internal/domain"
)

func newStoreSequencer(clock *testClock) (*TicketSequencer, *memTicketRepo) {
	tickets := newMemTicketRepo(clock.Now)
	sequencer := NewTicketSequencer(nil, tickets, zap.NewNop())
	sequencer.now = clock.Now
	return sequencer, tickets
}

func TestSequencerFormatsAndIncrements(t *testing.T) {
	clock := newTestClock(time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC))
	sequencer, tickets := newStoreSequencer(clock)

	first := sequencer.Next(context.Background())
	assert.Equal(t, "TKT202506020001", first)

	// the sequence only advances once a number is persisted
	_ = tickets.Create(context.Background(), &domain.Ticket{TicketNumber: first})
	second := sequencer.Next(context.Background())
	assert.Equal(t, "TKT202506020002", second)
}

func TestSequencerResetsDaily(t *testing.T) {
	clock := newTestClock(time.Date(2025, 6, 2, 23, 50, 0, 0, time.UTC))
	sequencer, tickets := newStoreSequencer(clock)

	first := sequencer.Next(context.Background())
	_ = tickets.Create(context.Background(), &domain.Ticket{TicketNumber: first})

	clock.Advance(20 * time.Minute)
	next := sequencer.Next(context.Background())
	assert.Equal(t, "TKT202506030001", next)
}

// fixedMaxTicketRepo forces MaxTicketNumber to a canned value so the
// sequencer can be fed numbers outside the current day prefix.
type fixedMaxTicketRepo struct {
	*memTicketRepo
	max string
}

func (r fixedMaxTicketRepo) MaxTicketNumber(context.Context, string) (string, error) {
	return r.max, nil
}

func TestSequencerIgnoresForeignMaxNumber(t *testing.T) {
	clock := newTestClock(time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC))
	tickets := fixedMaxTicketRepo{
		memTicketRepo: newMemTicketRepo(clock.Now),
		max:           "TKT1748851200000", // timestamp-fallback number, no date prefix
	}
	sequencer := NewTicketSequencer(nil, tickets, zap.NewNop())
	sequencer.now = clock.Now

	// the foreign number must not feed the suffix arithmetic; the sequencer
	// falls through to the timestamp path instead of panicking or misnumbering
	got := sequencer.Next(context.Background())
	assert.Equal(t, "TKT"+strconv.FormatInt(clock.Now().UnixMilli(), 10), got)
}

func TestSequencerUsesUTCDate(t *testing.T) {
	// 01:30 IST on June 3rd is still June 2nd in UTC
	ist := time.FixedZone("IST", 5*3600+1800)
	clock := newTestClock(time.Date(2025, 6, 3, 1, 30, 0, 0, ist))
	sequencer, _ := newStoreSequencer(clock)

	assert.Equal(t, "TKT202506020001", sequencer.Next(context.Background()))
}
