package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/joshwa2003/hr-helpdesk/internal/repository"
)

const ticketNumberPrefix = "TKT"

// TicketSequencer issues ticket numbers of the form TKT + YYYYMMDD + a
// 4-digit daily sequence. Redis INCR hands out the sequence when available;
// otherwise the sequence is derived from the highest persisted number for the
// day. If even that lookup fails, a timestamp-based number keeps creation
// from blocking.
type TicketSequencer struct {
	redis   *redis.Client
	tickets repository.TicketRepository
	logger  *zap.Logger
	now     func() time.Time
}

// NewTicketSequencer builds a sequencer; redisClient may be nil.
func NewTicketSequencer(redisClient *redis.Client, tickets repository.TicketRepository, logger *zap.Logger) *TicketSequencer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketSequencer{
		redis:   redisClient,
		tickets: tickets,
		logger:  logger,
		now:     time.Now,
	}
}

// Next returns the next ticket number for today.
func (s *TicketSequencer) Next(ctx context.Context) string {
	now := s.now().UTC()
	prefix := ticketNumberPrefix + now.Format("20060102")

	if seq, ok := s.nextFromRedis(ctx, now, prefix); ok {
		return fmt.Sprintf("%s%04d", prefix, seq)
	}
	if seq, ok := s.nextFromStore(ctx, prefix); ok {
		return fmt.Sprintf("%s%04d", prefix, seq)
	}
	// last resort keeps numbers unique enough without any backing store
	s.logger.Warn("ticket sequence lookup failed; falling back to timestamp number")
	return ticketNumberPrefix + strconv.FormatInt(now.UnixMilli(), 10)
}

func (s *TicketSequencer) nextFromRedis(ctx context.Context, now time.Time, prefix string) (int64, bool) {
	if s.redis == nil {
		return 0, false
	}
	key := "tkt:seq:" + now.Format("20060102")
	seq, err := s.redis.Incr(ctx, key).Result()
	if err != nil {
		return 0, false
	}
	if seq == 1 {
		// fresh counter: re-align with whatever already exists for the day
		// so a Redis restart cannot reissue suffixes
		s.redis.Expire(ctx, key, 48*time.Hour)
		if persisted, ok := s.nextFromStore(ctx, prefix); ok && persisted > 1 {
			if aligned, err := s.redis.IncrBy(ctx, key, int64(persisted-1)).Result(); err == nil {
				return aligned, true
			}
		}
	}
	return seq, true
}

// nextFromStore derives the next daily sequence from the max persisted
// suffix. Sequence resets naturally each day with the date prefix.
func (s *TicketSequencer) nextFromStore(ctx context.Context, prefix string) (int, bool) {
	max, err := s.tickets.MaxTicketNumber(ctx, prefix)
	if err != nil {
		return 0, false
	}
	if max == "" {
		return 1, true
	}
	if !strings.HasPrefix(max, prefix) {
		// timestamp-fallback numbers share the TKT prefix but not the full
		// date prefix; never trust the suffix arithmetic on them
		return 0, false
	}
	seq, err := strconv.Atoi(max[len(prefix):])
	if err != nil {
		return 0, false
	}
	return seq + 1, true
}
