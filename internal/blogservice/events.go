package blogservice

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/zentinela/blog/internal/common"
	"golang.org/x/exp/rand"
)

type PostEvent struct {
	ID     uuid.UUID `json:"id"`
	Slug   string    `json:"slug"`
	Action string    `json:"action"`
}

const (
	publishTimeout    = 5 * time.Second
	publishMaxRetries = 3
	publishBaseDelay  = 100 * time.Millisecond
)

// publishBackoff is a jittered exponential delay before retry attempt+1.
var publishBackoff = func(attempt int) time.Duration {
	return time.Duration(rand.Int63n(int64(publishBaseDelay) << uint(attempt)))
}

// publish announces a post change on the blog exchange, retrying with jittered
// exponential backoff. Failures are logged only: the write has already been committed.
func (s *BlogService) publish(ctx context.Context, key common.BindingKey, action string, id uuid.UUID, slug string) {
	if s.mb == nil {
		return
	}

	msg, err := json.Marshal(PostEvent{ID: id, Slug: slug, Action: action})
	if err != nil {
		s.logger.Error("could not marshal post event", slog.String("error", err.Error()))
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	for attempt := 0; attempt < publishMaxRetries; attempt++ {
		err = s.mb.Publish(ctx, msg, key, common.BlogExchange)
		if err == nil {
			return
		}

		if attempt == publishMaxRetries-1 {
			break
		}

		delay := publishBackoff(attempt)
		s.logger.Warn("delaying post event", slog.String("action", action), slog.Int("attempt", attempt), slog.Duration("delay", delay))

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			attempt = publishMaxRetries
		}
	}

	s.logger.Error("could not publish post event", slog.String("action", action), slog.String("slug", slug), slog.String("error", err.Error()))
}
