package main

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/zentinela/blog/internal/blogservice"
	"github.com/zentinela/blog/internal/common"
)

// invalidateCacheOnPostChange flushes the response cache whenever a post event arrives,
// so writes made through another instance become visible here.
func (app *application) invalidateCacheOnPostChange(ctx context.Context, mb common.MessageConsumer, queue common.Queue) {
	msgs, err := mb.Consume(queue, common.PostChangedConsumer)
	if err != nil {
		app.logger.Error("could not consume post events", slog.String("error", err.Error()))
		return
	}

	go func() {
		for {
			select {
			case msg, ok := <-msgs:
				if !ok {
					return
				}

				var ev blogservice.PostEvent
				err := json.Unmarshal(msg.Body, &ev)
				if err != nil {
					app.logger.Error("could not unmarshal post event", slog.String("error", err.Error()))
					msg.Ack(false)
					continue
				}

				app.cache.Flush()
				app.logger.Info("response cache flushed", slog.String("action", ev.Action), slog.String("slug", ev.Slug))
				msg.Ack(false)
			case <-ctx.Done():
				app.logger.Info("stopping post event consumer")
				return
			}
		}
	}()
}
