package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zentinela/blog/internal/common"
)

func TestInvalidateCacheOnPostChange(t *testing.T) {
	uri := common.TestRabbitMQ(t)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	var brokers []*common.MessageBroker
	var apps []*application
	for range 2 {
		mb, err := common.NewMessageBroker(uri)
		require.NoError(t, err)
		t.Cleanup(func() { mb.Close() })

		require.NoError(t, common.SetupBlogExchange(mb))
		queue, err := common.DeclarePostChangedQueue(mb)
		require.NoError(t, err)

		app := newOfflineApplication(t)
		app.invalidateCacheOnPostChange(ctx, mb, queue)
		app.cache.Set(common.CacheKeyPosts(), "stale")

		brokers = append(brokers, mb)
		apps = append(apps, app)
	}

	pubCtx, pubCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer pubCancel()

	err := brokers[0].Publish(pubCtx, []byte(`{"id":"7f1c2a4e-3b59-4d0e-9a61-0c2f3d9b8e11","slug":"hello","action":"updated"}`), common.PostUpdatedKey, common.BlogExchange)
	require.NoError(t, err)

	for i, app := range apps {
		assert.Eventually(t, func() bool {
			_, ok := app.cache.Get(common.CacheKeyPosts())
			return !ok
		}, 5*time.Second, 50*time.Millisecond, "instance %d kept its cache", i)
	}
}
