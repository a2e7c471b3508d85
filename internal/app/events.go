package app

import (
	"context"
	"log"
	"time"

	"blog/internal/domain"
)

// publish announces ev after the write it describes has been stored.
// Delivery failures are logged and never undo the write.
func publish(ctx context.Context, pub domain.EventPublisher, ev domain.Event) {
	if pub == nil {
		return
	}
	ev.OccurredAt = time.Now().UTC()
	if err := pub.Publish(ctx, ev); err != nil {
		log.Printf("publish %s post=%d: %v", ev.Type, ev.PostID, err)
	}
}
