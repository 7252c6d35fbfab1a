package ingest

import (
	"context"
	"sync"

	"github.com/ZamarianPatrick/plantwatch-backend/model"
	"github.com/google/uuid"
)

const feedBuffer = 16

// Feed fans committed plant updates out to live subscribers.
type Feed struct {
	mutex       sync.RWMutex
	subscribers map[string]chan *model.PlantUpdate
}

func NewFeed() *Feed {
	return &Feed{subscribers: make(map[string]chan *model.PlantUpdate)}
}

// Subscribe returns a channel of updates that is closed once ctx is done.
func (f *Feed) Subscribe(ctx context.Context) <-chan *model.PlantUpdate {
	ch := make(chan *model.PlantUpdate, feedBuffer)
	id := uuid.NewString()

	f.mutex.Lock()
	f.subscribers[id] = ch
	f.mutex.Unlock()

	go func() {
		<-ctx.Done()
		f.mutex.Lock()
		delete(f.subscribers, id)
		close(ch)
		f.mutex.Unlock()

		logger().Debug().Str("subscriber", id).Msg("live subscriber left")
	}()

	return ch
}

// Publish never blocks; a subscriber with a full buffer misses the update.
func (f *Feed) Publish(u *model.PlantUpdate) {
	f.mutex.RLock()
	defer f.mutex.RUnlock()

	for id, ch := range f.subscribers {
		select {
		case ch <- u:
		default:
			logger().Warn().Str("subscriber", id).Uint64("plant", u.PlantID).Msg("live subscriber too slow, update dropped")
		}
	}
}

func (f *Feed) Len() int {
	f.mutex.RLock()
	defer f.mutex.RUnlock()
	return len(f.subscribers)
}
