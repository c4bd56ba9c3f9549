package compare

import (
	"context"
	"sync"

	"go-product-insight/internal/eventpublisher"
	"go-product-insight/internal/eventpublisher/event"
	"go-product-insight/internal/model"
	productRepo "go-product-insight/internal/repository/product"

	"github.com/rs/zerolog/log"
)

const subscriberBufferSize = 32

// Registry holds the comparison selection of every user in process memory.
type Registry struct {
	mu         sync.Mutex
	selections map[string]*Selection
}

func NewRegistry() *Registry {
	return &Registry{selections: make(map[string]*Selection)}
}

func (r *Registry) selection(uid string) *Selection {
	s, ok := r.selections[uid]
	if !ok {
		s = &Selection{}
		r.selections[uid] = s
	}
	return s
}

func (r *Registry) Toggle(uid, id string, selected bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.selection(uid).Toggle(id, selected)
}

func (r *Registry) IDs(uid string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.selection(uid).IDs()
}

func (r *Registry) Remove(uid, id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.selections[uid]; ok {
		s.Remove(id)
	}
}

func (r *Registry) Materialize(uid string, all []model.ProductRecord) []model.ProductRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.selection(uid).Materialize(all)
}

// Handle subscribes to record events and drops deleted records from their owner's
// selection until ctx is done. If the publisher drops the subscription (a slow
// consumer), Handle subscribes again.
func (r *Registry) Handle(ctx context.Context, publisher eventpublisher.Publisher) error {
	ch := make(chan event.Event, subscriberBufferSize)
	publisher.Subscribe(ch)
	defer func() { publisher.Unsubscribe(ch) }()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case e, ok := <-ch:
			if !ok {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				log.Error().Msg("comparison registry was unsubscribed from record events, resubscribing")
				ch = make(chan event.Event, subscriberBufferSize)
				publisher.Subscribe(ch)
				continue
			}
			r.onEvent(e)
		}
	}
}

func (r *Registry) onEvent(e event.Event) {
	if e.Err != nil {
		log.Error().Err(e.Err).Msg("comparison registry: record event error")
		return
	}

	re, ok := e.Message.(productRepo.RecordEvent)
	if !ok || re.Type != event.RecordDeleted {
		return
	}
	r.Remove(re.UserId, re.Record.Id)
	log.Debug().Str("user", re.UserId).Str("id", re.Record.Id).Msg("removed deleted record from comparison")
}
