package product

import (
	"context"
	"time"

	"go-product-insight/internal/eventpublisher"
	"go-product-insight/internal/eventpublisher/common"
	"go-product-insight/internal/eventpublisher/event"
	productRepo "go-product-insight/internal/repository/product"

	"github.com/rs/zerolog/log"
)

const (
	writeTimeout          = time.Second
	writeFailureThreshold = 3
)

type EventSource interface {
	Events() <-chan productRepo.RecordEvent
}

type ProductPublisher interface {
	eventpublisher.Publisher
	Start(ctx context.Context) error
}

// productPublisher fans record events out to every subscriber. Subscribers that
// keep missing the write timeout are unsubscribed.
type productPublisher struct {
	source     EventSource
	submanager *common.SubManager
	publisher  *common.PublisherWithFailureThreshold
}

func New(source EventSource) ProductPublisher {
	return &productPublisher{
		source:     source,
		submanager: common.NewSubManager(),
		publisher:  common.NewPublisherWithFailureThreshold(writeTimeout, writeFailureThreshold),
	}
}

func (p *productPublisher) Subscribe(subscriber event.EventWChannel) {
	p.submanager.Subscribe(subscriber)
}

func (p *productPublisher) Unsubscribe(subscriber event.EventWChannel) {
	p.submanager.Unsubscribe(subscriber)
}

func (p *productPublisher) publish(ctx context.Context, recordEvent productRepo.RecordEvent) {
	p.submanager.OnSubscribers(func(subscriber event.EventWChannel) {
		go func() {
			if err := p.publisher.Publish(ctx, subscriber, event.Event{Message: recordEvent}); err != nil {
				log.Warn().Err(err).Msg("unsubscribing slow record event subscriber")
				p.Unsubscribe(subscriber)
			}
		}()
	})
}

func (p *productPublisher) Start(ctx context.Context) error {
	defer p.submanager.UnsubscribeAll()

	eventsCh := p.source.Events()
	for {
		select {
		case <-ctx.Done():
			log.Info().Err(ctx.Err()).Msg("ProductPublisher stopped")
			return ctx.Err()
		case e, ok := <-eventsCh:
			if !ok {
				return nil
			}
			log.Debug().Str("event", e.Type.String()).Str("user", e.UserId).Msgf("publish recordId %s", e.Record.Id)
			p.publish(ctx, e)
		}
	}
}
