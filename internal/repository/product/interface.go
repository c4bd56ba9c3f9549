package product

import (
	"context"

	"go-product-insight/internal/eventpublisher/event"
	"go-product-insight/internal/model"
)

// RecordEvent is emitted after a record was appended to or deleted from a user's partition.
// Deleted records only carry their id.
type RecordEvent struct {
	Type   event.EventType
	UserId string
	Record model.ProductRecord
}

type IRepository interface {
	Append(ctx context.Context, record model.ProductRecord) (model.ProductRecord, error)
	List(ctx context.Context) ([]model.ProductRecord, error)
	GetById(ctx context.Context, id string) (*model.ProductRecord, error)
	Delete(ctx context.Context, id string) error
	Events() <-chan RecordEvent
}
