package product

import (
	"context"
	"fmt"
	"time"

	"go-product-insight/internal/database"
	ierr "go-product-insight/internal/errors"
	"go-product-insight/internal/eventpublisher/event"
	"go-product-insight/internal/model"
	"go-product-insight/internal/repository/helper"
	"go-product-insight/internal/session"

	"cloud.google.com/go/firestore"
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ProductRepository stores analysis records under users/{uid}/products. The user is
// always taken from the session carried by ctx.
type ProductRepository struct {
	db     database.Client
	events chan RecordEvent
}

var _ IRepository = ProductRepository{}

func New(db database.Client) ProductRepository {
	return ProductRepository{
		db:     db,
		events: make(chan RecordEvent, eventBufferSize),
	}
}

func (r ProductRepository) Events() <-chan RecordEvent {
	return r.events
}

func (r ProductRepository) partition(ctx context.Context) (*firestore.CollectionRef, string, error) {
	uid := session.UserID(ctx)
	if uid == "" {
		return nil, "", ierr.ErrNoPartition
	}
	return r.db.Collection(usersNode).Doc(uid).Collection(productNode), uid, nil
}

func (r ProductRepository) Append(ctx context.Context, record model.ProductRecord) (model.ProductRecord, error) {
	coll, uid, err := r.partition(ctx)
	if err != nil {
		return model.ProductRecord{}, ierr.NewStoreError("append", err)
	}

	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	if record.IngredientAnalysis == nil {
		record.IngredientAnalysis = []model.Ingredient{}
	}

	docRef := coll.NewDoc()
	if _, err := r.db.CreateDoc(ctx, docRef, record); err != nil {
		return model.ProductRecord{}, ierr.NewStoreError("append", fmt.Errorf("create product: %w, id: %s", err, docRef.ID))
	}
	record.Id = docRef.ID

	r.emit(ctx, RecordEvent{Type: event.RecordCreated, UserId: uid, Record: record})
	return record, nil
}

// List returns the user's records, newest first. Anonymous callers get an empty list.
func (r ProductRepository) List(ctx context.Context) ([]model.ProductRecord, error) {
	records := []model.ProductRecord{}

	coll, uid, err := r.partition(ctx)
	if err != nil {
		return records, nil
	}

	query := coll.OrderBy(CreatedAtFieldPath, firestore.Desc)
	err = r.db.QueryDocs(ctx, query, func(doc *firestore.DocumentSnapshot) error {
		record, err := toRecord(doc)
		if err != nil {
			return err
		}
		records = append(records, record)
		return nil
	})
	if err != nil {
		return nil, ierr.NewStoreError("list", fmt.Errorf("list products: %w, user: %s", err, uid))
	}

	return records, nil
}

func (r ProductRepository) GetById(ctx context.Context, id string) (*model.ProductRecord, error) {
	coll, _, err := r.partition(ctx)
	if err != nil {
		return nil, ierr.NewStoreError("get", err)
	}

	docSnap, err := r.db.GetDoc(ctx, coll.Doc(id))
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ierr.NewStoreError("get", fmt.Errorf("get product: %w, id: %s", ierr.NotFound, id))
		}
		return nil, ierr.NewStoreError("get", fmt.Errorf("get product: %w, id: %s", err, id))
	}

	record, err := toRecord(docSnap)
	if err != nil {
		return nil, ierr.NewStoreError("get", fmt.Errorf("get product: %w, id: %s", err, id))
	}
	return &record, nil
}

// Delete removes a record. Deleting an id that does not exist fails with ierr.NotFound.
func (r ProductRepository) Delete(ctx context.Context, id string) error {
	coll, uid, err := r.partition(ctx)
	if err != nil {
		return ierr.NewStoreError("delete", err)
	}

	if _, err := r.db.DeleteDoc(ctx, coll.Doc(id), firestore.Exists); err != nil {
		if status.Code(err) == codes.NotFound {
			return ierr.NewStoreError("delete", fmt.Errorf("delete product: %w, id: %s", ierr.NotFound, id))
		}
		return ierr.NewStoreError("delete", fmt.Errorf("delete product: %w, id: %s", err, id))
	}

	r.emit(ctx, RecordEvent{Type: event.RecordDeleted, UserId: uid, Record: model.ProductRecord{Id: id}})
	return nil
}

func (r ProductRepository) emit(ctx context.Context, e RecordEvent) {
	if err := helper.NonblockingWrite[RecordEvent](context.WithoutCancel(ctx), channelWriteTimeout, r.events, e); err != nil {
		log.Warn().Err(err).Str("id", e.Record.Id).Str("event", e.Type.String()).Msg("product repo: dropped record event")
	}
}

func toRecord(doc *firestore.DocumentSnapshot) (model.ProductRecord, error) {
	record := model.ProductRecord{}
	if err := doc.DataTo(&record); err != nil {
		return model.ProductRecord{}, err
	}
	record.Id = doc.Ref.ID
	record.CreatedAt = record.CreatedAt.UTC()
	if record.IngredientAnalysis == nil {
		record.IngredientAnalysis = []model.Ingredient{}
	}
	return record, nil
}
