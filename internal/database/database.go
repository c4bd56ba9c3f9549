package database

import (
	"context"

	"cloud.google.com/go/firestore"
)

// FIXME: this interface is very much firestore dependant. It should be decoupled from the underlying db technology
type Client interface {
	Collection(path string) *firestore.CollectionRef
	GetDoc(ctx context.Context, docRef *firestore.DocumentRef) (*firestore.DocumentSnapshot, error)
	QueryDocs(ctx context.Context, query firestore.Query, fn func(*firestore.DocumentSnapshot) error) error
	CreateDoc(ctx context.Context, docRef *firestore.DocumentRef, data interface{}) (*firestore.WriteResult, error)
	DeleteDoc(ctx context.Context, docRef *firestore.DocumentRef, preconds ...firestore.Precondition) (*firestore.WriteResult, error)
}
