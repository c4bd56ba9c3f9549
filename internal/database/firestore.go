package database

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
)

const defaultTimeout = time.Second * 30

type FirestoreClient struct {
	*firestore.Client
	timeout time.Duration
}

func New(client *firestore.Client, timeout time.Duration) FirestoreClient {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return FirestoreClient{
		Client:  client,
		timeout: timeout,
	}
}

func (c FirestoreClient) GetDoc(ctx context.Context, docRef *firestore.DocumentRef) (*firestore.DocumentSnapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	docSnapshot, err := docRef.Get(ctx)
	if err != nil {
		return nil, err
	}

	if !docSnapshot.Exists() {
		return nil, fmt.Errorf("doc snapshot does not exist")
	}

	return docSnapshot, nil
}

// QueryDocs calls fn for every document matched by query, stopping at the first error.
func (c FirestoreClient) QueryDocs(ctx context.Context, query firestore.Query, fn func(*firestore.DocumentSnapshot) error) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	iter := query.Documents(ctx)
	defer iter.Stop()
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			return nil
		}
		if err != nil {
			return err
		}

		if err := fn(doc); err != nil {
			return err
		}
	}
}

func (c FirestoreClient) CreateDoc(ctx context.Context, docRef *firestore.DocumentRef, data interface{}) (*firestore.WriteResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	return docRef.Create(ctx, data)
}

func (c FirestoreClient) DeleteDoc(ctx context.Context, docRef *firestore.DocumentRef, preconds ...firestore.Precondition) (*firestore.WriteResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	return docRef.Delete(ctx, preconds...)
}
