package product

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	ierr "go-product-insight/internal/errors"
	"go-product-insight/internal/eventpublisher/event"
	"go-product-insight/internal/session"

	"cloud.google.com/go/firestore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var fixedTime = time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC)

// memDB keeps documents by path. Snapshots cannot be built outside the firestore
// package, so reads only answer NotFound or the configured error.
type memDB struct {
	*firestore.Client

	mu      sync.Mutex
	docs    map[string]any
	readErr error
}

func newMemDB(t *testing.T) *memDB {
	t.Helper()

	// refs are built locally; nothing is dialed
	t.Setenv("FIRESTORE_EMULATOR_HOST", "localhost:1")
	client, err := firestore.NewClient(context.Background(), "go-product-insight-test")
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	return &memDB{Client: client, docs: map[string]any{}}
}

func (m *memDB) GetDoc(ctx context.Context, docRef *firestore.DocumentRef) (*firestore.DocumentSnapshot, error) {
	if m.readErr != nil {
		return nil, m.readErr
	}
	return nil, status.Errorf(codes.NotFound, "%s not found", docRef.Path)
}

func (m *memDB) QueryDocs(ctx context.Context, query firestore.Query, fn func(*firestore.DocumentSnapshot) error) error {
	return m.readErr
}

func (m *memDB) CreateDoc(ctx context.Context, docRef *firestore.DocumentRef, data interface{}) (*firestore.WriteResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.docs[docRef.Path]; ok {
		return nil, status.Errorf(codes.AlreadyExists, "%s exists", docRef.Path)
	}
	m.docs[docRef.Path] = data
	return &firestore.WriteResult{}, nil
}

func (m *memDB) DeleteDoc(ctx context.Context, docRef *firestore.DocumentRef, preconds ...firestore.Precondition) (*firestore.WriteResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.docs[docRef.Path]; !ok {
		return nil, status.Errorf(codes.NotFound, "%s not found", docRef.Path)
	}
	delete(m.docs, docRef.Path)
	return &firestore.WriteResult{}, nil
}

func (m *memDB) paths() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := []string{}
	for p := range m.docs {
		out = append(out, p)
	}
	return out
}

func TestDeleteMissingLeavesPartitionUnchanged(t *testing.T) {
	db := newMemDB(t)
	repo := New(db)
	ctx := session.WithUser(context.Background(), "alice")

	kept, err := repo.Append(ctx, record("Keep", fixedTime))
	require.NoError(t, err)
	<-repo.Events()

	before := db.paths()
	err = repo.Delete(ctx, "does-not-exist")

	var storeErr *ierr.StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "delete", storeErr.Op)
	assert.True(t, ierr.IsNotFound(err))
	assert.Equal(t, before, db.paths())
	assert.Empty(t, repo.Events(), "no event for a failed delete")

	require.NoError(t, repo.Delete(ctx, kept.Id))
	e := <-repo.Events()
	assert.Equal(t, event.RecordDeleted, e.Type)
	assert.Equal(t, kept.Id, e.Record.Id)
	assert.Empty(t, db.paths())

	assert.True(t, ierr.IsNotFound(repo.Delete(ctx, kept.Id)))
}

func TestAppendWritesIntoUserPartition(t *testing.T) {
	db := newMemDB(t)
	repo := New(db)

	created, err := repo.Append(session.WithUser(context.Background(), "alice"), record("Serum", fixedTime))
	require.NoError(t, err)
	require.NotEmpty(t, created.Id)

	paths := db.paths()
	require.Len(t, paths, 1)
	assert.True(t, strings.HasSuffix(paths[0], "/users/alice/products/"+created.Id), paths[0])

	other := session.WithUser(context.Background(), "bob")
	assert.True(t, ierr.IsNotFound(repo.Delete(other, created.Id)))
	assert.Len(t, db.paths(), 1)
}

func TestReadErrorMapping(t *testing.T) {
	db := newMemDB(t)
	repo := New(db)
	ctx := session.WithUser(context.Background(), "alice")

	_, err := repo.GetById(ctx, "missing")
	var storeErr *ierr.StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "get", storeErr.Op)
	assert.True(t, ierr.IsNotFound(err))

	db.readErr = status.Error(codes.Unavailable, "backend down")

	_, err = repo.GetById(ctx, "missing")
	require.ErrorAs(t, err, &storeErr)
	assert.False(t, ierr.IsNotFound(err))

	_, err = repo.List(ctx)
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "list", storeErr.Op)
}
