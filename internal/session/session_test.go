package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserID(t *testing.T) {
	assert.Equal(t, "", UserID(context.Background()))

	ctx := WithUser(context.Background(), "uid-1")
	assert.Equal(t, "uid-1", UserID(ctx))
	assert.Equal(t, "uid-1", UserID(context.WithoutCancel(ctx)))
}
