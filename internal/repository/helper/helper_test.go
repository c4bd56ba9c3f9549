package helper

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNonblockingWrite(t *testing.T) {
	ch := make(chan int, 1)

	assert.NoError(t, NonblockingWrite(context.Background(), time.Millisecond*10, ch, 1))
	assert.ErrorIs(t, NonblockingWrite(context.Background(), time.Millisecond*10, ch, 2), context.DeadlineExceeded)
	assert.Equal(t, 1, <-ch)
}
