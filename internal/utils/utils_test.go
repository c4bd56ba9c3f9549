package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHash(t *testing.T) {
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", Hash(""))
	assert.Equal(t, Hash("data:image/png;base64,AAAA"), Hash("data:image/png;base64,AAAA"))
	assert.NotEqual(t, Hash("a"), Hash("b"))
}

func TestToPointer(t *testing.T) {
	assert.Equal(t, float32(0.2), *Float32ToPointer(0.2))
	assert.True(t, *BoolToPointer(true))
}
