package gpt

import (
	"testing"

	"go-product-insight/internal/config"

	"github.com/stretchr/testify/assert"
)

func TestNewClientFactoryRequiresKey(t *testing.T) {
	f, err := NewClientFactory(config.ReviewAI{Model: "gpt-4o-mini"}, 0.1)
	assert.Error(t, err)
	assert.Nil(t, f)
}
