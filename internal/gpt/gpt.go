package gpt

import (
	"fmt"
	"sync"

	"go-product-insight/internal/config"
	"go-product-insight/internal/utils"

	gpt "github.com/m-ariany/gpt-chat-client"
)

var (
	client *gpt.Client
	once   sync.Once
)

// ClientFactory hands out independent conversations on one shared chat client.
type ClientFactory interface {
	Client() (Client, error)
}

type factory struct {
}

func NewClientFactory(cnf config.ReviewAI, temperature float32) (ClientFactory, error) {
	if cnf.ApiKey == "" {
		return nil, fmt.Errorf("review model api key is not set")
	}

	var err error
	once.Do(func() {
		client, err = gpt.NewClient(ClientConfig{
			ApiUrl:      cnf.ApiUrl,
			ApiKey:      cnf.ApiKey,
			Model:       cnf.Model,
			Temperature: utils.Float32ToPointer(temperature),
		})
	})
	return &factory{}, err
}

func (g factory) Client() (Client, error) {
	if client == nil {
		return Client{}, fmt.Errorf("gpt client is not initialized")
	}
	return Client{Client: client.Clone()}, nil
}

type Client struct {
	*gpt.Client
}

type ClientConfig = gpt.ClientConfig
