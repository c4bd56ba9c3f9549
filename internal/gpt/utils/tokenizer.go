package utils

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
	"github.com/rs/zerolog/log"
)

const encoding = "cl100k_base"

var (
	tokenizer *tiktoken.Tiktoken
	initMu    sync.Mutex
)

func initTokenizer() error {
	initMu.Lock()
	defer initMu.Unlock()

	if tokenizer != nil {
		return nil
	}

	tkm, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		log.Error().Err(err).Msg("failed to init tokenizer")
		return err
	}

	tokenizer = tkm

	return nil
}

// Tokenizer counts tokens the way the review model does, to keep prompts within budget.
type Tokenizer struct {
	tokenizer *tiktoken.Tiktoken
}

func NewTokenizer() (Tokenizer, error) {
	if err := initTokenizer(); err != nil {
		return Tokenizer{}, err
	}

	return Tokenizer{tokenizer: tokenizer}, nil
}

func (t Tokenizer) CountTokens(s string) int {
	token := t.tokenizer.Encode(s, nil, nil)
	return len(token)
}
