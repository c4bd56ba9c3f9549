package config

import (
	"encoding/base64"
	"strings"
	"time"

	"github.com/caarlos0/env/v8"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

type Firebase struct {
	Type                    string `env:"FIREBASE_TYPE,required" json:"type"`
	ProjectId               string `env:"FIREBASE_PROJECT_ID,required" json:"project_id"`
	PrivateKeyId            string `env:"FIREBASE_PRIVATE_KEY_ID,required" json:"private_key_id"`
	PrivateKey              string `env:"FIREBASE_PRIVATE_KEY,required" json:"private_key"`
	ClientEmail             string `env:"FIREBASE_CLIENT_EMAIL,required" json:"client_email"`
	ClientId                string `env:"FIREBASE_CLIENT_ID,required" json:"client_id"`
	AuthUri                 string `env:"FIREBASE_AUTH_URI,required" json:"auth_uri"`
	TokenUri                string `env:"FIREBASE_TOKEN_URI,required" json:"token_uri"`
	AuthProviderX509CertUrl string `env:"FIREBASE_AUTH_PROVIDER_X509_CERT_URL,required" json:"auth_provider_x509_cert_url"`
	ClientX509CertUrl       string `env:"FIREBASE_CLIENT_X509_CERT_URL,required" json:"client_x509_cert_url"`

	WriteTimeout time.Duration `env:"FIREBASE_WRITE_TIMEOUT" json:"-"`
}

type Extraction struct {
	Provider string        `env:"EXTRACTION_PROVIDER" envDefault:"gemini"`
	Timeout  time.Duration `env:"EXTRACTION_TIMEOUT" envDefault:"90s"`
}

type Gemini struct {
	ApiKey      string  `env:"GEMINI_API_KEY"`
	Model       string  `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash"`
	Temperature float32 `env:"GEMINI_TEMPERATURE" envDefault:"0.2"`
}

type OpenAI struct {
	ApiKey  string `env:"OPENAI_API_KEY"`
	BaseURL string `env:"OPENAI_BASE_URL"`
	Model   string `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
}

// ReviewAI configures the chat model used for review summaries. The feature is off without a key.
type ReviewAI struct {
	ApiKey    string `env:"REVIEW_API_KEY"`
	ApiUrl    string `env:"REVIEW_API_URL" envDefault:"https://api.openai.com/v1/chat/completions"`
	Model     string `env:"REVIEW_GPT_MODEL" envDefault:"gpt-4o-mini"`
	MaxTokens int    `env:"REVIEW_MAX_TOKENS" envDefault:"6000"`
}

type Server struct {
	Addr            string        `env:"HTTP_ADDR" envDefault:":8080"`
	AllowedOrigins  []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"60s"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"5m"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"5s"`
}

type Cache struct {
	Path string        `env:"ANALYSIS_CACHE_PATH" envDefault:"analysis-cache.db"`
	TTL  time.Duration `env:"ANALYSIS_CACHE_TTL" envDefault:"24h"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type Config struct {
	Firebase
	Extraction
	Gemini
	OpenAI
	ReviewAI
	Server
	Cache
	Log
}

func LoadConfigOrPanic() Config {
	config, err := Load()
	if err != nil {
		panic(err)
	}
	return config
}

func Load() (Config, error) {
	var config *Config = new(Config)
	if err := env.Parse(config); err != nil {
		return Config{}, err
	}

	if err := config.normalize(); err != nil {
		return Config{}, err
	}
	return *config, nil
}

func (c *Config) normalize() error {

	decodedBytes, err := base64.StdEncoding.DecodeString(c.Firebase.PrivateKey)
	if err != nil {
		return err
	}
	c.Firebase.PrivateKey = string(decodedBytes)
	c.Firebase.PrivateKey = strings.ReplaceAll(c.Firebase.PrivateKey, "\\n", "\n")

	if c.Firebase.WriteTimeout == 0 {
		c.Firebase.WriteTimeout = time.Second * 30
	}

	c.Extraction.Provider = strings.ToLower(strings.TrimSpace(c.Extraction.Provider))
	return nil
}
