package config

import "time"

type Config struct {
	App            AppConfig            `mapstructure:"app"`
	HTTP           HTTPConfig           `mapstructure:"http"`
	GRPC           GRPCConfig           `mapstructure:"grpc"`
	Lexicon        LexiconConfig        `mapstructure:"lexicon"`
	Retrieval      RetrievalConfig      `mapstructure:"retrieval"`
	Azure          AzureConfig          `mapstructure:"azure"`
	WhatsApp       WhatsAppConfig       `mapstructure:"whatsapp"`
	Database       DatabaseConfig       `mapstructure:"database"`
	Redis          RedisConfig          `mapstructure:"redis"`
	Queue          QueueConfig          `mapstructure:"queue"`
	NATS           NATSConfig           `mapstructure:"nats"`
	RabbitMQ       RabbitMQConfig       `mapstructure:"rabbitmq"`
	Vault          VaultConfig          `mapstructure:"vault"`
	Email          EmailConfig          `mapstructure:"email"`
	Admin          AdminConfig          `mapstructure:"admin"`
	OpenTelemetry  OpenTelemetryConfig  `mapstructure:"opentelemetry"`
	Prometheus     PrometheusConfig     `mapstructure:"prometheus"`
	Logging        LoggingConfig        `mapstructure:"logging"`
	RateLimiting   RateLimitingConfig   `mapstructure:"rate_limiting"`
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
	CORS           CORSConfig           `mapstructure:"cors"`
	Media          MediaConfig          `mapstructure:"media"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type HTTPConfig struct {
	Port          int           `mapstructure:"port"`
	ReadTimeout   time.Duration `mapstructure:"read_timeout"`
	WriteTimeout  time.Duration `mapstructure:"write_timeout"`
	IdleTimeout   time.Duration `mapstructure:"idle_timeout"`
	PublicBaseURL string        `mapstructure:"public_base_url"`
}

type GRPCConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// LexiconConfig points at the two knowledge files: the voice config (system
// prompt, intents, synonyms, fallbacks) and the product knowledge base.
type LexiconConfig struct {
	VoiceConfigPath  string `mapstructure:"voice_config_path"`
	KnowledgeBaseURL string `mapstructure:"knowledge_base_path"`
}

type RetrievalConfig struct {
	UseEmbeddings bool `mapstructure:"use_embeddings"`
	CacheContext  bool `mapstructure:"cache_context"`
}

type AzureConfig struct {
	Speech AzureSpeechConfig `mapstructure:"speech"`
	OpenAI AzureOpenAIConfig `mapstructure:"openai"`
}

type AzureSpeechConfig struct {
	Key      string        `mapstructure:"key"`
	Region   string        `mapstructure:"region"`
	Language string        `mapstructure:"language"`
	Voice    string        `mapstructure:"voice"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type AzureOpenAIConfig struct {
	Endpoint            string        `mapstructure:"endpoint"`
	Key                 string        `mapstructure:"key"`
	ChatDeployment      string        `mapstructure:"chat_deployment"`
	EmbeddingDeployment string        `mapstructure:"embedding_deployment"`
	Timeout             time.Duration `mapstructure:"timeout"`
}

type WhatsAppConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	Provider          string `mapstructure:"provider"`
	AccessToken       string `mapstructure:"access_token"`
	PhoneNumberID     string `mapstructure:"phone_number_id"`
	VerifyToken       string `mapstructure:"verify_token"`
	APIVersion        string `mapstructure:"api_version"`
	AppID             string `mapstructure:"app_id"`
	AppSecret         string `mapstructure:"app_secret"`
	AccountSID        string `mapstructure:"account_sid"`
	AuthToken         string `mapstructure:"auth_token"`
	FromPhone         string `mapstructure:"from_phone"`
	RecipientOverride string `mapstructure:"recipient_override"`
}

type DatabaseConfig struct {
	URL          string `mapstructure:"url"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	AutoMigrate  bool   `mapstructure:"auto_migrate"`
}

type RedisConfig struct {
	URL          string        `mapstructure:"url"`
	MaxRetries   int           `mapstructure:"max_retries"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// QueueConfig selects the webhook queue backend.
type QueueConfig struct {
	Kind string `mapstructure:"kind"` // memory, nats, rabbitmq
}

type NATSConfig struct {
	URL           string        `mapstructure:"url"`
	MaxReconnects int           `mapstructure:"max_reconnects"`
	ReconnectWait time.Duration `mapstructure:"reconnect_wait"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

type RabbitMQConfig struct {
	URL string `mapstructure:"url"`
}

type VaultConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Address string `mapstructure:"address"`
	Token   string `mapstructure:"token"`
}

type EmailConfig struct {
	Provider       string `mapstructure:"provider"`
	FromEmail      string `mapstructure:"from_email"`
	FromName       string `mapstructure:"from_name"`
	SendGridAPIKey string `mapstructure:"sendgrid_api_key"`
	SMTPHost       string `mapstructure:"smtp_host"`
	SMTPPort       int    `mapstructure:"smtp_port"`
	SMTPUsername   string `mapstructure:"smtp_username"`
	SMTPPassword   string `mapstructure:"smtp_password"`
	SMTPUseTLS     bool   `mapstructure:"smtp_use_tls"`
	SupportTo      string `mapstructure:"support_to"`
}

type AdminConfig struct {
	JWTSecret  string        `mapstructure:"jwt_secret"`
	APIKeyHash string        `mapstructure:"api_key_hash"`
	TokenTTL   time.Duration `mapstructure:"token_ttl"`
}

type OpenTelemetryConfig struct {
	Enabled     bool              `mapstructure:"enabled"`
	Jaeger      JaegerConfig      `mapstructure:"jaeger"`
	ServiceName string            `mapstructure:"service_name"`
	Attributes  map[string]string `mapstructure:"attributes"`
}

type JaegerConfig struct {
	Endpoint     string  `mapstructure:"endpoint"`
	SamplerType  string  `mapstructure:"sampler_type"`
	SamplerParam float64 `mapstructure:"sampler_param"`
}

type PrometheusConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type LoggingConfig struct {
	Level    string          `mapstructure:"level"`
	Format   string          `mapstructure:"format"`
	Output   string          `mapstructure:"output"`
	Sampling LoggingSampling `mapstructure:"sampling"`
}

type LoggingSampling struct {
	Enabled    bool `mapstructure:"enabled"`
	Initial    int  `mapstructure:"initial"`
	Thereafter int  `mapstructure:"thereafter"`
}

type RateLimitingConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	MaxRequests int           `mapstructure:"max_requests"`
	Window      time.Duration `mapstructure:"window"`
}

type CircuitBreakerConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type CORSConfig struct {
	Enabled        bool     `mapstructure:"enabled"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
	ExposeHeaders  []string `mapstructure:"expose_headers"`
	MaxAge         int      `mapstructure:"max_age"`
	Credentials    bool     `mapstructure:"credentials"`
}

type MediaConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}
