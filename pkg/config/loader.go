package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")
	viper.AddConfigPath("/app/configs")

	viper.SetEnvPrefix("APP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Allow common env vars without APP_ prefix for Docker/VM deploys
	viper.BindEnv("http.port", "HTTP_PORT", "APP_HTTP_PORT")
	viper.BindEnv("http.public_base_url", "PUBLIC_BASE_URL", "APP_HTTP_PUBLIC_BASE_URL")
	viper.BindEnv("database.url", "DATABASE_URL", "APP_DATABASE_URL")
	viper.BindEnv("redis.url", "REDIS_URL", "APP_REDIS_URL")
	viper.BindEnv("nats.url", "NATS_URL", "APP_NATS_URL")
	viper.BindEnv("rabbitmq.url", "RABBITMQ_URL", "APP_RABBITMQ_URL")
	viper.BindEnv("lexicon.voice_config_path", "VOICE_CONFIG_PATH")
	viper.BindEnv("lexicon.knowledge_base_path", "RAG_DATA_PATH")
	viper.BindEnv("azure.speech.key", "AZURE_SPEECH_KEY")
	viper.BindEnv("azure.speech.region", "AZURE_SPEECH_REGION")
	viper.BindEnv("azure.openai.endpoint", "AZURE_OPENAI_ENDPOINT")
	viper.BindEnv("azure.openai.key", "AZURE_OPENAI_KEY")
	viper.BindEnv("azure.openai.chat_deployment", "AZURE_OPENAI_DEPLOYMENT")
	viper.BindEnv("azure.openai.embedding_deployment", "AZURE_OPENAI_EMBEDDING_DEPLOYMENT")
	viper.BindEnv("whatsapp.access_token", "ACCESS_TOKEN", "WHATSAPP_ACCESS_TOKEN")
	viper.BindEnv("whatsapp.phone_number_id", "PHONE_NUMBER_ID", "WHATSAPP_PHONE_NUMBER_ID")
	viper.BindEnv("whatsapp.verify_token", "VERIFY_TOKEN")
	viper.BindEnv("whatsapp.app_id", "APP_ID")
	viper.BindEnv("whatsapp.app_secret", "APP_SECRET")
	viper.BindEnv("whatsapp.recipient_override", "RECIPIENT_WAID")
	viper.BindEnv("whatsapp.account_sid", "TWILIO_ACCOUNT_SID")
	viper.BindEnv("whatsapp.auth_token", "TWILIO_AUTH_TOKEN")
	viper.BindEnv("admin.jwt_secret", "ADMIN_JWT_SECRET", "APP_ADMIN_JWT_SECRET")
	viper.BindEnv("admin.api_key_hash", "ADMIN_API_KEY_HASH")
	viper.BindEnv("email.sendgrid_api_key", "SENDGRID_API_KEY")
	viper.BindEnv("vault.address", "VAULT_ADDR")
	viper.BindEnv("vault.token", "VAULT_TOKEN")
	viper.BindEnv("app.environment", "APP_ENVIRONMENT")
	viper.BindEnv("logging.level", "LOG_LEVEL")

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// no config file is fine, env vars carry the deploy
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("app.name", "voicebot")
	viper.SetDefault("app.version", "dev")
	viper.SetDefault("app.environment", "development")

	viper.SetDefault("http.port", 8080)
	viper.SetDefault("http.read_timeout", 30*time.Second)
	viper.SetDefault("http.write_timeout", 30*time.Second)
	viper.SetDefault("http.idle_timeout", 120*time.Second)

	viper.SetDefault("grpc.enabled", false)
	viper.SetDefault("grpc.port", 9090)

	viper.SetDefault("lexicon.voice_config_path", "configs/voice_config.json")
	viper.SetDefault("lexicon.knowledge_base_path", "data/bank.json")

	viper.SetDefault("retrieval.use_embeddings", true)
	viper.SetDefault("retrieval.cache_context", true)

	viper.SetDefault("azure.speech.language", "ur-PK")
	viper.SetDefault("azure.speech.voice", "ur-PK-UzmaNeural")
	viper.SetDefault("azure.speech.timeout", 30*time.Second)
	viper.SetDefault("azure.openai.timeout", 60*time.Second)

	viper.SetDefault("whatsapp.provider", "meta")
	viper.SetDefault("whatsapp.api_version", "v20.0")

	viper.SetDefault("queue.kind", "memory")
	viper.SetDefault("nats.max_reconnects", 10)
	viper.SetDefault("nats.reconnect_wait", 2*time.Second)
	viper.SetDefault("nats.timeout", 5*time.Second)

	viper.SetDefault("redis.pool_size", 10)
	viper.SetDefault("redis.min_idle_conns", 2)
	viper.SetDefault("redis.dial_timeout", 5*time.Second)
	viper.SetDefault("redis.read_timeout", 3*time.Second)
	viper.SetDefault("redis.write_timeout", 3*time.Second)

	viper.SetDefault("database.auto_migrate", true)

	viper.SetDefault("email.provider", "smtp")
	viper.SetDefault("email.from_name", "Bank Islami Voicebot")
	viper.SetDefault("email.smtp_host", "localhost")
	viper.SetDefault("email.smtp_port", 1025)

	viper.SetDefault("admin.token_ttl", time.Hour)

	viper.SetDefault("prometheus.enabled", true)
	viper.SetDefault("prometheus.path", "/metrics")

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.output", "stdout")

	viper.SetDefault("rate_limiting.enabled", true)
	viper.SetDefault("rate_limiting.max_requests", 60)
	viper.SetDefault("rate_limiting.window", time.Minute)

	viper.SetDefault("circuit_breaker.enabled", true)

	viper.SetDefault("cors.enabled", true)
	viper.SetDefault("cors.allowed_origins", []string{"*"})
	viper.SetDefault("cors.allowed_methods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	viper.SetDefault("cors.allowed_headers", []string{"Origin", "Content-Type", "Accept", "Authorization"})

	viper.SetDefault("media.ttl", 15*time.Minute)
}
