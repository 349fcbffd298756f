package config

import (
	"context"
	"fmt"
	"os"

	"github.com/dhkim/gapboard/pkg/secrets"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Backend BackendConfig `mapstructure:"backend"`
	Stream  StreamConfig  `mapstructure:"stream"`
	Poll    PollConfig    `mapstructure:"poll"`
	Logging LoggingConfig `mapstructure:"logging"`
	GCP     GCPConfig     `mapstructure:"gcp"`
}

// ServerConfig is the local status API.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// BackendConfig points at the dashboard backend that owns the exchange
// connections.
type BackendConfig struct {
	BaseURL string `mapstructure:"base_url"`
	WSURL   string `mapstructure:"ws_url"`

	// "none", "token" or "jwt"
	AuthType      string `mapstructure:"auth_type"`
	APIToken      string `mapstructure:"api_token"`
	JWTKeyName    string `mapstructure:"jwt_key_name"`
	JWTPrivateKey string `mapstructure:"jwt_private_key"`

	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
}

type StreamConfig struct {
	ReconnectDelayMs    int `mapstructure:"reconnect_delay_ms"`
	MaxReconnectDelayMs int `mapstructure:"max_reconnect_delay_ms"`
	PingIntervalSec     int `mapstructure:"ping_interval_sec"`
}

type PollConfig struct {
	BitgetIntervalSec int  `mapstructure:"bitget_interval_sec"`
	ClearScreen       bool `mapstructure:"clear_screen"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type GCPConfig struct {
	ProjectID       string              `mapstructure:"project_id"`
	UseSecrets      bool                `mapstructure:"use_secrets"`
	CredentialsFile string              `mapstructure:"credentials_file"`
	SecretNames     secrets.SecretNames `mapstructure:"secret_names"`
}

func Load(configPath string) (*Config, error) {
	// A local .env is optional; missing files are fine.
	_ = godotenv.Load()

	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/gapboard")
	}

	v.SetEnvPrefix("GAPBOARD")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; use defaults and environment
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	overrideFromEnv(&config)

	if config.GCP.UseSecrets && config.GCP.ProjectID != "" {
		ctx := context.Background()
		logger := logrus.New()
		if err := loadSecretsFromGCP(ctx, &config, logger); err != nil {
			return nil, fmt.Errorf("error loading secrets from GCP: %w", err)
		}
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8091)

	v.SetDefault("backend.base_url", "http://localhost:8000")
	v.SetDefault("backend.ws_url", "ws://localhost:8000/ws/positions/all")
	v.SetDefault("backend.auth_type", "none")
	v.SetDefault("backend.requests_per_second", 5.0)

	v.SetDefault("stream.reconnect_delay_ms", 1000)
	v.SetDefault("stream.max_reconnect_delay_ms", 10000)
	v.SetDefault("stream.ping_interval_sec", 30)

	v.SetDefault("poll.bitget_interval_sec", 30)
	v.SetDefault("poll.clear_screen", true)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	v.SetDefault("gcp.use_secrets", false)
	v.SetDefault("gcp.project_id", "")
	v.SetDefault("gcp.credentials_file", "")

	secretNames := secrets.DefaultSecretNames()
	v.SetDefault("gcp.secret_names.api_token", secretNames.APIToken)
	v.SetDefault("gcp.secret_names.jwt_key_name", secretNames.JWTKeyName)
	v.SetDefault("gcp.secret_names.jwt_private_key", secretNames.JWTPrivateKey)
}

func overrideFromEnv(config *Config) {
	if baseURL := os.Getenv("GAPBOARD_BACKEND_URL"); baseURL != "" {
		config.Backend.BaseURL = baseURL
	}
	if wsURL := os.Getenv("GAPBOARD_WS_URL"); wsURL != "" {
		config.Backend.WSURL = wsURL
	}
	if token := os.Getenv("GAPBOARD_API_TOKEN"); token != "" {
		config.Backend.APIToken = token
	}
	if authType := os.Getenv("GAPBOARD_AUTH_TYPE"); authType != "" {
		config.Backend.AuthType = authType
	}
	if keyName := os.Getenv("GAPBOARD_JWT_KEY_NAME"); keyName != "" {
		config.Backend.JWTKeyName = keyName
	}
	if privateKey := os.Getenv("GAPBOARD_JWT_PRIVATE_KEY"); privateKey != "" {
		config.Backend.JWTPrivateKey = privateKey
	}

	if projectID := os.Getenv("GCP_PROJECT_ID"); projectID != "" {
		config.GCP.ProjectID = projectID
	}
	if useSecrets := os.Getenv("GCP_USE_SECRETS"); useSecrets == "true" {
		config.GCP.UseSecrets = true
	}
}

func loadSecretsFromGCP(ctx context.Context, config *Config, logger *logrus.Logger) error {
	secretManager, err := secrets.NewGCPSecretManager(ctx, config.GCP.ProjectID, config.GCP.CredentialsFile, logger)
	if err != nil {
		return fmt.Errorf("failed to create secret manager: %w", err)
	}
	defer secretManager.Close()

	// Only load secrets that are not already set
	if config.Backend.APIToken == "" {
		config.Backend.APIToken = secretManager.GetSecretWithDefault(ctx,
			config.GCP.SecretNames.APIToken, "")
	}
	if config.Backend.JWTKeyName == "" {
		config.Backend.JWTKeyName = secretManager.GetSecretWithDefault(ctx,
			config.GCP.SecretNames.JWTKeyName, "")
	}
	if config.Backend.JWTPrivateKey == "" {
		config.Backend.JWTPrivateKey = secretManager.GetSecretWithDefault(ctx,
			config.GCP.SecretNames.JWTPrivateKey, "")
	}

	logger.Info("Successfully loaded secrets from GCP Secret Manager")
	return nil
}
