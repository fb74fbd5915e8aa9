package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Backend      BackendConfig
	State        StateConfig
	DB           DBConfig
	Redis        RedisConfig
	RateLimit    RateLimitConfig
	Checkout     CheckoutConfig
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	CORS         CORSConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.State.validate(); err != nil {
		return nil, err
	}
	if cfg.State.UsesSQL() {
		if err := cfg.DB.ensureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
			return nil, err
		}
	}
	if cfg.PubSub.Enabled && strings.TrimSpace(cfg.GCP.ProjectID) == "" {
		return nil, fmt.Errorf("%s is required when %s is enabled", EnvGCPProjectID, EnvPubSubEnabled)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"GREENGROCER_APP_ENV" required:"true"`
	Port         string `envconfig:"GREENGROCER_APP_PORT" default:"3000"`
	LogLevel     string `envconfig:"GREENGROCER_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"GREENGROCER_LOG_WARN_STACK" default:"false"`
	PublicOrigin string `envconfig:"GREENGROCER_PUBLIC_ORIGIN"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// BackendConfig points at the REST API and the chatbot service.
type BackendConfig struct {
	APIURL     string        `envconfig:"GREENGROCER_API_URL" default:"http://localhost:8000/api/v1"`
	ChatbotURL string        `envconfig:"GREENGROCER_CHATBOT_URL" default:"http://localhost:8001/api/v1"`
	Timeout    time.Duration `envconfig:"GREENGROCER_BACKEND_TIMEOUT" default:"15s"`
}

type StateConfig struct {
	Backend      string        `envconfig:"GREENGROCER_STATE_BACKEND" default:"redis"`
	SessionTTL   time.Duration `envconfig:"GREENGROCER_STATE_SESSION_TTL" default:"12h"`
	DeviceTTL    time.Duration `envconfig:"GREENGROCER_STATE_DEVICE_TTL" default:"8760h"`
	SecureCookie bool          `envconfig:"GREENGROCER_STATE_SECURE_COOKIE" default:"false"`

	// SweepInterval is how often cron-worker purges expired SQL rows.
	SweepInterval time.Duration `envconfig:"GREENGROCER_STATE_SWEEP_INTERVAL" default:"1h"`
}

// UsesSQL reports whether client state is kept in the relational store.
func (s StateConfig) UsesSQL() bool {
	return strings.EqualFold(strings.TrimSpace(s.Backend), StateBackendSQL)
}

func (s StateConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(s.Backend)) {
	case StateBackendRedis, StateBackendSQL:
		return nil
	}
	return fmt.Errorf("%s must be %q or %q, got %q", EnvStateBackend, StateBackendRedis, StateBackendSQL, s.Backend)
}

type DBConfig struct {
	DSN    string `envconfig:"GREENGROCER_DB_DSN"`
	Driver string `envconfig:"GREENGROCER_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"GREENGROCER_DB_HOST"`
	Port     int    `envconfig:"GREENGROCER_DB_PORT" default:"5432"`
	User     string `envconfig:"GREENGROCER_DB_USER"`
	Password string `envconfig:"GREENGROCER_DB_PASSWORD"`
	Name     string `envconfig:"GREENGROCER_DB_NAME"`
	SSLMode  string `envconfig:"GREENGROCER_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"GREENGROCER_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"GREENGROCER_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"GREENGROCER_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"GREENGROCER_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"GREENGROCER_REDIS_URL"`
	Address      string        `envconfig:"GREENGROCER_REDIS_ADDR" default:"localhost:6379"`
	Password     string        `envconfig:"GREENGROCER_REDIS_PASSWORD"`
	DB           int           `envconfig:"GREENGROCER_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"GREENGROCER_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"GREENGROCER_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"GREENGROCER_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"GREENGROCER_REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"GREENGROCER_REDIS_WRITE_TIMEOUT" default:"3s"`
}

type RateLimitConfig struct {
	LoginWindow             time.Duration `envconfig:"GREENGROCER_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginIdentifierLimit    int           `envconfig:"GREENGROCER_RATE_LIMIT_LOGIN_IDENTIFIER_LIMIT" default:"5"`
	LoginIPLimit            int           `envconfig:"GREENGROCER_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow          time.Duration `envconfig:"GREENGROCER_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterIdentifierLimit int           `envconfig:"GREENGROCER_RATE_LIMIT_REGISTER_IDENTIFIER_LIMIT" default:"3"`
	RegisterIPLimit         int           `envconfig:"GREENGROCER_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
	ChatWindow              time.Duration `envconfig:"GREENGROCER_RATE_LIMIT_CHAT_WINDOW" default:"1m"`
	ChatDeviceLimit         int           `envconfig:"GREENGROCER_RATE_LIMIT_CHAT_DEVICE_LIMIT" default:"30"`
}

type CheckoutConfig struct {
	RestoreCartOnFailure bool          `envconfig:"GREENGROCER_CHECKOUT_RESTORE_CART_ON_FAILURE" default:"false"`
	StatusMaxRetries     int           `envconfig:"GREENGROCER_CHECKOUT_STATUS_MAX_RETRIES" default:"5"`
	StatusRetryDelay     time.Duration `envconfig:"GREENGROCER_CHECKOUT_STATUS_RETRY_DELAY" default:"2s"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"GREENGROCER_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"GREENGROCER_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"GREENGROCER_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	Enabled         bool   `envconfig:"GREENGROCER_PUBSUB_ENABLED" default:"false"`
	StorefrontTopic string `envconfig:"GREENGROCER_PUBSUB_STOREFRONT_TOPIC" default:"gg-storefront-events"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"GREENGROCER_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

func (db *DBConfig) ensureDSN(useSQLite bool) error {
	if db.DSN != "" {
		return nil
	}
	if useSQLite {
		db.Driver = DBDriverSQLite
		db.DSN = "file:greengrocer.db?cache=shared"
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range []string{EnvDBHost, EnvDBUser, EnvDBName} {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}
	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}
	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}
	db.DSN = u.String()
	return nil
}
