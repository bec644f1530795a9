package config

import (
	"time"

	"github.com/shopspring/decimal"
)

type DB struct {
	Url             string        `envconfig:"URL"`
	MaxConns        int           `envconfig:"MAX_CONNS" default:"25"`
	ConnMaxLifetime time.Duration `envconfig:"CONN_MAX_LIFETIME" default:"1h"`
}

type Jwt struct {
	Secret string        `envconfig:"SECRET" required:"true"`
	Expiry time.Duration `envconfig:"EXPIRY" default:"24h"`
}

type Auth struct {
	Jwt *Jwt `envconfig:"JWT"`
}

type Redis struct {
	URL    string `envconfig:"URL" default:""`
	Stream string `envconfig:"STREAM" default:"speibank.events"`
	Group  string `envconfig:"GROUP" default:"speibank"`
}

type Kafka struct {
	Brokers     string `envconfig:"BROKERS" default:""`
	TopicPrefix string `envconfig:"TOPIC_PREFIX" default:"speibank.events"`
	GroupID     string `envconfig:"GROUP_ID" default:"speibank"`
	// DLQRetryInterval is how often dead-lettered messages are republished.
	DLQRetryInterval time.Duration `envconfig:"DLQ_RETRY_INTERVAL" default:"5m"`
	SASLUsername     string        `envconfig:"SASL_USERNAME"`
	SASLPassword     string        `envconfig:"SASL_PASSWORD"`
	TLSEnabled       bool          `envconfig:"TLS_ENABLED" default:"false"`
}

// EventBus selects the event transport: memory, memory-sync, redis or kafka.
type EventBus struct {
	Driver string `envconfig:"DRIVER" default:"memory"`
}

type RateLimit struct {
	MaxRequests int           `envconfig:"MAX_REQUESTS" default:"100"`
	Window      time.Duration `envconfig:"WINDOW" default:"1m"`
}

// Spei configures the settlement gateway client.
type Spei struct {
	BaseURL             string        `envconfig:"BASE_URL" default:"http://localhost:8081"`
	SigningSecret       string        `envconfig:"SIGNING_SECRET"`
	HTTPTimeout         time.Duration `envconfig:"HTTP_TIMEOUT" default:"30s"`
	Empresa             string        `envconfig:"EMPRESA" default:"CEDI"`
	InstitucionOperante string        `envconfig:"INSTITUCION_OPERANTE" default:"90646"`
	UseMock             bool          `envconfig:"USE_MOCK" default:"false"`
}

// Transfer holds the orchestration constants.
type Transfer struct {
	InternalPrefix    string          `envconfig:"INTERNAL_PREFIX" default:"6461802180"`
	DefaultCommission decimal.Decimal `envconfig:"DEFAULT_COMMISSION" default:"5.80"`
	CollectorClabe    string          `envconfig:"COLLECTOR_CLABE" default:"646180218000000001"`
	TrackingPrefix    string          `envconfig:"TRACKING_PREFIX" default:"CEDI"`
}

type Log struct {
	Level      int    `envconfig:"LEVEL" default:"0"`
	Format     string `envconfig:"FORMAT" default:"text"`
	TimeFormat string `envconfig:"TIME_FORMAT" default:"2006-01-02 15:04:05"`
	Prefix     string `envconfig:"PREFIX" default:"[speibank]"`
}

type Server struct {
	Host string `envconfig:"HOST" default:"0.0.0.0"`
	Port int    `envconfig:"PORT" default:"3000"`
}

type App struct {
	Env       string     `envconfig:"APP_ENV" default:"development"`
	Server    *Server    `envconfig:"SERVER"`
	Log       *Log       `envconfig:"LOG"`
	DB        *DB        `envconfig:"DATABASE"`
	Auth      *Auth      `envconfig:"AUTH"`
	Redis     *Redis     `envconfig:"REDIS"`
	Kafka     *Kafka     `envconfig:"KAFKA"`
	EventBus  *EventBus  `envconfig:"EVENT_BUS"`
	RateLimit *RateLimit `envconfig:"RATE_LIMIT"`
	Spei      *Spei      `envconfig:"SPEI"`
	Transfer  *Transfer  `envconfig:"TRANSFER"`
}
