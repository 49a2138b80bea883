package config

import (
	"time"
)

type DB struct {
	Url          string        `envconfig:"URL"`
	MaxOpenConns int           `envconfig:"MAX_OPEN_CONNS" default:"25"`
	MaxIdleConns int           `envconfig:"MAX_IDLE_CONNS" default:"25"`
	ConnMaxLife  time.Duration `envconfig:"CONN_MAX_LIFETIME" default:"1h"`
}

type Jwt struct {
	Secret string        `envconfig:"SECRET" required:"true"`
	Expiry time.Duration `envconfig:"EXPIRY" default:"24h"`
	Issuer string        `envconfig:"ISSUER" default:"studentrelief"`
}

type Auth struct {
	Jwt *Jwt `envconfig:"JWT"`
}

type Redis struct {
	URL          string        `envconfig:"URL"`
	KeyPrefix    string        `envconfig:"KEY_PREFIX" default:"studentrelief"`
	PoolSize     int           `envconfig:"POOL_SIZE" default:"10"`
	DialTimeout  time.Duration `envconfig:"DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"WRITE_TIMEOUT" default:"3s"`
}

type Kafka struct {
	Brokers     string `envconfig:"BROKERS"`
	GroupID     string `envconfig:"GROUP_ID" default:"studentrelief"`
	TopicPrefix string `envconfig:"TOPIC_PREFIX" default:"studentrelief.events"`
}

type RabbitMQ struct {
	URL      string `envconfig:"URL"`
	Exchange string `envconfig:"EXCHANGE" default:"studentrelief.events"`
	Queue    string `envconfig:"QUEUE" default:"studentrelief.notifications"`
}

// Cache selects the store for the public active-campaign listing.
type Cache struct {
	Driver string        `envconfig:"DRIVER" default:"memory"`
	TTL    time.Duration `envconfig:"TTL" default:"1m"`
}

// Bus selects the event bus backend used for queued notification delivery.
type Bus struct {
	Driver  string `envconfig:"DRIVER" default:"memory"`
	Workers int    `envconfig:"WORKERS" default:"4"`
	Buffer  int    `envconfig:"BUFFER" default:"256"`
}

type RateLimit struct {
	MaxRequests int           `envconfig:"MAX_REQUESTS" default:"100"`
	Window      time.Duration `envconfig:"WINDOW" default:"1m"`
}

//revive:disable
type Stripe struct {
	Env                      string `envconfig:"ENV" default:"test"`
	ApiKey                   string `envconfig:"API_KEY"`
	SigningSecret            string `envconfig:"SIGNING_SECRET"`
	Currency                 string `envconfig:"CURRENCY" default:"usd"`
	IgnoreAPIVersionMismatch bool   `envconfig:"IGNORE_API_VERSION_MISMATCH" default:"false"`
}

//revive:enable

type PaymentProviders struct {
	Stripe *Stripe `envconfig:"STRIPE"`
}

type Cloudinary struct {
	CloudName string `envconfig:"CLOUD_NAME"`
	ApiKey    string `envconfig:"API_KEY"`
	ApiSecret string `envconfig:"API_SECRET"`
	Folder    string `envconfig:"FOLDER" default:"documents"`
}

type Scheduler struct {
	Enabled              bool          `envconfig:"ENABLED" default:"true"`
	CampaignExpiry       string        `envconfig:"CAMPAIGN_EXPIRY" default:"@every 1h"`
	PendingAudit         string        `envconfig:"PENDING_AUDIT" default:"@every 15m"`
	PendingAuditAge      time.Duration `envconfig:"PENDING_AUDIT_AGE" default:"1h"`
	PendingAuditBatchMax int           `envconfig:"PENDING_AUDIT_BATCH" default:"50"`
}

type Log struct {
	Level      int    `envconfig:"LEVEL" default:"0"`
	Format     string `envconfig:"FORMAT" default:"json"`
	TimeFormat string `envconfig:"TIME_FORMAT" default:"2006-01-02 15:04:05"`
	Prefix     string `envconfig:"PREFIX" default:"[studentrelief]"`
}

type Server struct {
	Scheme string `envconfig:"SCHEME" default:"http"`
	Host   string `envconfig:"HOST" default:"localhost"`
	Port   int    `envconfig:"PORT" default:"3000"`
}

type App struct {
	Env              string            `envconfig:"APP_ENV" default:"development"`
	Server           *Server           `envconfig:"SERVER"`
	Log              *Log              `envconfig:"LOG"`
	DB               *DB               `envconfig:"DATABASE"`
	Auth             *Auth             `envconfig:"AUTH"`
	Redis            *Redis            `envconfig:"REDIS"`
	Kafka            *Kafka            `envconfig:"KAFKA"`
	RabbitMQ         *RabbitMQ         `envconfig:"RABBITMQ"`
	Bus              *Bus              `envconfig:"BUS"`
	Cache            *Cache            `envconfig:"CACHE"`
	RateLimit        *RateLimit        `envconfig:"RATE_LIMIT"`
	PaymentProviders *PaymentProviders `envconfig:"PAYMENT_PROVIDER"`
	Cloudinary       *Cloudinary       `envconfig:"CLOUDINARY"`
	Scheduler        *Scheduler        `envconfig:"SCHEDULER"`
}
