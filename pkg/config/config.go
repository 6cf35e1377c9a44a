package config

import "time"

// Chat definition chat_service YAML structure
type Chat struct {
	Port           string         `mapstructure:"port"`
	MongoDB        DatabaseConfig `mapstructure:"mongo"`
	Redis          RedisConfig    `mapstructure:"redis"`
	Kafka          KafkaConfig    `mapstructure:"kafka"`
	PersistTimeout time.Duration  `mapstructure:"persist_timeout"`
	SendBuffer     int            `mapstructure:"send_buffer"`
	PingInterval   time.Duration  `mapstructure:"ping_interval"`
}

// Member definition member_service YAML structure
type Member struct {
	Port       string         `mapstructure:"port"`
	SessionTTL time.Duration  `mapstructure:"session_ttl"`
	TokenTTL   time.Duration  `mapstructure:"token_ttl"`
	PostgreSQL DatabaseConfig `mapstructure:"pg"`
	Redis      RedisConfig    `mapstructure:"redis"`
}

// Planner definition planner_service YAML structure
type Planner struct {
	Port       string          `mapstructure:"port"`
	PostgreSQL DatabaseConfig  `mapstructure:"pg"`
	RabbitMQ   RabbitConfig    `mapstructure:"rabbitmq"`
	Mail       MailConfig      `mapstructure:"mail"`
	Scheduler  SchedulerConfig `mapstructure:"scheduler"`
	Calendar   CalendarConfig  `mapstructure:"calendar"`
}

// Material definition material_service YAML structure
type Material struct {
	Port        string         `mapstructure:"port"`
	MongoDB     DatabaseConfig `mapstructure:"mongo"`
	MinIO       MinIOConfig    `mapstructure:"minio"`
	MaxFileSize int64          `mapstructure:"max_file_size"`
	URLExpiry   time.Duration  `mapstructure:"url_expiry"`
}

// RedisConfig definition redis setting
type RedisConfig struct {
	RedisDB         int    `mapstructure:"redis_db"`
	PresenceChannel string `mapstructure:"presence_channel"`
}

// DatabaseConfig definition db setting
type DatabaseConfig struct {
	Host          string `mapstructure:"host"`
	Port          int    `mapstructure:"port"`
	User          string `mapstructure:"user"`
	Password      string `mapstructure:"password"`
	Database      string `mapstructure:"database"`
	RetryInterval int    `mapstructure:"retry_interval"`
	RetryCount    int    `mapstructure:"retry_count"`
}

// KafkaConfig definition kafka writer setting, empty brokers disables the writer
type KafkaConfig struct {
	Brokers       []string `mapstructure:"brokers"`
	Topic         string   `mapstructure:"topic"`
	RetryInterval int      `mapstructure:"retry_interval"`
	RetryCount    int      `mapstructure:"retry_count"`
}

// RabbitConfig definition rabbitmq setting
type RabbitConfig struct {
	URL           string `mapstructure:"url"`
	Queue         string `mapstructure:"queue"`
	RetryInterval int    `mapstructure:"retry_interval"`
	RetryCount    int    `mapstructure:"retry_count"`
}

// MinIOConfig definition minio setting
type MinIOConfig struct {
	Endpoint      string `mapstructure:"endpoint"`
	User          string `mapstructure:"user"`
	Password      string `mapstructure:"password"`
	Bucket        string `mapstructure:"bucket"`
	UseSSL        bool   `mapstructure:"use_ssl"`
	RetryInterval int    `mapstructure:"retry_interval"`
	RetryCount    int    `mapstructure:"retry_count"`
}

// MailConfig definition sendgrid setting
type MailConfig struct {
	APIKey   string `mapstructure:"api_key"`
	AppName  string `mapstructure:"app_name"`
	From     string `mapstructure:"from"`
	LoginURL string `mapstructure:"login_url"`
}

// SchedulerConfig definition overdue alert schedule
type SchedulerConfig struct {
	Cron     string `mapstructure:"cron"`
	Timezone string `mapstructure:"timezone"`
}

// CalendarConfig definition Google calendar OAuth client, empty client_id disables calendar sync
type CalendarConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RedirectURL  string `mapstructure:"redirect_url"`
	AuthURL      string `mapstructure:"auth_url"`
	TokenURL     string `mapstructure:"token_url"`
	RevokeURL    string `mapstructure:"revoke_url"`
	CalendarID   string `mapstructure:"calendar_id"`
	FrontendURL  string `mapstructure:"frontend_url"`
}
