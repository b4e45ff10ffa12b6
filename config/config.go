package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	ListenAddr string `yaml:"listen_addr"`
	CORSOrigin string `yaml:"cors_origin"`
	LogLevel   string `yaml:"log_level"`
	LogJSON    bool   `yaml:"log_json"`

	// Remote CRM API
	CRMBaseURL  string        `yaml:"crm_base_url"`
	CRMAPIToken string        `yaml:"crm_api_token"`
	CRMTimeout  time.Duration `yaml:"crm_timeout"`

	// Reassignment workflow
	DispatchConcurrency int           `yaml:"dispatch_concurrency"`
	SessionTTL          time.Duration `yaml:"session_ttl"`

	// Audit store: "postgres", "sqlite" or empty to disable
	AuditDriver string `yaml:"audit_driver"`
	DBHost      string `yaml:"db_host"`
	DBPort      string `yaml:"db_port"`
	DBUser      string `yaml:"db_user"`
	DBPassword  string `yaml:"db_password"`
	DBName      string `yaml:"db_name"`
	SQLitePath  string `yaml:"sqlite_path"`

	SMTPHost  string `yaml:"smtp_host"`
	SMTPPort  int    `yaml:"smtp_port"`
	SMTPUser  string `yaml:"smtp_user"`
	SMTPPass  string `yaml:"smtp_pass"`
	EmailFrom string `yaml:"email_from"`

	// Kafka
	KafkaBrokers string `yaml:"kafka_brokers"`
	KafkaTopic   string `yaml:"kafka_topic"`
	KafkaGroupID string `yaml:"kafka_group_id"`
}

// Defaults returns the configuration used when neither a file nor the environment sets a value.
func Defaults() Config {
	return Config{
		ListenAddr:          ":8080",
		CORSOrigin:          "*",
		LogLevel:            "info",
		CRMTimeout:          30 * time.Second,
		DispatchConcurrency: 1,
		SessionTTL:          30 * time.Minute,
		DBHost:              "localhost",
		DBPort:              "5432",
		DBUser:              "postgres",
		DBName:              "postgres",
		SQLitePath:          "console_audit.db",
		SMTPHost:            "smtp.gmail.com",
		SMTPPort:            587,
		KafkaTopic:          "console.assignments",
		KafkaGroupID:        "counsellor-console-notifier",
	}
}

// Load reads .env (if any), the optional YAML file named by CONSOLE_CONFIG, then environment overrides.
func Load() (*Config, error) {
	// Try loading .env from different locations
	envLocations := []string{
		".env",              // project root
		"config/.env",       // config subdirectory
		"../config/.env",    // one level up
		"../../config/.env", // two levels up
	}

	envLoaded := false
	for _, location := range envLocations {
		if err := godotenv.Load(location); err == nil {
			envLoaded = true
			break
		}
	}

	if !envLoaded {
		log.Println("No .env file found, using environment variables")
	}

	cfg := Defaults()
	if path := os.Getenv("CONSOLE_CONFIG"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() error {
	c.ListenAddr = getEnvWithDefault("LISTEN_ADDR", c.ListenAddr)
	c.CORSOrigin = getEnvWithDefault("CORS_ORIGIN", c.CORSOrigin)
	c.LogLevel = getEnvWithDefault("LOG_LEVEL", c.LogLevel)
	c.CRMBaseURL = strings.TrimRight(getEnvWithDefault("CRM_BASE_URL", c.CRMBaseURL), "/")
	c.CRMAPIToken = getEnvWithDefault("CRM_API_TOKEN", c.CRMAPIToken)

	c.AuditDriver = getEnvWithDefault("AUDIT_DRIVER", c.AuditDriver)
	c.DBHost = getEnvWithDefault("DB_HOST", c.DBHost)
	c.DBPort = getEnvWithDefault("DB_PORT", c.DBPort)
	c.DBUser = getEnvWithDefault("DB_USER", c.DBUser)
	c.DBPassword = getEnvWithDefault("DB_PASSWORD", c.DBPassword)
	c.DBName = getEnvWithDefault("DB_NAME", c.DBName)
	c.SQLitePath = getEnvWithDefault("SQLITE_PATH", c.SQLitePath)

	c.SMTPHost = getEnvWithDefault("SMTP_HOST", c.SMTPHost)
	c.SMTPUser = getEnvWithDefault("SMTP_USER", c.SMTPUser)
	c.SMTPPass = getEnvWithDefault("SMTP_PASS", c.SMTPPass)
	c.EmailFrom = getEnvWithDefault("EMAIL_FROM", c.EmailFrom)

	// Kafka settings (comma-separated brokers)
	c.KafkaBrokers = getEnvWithDefault("KAFKA_BROKERS", c.KafkaBrokers)
	c.KafkaTopic = getEnvWithDefault("KAFKA_TOPIC", c.KafkaTopic)
	c.KafkaGroupID = getEnvWithDefault("KAFKA_GROUP_ID", c.KafkaGroupID)

	var err error
	if c.LogJSON, err = getEnvBool("LOG_JSON", c.LogJSON); err != nil {
		return err
	}
	if c.CRMTimeout, err = getEnvDuration("CRM_TIMEOUT", c.CRMTimeout); err != nil {
		return err
	}
	if c.SessionTTL, err = getEnvDuration("SESSION_TTL", c.SessionTTL); err != nil {
		return err
	}
	if c.DispatchConcurrency, err = getEnvInt("DISPATCH_CONCURRENCY", c.DispatchConcurrency); err != nil {
		return err
	}
	if c.SMTPPort, err = getEnvInt("SMTP_PORT", c.SMTPPort); err != nil {
		return err
	}
	return nil
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	if c.CRMBaseURL == "" {
		return fmt.Errorf("CRM_BASE_URL is required")
	}
	if c.CRMTimeout <= 0 {
		return fmt.Errorf("CRM_TIMEOUT must be positive, got %s", c.CRMTimeout)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive, got %s", c.SessionTTL)
	}
	if c.DispatchConcurrency < 1 {
		return fmt.Errorf("DISPATCH_CONCURRENCY must be at least 1, got %d", c.DispatchConcurrency)
	}
	switch c.AuditDriver {
	case "", "postgres", "sqlite":
	default:
		return fmt.Errorf("unknown AUDIT_DRIVER %q (want postgres, sqlite or empty)", c.AuditDriver)
	}
	return nil
}

// KafkaBrokerList splits KAFKA_BROKERS and drops blank entries.
func (c *Config) KafkaBrokerList() []string {
	var brokers []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b := strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// SMTPConfigured reports whether outgoing email can be sent.
func (c *Config) SMTPConfigured() bool {
	return c.SMTPUser != "" && c.SMTPPass != ""
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return v, nil
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return v, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	v, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return v, nil
}

func (c *Config) GetDBConnString() string {
	return "host=" + c.DBHost +
		" port=" + c.DBPort +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" sslmode=disable"
}
