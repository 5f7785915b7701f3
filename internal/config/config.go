package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Notion    NotionConfig    `mapstructure:"notion"`
	Slack     SlackConfig     `mapstructure:"slack"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig holds the audit-log database connection configuration.
// Leaving Host empty disables the audit log entirely.
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
}

// NotionConfig holds the record store configuration: credentials, the
// database to poll and the property names that map onto order fields.
type NotionConfig struct {
	Token            string        `mapstructure:"token"`
	DatabaseID       string        `mapstructure:"database_id"`
	BaseURL          string        `mapstructure:"base_url"`
	Version          string        `mapstructure:"version"`
	DatabaseURL      string        `mapstructure:"database_url"`
	TargetStatus     string        `mapstructure:"target_status"`
	PageSize         int           `mapstructure:"page_size"`
	FilterServerSide bool          `mapstructure:"filter_server_side"`
	Timeout          time.Duration `mapstructure:"timeout"`
	Properties       PropertyNames `mapstructure:"properties"`
}

// PropertyNames maps order fields to the property names used in the
// Notion database. All of them are overridable because workspaces name
// their columns freely.
type PropertyNames struct {
	Title         string `mapstructure:"title"`
	Description   string `mapstructure:"description"`
	Quantity      string `mapstructure:"quantity"`
	ExpectedPrice string `mapstructure:"expected_price"`
	Applicant     string `mapstructure:"applicant"`
	Notified      string `mapstructure:"notified"`
	Status        string `mapstructure:"status"`
}

// SlackConfig holds the messaging endpoint configuration
type SlackConfig struct {
	BotToken string        `mapstructure:"bot_token"`
	Channel  string        `mapstructure:"channel"`
	APIURL   string        `mapstructure:"api_url"`
	Greeting string        `mapstructure:"greeting"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// SchedulerConfig holds scheduler configuration
type SchedulerConfig struct {
	IntervalMinutes int `mapstructure:"interval_minutes"`
}

// LoadConfig loads configuration from environment variables and config file
func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	setDefaults()

	// Read config file if it exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Environment variables override config file
	viper.AutomaticEnv()
	bindEnvVars()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")

	viper.SetDefault("database.port", 3306)

	viper.SetDefault("notion.base_url", "https://api.notion.com")
	viper.SetDefault("notion.version", "2022-06-28")
	viper.SetDefault("notion.target_status", "Requesting")
	viper.SetDefault("notion.page_size", 100)
	viper.SetDefault("notion.filter_server_side", true)
	viper.SetDefault("notion.timeout", "30s")
	viper.SetDefault("notion.properties.title", "Product Name")
	viper.SetDefault("notion.properties.description", "Notes")
	viper.SetDefault("notion.properties.quantity", "Quantity")
	viper.SetDefault("notion.properties.expected_price", "Expected Price")
	viper.SetDefault("notion.properties.applicant", "Applicant")
	viper.SetDefault("notion.properties.notified", "Notified")
	viper.SetDefault("notion.properties.status", "Status")

	viper.SetDefault("slack.api_url", "https://slack.com/api/chat.postMessage")
	viper.SetDefault("slack.greeting", "👋 Hi,")
	viper.SetDefault("slack.timeout", "30s")

	viper.SetDefault("scheduler.interval_minutes", 5)
}

// bindEnvVars binds environment variables to configuration keys
func bindEnvVars() {
	// Server
	viper.BindEnv("server.port", "SERVER_PORT")
	viper.BindEnv("server.read_timeout", "SERVER_READ_TIMEOUT")
	viper.BindEnv("server.write_timeout", "SERVER_WRITE_TIMEOUT")

	// Database
	viper.BindEnv("database.host", "DB_HOST")
	viper.BindEnv("database.port", "DB_PORT")
	viper.BindEnv("database.user", "DB_USER")
	viper.BindEnv("database.password", "DB_PASSWORD")
	viper.BindEnv("database.dbname", "DB_NAME")

	// Notion
	viper.BindEnv("notion.token", "NOTION_TOKEN")
	viper.BindEnv("notion.database_id", "NOTION_DATABASE_ID")
	viper.BindEnv("notion.base_url", "NOTION_BASE_URL")
	viper.BindEnv("notion.version", "NOTION_VERSION")
	viper.BindEnv("notion.database_url", "NOTION_DATABASE_URL")
	viper.BindEnv("notion.target_status", "NOTION_STATUS_TARGET")
	viper.BindEnv("notion.filter_server_side", "NOTION_FILTER_SERVER_SIDE")
	viper.BindEnv("notion.properties.title", "NOTION_TITLE_PROPERTY")
	viper.BindEnv("notion.properties.description", "NOTION_DESCRIPTION_PROPERTY")
	viper.BindEnv("notion.properties.quantity", "NOTION_QUANTITY_PROPERTY")
	viper.BindEnv("notion.properties.expected_price", "NOTION_EXPECTED_PRICE_PROPERTY")
	viper.BindEnv("notion.properties.applicant", "NOTION_APPLICANT_PROPERTY")
	viper.BindEnv("notion.properties.notified", "NOTION_NOTIFIED_PROPERTY")
	viper.BindEnv("notion.properties.status", "NOTION_STATUS_PROPERTY")

	// Slack
	viper.BindEnv("slack.bot_token", "SLACK_BOT_TOKEN")
	viper.BindEnv("slack.channel", "SLACK_USER_ID")
	viper.BindEnv("slack.api_url", "SLACK_API_URL")
	viper.BindEnv("slack.greeting", "SLACK_GREETING")

	// Scheduler
	viper.BindEnv("scheduler.interval_minutes", "SCHEDULER_INTERVAL_MINUTES")
}

// GetDSN returns the database connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.User, c.Password, c.Host, c.Port, c.DBName)
}

// Enabled reports whether the audit-log database is configured at all.
func (c *DatabaseConfig) Enabled() bool {
	return c.Host != ""
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}

	if c.Notion.Token == "" || c.Notion.DatabaseID == "" {
		return fmt.Errorf("notion token and database id are required")
	}

	if c.Slack.BotToken == "" || c.Slack.Channel == "" {
		return fmt.Errorf("slack bot token and channel are required")
	}

	if c.Database.Enabled() && (c.Database.User == "" || c.Database.DBName == "") {
		return fmt.Errorf("database user and dbname are required when a database host is set")
	}

	if c.Notion.PageSize <= 0 {
		return fmt.Errorf("notion page size must be greater than 0")
	}

	if c.Scheduler.IntervalMinutes <= 0 {
		return fmt.Errorf("scheduler interval must be greater than 0")
	}

	return nil
}
