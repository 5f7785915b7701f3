package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         "8080",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Notion: NotionConfig{
			Token:      "secret",
			DatabaseID: "db1",
			BaseURL:    "https://api.notion.com",
			Version:    "2022-06-28",
			PageSize:   100,
			Properties: PropertyNames{
				Title:    "Product Name",
				Notified: "Notified",
				Status:   "Status",
			},
		},
		Slack: SlackConfig{
			BotToken: "xoxb-test",
			Channel:  "U123",
			APIURL:   "https://slack.com/api/chat.postMessage",
		},
		Scheduler: SchedulerConfig{
			IntervalMinutes: 5,
		},
	}
}

func TestConfigValidation(t *testing.T) {
	assert.NoError(t, validConfig().Validate())

	missingPort := validConfig()
	missingPort.Server.Port = ""
	assert.Error(t, missingPort.Validate())

	missingToken := validConfig()
	missingToken.Notion.Token = ""
	assert.Error(t, missingToken.Validate())

	missingChannel := validConfig()
	missingChannel.Slack.Channel = ""
	assert.Error(t, missingChannel.Validate())

	badPageSize := validConfig()
	badPageSize.Notion.PageSize = 0
	assert.Error(t, badPageSize.Validate())

	badInterval := validConfig()
	badInterval.Scheduler.IntervalMinutes = 0
	assert.Error(t, badInterval.Validate())
}

func TestDatabaseOptional(t *testing.T) {
	// No database host: audit log disabled, nothing else required.
	cfg := validConfig()
	assert.False(t, cfg.Database.Enabled())
	assert.NoError(t, cfg.Validate())

	// Host set but credentials missing: invalid.
	cfg.Database.Host = "localhost"
	assert.True(t, cfg.Database.Enabled())
	assert.Error(t, cfg.Validate())

	cfg.Database.User = "relay"
	cfg.Database.DBName = "relay"
	assert.NoError(t, cfg.Validate())
}

func TestDatabaseDSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "localhost",
		Port:     3306,
		User:     "testuser",
		Password: "testpass",
		DBName:   "testdb",
	}

	dsn := cfg.GetDSN()
	expected := "testuser:testpass@tcp(localhost:3306)/testdb?charset=utf8mb4&parseTime=True&loc=Local"
	assert.Equal(t, expected, dsn)
}
