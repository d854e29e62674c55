package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App: AppConfig{
			Environment: "development",
		},
		Logger: LoggerConfig{
			Level: "info",
		},
		Bot: BotConfig{
			Token: "123:abc",
		},
		Data: DataConfig{
			BasePath: "/some/path",
		},
		Lists: ListsConfig{
			PageSize: 10,
		},
		Scheduler: SchedulerConfig{
			RecommendHour: 9,
			BackupHour:    3,
		},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	err := validConfig().Validate()
	assert.NoError(t, err)
}

func TestValidate_MissingToken(t *testing.T) {
	cfg := validConfig()
	cfg.Bot.Token = ""

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BOT_TOKEN")
}

func TestValidate_AllEnvironments(t *testing.T) {
	tests := []struct {
		env   string
		valid bool
	}{
		{"development", true},
		{"staging", true},
		{"production", true},
		{"test", false},
		{"", false},
		{"DEVELOPMENT", false}, // case sensitive
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			cfg := validConfig()
			cfg.App.Environment = tt.env

			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate_SchedulerHours(t *testing.T) {
	cfg := validConfig()
	cfg.Scheduler.RecommendHour = 24

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "recommend hour")

	cfg = validConfig()
	cfg.Scheduler.BackupHour = -1
	assert.Error(t, cfg.Validate())
}

func TestValidate_PageSize(t *testing.T) {
	cfg := validConfig()
	cfg.Lists.PageSize = 0
	assert.Error(t, cfg.Validate())
}

func TestStorePath(t *testing.T) {
	cfg := validConfig()
	assert.Equal(t, "/some/path/shelftalk.db", cfg.StorePath())
	assert.Equal(t, "/some/path/backups", cfg.BackupPath())
}

func TestGetConfigValue_Precedence(t *testing.T) {
	t.Setenv("SHELFTALK_TEST_KEY", "from-env")

	// Flag wins over env.
	assert.Equal(t, "from-flag", getConfigValue("from-flag", "SHELFTALK_TEST_KEY", "default"))
	// Env wins over default.
	assert.Equal(t, "from-env", getConfigValue("", "SHELFTALK_TEST_KEY", "default"))
	// Default when nothing set.
	assert.Equal(t, "default", getConfigValue("", "SHELFTALK_TEST_UNSET", "default"))
}

func TestGetIntConfigValue(t *testing.T) {
	t.Setenv("SHELFTALK_TEST_INT", "15")
	assert.Equal(t, 15, getIntConfigValue("", "SHELFTALK_TEST_INT", 10))

	t.Setenv("SHELFTALK_TEST_INT", "not-a-number")
	assert.Equal(t, 10, getIntConfigValue("", "SHELFTALK_TEST_INT", 10))
}
