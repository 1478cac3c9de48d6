package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv(configPathEnv, "")
	t.Setenv(oauthTokenEnv, "")
	t.Setenv(databasePathEnv, "")

	cfg := Load()

	assert.Equal(t, "https://en.wikipedia.org/w/api.php", cfg.Wiki.APIURL)
	assert.Equal(t, "https://en.wikipedia.org/api/rest_v1", cfg.Wiki.ParsoidURL)
	assert.Equal(t, "ArticleHistoryBot", cfg.Wiki.BotName)
	assert.Equal(t, 7, cfg.Review.EditCountThreshold)
	assert.False(t, cfg.Review.Interactive)
	assert.Equal(t, "0 6 * * *", cfg.Scheduler.CronExpression)
	assert.Equal(t, "UTC", cfg.Scheduler.Location().String())
}

func TestLoadFileOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
logging:
  level: debug
wiki:
  apiUrl: https://test.wikipedia.org/w/api.php
  botName: TestBot
review:
  editCountThreshold: 3
  interactive: true
scheduler:
  timezone: Europe/Berlin
pages:
  - Talk:Yttrium
  - Talk:Parkes Observatory
`), 0o600))

	t.Setenv(configPathEnv, path)
	t.Setenv(oauthTokenEnv, "")
	t.Setenv(databasePathEnv, "")

	cfg := Load()

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "https://test.wikipedia.org/w/api.php", cfg.Wiki.APIURL)
	assert.Equal(t, "TestBot", cfg.Wiki.BotName)
	// Unset file fields keep their defaults.
	assert.Equal(t, "https://en.wikipedia.org/api/rest_v1", cfg.Wiki.ParsoidURL)
	assert.Equal(t, 3, cfg.Review.EditCountThreshold)
	assert.True(t, cfg.Review.Interactive)
	assert.Equal(t, "Europe/Berlin", cfg.Scheduler.Location().String())
	assert.Equal(t, []string{"Talk:Yttrium", "Talk:Parkes Observatory"}, cfg.Pages)
}

func TestLoadEnvOverridesWinOverFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
wiki:
  oauthToken: from-file
database:
  path: from-file.db
`), 0o600))

	t.Setenv(configPathEnv, path)
	t.Setenv(oauthTokenEnv, "from-env")
	t.Setenv(databasePathEnv, "from-env.db")

	cfg := Load()

	assert.Equal(t, "from-env", cfg.Wiki.OAuthToken)
	assert.Equal(t, "from-env.db", cfg.Database.Path)
}

func TestLoadBadTimezoneFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scheduler:\n  timezone: Mars/Olympus\n"), 0o600))

	t.Setenv(configPathEnv, path)
	t.Setenv(oauthTokenEnv, "")
	t.Setenv(databasePathEnv, "")

	cfg := Load()
	assert.Equal(t, "UTC", cfg.Scheduler.Location().String())
}

func TestChatIDInt(t *testing.T) {
	assert.EqualValues(t, -100123, TelegramConfig{ChatID: "-100123"}.ChatIDInt())
	assert.EqualValues(t, 0, TelegramConfig{ChatID: "not a number"}.ChatIDInt())
}
