package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone   = "UTC"
	configPathEnv     = "ARTICLE_HISTORY_BOT_CONFIG"
	oauthTokenEnv     = "WIKI_OAUTH_TOKEN"
	databasePathEnv   = "DATABASE_PATH"
	telegramTokenEnv  = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv = "TELEGRAM_CHAT_ID"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging   LoggingConfig   `yaml:"logging"`
	Wiki      WikiConfig      `yaml:"wiki"`
	Review    ReviewConfig    `yaml:"review"`
	Database  DatabaseConfig  `yaml:"database"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Telegram  TelegramConfig  `yaml:"telegram"`
	Pages     []string        `yaml:"pages"`
}

// LoggingConfig selects the slog level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// WikiConfig describes the wiki endpoints and bot identity.
type WikiConfig struct {
	APIURL     string `yaml:"apiUrl"`
	RestURL    string `yaml:"restUrl"`
	ParsoidURL string `yaml:"parsoidUrl"`
	UserAgent  string `yaml:"userAgent"`
	BotName    string `yaml:"botName"`
	OAuthToken string `yaml:"oauthToken"`
}

// ReviewConfig tunes the peer-review merge policy.
type ReviewConfig struct {
	// EditCountThreshold is the archive edit count at or above which a peer
	// review counts as reviewed without asking.
	EditCountThreshold int `yaml:"editCountThreshold"`
	// Interactive permits the yes/no fallback below the threshold.
	Interactive bool `yaml:"interactive"`
}

// DatabaseConfig locates the SQLite audit file.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// SchedulerConfig defines when merge runs execute.
type SchedulerConfig struct {
	CronExpression string         `yaml:"cronExpression"`
	Timezone       string         `yaml:"timezone"`
	location       *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// TelegramConfig wires the digest channel.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// ChatIDInt parses the chat identifier; zero disables the notifier.
func (t TelegramConfig) ChatIDInt() int64 {
	id, _ := strconv.ParseInt(t.ChatID, 10, 64)
	return id
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(oauthTokenEnv); v != "" {
		c.Wiki.OAuthToken = v
	}

	if v := os.Getenv(databasePathEnv); v != "" {
		c.Database.Path = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Telegram.BotToken = v
	}

	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Telegram.ChatID = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	if override.Wiki.APIURL != "" {
		base.Wiki.APIURL = override.Wiki.APIURL
	}
	if override.Wiki.RestURL != "" {
		base.Wiki.RestURL = override.Wiki.RestURL
	}
	if override.Wiki.ParsoidURL != "" {
		base.Wiki.ParsoidURL = override.Wiki.ParsoidURL
	}
	if override.Wiki.UserAgent != "" {
		base.Wiki.UserAgent = override.Wiki.UserAgent
	}
	if override.Wiki.BotName != "" {
		base.Wiki.BotName = override.Wiki.BotName
	}
	if override.Wiki.OAuthToken != "" {
		base.Wiki.OAuthToken = override.Wiki.OAuthToken
	}

	if override.Review.EditCountThreshold != 0 {
		base.Review.EditCountThreshold = override.Review.EditCountThreshold
	}
	if override.Review.Interactive {
		base.Review.Interactive = true
	}

	if override.Database.Path != "" {
		base.Database.Path = override.Database.Path
	}

	if override.Scheduler.CronExpression != "" {
		base.Scheduler.CronExpression = override.Scheduler.CronExpression
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}

	if override.Telegram.BotToken != "" {
		base.Telegram.BotToken = override.Telegram.BotToken
	}
	if override.Telegram.ChatID != "" {
		base.Telegram.ChatID = override.Telegram.ChatID
	}

	if len(override.Pages) > 0 {
		base.Pages = override.Pages
	}

	return base
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Logging: LoggingConfig{Level: "info"},
		Wiki: WikiConfig{
			APIURL:     "https://en.wikipedia.org/w/api.php",
			RestURL:    "https://en.wikipedia.org/w/rest.php",
			ParsoidURL: "https://en.wikipedia.org/api/rest_v1",
			UserAgent:  "ArticleHistoryBot/1.0 (article history merges)",
			BotName:    "ArticleHistoryBot",
		},
		Review:    ReviewConfig{EditCountThreshold: 7},
		Database:  DatabaseConfig{Path: "articlehistorybot.db"},
		Scheduler: SchedulerConfig{CronExpression: "0 6 * * *", Timezone: defaultTimezone, location: tz},
	}
}
