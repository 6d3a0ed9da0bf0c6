package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"
)

// RetentionDays is how many calendar days an issue stays in the active table.
const RetentionDays = 6

// Recognised provider, driver and scanner names.
const (
	ProviderOpenAI  = "openai"
	ProviderGemini  = "gemini"
	DriverSQLite    = "sqlite"
	DriverPostgres  = "postgres"
	ScannerEndpoint = "endpoint"
	ScannerFile     = "file"
	ScannerHTML     = "html"
	ScannerArxiv    = "arxiv"
)

const (
	defaultTimezone     = "Europe/Athens"
	defaultOpenAIModel  = "gpt-4.1-mini"
	defaultGeminiModel  = "gemini-2.5-flash"
	defaultFeedSource   = "automation-feed"
	defaultFileSource   = "automation-dir"
	defaultAutomationIn = "automation"
	minSportsTimeout    = time.Second

	configPathEnv      = "DAILY_BRIEF_CONFIG"
	logLevelEnv        = "LOG_LEVEL"
	logFormatEnv       = "LOG_FORMAT"
	databaseDriverEnv  = "DATABASE_DRIVER"
	databaseURLEnv     = "DATABASE_URL"
	databasePathEnv    = "DAILY_BRIEF_DB_PATH"
	ingestCronEnv      = "INGEST_CRON"
	llmProviderEnv     = "LLM_PROVIDER"
	openAIURLEnv       = "OPENAI_URL"
	openAIModelEnv     = "OPENAI_MODEL"
	openAIAPIKeyEnv    = "OPENAI_API_KEY"
	geminiAPIKeyEnv    = "GEMINI_API_KEY"
	sportsAPIKeyEnv    = "SPORTS_API_KEY"
	rapidAPIKeyEnv     = "RAPIDAPI_KEY"
	footballURLEnv     = "SPORTS_FOOTBALL_ENDPOINT"
	basketballURLEnv   = "SPORTS_BASKETBALL_ENDPOINT"
	sportsTimezoneEnv  = "SPORTS_TIMEZONE"
	sportsTimeoutEnv   = "SPORTS_API_TIMEOUT_MS"
	imageEndpointEnv   = "IMAGE_GEN_ENDPOINT"
	imageAPIKeyEnv     = "IMAGE_GEN_API_KEY"
	automationURLEnv   = "AUTOMATION_FEED_URL"
	automationTokenEnv = "AUTOMATION_FEED_TOKEN"
	automationDirEnv   = "AUTOMATION_DIR"
	httpAddrEnv        = "HTTP_ADDR"
	telegramTokenEnv   = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv  = "TELEGRAM_CHAT_ID"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig      `yaml:"logging"`
	Database      DatabaseConfig     `yaml:"database"`
	Archive       ArchiveConfig      `yaml:"archive"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	LLM           LLMConfig          `yaml:"llm"`
	Sports        SportsConfig       `yaml:"sports"`
	Images        ImagesConfig       `yaml:"images"`
	Feeds         FeedsConfig        `yaml:"feeds"`
	HTTP          HTTPConfig         `yaml:"http"`
	Notifications NotificationConfig `yaml:"notifications"`
}

// LoggingConfig controls the slog handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DatabaseConfig selects one storage backend.
type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
	Path   string `yaml:"path"`
}

// Backend resolves the driver: explicit driver wins, a DSN implies postgres,
// otherwise the embedded file store is used.
func (d DatabaseConfig) Backend() string {
	switch strings.ToLower(strings.TrimSpace(d.Driver)) {
	case DriverPostgres, "postgresql", "pg":
		return DriverPostgres
	case DriverSQLite, "sqlite3":
		return DriverSQLite
	}
	if d.DSN != "" {
		return DriverPostgres
	}
	return DriverSQLite
}

// ArchiveConfig exposes the retention window of the active table.
type ArchiveConfig struct {
	RetentionDays int `yaml:"retentionDays"`
}

// SchedulerConfig defines when ingestion should run.
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
	loc, err := time.LoadLocation(defaultTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// LLMConfig defines how to contact the generative text service.
type LLMConfig struct {
	Provider     string        `yaml:"provider"`
	Endpoint     string        `yaml:"endpoint"`
	Model        string        `yaml:"model"`
	APIKey       string        `yaml:"apiKey"`
	SystemPrompt string        `yaml:"systemPrompt"`
	Timeout      time.Duration `yaml:"timeout"`
}

// ResolvedModel returns the configured model or the provider default.
func (l LLMConfig) ResolvedModel() string {
	if l.Model != "" {
		return l.Model
	}
	if l.Provider == ProviderGemini {
		return defaultGeminiModel
	}
	return defaultOpenAIModel
}

// SportsConfig describes the api-sports integration.
type SportsConfig struct {
	APIKey             string        `yaml:"apiKey"`
	RapidAPIKey        string        `yaml:"rapidApiKey"`
	FootballEndpoint   string        `yaml:"footballEndpoint"`
	BasketballEndpoint string        `yaml:"basketballEndpoint"`
	Timezone           string        `yaml:"timezone"`
	Timeout            time.Duration `yaml:"timeout"`
}

// Enabled reports whether any credential is present.
func (s SportsConfig) Enabled() bool {
	return strings.TrimSpace(s.APIKey) != "" || strings.TrimSpace(s.RapidAPIKey) != ""
}

// RequestTimeout clamps the per-request timeout to at least one second.
func (s SportsConfig) RequestTimeout() time.Duration {
	if s.Timeout < minSportsTimeout {
		return minSportsTimeout
	}
	return s.Timeout
}

// ImagesConfig describes the optional image-generation endpoint.
type ImagesConfig struct {
	Endpoint string        `yaml:"endpoint"`
	APIKey   string        `yaml:"apiKey"`
	Timeout  time.Duration `yaml:"timeout"`
}

// FeedsConfig lists the raw-text sources polled for each day.
type FeedsConfig struct {
	Dir     string         `yaml:"dir"`
	Sources []SourceConfig `yaml:"sources"`
}

// SourceConfig describes a single feed with its scanner strategy.
type SourceConfig struct {
	Name       string            `yaml:"name"`
	Scanner    string            `yaml:"scanner"`
	Bucket     string            `yaml:"bucket"`
	URL        string            `yaml:"url"`
	Token      string            `yaml:"token"`
	Selector   string            `yaml:"selector"`
	MaxItems   int               `yaml:"maxItems"`
	Timeout    time.Duration     `yaml:"timeout"`
	Fallback   bool              `yaml:"fallback"`
	Categories []CategoryConfig  `yaml:"categories"`
	Options    map[string]string `yaml:"options"`
}

// CategoryConfig holds one concrete page of an HTML source.
type CategoryConfig struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// HTTPConfig configures the JSON API listener.
type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

// NotificationConfig encapsulates outbound channels (Telegram, etc.).
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
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

	if len(cfg.Feeds.Sources) == 0 {
		cfg.Feeds.Sources = defaultSources(cfg.Feeds)
	}

	return cfg
}

func (c *Config) applyEnvOverrides() {
	setString := func(env string, target *string) {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			*target = v
		}
	}

	setString(logLevelEnv, &c.Logging.Level)
	setString(logFormatEnv, &c.Logging.Format)
	setString(databaseDriverEnv, &c.Database.Driver)
	setString(databaseURLEnv, &c.Database.DSN)
	setString(databasePathEnv, &c.Database.Path)
	setString(ingestCronEnv, &c.Scheduler.CronExpression)

	setString(llmProviderEnv, &c.LLM.Provider)
	c.LLM.Provider = strings.ToLower(c.LLM.Provider)
	setString(openAIURLEnv, &c.LLM.Endpoint)
	setString(openAIModelEnv, &c.LLM.Model)
	if c.LLM.Provider == ProviderGemini {
		setString(geminiAPIKeyEnv, &c.LLM.APIKey)
	} else {
		setString(openAIAPIKeyEnv, &c.LLM.APIKey)
	}

	setString(sportsAPIKeyEnv, &c.Sports.APIKey)
	setString(rapidAPIKeyEnv, &c.Sports.RapidAPIKey)
	setString(footballURLEnv, &c.Sports.FootballEndpoint)
	setString(basketballURLEnv, &c.Sports.BasketballEndpoint)
	setString(sportsTimezoneEnv, &c.Sports.Timezone)
	if v := os.Getenv(sportsTimeoutEnv); v != "" {
		if ms, err := strconv.Atoi(strings.TrimSpace(v)); err != nil {
			log.Printf("config: invalid %s=%q: %v", sportsTimeoutEnv, v, err)
		} else {
			c.Sports.Timeout = time.Duration(ms) * time.Millisecond
		}
	}

	setString(imageEndpointEnv, &c.Images.Endpoint)
	setString(imageAPIKeyEnv, &c.Images.APIKey)

	setString(automationDirEnv, &c.Feeds.Dir)
	setString(httpAddrEnv, &c.HTTP.Addr)

	setString(telegramTokenEnv, &c.Notifications.Telegram.BotToken)
	setString(telegramChatIDEnv, &c.Notifications.Telegram.ChatID)
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		c.Scheduler.Timezone = defaultTimezone
		loc = SchedulerConfig{}.Location()
	}
	c.Scheduler.location = loc
}

// defaultSources polls the automation endpoint when one is configured and
// falls back to the local <dir>/<date>.json file.
func defaultSources(feeds FeedsConfig) []SourceConfig {
	var sources []SourceConfig
	if url := strings.TrimSpace(os.Getenv(automationURLEnv)); url != "" {
		sources = append(sources, SourceConfig{
			Name:    defaultFeedSource,
			Scanner: ScannerEndpoint,
			URL:     url,
			Token:   os.Getenv(automationTokenEnv),
			Timeout: 20 * time.Second,
		})
	}
	return append(sources, SourceConfig{
		Name:     defaultFileSource,
		Scanner:  ScannerFile,
		URL:      feeds.Dir,
		Fallback: true,
	})
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Logging.Format != "" {
		base.Logging.Format = override.Logging.Format
	}

	if override.Database.Driver != "" {
		base.Database.Driver = override.Database.Driver
	}
	if override.Database.DSN != "" {
		base.Database.DSN = override.Database.DSN
	}
	if override.Database.Path != "" {
		base.Database.Path = override.Database.Path
	}
	if override.Archive.RetentionDays > 0 {
		base.Archive.RetentionDays = override.Archive.RetentionDays
	}

	if override.Scheduler.CronExpression != "" {
		base.Scheduler.CronExpression = override.Scheduler.CronExpression
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}

	if override.LLM.Provider != "" {
		base.LLM.Provider = override.LLM.Provider
	}
	if override.LLM.Endpoint != "" {
		base.LLM.Endpoint = override.LLM.Endpoint
	}
	if override.LLM.Model != "" {
		base.LLM.Model = override.LLM.Model
	}
	if override.LLM.APIKey != "" {
		base.LLM.APIKey = override.LLM.APIKey
	}
	if override.LLM.SystemPrompt != "" {
		base.LLM.SystemPrompt = override.LLM.SystemPrompt
	}
	if override.LLM.Timeout > 0 {
		base.LLM.Timeout = override.LLM.Timeout
	}

	if override.Sports.APIKey != "" {
		base.Sports.APIKey = override.Sports.APIKey
	}
	if override.Sports.RapidAPIKey != "" {
		base.Sports.RapidAPIKey = override.Sports.RapidAPIKey
	}
	if override.Sports.FootballEndpoint != "" {
		base.Sports.FootballEndpoint = override.Sports.FootballEndpoint
	}
	if override.Sports.BasketballEndpoint != "" {
		base.Sports.BasketballEndpoint = override.Sports.BasketballEndpoint
	}
	if override.Sports.Timezone != "" {
		base.Sports.Timezone = override.Sports.Timezone
	}
	if override.Sports.Timeout > 0 {
		base.Sports.Timeout = override.Sports.Timeout
	}

	if override.Images.Endpoint != "" {
		base.Images.Endpoint = override.Images.Endpoint
	}
	if override.Images.APIKey != "" {
		base.Images.APIKey = override.Images.APIKey
	}
	if override.Images.Timeout > 0 {
		base.Images.Timeout = override.Images.Timeout
	}

	if override.Feeds.Dir != "" {
		base.Feeds.Dir = override.Feeds.Dir
	}
	if len(override.Feeds.Sources) > 0 {
		base.Feeds.Sources = override.Feeds.Sources
	}

	if override.HTTP.Addr != "" {
		base.HTTP.Addr = override.HTTP.Addr
	}

	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Logging:   LoggingConfig{Level: "info", Format: "text"},
		Database:  DatabaseConfig{Path: "daily_brief.db"},
		Archive:   ArchiveConfig{RetentionDays: RetentionDays},
		Scheduler: SchedulerConfig{CronExpression: "5 7 * * *", Timezone: defaultTimezone},
		LLM: LLMConfig{
			Provider:     ProviderOpenAI,
			Endpoint:     "https://api.openai.com/v1/chat/completions",
			SystemPrompt: "You are an editor-engine that only answers with the requested output.",
			Timeout:      45 * time.Second,
		},
		Sports: SportsConfig{
			FootballEndpoint:   "https://v3.football.api-sports.io/fixtures",
			BasketballEndpoint: "https://v1.basketball.api-sports.io/games",
			Timezone:           defaultTimezone,
			Timeout:            12 * time.Second,
		},
		Images: ImagesConfig{Timeout: 30 * time.Second},
		Feeds:  FeedsConfig{Dir: defaultAutomationIn},
		HTTP:   HTTPConfig{Addr: ":8080"},
	}
}
