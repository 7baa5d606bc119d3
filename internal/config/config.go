package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Server     ServerConfig     `mapstructure:"server"`
	Log        LogConfig        `mapstructure:"log"`
	DB         DBConfig         `mapstructure:"db"`
	Cron       CronConfig       `mapstructure:"cron"`
	Search     SearchConfig     `mapstructure:"search"`
	Analysis   AnalysisConfig   `mapstructure:"analysis"`
	Scoring    ScoringConfig    `mapstructure:"scoring"`
	Processing ProcessingConfig `mapstructure:"processing"`
	Graph      GraphConfig      `mapstructure:"graph"`
}

type AppConfig struct {
	Env string `mapstructure:"env"`
}

type ServerConfig struct {
	HTTPAddr string `mapstructure:"http_addr"`
}

type LogConfig struct {
	Level             string `mapstructure:"level"`
	Encoding          string `mapstructure:"encoding"`
	Development       bool   `mapstructure:"development"`
	Sampling          bool   `mapstructure:"sampling"`
	DisableCaller     bool   `mapstructure:"disable_caller"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
}

type DBConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	Timezone        string        `mapstructure:"timezone"`
}

type CronConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	Search       string `mapstructure:"search"`
	Process      string `mapstructure:"process"`
	Rescore      string `mapstructure:"rescore"`
	GraphRebuild string `mapstructure:"graph_rebuild"`
}

type SearchConfig struct {
	BaseURL    string        `mapstructure:"base_url"`
	Timeout    time.Duration `mapstructure:"timeout"`
	MaxResults int           `mapstructure:"max_results"`
	Depth      string        `mapstructure:"depth"`
	Roles      []string      `mapstructure:"roles"`
}

// Queries expands the configured roles the way searches are actually issued:
// one "job openings" and one "hiring" query per role.
func (c SearchConfig) Queries() []string {
	out := make([]string, 0, len(c.Roles)*2)
	for _, role := range c.Roles {
		out = append(out, role+" job openings")
	}
	for _, role := range c.Roles {
		out = append(out, role+" hiring")
	}
	return out
}

type AnalysisConfig struct {
	Model      string        `mapstructure:"model"`
	Timeout    time.Duration `mapstructure:"timeout"`
	MaxRetries int           `mapstructure:"max_retries"`
}

type ScoringConfig struct {
	Weights          WeightsConfig `mapstructure:"weights"`
	RecentWindowDays int           `mapstructure:"recent_window_days"`
}

// WeightsConfig holds the scoring weights. They are not required to sum to 1;
// only the final clamp bounds the score.
type WeightsConfig struct {
	Job      float64 `mapstructure:"job"`
	Signal   float64 `mapstructure:"signal"`
	Growth   float64 `mapstructure:"growth"`
	Activity float64 `mapstructure:"activity"`
}

type ProcessingConfig struct {
	BatchLimit int `mapstructure:"batch_limit"`
	// NoCompanyPolicy picks what happens to a record whose extraction has no
	// company name: "discard" marks it processed, "quarantine" parks it for
	// manual review.
	NoCompanyPolicy string `mapstructure:"no_company_policy"`
}

type GraphConfig struct {
	Path string `mapstructure:"path"`
}

func Load(path string, envOnly bool) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("RR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	v.SetDefault("app.env", "dev")
	v.SetDefault("server.http_addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.development", true)
	v.SetDefault("log.sampling", false)
	v.SetDefault("log.disable_caller", false)
	v.SetDefault("log.disable_stacktrace", false)
	v.SetDefault("db.max_open_conns", 20)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime", "30m")
	v.SetDefault("db.conn_max_idle_time", "5m")
	v.SetDefault("db.timezone", "UTC")
	v.SetDefault("cron.enabled", true)
	v.SetDefault("cron.search", "0 0 9 * * *")
	v.SetDefault("cron.process", "@every 15m")
	v.SetDefault("cron.rescore", "0 30 3 * * *")
	v.SetDefault("cron.graph_rebuild", "0 0 4 * * *")
	v.SetDefault("search.base_url", "https://api.tavily.com")
	v.SetDefault("search.timeout", "30s")
	v.SetDefault("search.max_results", 10)
	v.SetDefault("search.depth", "advanced")
	v.SetDefault("search.roles", []string{
		"security engineer",
		"compliance officer",
		"GRC analyst",
		"Chief Information Security Officer (CISO)",
		"data protection officer (DPO)",
		"security leadership",
		"security architect",
		"InfoSec director",
	})
	v.SetDefault("analysis.model", "gemini-2.5-flash")
	v.SetDefault("analysis.timeout", "30s")
	v.SetDefault("analysis.max_retries", 2)
	v.SetDefault("scoring.weights.job", 0.4)
	v.SetDefault("scoring.weights.signal", 0.3)
	v.SetDefault("scoring.weights.growth", 0.2)
	v.SetDefault("scoring.weights.activity", 0.1)
	v.SetDefault("scoring.recent_window_days", 90)
	v.SetDefault("processing.batch_limit", 100)
	v.SetDefault("processing.no_company_policy", "discard")
	v.SetDefault("graph.path", "roleradar_graph.json")

	if !envOnly {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
