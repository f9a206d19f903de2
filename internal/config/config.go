package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Mode       string        `mapstructure:"mode"`
	Port       int           `mapstructure:"port"`
	StaticPath string        `mapstructure:"static_path"`
	ReadLimit  int64         `mapstructure:"read_limit"`
	PingPeriod time.Duration `mapstructure:"ping_period"`
	SendBuffer int           `mapstructure:"send_buffer"`
	Secret     string        `mapstructure:"secret"`
	LogLevel   string        `mapstructure:"log_level"`
	// Backpressure is "disconnect" or "drop".
	Backpressure string `mapstructure:"backpressure"`

	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Deezer    DeezerConfig    `mapstructure:"deezer"`
	Game      GameConfig      `mapstructure:"game"`
}

type RateLimitConfig struct {
	Commands int           `mapstructure:"commands"`
	Interval time.Duration `mapstructure:"interval"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

type DeezerConfig struct {
	BaseURL           string        `mapstructure:"base_url"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
}

type GameConfig struct {
	MaxQuestionCount  int `mapstructure:"max_question_count"`
	MaxAnswerSeconds  int `mapstructure:"max_answer_seconds"`
	QuestionPoolSize  int `mapstructure:"question_pool_size"`
	PlaylistMinTracks int `mapstructure:"playlist_min_tracks"`
	PlaylistMaxTracks int `mapstructure:"playlist_max_tracks"`
}

// Load reads config/config.<CONFIG_ENV>.yaml (dev by default). QUIZ_*
// environment variables override file values, e.g. QUIZ_DATABASE_PATH.
func Load() (*Config, error) {
	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	return LoadFile(fmt.Sprintf("config/config.%s.yaml", env))
}

func LoadFile(fileName string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("QUIZ")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.Game.PlaylistMaxTracks < cfg.Game.PlaylistMinTracks {
		return nil, fmt.Errorf("game.playlist_max_tracks (%d) < game.playlist_min_tracks (%d)",
			cfg.Game.PlaylistMaxTracks, cfg.Game.PlaylistMinTracks)
	}
	log.Info().Str("module", "config").Str("mode", cfg.Mode).Int("port", cfg.Port).
		Str("database", cfg.Database.Path).Msg("config ready")
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("static_path", "./web")
	v.SetDefault("read_limit", 32768)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("send_buffer", 32)
	v.SetDefault("secret", "change-me")
	v.SetDefault("log_level", "info")
	v.SetDefault("backpressure", "disconnect")

	v.SetDefault("rate_limit.commands", 20)
	v.SetDefault("rate_limit.interval", "1s")

	v.SetDefault("database.path", "tunequiz.db")

	v.SetDefault("deezer.base_url", "https://api.deezer.com")
	v.SetDefault("deezer.timeout", "5s")
	v.SetDefault("deezer.requests_per_second", 10)
	v.SetDefault("deezer.burst", 5)

	v.SetDefault("game.max_question_count", 50)
	v.SetDefault("game.max_answer_seconds", 30)
	v.SetDefault("game.question_pool_size", 25)
	v.SetDefault("game.playlist_min_tracks", 5)
	v.SetDefault("game.playlist_max_tracks", 15)
}
