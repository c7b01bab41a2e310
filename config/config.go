package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App     AppConfig
	Board   BoardConfig
	Socket  SocketConfig
	Backend BackendConfig
}

type AppConfig struct {
	Env      string
	LogLevel string
}

type BoardConfig struct {
	Timezone          string
	SlotMinutes       int
	DayStart          string
	DayEnd            string
	SlotWindowMinutes int
	VacationDates     []string
	WeekendDays       []string
	WeekendDayStart   string
	WeekendSlotMins   int
}

type SocketConfig struct {
	URL            string
	DialTimeout    time.Duration
	ConfirmTimeout time.Duration
	EchoTTL        time.Duration
	StrictEchoTTL  time.Duration
}

type BackendConfig struct {
	BaseURL string
	Timeout time.Duration
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	config := &Config{
		App: AppConfig{
			Env:      viper.GetString("APP_ENV"),
			LogLevel: viper.GetString("APP_LOG_LEVEL"),
		},
		Board: BoardConfig{
			Timezone:          viper.GetString("BOARD_TIMEZONE"),
			SlotMinutes:       viper.GetInt("BOARD_SLOT_MINUTES"),
			DayStart:          viper.GetString("BOARD_DAY_START"),
			DayEnd:            viper.GetString("BOARD_DAY_END"),
			SlotWindowMinutes: viper.GetInt("BOARD_SLOT_WINDOW_MINUTES"),
			VacationDates:     splitCSV(viper.GetString("BOARD_VACATION_DATES")),
			WeekendDays:       splitCSV(viper.GetString("BOARD_WEEKEND_DAYS")),
			WeekendDayStart:   viper.GetString("BOARD_WEEKEND_DAY_START"),
			WeekendSlotMins:   viper.GetInt("BOARD_WEEKEND_SLOT_MINUTES"),
		},
		Socket: SocketConfig{
			URL:            viper.GetString("SOCKET_URL"),
			DialTimeout:    durationOr("SOCKET_DIAL_TIMEOUT", 5*time.Second),
			ConfirmTimeout: durationOr("SOCKET_CONFIRM_TIMEOUT", 10*time.Second),
			EchoTTL:        durationOr("SOCKET_ECHO_TTL", 15*time.Second),
			StrictEchoTTL:  durationOr("SOCKET_STRICT_ECHO_TTL", 8*time.Second),
		},
		Backend: BackendConfig{
			BaseURL: viper.GetString("BACKEND_BASE_URL"),
			Timeout: durationOr("BACKEND_TIMEOUT", 15*time.Second),
		},
	}

	applyDefaults(config)

	return config, nil
}

// applyDefaults fills zero values so a sparse .env still yields a usable
// board configuration.
func applyDefaults(cfg *Config) {
	if cfg.Board.Timezone == "" {
		cfg.Board.Timezone = "Asia/Riyadh"
	}
	if cfg.Board.SlotMinutes <= 0 {
		cfg.Board.SlotMinutes = 120
	}
	if cfg.Board.DayStart == "" {
		cfg.Board.DayStart = "09:00"
	}
	if cfg.Board.DayEnd == "" {
		cfg.Board.DayEnd = "21:00"
	}
	if cfg.Board.SlotWindowMinutes <= 0 {
		cfg.Board.SlotWindowMinutes = 120
	}
}

func durationOr(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(viper.GetString(key))
	if err != nil {
		return fallback
	}
	return d
}

func splitCSV(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
