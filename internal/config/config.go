package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"dynamo-league/internal/domain"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

type Config struct {
	DBPath           string
	ServerPort       string
	LogLevel         string
	Location         *time.Location
	BiddingCloseHour int
	OfferExpiryHour  int
	MatchWindow      time.Duration
	UnrosterPolicy   domain.UnrosterPolicy
	SalaryCaps       domain.SalaryCaps
	HeadshotAPIURL   string
	SchedulerEnabled bool
}

const defaultSalaryCaps = "2025:1050,2026:1100,2027:1150"

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	loc, err := time.LoadLocation(getEnv("LEAGUE_TIMEZONE", "America/Chicago"))
	if err != nil {
		return nil, fmt.Errorf("invalid LEAGUE_TIMEZONE: %w", err)
	}
	closeHour, err := getHour("BIDDING_CLOSE_HOUR", 22)
	if err != nil {
		return nil, err
	}
	expiryHour, err := getHour("OFFER_EXPIRY_HOUR", 0)
	if err != nil {
		return nil, err
	}
	matchWindow, err := time.ParseDuration(getEnv("MATCH_WINDOW", "72h"))
	if err != nil || matchWindow <= 0 {
		return nil, fmt.Errorf("invalid MATCH_WINDOW %q", getEnv("MATCH_WINDOW", "72h"))
	}
	policy, err := domain.ParseUnrosterPolicy(getEnv("UNROSTER_POLICY", string(domain.UnrosterKeepTeam)))
	if err != nil {
		return nil, fmt.Errorf("invalid UNROSTER_POLICY: %w", err)
	}
	caps, err := ParseSalaryCaps(getEnv("SALARY_CAPS", defaultSalaryCaps))
	if err != nil {
		return nil, fmt.Errorf("invalid SALARY_CAPS: %w", err)
	}
	schedulerEnabled, err := strconv.ParseBool(getEnv("SCHEDULER_ENABLED", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid SCHEDULER_ENABLED: %w", err)
	}

	cfg := &Config{
		DBPath:           getEnv("DB_PATH", "league.db"),
		ServerPort:       getEnv("SERVER_PORT", "8080"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		Location:         loc,
		BiddingCloseHour: closeHour,
		OfferExpiryHour:  expiryHour,
		MatchWindow:      matchWindow,
		UnrosterPolicy:   policy,
		SalaryCaps:       caps,
		HeadshotAPIURL:   getEnv("HEADSHOT_API_URL", ""),
		SchedulerEnabled: schedulerEnabled,
	}

	logger.Info().
		Str("db_path", cfg.DBPath).
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Str("timezone", cfg.Location.String()).
		Int("bidding_close_hour", cfg.BiddingCloseHour).
		Int("offer_expiry_hour", cfg.OfferExpiryHour).
		Dur("match_window", cfg.MatchWindow).
		Str("unroster_policy", string(cfg.UnrosterPolicy)).
		Int("salary_cap_seasons", len(cfg.SalaryCaps)).
		Bool("scheduler_enabled", cfg.SchedulerEnabled).
		Msg("configuration loaded")

	return cfg, nil
}

// ParseSalaryCaps reads "year:cap" pairs separated by commas, e.g. "2025:1050,2026:1100".
func ParseSalaryCaps(raw string) (domain.SalaryCaps, error) {
	caps := domain.SalaryCaps{}
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		yearStr, capStr, ok := strings.Cut(pair, ":")
		if !ok {
			return nil, fmt.Errorf("expected year:cap, got %q", pair)
		}
		year, err := strconv.Atoi(strings.TrimSpace(yearStr))
		if err != nil {
			return nil, fmt.Errorf("invalid season %q: %w", yearStr, err)
		}
		amount, err := strconv.Atoi(strings.TrimSpace(capStr))
		if err != nil || amount <= 0 {
			return nil, fmt.Errorf("invalid cap %q for season %d", capStr, year)
		}
		if _, dup := caps[year]; dup {
			return nil, fmt.Errorf("season %d configured twice", year)
		}
		caps[year] = amount
	}
	if len(caps) == 0 {
		return nil, fmt.Errorf("at least one season is required")
	}
	return caps, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getHour(key string, fallback int) (int, error) {
	raw := getEnv(key, strconv.Itoa(fallback))
	hour, err := strconv.Atoi(raw)
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("invalid %s %q: must be an hour between 0 and 23", key, raw)
	}
	return hour, nil
}

var Module = fx.Provide(Load)
