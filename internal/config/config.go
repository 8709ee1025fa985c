package config

import (
	"os"
	"strings"
	"time"
)

type Config struct {
	Port     string
	BasePath string
	LogLevel string

	// Vendor menu API
	MenuAPIURL     string
	RestaurantID   string
	MenuStaleAfter time.Duration

	// Vendor order API. Credentials travel inside the order body, not as headers.
	OrderAPIURL string
	AppKey      string
	AppSecret   string
	AccessToken string

	SessionSecret      string
	SessionIdleTimeout time.Duration
	DatabaseURL        string
	PublicBaseURL      string
	TableLocation      string
	OrderConfirmDelay  time.Duration
	AllowedOrigins     []string
}

func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8081"),
		BasePath: getEnv("BASE_PATH", "/"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		MenuAPIURL:     getEnv("MENU_API_URL", "https://avayacafe.com/online-order/api/fetchMenu.php"),
		RestaurantID:   strings.TrimSpace(os.Getenv("RESTAURANT_ID")),
		MenuStaleAfter: getDuration("MENU_STALE_AFTER", 5*time.Minute),

		OrderAPIURL: getEnv("ORDER_API_URL", "https://qle1yy2ydc.execute-api.ap-southeast-1.amazonaws.com/V1/save_order"),
		AppKey:      os.Getenv("APP_KEY"),
		AppSecret:   os.Getenv("APP_SECRET"),
		AccessToken: os.Getenv("ACCESS_TOKEN"),

		SessionSecret:      getEnv("SESSION_SECRET", "dev-secret-change-in-production"),
		SessionIdleTimeout: getDuration("SESSION_IDLE_TIMEOUT", 2*time.Hour),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		PublicBaseURL:      getEnv("PUBLIC_BASE_URL", "http://localhost:5173"),
		TableLocation:      getEnv("TABLE_LOCATION", "sukhdevvihar"),
		OrderConfirmDelay:  getDuration("ORDER_CONFIRM_DELAY", 2*time.Second),
		AllowedOrigins:     getList("ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		return fallback
	}
	return d
}

func getList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
