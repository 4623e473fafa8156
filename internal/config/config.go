package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// DefaultInstruction is the persona active at startup when DEFAULT_INSTRUCTION is unset.
const DefaultInstruction = "Anda adalah asisten belajar bahasa inggris, tolong koreksi kata maupun kalimat yang saya kirim"

type Config struct {
	// Server
	Port      string
	Env       string
	StaticDir string
	Debug     bool

	// Gemini AI
	GeminiAPIKey      string
	GeminiModel       string
	GeminiTemperature float32

	// Chat
	DefaultInstruction string
	HistoryWindow      int

	// Redis (optional, enables cross-replica instruction fan-out)
	RedisURL string

	// CORS
	CORSOrigins []string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:               getEnvOrDefault("PORT", "3003"),
		Env:                getEnvOrDefault("ENV", "development"),
		StaticDir:          getEnvOrDefault("STATIC_DIR", "public"),
		Debug:              getEnvAsBoolOrDefault("DEBUG", false),
		GeminiAPIKey:       mustGetEnv("GEMINI_API_KEY"),
		GeminiModel:        getEnvOrDefault("GEMINI_MODEL", "gemini-2.5-flash"),
		GeminiTemperature:  float32(getEnvAsFloatOrDefault("GEMINI_TEMPERATURE", 0.9)),
		DefaultInstruction: getEnvOrDefault("DEFAULT_INSTRUCTION", DefaultInstruction),
		HistoryWindow:      getEnvAsIntOrDefault("CHAT_HISTORY_WINDOW", 0),
		RedisURL:           getEnvOrDefault("REDIS_URL", ""),
		CORSOrigins:        getEnvAsListOrDefault("CORS_ORIGINS", []string{"*"}),
	}

	return cfg
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvAsFloatOrDefault(key string, defaultVal float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return defaultVal
	}
	return f
}

func getEnvAsBoolOrDefault(key string, defaultVal bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultVal
	}
	return b
}

func getEnvAsListOrDefault(key string, defaultVal []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	var out []string
	for _, item := range strings.Split(val, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}
