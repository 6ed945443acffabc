package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration.
type Config struct {
	Port            string
	CORSAllowOrigin []string
	DatabaseURL     string
	Env             string
	GroqAPIKey      string
	GroqModel       string
	OpenAIAPIKey    string
	OpenAIModel     string
	LLMTimeout      time.Duration
	DocsTimeout     time.Duration
	VelaDocsURLs    []string
}

// DefaultVelaDocsURLs lists the Vela documentation pages consulted for
// failure analysis context.
var DefaultVelaDocsURLs = []string{
	"https://go-vela.github.io/docs/concepts/pipeline/steps/",
	"https://go-vela.github.io/docs/concepts/pipeline/services/",
	"https://go-vela.github.io/docs/concepts/pipeline/secrets/",
	"https://go-vela.github.io/docs/concepts/pipeline/templates/",
	"https://go-vela.github.io/docs/usage/examples/",
	"https://go-vela.github.io/docs/reference/yaml/",
	"https://go-vela.github.io/docs/troubleshooting/",
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := os.Getenv("DATABASE_URL")

	if env == "production" && dbURL == "" {
		log.Printf("DATABASE_URL is required in production")
	}

	docsURLs := DefaultVelaDocsURLs
	if raw := getEnv("VELA_DOCS_URLS", ""); raw != "" {
		docsURLs = splitAndTrim(raw)
	}

	return Config{
		Port:            getEnv("PORT", "8080"),
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),
		DatabaseURL:     dbURL,
		Env:             env,
		GroqAPIKey:      getEnv("GROQ_API_KEY", ""),
		GroqModel:       getEnv("GROQ_MODEL", "llama3-8b-8192"),
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:     getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		LLMTimeout:      getEnvSeconds("LLM_TIMEOUT_SECONDS", 60*time.Second),
		DocsTimeout:     getEnvSeconds("DOCS_FETCH_TIMEOUT_SECONDS", 10*time.Second),
		VelaDocsURLs:    docsURLs,
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvSeconds(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		log.Printf("config env %s invalid seconds value %q, using default", key, raw)
		return def
	}
	return time.Duration(parsed) * time.Second
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	case "development", "dev":
		return "dev"
	default:
		return "dev"
	}
}
