package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	ModeHTTP   = "http"
	ModeLambda = "lambda"

	ProviderGroq   = "groq"
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

var defaultModels = map[string]string{
	ProviderGroq:   "llama3-70b-8192",
	ProviderOpenAI: "gpt-4o-mini",
	ProviderGemini: "gemini-2.0-flash",
}

var providerKeyEnv = map[string][]string{
	ProviderGroq:   {"GROQ_API_KEY"},
	ProviderOpenAI: {"OPENAI_API_KEY"},
	ProviderGemini: {"GEMINI_API_KEY", "GOOGLE_API_KEY"},
}

// Config is built once at process start and never mutated.
type Config struct {
	Mode  string
	Host  string
	Port  string
	Debug bool

	Provider       string
	Model          string
	BaseURL        string
	APIKey         string
	Temperature    float64
	MaxTokens      int
	UpstreamTimeout time.Duration

	ExposeUpstreamErrors bool
	ParamPrefix          string

	SystemPrompt     string
	SystemPromptFile string
	PromptProfile    string

	LogLevel  string
	LogFormat string
	LogFile   string
}

// Load reads environment variables, optionally from a .env file if present.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config from an arbitrary variable source.
func FromLookup(lookup func(string) (string, bool)) (Config, error) {
	e := env(lookup)

	provider := strings.ToLower(e.getString("LLM_PROVIDER", ProviderGroq))
	if _, ok := defaultModels[provider]; !ok {
		return Config{}, fmt.Errorf("config: unsupported LLM_PROVIDER %q", provider)
	}

	mode := strings.ToLower(e.getString("RUN_MODE", ""))
	if mode == "" {
		mode = ModeHTTP
		if e.getString("AWS_LAMBDA_FUNCTION_NAME", "") != "" {
			mode = ModeLambda
		}
	}
	if mode != ModeHTTP && mode != ModeLambda {
		return Config{}, fmt.Errorf("config: unsupported RUN_MODE %q", mode)
	}

	debug := e.getBool("DEBUG", true)
	defaultLevel := "info"
	if debug {
		defaultLevel = "debug"
	}

	cfg := Config{
		Mode:  mode,
		Host:  e.getString("HOST", "0.0.0.0"),
		Port:  e.getString("PORT", "5000"),
		Debug: debug,

		Provider:       provider,
		Model:          e.getString("LLM_MODEL", defaultModels[provider]),
		BaseURL:        e.getString("LLM_BASE_URL", ""),
		APIKey:         apiKey(e, provider),
		Temperature:    e.getFloat("LLM_TEMPERATURE", 0.7),
		MaxTokens:      e.getInt("LLM_MAX_TOKENS", 1024),
		UpstreamTimeout: e.getDuration("UPSTREAM_TIMEOUT", 60*time.Second),

		ExposeUpstreamErrors: e.getBool("EXPOSE_UPSTREAM_ERRORS", true),
		ParamPrefix:          strings.TrimRight(e.getString("PARAM_PREFIX", ""), "/"),

		SystemPrompt:     e.raw("SYSTEM_PROMPT"),
		SystemPromptFile: e.getString("SYSTEM_PROMPT_FILE", ""),
		PromptProfile:    e.getString("PROMPT_PROFILE", ""),

		LogLevel:  e.getString("LOG_LEVEL", defaultLevel),
		LogFormat: e.getString("LOG_FORMAT", "json"),
		LogFile:   e.getString("LOG_FILE", ""),
	}
	return cfg, nil
}

// Addr is the listen address for HTTP mode.
func (c Config) Addr() string {
	return c.Host + ":" + c.Port
}

// TokenParameter is the SSM name holding {"token": "..."} for the provider.
func (c Config) TokenParameter() string {
	if c.ParamPrefix == "" {
		return ""
	}
	return c.ParamPrefix + "/api-token"
}

// PromptParameter is the optional SSM name holding the system prompt.
func (c Config) PromptParameter() string {
	if c.ParamPrefix == "" {
		return ""
	}
	return c.ParamPrefix + "/system-prompt"
}

func apiKey(e env, provider string) string {
	if v := e.getString("LLM_API_KEY", ""); v != "" {
		return v
	}
	for _, key := range providerKeyEnv[provider] {
		if v := e.getString(key, ""); v != "" {
			return v
		}
	}
	return ""
}

type env func(string) (string, bool)

func (e env) raw(key string) string {
	v, _ := e(key)
	return v
}

func (e env) getString(key, def string) string {
	if v := strings.TrimSpace(e.raw(key)); v != "" {
		return v
	}
	return def
}

func (e env) getInt(key string, def int) int {
	n, err := strconv.Atoi(e.getString(key, ""))
	if err != nil {
		return def
	}
	return n
}

func (e env) getFloat(key string, def float64) float64 {
	f, err := strconv.ParseFloat(e.getString(key, ""), 64)
	if err != nil {
		return def
	}
	return f
}

func (e env) getBool(key string, def bool) bool {
	b, err := strconv.ParseBool(e.getString(key, ""))
	if err != nil {
		return def
	}
	return b
}

func (e env) getDuration(key string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(e.getString(key, ""))
	if err != nil || d < 0 {
		return def
	}
	return d
}
