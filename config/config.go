package config

import (
	"fmt"
	"os"
	"strconv"
)

// LLM provider names accepted in LLM_PROVIDER
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Config holds all application configuration
type Config struct {
	// External service configurations
	FMP    FMPConfig
	OpenAI OpenAIConfig
	Gemini GeminiConfig

	// Advisor pipeline configuration
	Advisor AdvisorConfig

	// Screener configuration
	Screener ScreenerConfig

	// HTTP configuration
	HTTP HTTPConfig
}

// FMPConfig holds Financial Modeling Prep API configuration
type FMPConfig struct {
	APIKey         string
	TimeoutSeconds int
}

// OpenAIConfig holds OpenAI API configuration
type OpenAIConfig struct {
	APIKey    string
	Model     string
	MaxTokens int
}

// GeminiConfig holds Google Gemini API configuration
type GeminiConfig struct {
	APIKey string
	Model  string
}

// AdvisorConfig holds recommendation pipeline configuration
type AdvisorConfig struct {
	// Provider selects the LLM backend: "openai" or "gemini"
	Provider string
	// MaxProfiles caps how many candidates get a full profile fetch
	MaxProfiles    int
	TimeoutSeconds int
}

// ScreenerConfig holds query-interpretation defaults for the FMP screener
type ScreenerConfig struct {
	DefaultMarket  string // ISO country code used when the query names none
	CandidateLimit int    // limit passed to the screener call
	VolumeMin      int64  // minimum-volume floor applied to every screen
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	Port               string
	CORSAllowedOrigins string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		FMP: FMPConfig{
			APIKey:         os.Getenv("FMP_API_KEY"),
			TimeoutSeconds: getEnvInt("FMP_TIMEOUT_SECONDS", 15),
		},
		OpenAI: OpenAIConfig{
			APIKey:    os.Getenv("OPENAI_API_KEY"),
			Model:     getEnvString("OPENAI_MODEL", "gpt-4o"),
			MaxTokens: getEnvInt("OPENAI_MAX_TOKENS", 4096),
		},
		Gemini: GeminiConfig{
			APIKey: os.Getenv("GEMINI_API_KEY"),
			Model:  getEnvString("GEMINI_MODEL", "gemini-2.5-flash"),
		},
		Advisor: AdvisorConfig{
			Provider:       getEnvString("LLM_PROVIDER", ProviderOpenAI),
			MaxProfiles:    getEnvInt("ADVISOR_MAX_PROFILES", 20),
			TimeoutSeconds: getEnvInt("ADVISOR_TIMEOUT_SECONDS", 90),
		},
		Screener: ScreenerConfig{
			DefaultMarket:  getEnvString("SCREENER_DEFAULT_MARKET", "US"),
			CandidateLimit: getEnvInt("SCREENER_CANDIDATE_LIMIT", 40),
			VolumeMin:      int64(getEnvInt("SCREENER_VOLUME_MIN", 50_000)),
		},
		HTTP: HTTPConfig{
			Port:               getEnvString("PORT", "8080"),
			CORSAllowedOrigins: getEnvString("CORS_ALLOWED_ORIGINS", "*"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Advisor.Provider != ProviderOpenAI && c.Advisor.Provider != ProviderGemini {
		return fmt.Errorf("LLM_PROVIDER must be %q or %q, got %q",
			ProviderOpenAI, ProviderGemini, c.Advisor.Provider)
	}
	if c.Advisor.MaxProfiles <= 0 {
		return fmt.Errorf("ADVISOR_MAX_PROFILES must be positive, got %d", c.Advisor.MaxProfiles)
	}
	if c.Advisor.TimeoutSeconds <= 0 {
		return fmt.Errorf("ADVISOR_TIMEOUT_SECONDS must be positive, got %d", c.Advisor.TimeoutSeconds)
	}
	if c.Screener.CandidateLimit <= 0 {
		return fmt.Errorf("SCREENER_CANDIDATE_LIMIT must be positive, got %d", c.Screener.CandidateLimit)
	}
	if c.FMP.TimeoutSeconds <= 0 {
		return fmt.Errorf("FMP_TIMEOUT_SECONDS must be positive, got %d", c.FMP.TimeoutSeconds)
	}
	return nil
}

// HasFMP returns true if Financial Modeling Prep configuration is available
func (c *Config) HasFMP() bool {
	return c.FMP.APIKey != ""
}

// HasOpenAI returns true if OpenAI configuration is available
func (c *Config) HasOpenAI() bool {
	return c.OpenAI.APIKey != ""
}

// HasGemini returns true if Gemini configuration is available
func (c *Config) HasGemini() bool {
	return c.Gemini.APIKey != ""
}

// HasLLM returns true if the configured LLM provider has credentials
func (c *Config) HasLLM() bool {
	switch c.Advisor.Provider {
	case ProviderGemini:
		return c.HasGemini()
	default:
		return c.HasOpenAI()
	}
}

func getEnvString(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultValue
}

// NewTestConfig creates a Config with default values for testing
func NewTestConfig() *Config {
	return &Config{
		FMP: FMPConfig{
			APIKey:         "",
			TimeoutSeconds: 15,
		},
		OpenAI: OpenAIConfig{
			APIKey:    "",
			Model:     "gpt-4o",
			MaxTokens: 4096,
		},
		Gemini: GeminiConfig{
			APIKey: "",
			Model:  "gemini-2.5-flash",
		},
		Advisor: AdvisorConfig{
			Provider:       ProviderOpenAI,
			MaxProfiles:    20,
			TimeoutSeconds: 90,
		},
		Screener: ScreenerConfig{
			DefaultMarket:  "US",
			CandidateLimit: 40,
			VolumeMin:      50_000,
		},
		HTTP: HTTPConfig{
			Port:               "8080",
			CORSAllowedOrigins: "*",
		},
	}
}
