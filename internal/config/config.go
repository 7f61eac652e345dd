package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kraftmortgages/calcserv/internal/calc/construction"
)

// Config holds application configuration
type Config struct {
	Port         string
	DBConn       string
	LogLevel     string
	RedisAddr    string
	BOCURL       string
	RateMargin   float64
	ProgramsFile string
}

// NewConfig loads configuration from environment variables
func NewConfig() (*Config, error) {
	cfg := &Config{
		Port:         getEnv("PORT", "8080"),
		DBConn:       getEnv("DB_CONN", ""),
		LogLevel:     getEnv("LOG_LEVEL", "INFO"),
		RedisAddr:    getEnv("REDIS_ADDR", ""),
		BOCURL:       getEnv("BOC_URL", "https://www.bankofcanada.ca/valet/observations/V80691335/xml?recent=1"),
		RateMargin:   0,
		ProgramsFile: getEnv("PROGRAMS_FILE", ""),
	}

	if raw := getEnv("RATE_MARGIN", ""); raw != "" {
		if _, err := fmt.Sscanf(raw, "%f", &cfg.RateMargin); err != nil {
			return nil, fmt.Errorf("invalid RATE_MARGIN: %v", err)
		}
	}

	return cfg, nil
}

// LoadPrograms reads the builder program catalog. An unset path falls back
// to the built-in catalog.
func (c *Config) LoadPrograms() ([]construction.Program, error) {
	if c.ProgramsFile == "" {
		return construction.DefaultCatalog(), nil
	}

	data, err := os.ReadFile(c.ProgramsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read programs file: %w", err)
	}

	var doc struct {
		Programs []construction.Program `yaml:"programs"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse programs file: %w", err)
	}
	if len(doc.Programs) == 0 {
		return nil, fmt.Errorf("programs file %s contains no programs", c.ProgramsFile)
	}

	return doc.Programs, nil
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}
