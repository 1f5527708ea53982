package server

import (
	"fmt"
	"os"
	"strings"

	cmj "github.com/lucasjlepore/cmj-analyzer"
	"github.com/sirupsen/logrus"
)

// Config holds the configuration values for the analysis service.
type Config struct {
	ListenPort  string
	ConfigPath  string
	LogLevel    logrus.Level
	CORSOrigins []string
	Analysis    cmj.Config
}

// LoadConfig loads configuration from environment variables or uses default values.
func LoadConfig() (*Config, error) {
	listenPort := os.Getenv("LISTEN_PORT")
	if listenPort == "" {
		listenPort = "8080"
	}

	level := logrus.InfoLevel
	if raw := os.Getenv("LOG_LEVEL"); raw != "" {
		parsed, err := logrus.ParseLevel(raw)
		if err != nil {
			return nil, fmt.Errorf("LOG_LEVEL: %w", err)
		}
		level = parsed
	}

	origins := []string{"*"}
	if raw := os.Getenv("CORS_ORIGINS"); raw != "" {
		origins = origins[:0]
		for _, o := range strings.Split(raw, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
	}

	analysis := cmj.DefaultConfig()
	configPath := os.Getenv("CMJ_CONFIG")
	if configPath != "" {
		loaded, err := cmj.LoadConfig(configPath)
		if err != nil {
			return nil, fmt.Errorf("CMJ_CONFIG: %w", err)
		}
		analysis = loaded
	}

	return &Config{
		ListenPort:  listenPort,
		ConfigPath:  configPath,
		LogLevel:    level,
		CORSOrigins: origins,
		Analysis:    analysis,
	}, nil
}

// Addr is the listen address for http.Server.
func (c *Config) Addr() string {
	return ":" + c.ListenPort
}
