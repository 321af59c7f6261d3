package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

type Config struct {
	AppEnv    string `env:"APP_ENV" default:"development"`
	HTTPPort  string `env:"HTTP_PORT" default:"8080"`
	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"text"`

	// Weight scale terminal (outbound connection, we dial it).
	ScaleHost string `env:"SCALE_HOST" default:"127.0.0.1"`
	ScalePort string `env:"SCALE_PORT" default:"4001"`

	// RFID reader dials us on this port.
	RFIDListenPort string `env:"RFID_LISTEN_PORT" default:"4002"`

	// Per-channel WebSocket ports.
	RFIDWSPort   string `env:"RFID_WS_PORT" default:"8081"`
	WeightWSPort string `env:"WEIGHT_WS_PORT" default:"8082"`

	// Thermal printer (empty host disables printing).
	PrinterHost string `env:"PRINTER_HOST"`
	PrinterPort string `env:"PRINTER_PORT" default:"9100"`

	ReconnectDelay time.Duration `env:"RECONNECT_DELAY" default:"5s"`

	MaxClientsPerChannel int `env:"MAX_CLIENTS_PER_CHANNEL" default:"50"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	required := map[string]string{
		"SCALE_HOST":       cfg.ScaleHost,
		"SCALE_PORT":       cfg.ScalePort,
		"RFID_LISTEN_PORT": cfg.RFIDListenPort,
		"RFID_WS_PORT":     cfg.RFIDWSPort,
		"WEIGHT_WS_PORT":   cfg.WeightWSPort,
	}
	for name, value := range required {
		if value == "" {
			return fmt.Errorf("%s is required", name)
		}
	}

	if cfg.ReconnectDelay <= 0 {
		return fmt.Errorf("RECONNECT_DELAY must be positive, got %v", cfg.ReconnectDelay)
	}
	if cfg.MaxClientsPerChannel <= 0 {
		return fmt.Errorf("MAX_CLIENTS_PER_CHANNEL must be positive, got %d", cfg.MaxClientsPerChannel)
	}

	return nil
}

// ScaleAddr returns the host:port of the weight scale terminal.
func (c *Config) ScaleAddr() string {
	return c.ScaleHost + ":" + c.ScalePort
}

// PrinterAddr returns the host:port of the network printer, or "" when
// no printer is configured.
func (c *Config) PrinterAddr() string {
	if c.PrinterHost == "" {
		return ""
	}
	return c.PrinterHost + ":" + c.PrinterPort
}
