package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, "4001", cfg.ScalePort)
	assert.Equal(t, "4002", cfg.RFIDListenPort)
	assert.Equal(t, "8081", cfg.RFIDWSPort)
	assert.Equal(t, "8082", cfg.WeightWSPort)
	assert.Equal(t, 5*time.Second, cfg.ReconnectDelay)
	assert.Equal(t, 50, cfg.MaxClientsPerChannel)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SCALE_HOST", "10.0.0.7")
	t.Setenv("SCALE_PORT", "5001")
	t.Setenv("RECONNECT_DELAY", "250ms")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "10.0.0.7:5001", cfg.ScaleAddr())
	assert.Equal(t, 250*time.Millisecond, cfg.ReconnectDelay)
}

func TestValidate_RejectsNonPositiveDelay(t *testing.T) {
	cfg := &Config{
		ScaleHost:            "h",
		ScalePort:            "1",
		RFIDListenPort:       "2",
		RFIDWSPort:           "3",
		WeightWSPort:         "4",
		ReconnectDelay:       0,
		MaxClientsPerChannel: 1,
	}
	err := validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RECONNECT_DELAY")
}

func TestValidate_RequiredFields(t *testing.T) {
	cfg := &Config{
		ScaleHost:            "h",
		ScalePort:            "1",
		RFIDListenPort:       "",
		RFIDWSPort:           "3",
		WeightWSPort:         "4",
		ReconnectDelay:       time.Second,
		MaxClientsPerChannel: 1,
	}
	err := validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RFID_LISTEN_PORT")
}

func TestPrinterAddr(t *testing.T) {
	cfg := &Config{PrinterPort: "9100"}
	assert.Equal(t, "", cfg.PrinterAddr())

	cfg.PrinterHost = "192.168.1.50"
	assert.Equal(t, "192.168.1.50:9100", cfg.PrinterAddr())
}
