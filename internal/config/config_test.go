package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"groomosphere-backend/internal/domain"
)

const minimalYAML = `
server:
  port: 8080
storage:
  type: memory
jwt:
  secret: "0123456789abcdef0123456789abcdef"
`

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte(minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, 0.2, cfg.Booking.CommissionRate)
	assert.Equal(t, 3, cfg.Booking.MaxRetries)
	assert.Equal(t, 10.0, cfg.Matching.DefaultRadiusKm)
	assert.Equal(t, 50.0, cfg.Matching.MaxRadiusKm)
	assert.Equal(t, 50, cfg.Matching.MaxResults)
	assert.Equal(t, "log", cfg.Payment.Type)
	assert.Equal(t, "0 0 0 1 * *", cfg.Scheduler.ResetMonthlyEarnings)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestParse_EnvOverride(t *testing.T) {
	t.Setenv("COMMISSION_RATE", "0.15")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Parse([]byte(minimalYAML))
	require.NoError(t, err)
	assert.Equal(t, 0.15, cfg.Booking.CommissionRate)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"Missing port", "storage:\n  type: memory\njwt:\n  secret: \"0123456789abcdef0123456789abcdef\"\n"},
		{"Short secret", "server:\n  port: 80\nstorage:\n  type: memory\njwt:\n  secret: short\n"},
		{"Postgres without host", "server:\n  port: 80\njwt:\n  secret: \"0123456789abcdef0123456789abcdef\"\n"},
		{"Rate above one", minimalYAML + "booking:\n  commission_rate: 1.5\n"},
		{"AMQP without url", minimalYAML + "payment:\n  type: amqp\n"},
		{"Unknown storage", "server:\n  port: 80\nstorage:\n  type: redis\njwt:\n  secret: \"0123456789abcdef0123456789abcdef\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(minimalYAML), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.GetServerAddress())

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestPolicyFor(t *testing.T) {
	assert.Equal(t, SecurityPublic, PolicyFor("Health").Level)
	assert.Equal(t, SecurityAccess, PolicyFor("UnknownRoute").Level)

	create := PolicyFor("CreateBooking")
	assert.True(t, create.Allows(domain.RoleCustomer))
	assert.False(t, create.Allows(domain.RoleBarber))

	assert.True(t, PolicyFor("GetBooking").Allows(domain.RoleBarber))
	assert.False(t, PolicyFor("AdminRevenue").Allows(domain.RoleCustomer))
	assert.False(t, PolicyFor("UpdateBarberProfile").Allows(domain.RoleCustomer))
	assert.True(t, PolicyFor("AdminSetBarberActive").Allows(domain.RoleAdmin))
	assert.False(t, PolicyFor("AdminSetBarberActive").Allows(domain.RoleBarber))
}
