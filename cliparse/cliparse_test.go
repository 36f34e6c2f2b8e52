// cliparse/cliparse_test.go
package cliparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags_EnvVars(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("DATABASE_URL", "postgres://test")
	t.Setenv("DATABASE_TYPE", "postgres")
	t.Setenv("ADMIN_KEY_SALT", "test-salt")
	t.Setenv("REPROCESS_EVERY", "25")
	t.Setenv("EXPLORATION_GAMMA", "0.3")
	t.Setenv("REPROCESS_ON_START", "true")

	cfg, err := ParseFlags([]string{})
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "postgres", cfg.DatabaseType)
	assert.Equal(t, 25, cfg.ReprocessEvery)
	assert.Equal(t, 0.3, cfg.ExplorationGamma)
	assert.True(t, cfg.ReprocessOnStart)
	assert.Equal(t, 10, cfg.PairCandidates)
}

func TestParseFlags_CLIOverridesEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("REPROCESS_EVERY", "25")
	t.Setenv("DATABASE_TYPE", "")

	cfg, err := ParseFlags([]string{"-p", "8080", "-d", "file:test.db", "-admin-salt", "s1", "-reprocess-every", "0"})
	require.NoError(t, err)

	// CLI should override env
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 0, cfg.ReprocessEvery)
	assert.Equal(t, "sqlite", cfg.DatabaseType)
}

func TestParseFlags_Invalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
		env  map[string]string
	}{
		{"missing database", []string{"-admin-salt", "s"}, nil},
		{"missing salt", []string{"-d", "x"}, nil},
		{"bad database type", []string{"-d", "x", "-admin-salt", "s", "-t", "mysql"}, nil},
		{"gamma out of range", []string{"-d", "x", "-admin-salt", "s", "-gamma", "1.5"}, nil},
		{"no candidates", []string{"-d", "x", "-admin-salt", "s", "-pair-candidates", "0"}, nil},
		{"bad env", []string{"-d", "x", "-admin-salt", "s"}, map[string]string{"RATE_BURST": "lots"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DATABASE_URL", "")
			t.Setenv("ADMIN_KEY_SALT", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := ParseFlags(tt.args)
			assert.Error(t, err)
		})
	}
}
