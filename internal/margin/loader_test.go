package margin

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "margin.yaml")
	yaml := `
option_type: put
strike: 350
spot0: 360
implied_vol: 0.25
days_to_maturity: 45
seed: 99
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, Put, cfg.OptionType)
	assert.Equal(t, 350.0, cfg.Strike)
	assert.Equal(t, int64(99), cfg.Seed)
	// 생략된 필드는 기본값 유지
	assert.Equal(t, Short, cfg.PositionSide)
	assert.Equal(t, 1.0, cfg.MaintenanceMarginRate)
}

func TestLoadConfigUnknownKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "margin.yaml")
	require.NoError(t, os.WriteFile(path, []byte("leverage: 10\n"), 0o644))

	_, err := LoadConfig(path)
	require.Error(t, err)
}

func TestLoadConfigInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "margin.yaml")
	require.NoError(t, os.WriteFile(path, []byte("strike: -5\n"), 0o644))

	_, err := LoadConfig(path)
	require.Error(t, err)
}
