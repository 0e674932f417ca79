package margin

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultConfig returns a margin simulation config prefilled with a short
// at-the-money call under a KOSPI200-style margin schedule. LoadConfig
// decodes user input on top of this, so omitted fields keep defaults.
func DefaultConfig() Config {
	return Config{
		OptionType:            Call,
		PositionSide:          Short,
		Strike:                100,
		ContractSize:          100,
		Spot0:                 100,
		ImpliedVol:            0.2,
		RiskFreeRate:          0.03,
		DaysToMaturity:        30,
		ScanRiskFactor:        0.06,
		MinMarginFactor:       0.10,
		MaintenanceMarginRate: 1.0,
		DailyReturnMean:       0.0,
		DailyReturnVol:        0.015,
		ReferenceEquity:       10_000,
	}
}

// LoadConfig reads and validates a margin simulation config file.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true) // unknown keys are an immediate error
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
