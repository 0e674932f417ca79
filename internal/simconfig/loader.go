package simconfig

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Loaders read run configurations from YAML (or JSON, which is a YAML
// subset). KnownFields(true)로 오타/미사용 필드 즉시 실패

func decodeStrict(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true) // unknown keys are an immediate error
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// LoadSimulation reads and validates a forward simulation config file.
func LoadSimulation(path string) (SimulationConfig, error) {
	cfg := DefaultSimulationConfig()
	if err := decodeStrict(path, &cfg); err != nil {
		return SimulationConfig{}, err
	}
	if err := cfg.Validate(); err != nil {
		return SimulationConfig{}, err
	}
	return cfg, nil
}

// LoadBacktest reads and validates a backtest config file.
func LoadBacktest(path string) (BacktestConfig, error) {
	cfg := DefaultBacktestConfig()
	if err := decodeStrict(path, &cfg); err != nil {
		return BacktestConfig{}, err
	}
	if err := cfg.Validate(); err != nil {
		return BacktestConfig{}, err
	}
	return cfg, nil
}

// LoadInputModel reads and validates a distribution override file.
func LoadInputModel(path string) (*InputModel, error) {
	var model InputModel
	if err := decodeStrict(path, &model); err != nil {
		return nil, err
	}
	if err := model.Validate(); err != nil {
		return nil, err
	}
	return &model, nil
}
