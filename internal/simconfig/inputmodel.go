package simconfig

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/wonny/investsim/backend/internal/returns"
)

// InputModel is an optional return-distribution override handed to the
// forward simulator by an external fitting step. The core never fits
// distributions itself; it only consumes a resolved (dist_name, params) pair.
type InputModel struct {
	DistName string                `yaml:"dist_name" json:"dist_name"`
	Params   map[string]ParamValue `yaml:"params" json:"params"`

	// HistoricalReturns feeds the empirical_bootstrap distribution. It is a
	// single shared sample pool, not a per-asset parameter.
	HistoricalReturns []float64 `yaml:"historical_returns,omitempty" json:"historical_returns,omitempty"`
}

// Validate checks the descriptor shape. Per-asset resolution errors (list
// length, missing map keys) surface later at simulator construction.
func (m InputModel) Validate() error {
	name := m.DistName
	if name == "" {
		name = returns.DistNormal
	}
	switch name {
	case returns.DistNormal, returns.DistStudentT, returns.DistEmpiricalBootstrap:
	default:
		return ValidationError{"input_model.dist_name", fmt.Sprintf("unsupported distribution %q", name)}
	}
	if name == returns.DistEmpiricalBootstrap && len(m.HistoricalReturns) == 0 {
		return ValidationError{"input_model.historical_returns", "empirical_bootstrap requires a non-empty sample pool"}
	}
	for key, v := range m.Params {
		if v.kind == paramUnset {
			return ValidationError{"input_model.params." + key, "must be a number, list, or name map"}
		}
	}
	return nil
}

type paramKind int

const (
	paramUnset paramKind = iota
	paramScalar
	paramList
	paramByName
)

// ParamValue is a tagged union for a distribution parameter: a scalar applied
// to all assets, a list indexed by asset position, or an asset-name map.
type ParamValue struct {
	kind   paramKind
	scalar float64
	list   []float64
	byName map[string]float64
}

// ScalarParam wraps a plain number as a ParamValue.
func ScalarParam(v float64) ParamValue {
	return ParamValue{kind: paramScalar, scalar: v}
}

// ListParam wraps a positional per-asset list as a ParamValue.
func ListParam(v []float64) ParamValue {
	return ParamValue{kind: paramList, list: v}
}

// NamedParam wraps an asset-name map as a ParamValue.
func NamedParam(v map[string]float64) ParamValue {
	return ParamValue{kind: paramByName, byName: v}
}

// UnmarshalYAML decodes a scalar, sequence, or mapping node.
func (v *ParamValue) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var f float64
		if err := node.Decode(&f); err != nil {
			return fmt.Errorf("input model parameter must be numeric: %w", err)
		}
		*v = ScalarParam(f)
		return nil
	case yaml.SequenceNode:
		var list []float64
		if err := node.Decode(&list); err != nil {
			return fmt.Errorf("input model parameter list must be numeric: %w", err)
		}
		*v = ListParam(list)
		return nil
	case yaml.MappingNode:
		var byName map[string]float64
		if err := node.Decode(&byName); err != nil {
			return fmt.Errorf("input model parameter map must be name→number: %w", err)
		}
		*v = NamedParam(byName)
		return nil
	default:
		return fmt.Errorf("input model parameter must be a number, list, or name map")
	}
}

// Resolve returns the value for one asset. List values must match the asset
// count exactly; name maps must contain every asset name.
func (v ParamValue) Resolve(assetIndex int, assetName string, numAssets int) (float64, error) {
	switch v.kind {
	case paramScalar:
		return v.scalar, nil
	case paramList:
		if len(v.list) != numAssets {
			return 0, fmt.Errorf("input model list parameter has %d entries, want %d (one per asset)", len(v.list), numAssets)
		}
		return v.list[assetIndex], nil
	case paramByName:
		value, ok := v.byName[assetName]
		if !ok {
			return 0, fmt.Errorf("input model parameter map missing entry for asset %q", assetName)
		}
		return value, nil
	default:
		return 0, fmt.Errorf("input model parameter is unset")
	}
}
