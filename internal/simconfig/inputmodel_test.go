package simconfig

import (
	"errors"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestParamValueUnmarshal(t *testing.T) {
	var model InputModel
	src := `
dist_name: student_t
params:
  mean: 0.01
  vol: [0.02, 0.03]
  df:
    stocks: 4
    bonds: 10
`
	if err := yaml.Unmarshal([]byte(src), &model); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if err := model.Validate(); err != nil {
		t.Fatalf("validate failed: %v", err)
	}

	// scalar: 모든 자산에 동일 적용
	v, err := model.Params["mean"].Resolve(1, "bonds", 2)
	if err != nil || v != 0.01 {
		t.Errorf("scalar resolve: got %v, %v", v, err)
	}

	// list: 자산 위치로 조회
	v, err = model.Params["vol"].Resolve(1, "bonds", 2)
	if err != nil || v != 0.03 {
		t.Errorf("list resolve: got %v, %v", v, err)
	}

	// map: 자산 이름으로 조회
	v, err = model.Params["df"].Resolve(0, "stocks", 2)
	if err != nil || v != 4 {
		t.Errorf("map resolve: got %v, %v", v, err)
	}
}

func TestParamValueResolveErrors(t *testing.T) {
	list := ListParam([]float64{0.1, 0.2})
	if _, err := list.Resolve(0, "a", 3); err == nil {
		t.Error("expected error for list length mismatch")
	}

	named := NamedParam(map[string]float64{"stocks": 0.1})
	if _, err := named.Resolve(0, "bonds", 1); err == nil {
		t.Error("expected error for missing map key")
	}
}

func TestInputModelValidate(t *testing.T) {
	model := InputModel{DistName: "cauchy"}
	if err := model.Validate(); err == nil {
		t.Error("expected error for unsupported distribution")
	}

	// dist_name 생략 시 normal로 간주
	empty := InputModel{}
	if err := empty.Validate(); err != nil {
		t.Errorf("empty model should validate, got %v", err)
	}
}

func TestInputModelValidateBootstrapPool(t *testing.T) {
	// 샘플 풀 없는 bootstrap은 시뮬레이션 전에 거부
	model := InputModel{DistName: "empirical_bootstrap"}
	err := model.Validate()
	if err == nil {
		t.Fatal("expected error for bootstrap without historical returns")
	}
	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if verr.Field != "input_model.historical_returns" {
		t.Errorf("unexpected field %q", verr.Field)
	}

	model.HistoricalReturns = []float64{0.01, -0.02, 0.005}
	if err := model.Validate(); err != nil {
		t.Errorf("bootstrap with pool should validate, got %v", err)
	}
}
