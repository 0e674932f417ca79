package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/investsim/backend/internal/forward"
	"github.com/wonny/investsim/backend/internal/simconfig"
)

// forwardCmd represents the forward command
var forwardCmd = &cobra.Command{
	Use:   "forward",
	Short: "미래 자산 경로 Monte Carlo 시뮬레이션",
	Long: `설정된 자산 가정으로 미래 포트폴리오 가치를 시뮬레이션합니다.

Example:
  go run ./cmd/invest forward run --config sim.yaml
  go run ./cmd/invest forward run --config sim.yaml --input-model model.yaml --seed 42`,
}

var (
	forwardRunCmd = &cobra.Command{
		Use:   "run",
		Short: "시뮬레이션 실행",
		RunE:  runForward,
	}

	// Flags
	forwardConfigFile string
	forwardModelFile  string
	forwardVarLevel   float64
	forwardOutput     string
)

func init() {
	rootCmd.AddCommand(forwardCmd)
	forwardCmd.AddCommand(forwardRunCmd)

	// Flags
	forwardRunCmd.Flags().StringVar(&forwardConfigFile, "config", "", "시뮬레이션 설정 파일 (YAML, 필수)")
	forwardRunCmd.Flags().StringVar(&forwardModelFile, "input-model", "", "수익률 분포 오버라이드 파일 (YAML)")
	forwardRunCmd.Flags().Float64Var(&forwardVarLevel, "var-level", 0.05, "VaR 좌측 꼬리 확률 (0.05 = VaR95)")
	forwardRunCmd.Flags().StringVar(&forwardOutput, "output", "", "결과 JSON 출력 경로")

	forwardRunCmd.MarkFlagRequired("config")
}

func runForward(cmd *cobra.Command, args []string) error {
	envCfg, log, err := initLogger()
	if err != nil {
		return fmt.Errorf("load env config: %w", err)
	}

	simCfg, err := simconfig.LoadSimulation(forwardConfigFile)
	if err != nil {
		return fmt.Errorf("load simulation config: %w", err)
	}

	var model *simconfig.InputModel
	if forwardModelFile != "" {
		model, err = simconfig.LoadInputModel(forwardModelFile)
		if err != nil {
			return fmt.Errorf("load input model: %w", err)
		}
	}

	printHeader("Forward Monte Carlo Simulation")
	fmt.Printf("  Horizon   : %d years (%d periods)\n", simCfg.Years, simCfg.Years*forward.PeriodsPerYear)
	fmt.Printf("  Trials    : %d\n", simCfg.NumTrials)
	fmt.Printf("  Assets    : %d\n", len(simCfg.Assets))
	fmt.Printf("  Strategy  : %s\n", simCfg.Strategy.Name)
	fmt.Printf("  Initial   : %s\n", formatMoney(simCfg.InitialBalance))
	printSeparator()

	sim, err := forward.New(simCfg, effectiveSeed(envCfg), model, log)
	if err != nil {
		return fmt.Errorf("init simulator: %w", err)
	}

	result, err := sim.Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("simulation failed: %w", err)
	}

	printForwardResult(result, forwardVarLevel)

	if forwardOutput != "" {
		return writeJSON(forwardOutput, result)
	}
	return nil
}

func printForwardResult(result *forward.Result, varLevel float64) {
	probs := []float64{0.05, 0.25, 0.50, 0.75, 0.95}
	table := result.Quantiles(probs)
	last := len(table.Years) - 1

	fmt.Println("\n✅ Simulation Completed")
	fmt.Printf("Run ID: %s\n\n", result.RunID)

	fmt.Println("📊 Final Value Distribution")
	for p, prob := range table.Probs {
		fmt.Printf("  p%02.0f : %s\n", prob*100, formatMoney(table.Values[p][last]))
	}
	fmt.Println()

	// Median trajectory at whole-year marks
	fmt.Println("📈 Median Trajectory")
	medianIdx := 2 // probs[2] == 0.50
	for step, year := range table.Years {
		if step%forward.PeriodsPerYear != 0 {
			continue
		}
		fmt.Printf("  year %2.0f : %s\n", year, formatMoney(table.Values[medianIdx][step]))
	}
	fmt.Println()

	metrics, err := result.RiskMetrics(varLevel)
	if err != nil {
		fmt.Printf("⚠️  Risk metrics unavailable: %v\n", err)
		return
	}
	fmt.Println("📉 Risk Metrics")
	fmt.Printf("  VaR%.0f          : %s\n", (1-varLevel)*100, formatMoney(metrics.ValueAtRisk))
	fmt.Printf("  CVaR%.0f         : %s\n", (1-varLevel)*100, formatMoney(metrics.ConditionalValueAtRisk))
	fmt.Printf("  Median Max DD  : %.2f%%\n", metrics.MaxDrawdown*100)
	fmt.Println()
}
