package commands

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/wonny/investsim/backend/internal/margin"
	"github.com/wonny/investsim/backend/internal/risk"
)

// marginCmd represents the margin command
var marginCmd = &cobra.Command{
	Use:   "margin",
	Short: "옵션 증거금 시뮬레이션",
	Long: `옵션 포지션의 증거금/청산 리스크를 시뮬레이션합니다.

Example:
  go run ./cmd/invest margin run --config margin.yaml --paths 1000 --days 30
  go run ./cmd/invest margin run --config margin.yaml --single --days 30`,
}

var (
	marginRunCmd = &cobra.Command{
		Use:   "run",
		Short: "증거금 시뮬레이션 실행",
		RunE:  runMargin,
	}

	// Flags
	marginConfigFile string
	marginPaths      int
	marginDays       int
	marginSingle     bool
	marginOutput     string
)

func init() {
	rootCmd.AddCommand(marginCmd)
	marginCmd.AddCommand(marginRunCmd)

	// Flags
	marginRunCmd.Flags().StringVar(&marginConfigFile, "config", "", "증거금 설정 파일 (YAML, 필수)")
	marginRunCmd.Flags().IntVar(&marginPaths, "paths", 1000, "Monte Carlo 경로 수")
	marginRunCmd.Flags().IntVar(&marginDays, "days", 30, "시뮬레이션 일수")
	marginRunCmd.Flags().BoolVar(&marginSingle, "single", false, "단일 경로 실행")
	marginRunCmd.Flags().StringVar(&marginOutput, "output", "", "결과 JSON 출력 경로")

	marginRunCmd.MarkFlagRequired("config")
}

func runMargin(cmd *cobra.Command, args []string) error {
	envCfg, log, err := initLogger()
	if err != nil {
		return fmt.Errorf("load env config: %w", err)
	}

	cfg, err := margin.LoadConfig(marginConfigFile)
	if err != nil {
		return fmt.Errorf("load margin config: %w", err)
	}
	if cfg.Seed == 0 {
		cfg.Seed = effectiveSeed(envCfg)
	}

	printHeader("Option Margin Simulation")
	fmt.Printf("  Position  : %s %s @ %.2f\n", cfg.PositionSide, cfg.OptionType, cfg.Strike)
	fmt.Printf("  Spot      : %.2f (vol %.1f%%)\n", cfg.Spot0, cfg.ImpliedVol*100)
	fmt.Printf("  Maturity  : %d days\n", cfg.DaysToMaturity)
	fmt.Printf("  Equity    : %s\n", formatMoney(cfg.ReferenceEquity))
	printSeparator()

	sim, err := margin.NewSimulator(cfg, log)
	if err != nil {
		return fmt.Errorf("init simulator: %w", err)
	}

	if marginSingle {
		path, err := sim.RunSinglePath(marginDays)
		if err != nil {
			return fmt.Errorf("simulation failed: %w", err)
		}
		printMarginPath(path)
		if marginOutput != "" {
			return writeJSON(marginOutput, path)
		}
		return nil
	}

	result, err := sim.RunMonteCarlo(marginPaths, marginDays)
	if err != nil {
		return fmt.Errorf("simulation failed: %w", err)
	}
	printMarginResult(result)

	if marginOutput != "" {
		return writeJSON(marginOutput, result)
	}
	return nil
}

func printMarginPath(path *margin.PathResult) {
	last := len(path.Equity) - 1

	fmt.Println("\n✅ Single Path Completed")
	fmt.Println()
	fmt.Printf("  Final Spot    : %.2f\n", path.Spot[last])
	fmt.Printf("  Final Equity  : %s\n", formatMoney(path.Equity[last]))
	fmt.Printf("  Final Margin  : %s\n", formatMoney(path.Margin[last]))
	if path.LiquidationDay >= 0 {
		fmt.Printf("  ❌ Liquidated on day %d\n", path.LiquidationDay)
	} else {
		fmt.Println("  ✅ No liquidation")
	}
	fmt.Println()
}

func printMarginResult(result *margin.MonteCarloResult) {
	fmt.Println("\n✅ Monte Carlo Completed")
	fmt.Printf("Run ID: %s\n\n", result.RunID)

	finals := make([]float64, len(result.Equity))
	for j, eq := range result.Equity {
		finals[j] = eq[len(eq)-1]
	}
	sort.Float64s(finals)

	fmt.Println("📊 Final Equity Distribution")
	for _, p := range []float64{5, 25, 50, 75, 95} {
		fmt.Printf("  p%02.0f : %s\n", p, formatMoney(risk.Percentile(finals, p)))
	}
	fmt.Println()

	prob := result.LiquidationProbability()
	fmt.Printf("📉 Liquidation Probability : %.2f%%", prob*100)
	if prob > 0.20 {
		fmt.Print(" ❌ (High)")
	} else if prob > 0.05 {
		fmt.Print(" ⚠️  (Moderate)")
	} else {
		fmt.Print(" ✅ (Low)")
	}
	fmt.Println()
	fmt.Println()
}
