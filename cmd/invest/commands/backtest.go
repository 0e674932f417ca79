package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/investsim/backend/internal/backtest"
	"github.com/wonny/investsim/backend/internal/marketdata"
	"github.com/wonny/investsim/backend/internal/simconfig"
)

// backtestCmd represents the backtest command
var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "과거 가격 데이터 백테스트",
	Long: `과거 가격 데이터로 리밸런싱 전략을 재현합니다.

Example:
  go run ./cmd/invest backtest run --config bt.yaml --prices prices.csv
  go run ./cmd/invest backtest run --config bt.yaml --prices prices.csv --var 0.95`,
}

var (
	backtestRunCmd = &cobra.Command{
		Use:   "run",
		Short: "백테스트 실행",
		RunE:  runBacktest,
	}

	// Flags
	backtestConfigFile string
	backtestPricesFile string
	backtestDateColumn string
	backtestDateFormat string
	backtestVarConf    float64
	backtestOutput     string
)

func init() {
	rootCmd.AddCommand(backtestCmd)
	backtestCmd.AddCommand(backtestRunCmd)

	// Flags
	backtestRunCmd.Flags().StringVar(&backtestConfigFile, "config", "", "백테스트 설정 파일 (YAML, 필수)")
	backtestRunCmd.Flags().StringVar(&backtestPricesFile, "prices", "", "가격 데이터 CSV 파일 (필수)")
	backtestRunCmd.Flags().StringVar(&backtestDateColumn, "date-column", "date", "날짜 컬럼 이름")
	backtestRunCmd.Flags().StringVar(&backtestDateFormat, "date-format", "", "날짜 형식 (Go layout, 기본: 자동 감지)")
	backtestRunCmd.Flags().Float64Var(&backtestVarConf, "var", 0.95, "VaR 신뢰수준")
	backtestRunCmd.Flags().StringVar(&backtestOutput, "output", "", "결과 JSON 출력 경로")

	backtestRunCmd.MarkFlagRequired("config")
	backtestRunCmd.MarkFlagRequired("prices")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	envCfg, log, err := initLogger()
	if err != nil {
		return fmt.Errorf("load env config: %w", err)
	}

	btCfg, err := simconfig.LoadBacktest(backtestConfigFile)
	if err != nil {
		return fmt.Errorf("load backtest config: %w", err)
	}

	prices, err := marketdata.LoadCSV(backtestPricesFile, backtestDateColumn, backtestDateFormat)
	if err != nil {
		return fmt.Errorf("load prices: %w", err)
	}

	printHeader("Historical Backtest")
	dates := prices.Dates()
	fmt.Printf("  Period    : %s ~ %s (%d rows)\n",
		dates[0].Format("2006-01-02"),
		dates[len(dates)-1].Format("2006-01-02"),
		prices.NumRows())
	fmt.Printf("  Assets    : %d\n", len(btCfg.AssetWeights))
	fmt.Printf("  Strategy  : %s\n", btCfg.Strategy.Name)
	fmt.Printf("  Initial   : %s\n", formatMoney(btCfg.InitialBalance))
	printSeparator()

	bt, err := backtest.New(btCfg, log)
	if err != nil {
		return fmt.Errorf("init backtester: %w", err)
	}

	result, err := bt.Run(cmd.Context(), prices)
	if err != nil {
		return fmt.Errorf("backtest failed: %w", err)
	}

	printBacktestResult(result, envCfg.RiskFreeRate)

	if backtestOutput != "" {
		return writeJSON(backtestOutput, result)
	}
	return nil
}

func printBacktestResult(result *backtest.Result, riskFreeRate float64) {
	metrics := result.RiskMetrics(riskFreeRate)
	finalValue := result.PortfolioValues[len(result.PortfolioValues)-1]

	fmt.Println("\n✅ Backtest Completed")
	fmt.Println()

	fmt.Println("💰 Performance")
	fmt.Printf("  Final Value     : %s\n", formatMoney(finalValue))
	fmt.Printf("  Total Return    : %+.2f%%\n", metrics.TotalReturn*100)
	fmt.Printf("  Annual Return   : %+.2f%%\n", metrics.AnnualizedReturn*100)
	fmt.Printf("  Volatility      : %.2f%%\n", metrics.Volatility*100)
	fmt.Println()

	fmt.Println("📉 Risk Metrics")
	fmt.Printf("  Sharpe Ratio    : %.2f", metrics.SharpeRatio)
	if metrics.SharpeRatio > 2.0 {
		fmt.Print(" 🌟 (Excellent)")
	} else if metrics.SharpeRatio > 1.0 {
		fmt.Print(" ✅ (Good)")
	} else if metrics.SharpeRatio > 0.5 {
		fmt.Print(" ⚠️  (Fair)")
	} else {
		fmt.Print(" ❌ (Poor)")
	}
	fmt.Println()
	fmt.Printf("  Max Drawdown    : %.2f%%\n", metrics.MaxDrawdown*100)

	if varResult, err := result.ValueAtRisk(backtestVarConf); err == nil {
		fmt.Printf("  VaR%.0f (period)  : %.2f%%\n", backtestVarConf*100, varResult.VaR*100)
		fmt.Printf("  CVaR%.0f (period) : %.2f%%\n", backtestVarConf*100, varResult.CVaR*100)
	}
	fmt.Println()
}
