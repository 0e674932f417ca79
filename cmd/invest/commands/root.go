package commands

import (
	"github.com/spf13/cobra"

	"github.com/wonny/investsim/backend/pkg/config"
	"github.com/wonny/investsim/backend/pkg/logger"
)

var (
	// Global flags
	seed    int64
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "invest",
	Short: "Investsim - 포트폴리오 시뮬레이션 툴킷",
	Long: `Investsim Unified CLI

Monte Carlo 기반 포트폴리오 시뮬레이션 툴킷.
미래 자산 경로 시뮬레이션, 과거 데이터 백테스트, 옵션 증거금 시뮬레이션.

Usage:
  go run ./cmd/invest [command]

Examples:
  go run ./cmd/invest forward run --config sim.yaml
  go run ./cmd/invest backtest run --config bt.yaml --prices prices.csv
  go run ./cmd/invest margin run --config margin.yaml --paths 1000`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().Int64Var(&seed, "seed", 0, "random seed (0 = time-based)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// initLogger loads the process env config and builds the shared logger.
func initLogger() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, logger.New(cfg), nil
}

// effectiveSeed resolves the --seed flag against the env default.
func effectiveSeed(cfg *config.Config) int64 {
	if seed != 0 {
		return seed
	}
	return cfg.DefaultSeed
}
