package main

import (
	"os"

	"github.com/wonny/investsim/backend/cmd/invest/commands"
)

// main is the entry point for the investsim CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/invest [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
