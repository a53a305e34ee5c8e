// Package main provides the entry point for the interview engine server and tools.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "interview_agent",
	Short: "Adaptive interview assessment server",
	Long:  "Interview engine that runs adaptive technical interviews: a Thompson-sampling bandit picks question arms, an LLM judge grades answers, and finished sessions aggregate into hiring reports.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
