package main

import (
	"os"

	"github.com/joho/godotenv"
)

func main() {
	// Load .env if present. Variables already set in the environment win.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
