package main

import (
	"os"

	"github.com/DamiGo/StockAnalyzer/cmd/stockanalyzer/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
