package main

import (
	"os"

	"github.com/nicholasbl/amrex/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
