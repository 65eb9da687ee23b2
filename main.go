package main

import (
	"os"

	"github.com/arnavsurve/storyscript/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
