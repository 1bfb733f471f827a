// Package main is the entry point for the htauto command-line tool.
package main

import (
	"os"

	"github.com/Norgate-AV/htauto/cmd"
)

func main() {
	if err := cmd.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
