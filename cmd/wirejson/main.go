// Package main provides the wirejson code generator CLI.
package main

import (
	"fmt"
	"os"

	"github.com/reoring/wirejson/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "wirejson:", err)
		os.Exit(1)
	}
}
