package main

import (
	"fmt"
	"os"

	"github.com/dshills/logicflow/pkg/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
