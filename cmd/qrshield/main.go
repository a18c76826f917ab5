package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/doeshing/qrshield/internal/infrastructure/cli"
)

func main() {
	ctx := context.Background()
	root := cli.NewRootCmd(ctx, cli.Options{Verbose: isVerbose()})

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func isVerbose() bool {
	value := os.Getenv("QRSHIELD_DEBUG")
	return value == "1" || strings.EqualFold(value, "true")
}
