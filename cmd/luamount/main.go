package main

import (
	"context"
	"os"

	"github.com/robbyt/go-luamount/internal/cli"
)

// version is set with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := cli.Execute(context.Background(), version); err != nil {
		os.Exit(1)
	}
}
