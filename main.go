package main

import (
	"context"
	"os"

	"github.com/hendrywilliam/discord-feed/src/cmd"
)

func main() {
	if err := cmd.NewRootCommand().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
