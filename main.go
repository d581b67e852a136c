package main

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/jon4hz/oktasim/cmd"
)

func main() {
	if err := fang.Execute(
		context.Background(),
		cmd.Root(),
		fang.WithoutCompletions(),
		fang.WithoutManpage(),
	); err != nil {
		os.Exit(1)
	}
}
