package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/bankrec-dev/bankrec/internal/commands"
)

func main() {
	err := commands.NewComparerCommand().Execute()
	switch {
	case err == nil:
	case errors.Is(err, commands.ErrDifferencesFound):
		os.Exit(1)
	default:
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(2)
	}
}
