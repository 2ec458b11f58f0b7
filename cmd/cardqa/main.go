package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/ntoledo319/HELLDECK/internal/infrastructure/cli"
)

func main() {
	err := cli.Execute()
	if err == nil {
		return
	}

	var cliErr *cli.CLIError
	if errors.As(err, &cliErr) {
		fmt.Fprintf(os.Stderr, "Error: %s\n", cliErr.Error())
		if cliErr.Hint != "" {
			fmt.Fprintf(os.Stderr, "Hint: %s\n", cliErr.Hint)
		}
		os.Exit(cliErr.ExitCode)
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
