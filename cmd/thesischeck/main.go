package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:           "thesischeck",
		Short:         "Check the structure of a thesis document",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(checkCmd())
	root.AddCommand(rulesCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
