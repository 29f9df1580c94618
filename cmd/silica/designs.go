package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"silica/internal/design"
)

var designsCmd = &cobra.Command{
	Use:   "designs",
	Short: "List the built-in designs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		nameStyle := color.New(color.FgCyan, color.Bold)
		if !colorEnabled(cmd, os.Stdout) {
			nameStyle.DisableColor()
		}
		out := cmd.OutOrStdout()
		for _, d := range design.All() {
			fmt.Fprintf(out, "%s %s\n", nameStyle.Sprintf("%-10s", d.Name), d.Summary)
		}
		return nil
	},
}
