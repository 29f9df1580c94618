package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"silica/internal/compiler"
	"silica/internal/rif"
)

var (
	showFunc   string
	showSource bool
)

func init() {
	showCmd.Flags().StringVar(&showFunc, "func", "", "show only the named kernel")
	showCmd.Flags().BoolVar(&showSource, "source", false, "print rendered kernel sources instead of ops")
}

var showCmd = &cobra.Command{
	Use:   "show <artifact>",
	Short: "Inspect a compiled module artifact",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mod, err := compiler.LoadModule(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		if showFunc != "" {
			for _, fn := range mod.SortedFuncs() {
				obj := mod.Objects[fn]
				if obj.Name != showFunc {
					continue
				}
				if showSource {
					fmt.Fprint(out, obj.Symbols.Source)
					return nil
				}
				return rif.DumpObject(out, obj)
			}
			return fmt.Errorf("%s holds no kernel named %q", args[0], showFunc)
		}

		if showSource {
			for _, fn := range mod.SortedFuncs() {
				fmt.Fprint(out, mod.Objects[fn].Symbols.Source)
				fmt.Fprintln(out)
			}
			return nil
		}
		return rif.DumpModule(out, mod)
	},
}
