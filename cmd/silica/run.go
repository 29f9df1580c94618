package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"silica/internal/ast"
	"silica/internal/compiler"
	"silica/internal/design"
	"silica/internal/rif"
	"silica/internal/source"
	"silica/internal/types"
	"silica/internal/vm"
)

var runArgs []string

func init() {
	runCmd.Flags().StringSliceVar(&runArgs, "args", nil, "argument values, one per kernel parameter")
}

var runCmd = &cobra.Command{
	Use:   "run <design|artifact>",
	Short: "Evaluate a design or a compiled artifact",
	Long: `Run compiles a built-in design (or loads a module artifact) and evaluates
its top kernel against the given argument values. Each value fills the
parameter's bits verbatim, least significant bit first.`,
	Args: cobra.ExactArgs(1),
	RunE: runRunCmd,
}

func runRunCmd(cmd *cobra.Command, args []string) error {
	mod, err := resolveRunTarget(cmd, args[0])
	if err != nil {
		return err
	}
	top := mod.TopObject()
	if top == nil {
		return fmt.Errorf("%s has no top object", args[0])
	}
	if len(runArgs) != len(top.Arguments) {
		return fmt.Errorf("%s takes %d arguments, got %d", top.Name, len(top.Arguments), len(runArgs))
	}

	values := make([]types.TypedBits, len(runArgs))
	for i, raw := range runArgs {
		kind := top.Kinds[top.Arguments[i]]
		v, err := parseArgument(raw, kind)
		if err != nil {
			return fmt.Errorf("argument %d: %w", i, err)
		}
		values[i] = v
	}

	result, err := vm.RunModule(mod, values)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), result)
	return nil
}

func resolveRunTarget(cmd *cobra.Command, target string) (*rif.Module, error) {
	if d, ok := design.Lookup(target); ok {
		fs := source.NewFileSet()
		mod, err := compiler.CompileDesign(fs, d.Build(ast.NewBuilder()), compiler.Options{})
		if err != nil {
			return nil, renderFailure(cmd, fs, err)
		}
		return mod, nil
	}
	mod, err := compiler.LoadModule(target)
	if err != nil {
		return nil, fmt.Errorf("%s is neither a built-in design nor a readable artifact: %w", target, err)
	}
	return mod, nil
}

// parseArgument fills a value of the parameter's kind from a number's raw
// bits. This reaches composite parameters too: a struct or enum argument is
// given as the packed bit pattern.
func parseArgument(raw string, kind types.Kind) (types.TypedBits, error) {
	v, err := strconv.ParseUint(raw, 0, 64)
	if err != nil {
		return types.TypedBits{}, fmt.Errorf("%q is not a number: %w", raw, err)
	}
	out := types.Zero(kind)
	width := len(out.Bits)
	if width < 64 && v>>width != 0 {
		return types.TypedBits{}, fmt.Errorf("%q does not fit %s", raw, kind)
	}
	for i := 0; i < width && i < 64; i++ {
		out.Bits[i] = v&(1<<i) != 0
	}
	return out, nil
}
