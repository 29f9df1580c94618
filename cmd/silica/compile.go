package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"silica/internal/ast"
	"silica/internal/buildpipeline"
	"silica/internal/compiler"
	"silica/internal/design"
	"silica/internal/rif"
	"silica/internal/source"
)

var (
	compileOut     string
	compileRounds  int
	compileJobs    int
	compileNoOpt   bool
	compileDump    bool
	compileTimings bool
	compileCheck   bool
	compileUI      string
)

func init() {
	compileCmd.Flags().StringVarP(&compileOut, "out", "o", "", "artifact output path (default target/<design>.slm)")
	compileCmd.Flags().IntVar(&compileRounds, "rounds", 0, "optimization rounds (0 = default)")
	compileCmd.Flags().IntVar(&compileJobs, "jobs", 0, "concurrent kernel compiles during elaboration")
	compileCmd.Flags().BoolVar(&compileNoOpt, "no-opt", false, "skip the rewrite pipeline")
	compileCmd.Flags().BoolVar(&compileDump, "dump", false, "print the compiled module")
	compileCmd.Flags().BoolVar(&compileTimings, "timings", false, "report per-stage timings")
	compileCmd.Flags().BoolVar(&compileCheck, "check", false, "compile and verify without writing an artifact")
	compileCmd.Flags().StringVar(&compileUI, "ui", "auto", "progress interface (auto|on|off)")
}

var compileCmd = &cobra.Command{
	Use:   "compile [design]",
	Short: "Compile a design into a verified module artifact",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCompileCmd,
}

func runCompileCmd(cmd *cobra.Command, args []string) error {
	manifest, haveManifest, err := loadProjectManifest(".")
	if err != nil {
		return err
	}

	name := ""
	if len(args) == 1 {
		name = args[0]
	} else if haveManifest {
		name = strings.TrimSpace(manifest.Config.Build.Design)
	}
	if name == "" {
		return errors.New("no design named; pass one or set [build].design in silica.toml")
	}
	d, ok := design.Lookup(name)
	if !ok {
		return fmt.Errorf("unknown design %q; run 'silica designs' for the list", name)
	}

	opts := compiler.Options{
		Rounds:     compileRounds,
		Jobs:       compileJobs,
		NoOptimize: compileNoOpt,
	}
	if haveManifest {
		if !cmd.Flags().Changed("rounds") {
			opts.Rounds = manifest.Config.Build.Rounds
		}
		if !cmd.Flags().Changed("jobs") {
			opts.Jobs = manifest.Config.Build.Jobs
		}
	}
	var timer *buildpipeline.Timer
	if compileTimings {
		timer = buildpipeline.NewTimer()
		opts.Timer = timer
	}

	uiValue := compileUI
	if haveManifest && !cmd.Flags().Changed("ui") && manifest.Config.UI.Progress != "" {
		uiValue = manifest.Config.UI.Progress
	}
	mode, err := readUIMode(uiValue)
	if err != nil {
		return err
	}

	fs := source.NewFileSet()
	top := d.Build(ast.NewBuilder())
	var mod *rif.Module
	if shouldUseTUI(mode) {
		mod, err = runCompileWithUI(name, fs, top, opts)
	} else {
		mod, err = compiler.CompileDesign(fs, top, opts)
	}
	if err != nil {
		return renderFailure(cmd, fs, err)
	}

	quiet, _ := cmd.Flags().GetBool("quiet")
	out := cmd.OutOrStdout()

	if compileDump {
		if err := rif.DumpModule(out, mod); err != nil {
			return err
		}
	}
	if compileTimings {
		fmt.Fprint(out, timer.Summary())
	}

	if compileCheck {
		if !quiet {
			fmt.Fprintf(out, "%s: ok (%d objects)\n", name, len(mod.Objects))
		}
		return nil
	}

	path := compileOut
	if path == "" && haveManifest {
		path = strings.TrimSpace(manifest.Config.Build.Out)
	}
	if path == "" {
		path = filepath.Join("target", name+".slm")
	}
	if err := compiler.SaveModule(path, mod); err != nil {
		return fmt.Errorf("write artifact: %w", err)
	}
	if !quiet {
		fmt.Fprintf(out, "wrote %s (%d objects)\n", path, len(mod.Objects))
	}
	return nil
}

// renderFailure pretty-prints a pipeline failure and leaves other errors to
// cobra.
func renderFailure(cmd *cobra.Command, fs *source.FileSet, err error) error {
	d, ok := compiler.Diagnose(err)
	if !ok {
		return err
	}
	maxDiags, _ := cmd.Flags().GetInt("max-diagnostics")
	if maxDiags <= 0 {
		maxDiags = 1
	}
	bag := newBag(maxDiags, d)
	bag.Sort()
	renderBag(cmd, fs, bag)
	return fmt.Errorf("compile failed")
}
