package main

import (
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"silica/internal/ast"
	"silica/internal/buildpipeline"
	"silica/internal/compiler"
	"silica/internal/rif"
	"silica/internal/source"
	"silica/internal/ui"
)

type compileOutcome struct {
	mod *rif.Module
	err error
}

// runCompileWithUI drives CompileDesign behind the progress TUI. The build
// runs in a goroutine feeding stage events into the model; the model quits
// when the event channel closes.
func runCompileWithUI(title string, fs *source.FileSet, top *ast.Kernel, opts compiler.Options) (*rif.Module, error) {
	events := make(chan buildpipeline.Event, 256)
	outcomeCh := make(chan compileOutcome, 1)

	go func() {
		o := opts
		o.Sink = buildpipeline.ChannelSink{Ch: events}
		mod, err := compiler.CompileDesign(fs, top, o)
		outcomeCh <- compileOutcome{mod: mod, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, []string{top.Name}, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.mod, uiErr
	}
	return outcome.mod, outcome.err
}
