package main

import (
	"os"

	"github.com/spf13/cobra"

	"silica/internal/diag"
	"silica/internal/diagfmt"
	"silica/internal/source"
)

func newBag(max int, items ...diag.Diagnostic) *diag.Bag {
	bag := diag.NewBag(max)
	for _, d := range items {
		bag.Add(d)
	}
	return bag
}

func renderBag(cmd *cobra.Command, fs *source.FileSet, bag *diag.Bag) {
	diagfmt.Pretty(cmd.ErrOrStderr(), bag, fs, diagfmt.PrettyOpts{
		Color:     colorEnabled(cmd, os.Stderr),
		ShowNotes: true,
	})
}
