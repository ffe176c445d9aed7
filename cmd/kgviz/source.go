package main

import (
	"os"

	"github.com/matsen/kgviz/internal/loader"
)

// stdinArg selects standard input as the data source.
const stdinArg = "-"

// sourceFromArg turns a positional argument into a data source.
func sourceFromArg(arg string) loader.Source {
	if arg == stdinArg {
		return loader.Stream("stdin", os.Stdin)
	}
	return loader.File(arg)
}
