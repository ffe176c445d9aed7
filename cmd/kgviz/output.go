package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/matsen/kgviz/internal/loader"
	"github.com/matsen/kgviz/internal/pipeline"
)

// Default limits for listing commands.
const (
	DefaultTopLimit     = 10
	DefaultInspectLimit = 10
)

// errConfig marks errors caused by configuration rather than data.
var errConfig = errors.New("configuration error")

func configErr(err error) error {
	return fmt.Errorf("%w: %w", errConfig, err)
}

// exitCodeFor maps an error to the documented exit code.
func exitCodeFor(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, errConfig):
		return ExitConfigError
	case errors.Is(err, loader.ErrSourceUnavailable),
		errors.Is(err, loader.ErrMalformedJSON),
		errors.Is(err, loader.ErrSchemaMismatch),
		errors.Is(err, pipeline.ErrValidation),
		errors.Is(err, pipeline.ErrEmptyResult),
		errors.Is(err, errNodeNotFound):
		return ExitDataError
	default:
		return ExitError
	}
}

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v any) error {
	return writeJSON(os.Stdout, v)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputHuman writes a human-readable string to stdout.
func outputHuman(format string, args ...any) {
	fmt.Printf(format, args...)
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		outputJSON(ErrorResponse{Error: msg, Code: code})
	}
	os.Exit(code)
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}
