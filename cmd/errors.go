package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli"
)

// UsageError is returned when the command line cannot be interpreted.
type UsageError struct {
	Reason string
}

func (e *UsageError) Error() string {
	return "incorrect usage: " + e.Reason
}

// OnUsageError reports flag parsing failures as a UsageError.
func OnUsageError(ctx *cli.Context, err error, _ bool) error {
	return usageError(ctx, err.Error())
}

// Print the reason and the app help to the error stream and wrap the reason
// in a UsageError.
func usageError(ctx *cli.Context, reason string) error {
	var w io.Writer = os.Stderr
	if ctx.App != nil && ctx.App.ErrWriter != nil {
		w = ctx.App.ErrWriter
	}

	fmt.Fprintf(w, "incorrect usage: %s\n\n", reason)
	if ctx.App != nil {
		cli.HelpPrinter(w, cli.AppHelpTemplate, ctx.App)
	}
	return &UsageError{Reason: reason}
}
