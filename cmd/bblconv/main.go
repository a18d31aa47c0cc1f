// Command bblconv converts the SLF logs of a directory into Betaflight
// blackbox logs.
//
// Usage:
//
//	bblconv [--dir DIR] [--out DIR] [--config FILE] [FILE...]
//	bblconv inspect FILE...
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/arloliu/bblconv/errs"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newApp(os.Stdout, os.Stderr).RunContext(ctx, os.Args)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		if errors.Is(err, errs.ErrInvalidConfig) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
