// mentoraid trains, audits and documents the student dropout models.
//
// Usage:
//
//	mentoraid tune   [--config=<path>] [--log-level=<level>]
//	mentoraid audit  [--model=<path>] [--features=<path>]
//	mentoraid report [--markdown=<path>]
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
