// Command rally scores volleyball matches from rally notation.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/roach88/rally/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd := cli.NewRootCommand()
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "rally:", err)
		stop()
		os.Exit(cli.GetExitCode(err))
	}
}
