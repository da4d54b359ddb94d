// Command autoplay plays a game against a running oche service.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/oche/internal/autoplay"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := autoplay.NewCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "autoplay:", err)
		stop()
		os.Exit(1)
	}
}
