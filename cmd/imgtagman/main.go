// imgtagman tags images with descriptive keywords suggested by a vision model
// and stores them as user tags in each file's metadata.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"k8s.io/klog/v2"
)

const (
	exitFailures    = 1
	exitInterrupted = 130
)

func main() {
	klog.InitFlags(nil)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCommand().ExecuteContext(ctx)
	code := exitCode(ctx, err)
	stop()

	if code < 0 {
		klog.Exitf("imgtagman: %v", err)
	}
	klog.Flush()
	os.Exit(code)
}

// exitCode maps the result of a run to a process exit status. An interrupt
// wins over per-file failures, since files cut short by it are reported as
// failed. A negative code means err is fatal.
func exitCode(ctx context.Context, err error) int {
	switch {
	case ctx.Err() != nil || errors.Is(err, context.Canceled):
		return exitInterrupted
	case err == nil:
		return 0
	case errors.Is(err, errFailures):
		return exitFailures
	default:
		return -1
	}
}
