package cmdutil

import (
	"os"
	"os/signal"
	"syscall"
)

// InterruptChan returns a channel that is closed once SIGINT or SIGTERM is received.
// Every receiver observes the close, so several services may wait on the same channel.
func InterruptChan() <-chan struct{} {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	interruptChan := make(chan struct{})
	go func() {
		<-sigChan
		signal.Stop(sigChan)
		close(interruptChan)
	}()

	return interruptChan
}
