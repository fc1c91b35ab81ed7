package common

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
)

var ErrCanceled = errors.New("canceled")

// Interrupt blocks until the process gets SIGINT or SIGTERM, or `cancel` is
// closed.
func Interrupt(cancel <-chan struct{}) error {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(c)

	select {
	case sig := <-c:
		return errors.Errorf("received signal %s", sig)
	case <-cancel:
		return ErrCanceled
	}
}
