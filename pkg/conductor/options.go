package conductor

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
)

// Sets the time allowed for a service to start before timing out
func StartupTimeout(d time.Duration) func(*Conductor) {
	return func(c *Conductor) {
		c.startTimeout = d
	}
}

// Sets the time allowed for a service to stop before timing out
func ShutdownTimeout(d time.Duration) func(*Conductor) {
	return func(c *Conductor) {
		c.stopTimeout = d
	}
}

// tells the Conductor to log lifecycle events at info level
func Noisy() func(*Conductor) {
	return func(c *Conductor) {
		c.noisy = true
	}
}

func Logger(log zerolog.Logger) func(*Conductor) {
	return func(c *Conductor) {
		c.log = log
	}
}

// This hooks SIGTERM and SIGINT and will shut down the Conductor
// if one is detected.
func HookSignals() func(*Conductor) {
	return func(c *Conductor) {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
		go func() {
			for {
				select {
				case sig := <-sigCh: // sigterm/sigint caught
					c.log.Warn().Str("signal", sig.String()).Msg("Conductor: caught signal, shutting down")
					go c.Stop()
				case <-c.shutdown: // service is closing down..
					signal.Stop(sigCh)
					return
				}
			}
		}()
	}
}
