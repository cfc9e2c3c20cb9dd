package conductor

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	startupTimeout  time.Duration = time.Duration(5 * time.Second)
	shutdownTimeout time.Duration = time.Duration(5 * time.Second)
)

// A Service signals started once it is running, watches stop for a
// context carrying the shutdown deadline, then signals stopped.
type Service interface {
	Run(started chan bool, stopped chan bool, stop chan context.Context) error
}

type serviceState struct {
	name     string
	service  Service
	ready    chan bool
	stopped  chan bool
	shutdown chan context.Context
	running  bool
}

type Conductor struct {
	lock         sync.Mutex
	started      bool          // Have we been started yet?
	noisy        bool          // log lifecycle at info rather than debug
	startTimeout time.Duration // How long should we wait for each service to start before we die?
	stopTimeout  time.Duration // How long should we wait for each service to stop before we kill it?
	shutdown     chan bool     // channel to block on, indicates everything has stopped, returned from Start()
	stopOnce     sync.Once
	services     []*serviceState
	log          zerolog.Logger
}

/* Create a new conductor instance, accepts Option funcs for changing
default behaviours */
func NewConductor(opts ...func(*Conductor)) *Conductor {
	c := Conductor{
		started:      false,
		noisy:        false,
		startTimeout: startupTimeout,
		stopTimeout:  shutdownTimeout,
		shutdown:     make(chan bool),
		services:     []*serviceState{},
		log:          zerolog.Nop(),
	}

	for _, optFn := range opts {
		optFn(&c)
	}
	return &c
}

/* Add a Service with a name to be started in order when Start is called */
func (c *Conductor) Service(name string, service Service) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.started {
		panic("Cannot call Conductor.Service after Conductor.Start")
	}
	c.services = append(c.services,
		&serviceState{name: name, service: service, ready: make(chan bool, 1), stopped: make(chan bool, 1), shutdown: make(chan context.Context, 1)})
}

/* Start the conductor, each service is started in turn. The returned
channel is closed once everything has stopped. */
func (c *Conductor) Start() chan bool {
	c.lock.Lock()
	c.started = true
	services := c.services
	c.lock.Unlock()

	// start each Service one at a time, this gives us service dependency order.
	for _, srv := range services {
		c.event().Str("service", srv.name).Msg("Conductor: starting")
		err := srv.service.Run(srv.ready, srv.stopped, srv.shutdown)
		if err != nil {
			// Service has failed to start with an error, shutdown everything
			c.log.Error().Str("service", srv.name).Err(err).Msg("Conductor: service failed to start")
			c.Stop()
			break
		}
		timeout := time.After(c.startTimeout)
		select {
		case <-timeout:
			// Service has timed out, shutdown everything
			c.log.Error().Str("service", srv.name).Msg("Conductor: timed-out during startup")
			c.markRunning(srv)
			c.Stop()
			return c.shutdown
		case <-srv.ready:
			c.markRunning(srv)
			c.event().Str("service", srv.name).Msg("Conductor: started")
		}
	}
	return c.shutdown
}

func (c *Conductor) markRunning(srv *serviceState) {
	c.lock.Lock()
	srv.running = true
	c.lock.Unlock()
}

// Stop shuts down every running service, newest first, and closes the
// channel returned by Start. Safe to call more than once.
func (c *Conductor) Stop() {
	c.stopOnce.Do(c.stop)
}

func (c *Conductor) stop() {
	// every service shares one deadline
	ctx, cancel := context.WithTimeout(context.Background(), c.stopTimeout)
	defer cancel()

	c.lock.Lock()
	running := []*serviceState{}
	for i := len(c.services) - 1; i >= 0; i-- {
		if c.services[i].running {
			running = append(running, c.services[i])
		}
	}
	c.lock.Unlock()

	// stop in reverse start order, so nothing outlives what it depends on
	for _, state := range running {
		c.event().Str("service", state.name).Msg("Conductor: requesting shutdown")
		state.shutdown <- ctx
		select {
		case <-state.stopped:
			c.event().Str("service", state.name).Msg("Conductor: shutdown complete")
		case <-ctx.Done():
			c.log.Warn().Str("service", state.name).Msg("Conductor: timeout exceeded waiting for service to stop")
		}
	}

	c.event().Msg("Conductor: all services stopped, goodbye!")
	close(c.shutdown)
}

func (c *Conductor) event() *zerolog.Event {
	if c.noisy {
		return c.log.Info()
	}
	return c.log.Debug()
}
