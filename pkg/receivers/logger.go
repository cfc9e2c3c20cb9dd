package receivers

import (
	"context"
	"fmt"
	"log"

	chain "github.com/dogecoinfoundation/forkchain/pkg"
	"github.com/dogecoinfoundation/forkchain/pkg/conductor"
	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

type MessageLogger struct {
	// MessageLogger receives chain.Message via Rec
	Rec chan chain.Message
	// and logs them via Log
	Log *log.Logger
}

// Implements chain.MessageSubscriber
func (l MessageLogger) GetChan() chan chain.Message {
	return l.Rec
}

// Implements conductor.Service
func (l MessageLogger) Run(started, stopped chan bool, stop chan context.Context) error {
	go func() {
		started <- true
		for {
			select {
			// handle stopping the service
			case <-stop:
				stopped <- true
				return
			case msg, ok := <-l.Rec:
				if !ok {
					// unregistered by the bus, wait for shutdown
					<-stop
					stopped <- true
					return
				}
				l.Log.Printf("%s:%s (%s): %s\n",
					msg.EventType.Type(),
					msg.EventType,
					msg.ID,
					msg.Message)
			}
		}
	}()
	return nil
}

func NewMessageLogger(path string) MessageLogger {
	// create a MessageLogger
	l := MessageLogger{
		make(chan chain.Message, 1000),
		log.New(&lumberjack.Logger{
			Filename: path,
			Compress: true,
		}, "", log.Ltime|log.Lmicroseconds),
	}
	return l
}

// Reads config and sets up any configured loggers
func SetupLoggers(cond *conductor.Conductor, bus chain.MessageBus, conf chain.Config, log zerolog.Logger) {
	for name, c := range conf.Loggers {
		l := NewMessageLogger(c.Path)
		cond.Service(fmt.Sprintf("Logger %s", c.Path), l)
		bus.Register(l, eventTypes(log, name, c.Types)...)
	}
}
