package receivers

import (
	chain "github.com/dogecoinfoundation/forkchain/pkg"
	"github.com/dogecoinfoundation/forkchain/pkg/conductor"
	"github.com/rs/zerolog"
)

// Sets up standard receivers.
func SetUpReceivers(cond *conductor.Conductor, bus chain.MessageBus, conf chain.Config, log zerolog.Logger) {
	// Set up configured loggers
	SetupLoggers(cond, bus, conf, log)

	// Set up configured Callbacks
	SetupCallbacks(cond, bus, conf, log)

	// Set up MQTT publishing if a broker is configured
	SetupMQTT(cond, bus, conf, log)
}

// eventTypes maps configured type names onto bus EventTypes, warning about
// (and skipping) names it does not know.
func eventTypes(log zerolog.Logger, owner string, names []string) []chain.EventType {
	types := []chain.EventType{}
	for _, t := range names {
		match := false
		for _, x := range chain.EVENT_TYPES {
			if t == x.Type() {
				match = true
				types = append(types, x)
			}
		}
		if !match {
			log.Warn().Str("receiver", owner).Str("type", t).Msg("ignoring invalid message type")
		}
	}
	return types
}
