package receivers

import (
	"context"
	"encoding/json"

	chain "github.com/dogecoinfoundation/forkchain/pkg"
	"github.com/dogecoinfoundation/forkchain/pkg/conductor"
	"github.com/rs/zerolog"
	"github.com/yosssi/gmq/mqtt"
	"github.com/yosssi/gmq/mqtt/client"
)

func NewMQTTSender(config chain.MQTTConfig, log zerolog.Logger) MQTTSender {
	return MQTTSender{
		make(chan chain.Message, 1000),
		config,
		log.With().Str("component", "MQTTSender").Logger(),
	}
}

type MQTTSender struct {
	// incomming msgs
	Rec    chan chain.Message
	Config chain.MQTTConfig
	log    zerolog.Logger
}

// Implements chain.MessageSubscriber
func (s MQTTSender) GetChan() chan chain.Message {
	return s.Rec
}

// Implements conductor.Service
func (s MQTTSender) Run(started, stopped chan bool, stop chan context.Context) error {
	cli := client.New(&client.Options{
		// Define the processing of the error handler.
		ErrorHandler: func(err error) {
			s.log.Error().Err(err).Msg("mqtt client error")
		},
	})

	// connect to MQTT Bus
	err := cli.Connect(&client.ConnectOptions{
		Network:  "tcp",
		Address:  s.Config.Address,
		ClientID: []byte(s.Config.ClientID),
		UserName: []byte(s.Config.Username),
		Password: []byte(s.Config.Password),
	})
	if err != nil {
		return err
	}

	go func() {
		// Successfully started up
		started <- true
		defer cli.Terminate()

		for {
			select {
			// handle stopping the service
			case <-stop:
				cli.Disconnect()
				stopped <- true
				return
			case msg, ok := <-s.Rec:
				if !ok {
					<-stop
					stopped <- true
					return
				}
				s.publish(cli, msg)
			}
		}
	}()
	return nil
}

func (s MQTTSender) publish(cli *client.Client, msg chain.Message) {
	jsonMsg, err := json.Marshal(msg)
	if err != nil {
		s.log.Error().Err(err).Str("id", msg.ID).Msg("failed to marshal msg")
		return
	}
	for name, queue := range s.Config.Queues {
		if !queueWants(queue, msg.EventType) {
			continue
		}
		err = cli.Publish(&client.PublishOptions{
			QoS:       mqtt.QoS0,
			TopicName: []byte(queue.TopicFilter),
			Message:   jsonMsg,
		})
		if err != nil {
			s.log.Error().Err(err).Str("queue", name).Str("id", msg.ID).Msg("publish failed")
		}
	}
}

// queueWants filters on our side; SYS messages are never published so a
// broker error cannot feed back into itself.
func queueWants(queue chain.MQTTQueueConfig, t chain.EventType) bool {
	if t.Type() == "SYS" {
		return false
	}
	for _, want := range queue.Types {
		if want == "ALL" || want == t.Type() {
			return true
		}
	}
	return false
}

func SetupMQTT(cond *conductor.Conductor, bus chain.MessageBus, conf chain.Config, log zerolog.Logger) {
	if conf.MQTT.Address != "" {
		s := NewMQTTSender(conf.MQTT, log)
		cond.Service("MQTT sender", s)
		// Sub to 'ALL' because we're filtering on our side
		bus.Register(s, chain.EVENT_ALL("ALL"))
	}
}
