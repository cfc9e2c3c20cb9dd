package miner

import (
	"context"
	"encoding/json"
	"time"

	chain "github.com/dogecoinfoundation/forkchain/pkg"
	"github.com/rs/zerolog"
)

const (
	tipPollInterval = 30 * time.Second
)

type TipSubscription struct {
	channel  chan<- chain.TipEvent
	blocking bool
}

type TipSource interface {
	Tip() chain.TipInfo
}

/*
 * TipChaser tracks the canonical tip of the block tree.
 * It notifies listeners each time the tip hash changes.
 * It receives CHAIN_TIP_CHANGED from the message bus; if the bus goes
 * quiet (or dropped the event) it polls the tree instead.
 */
type TipChaser struct {
	source    TipSource
	Rec       chan chain.Message
	listeners []TipSubscription
	poll      time.Duration
	log       zerolog.Logger
}

func NewTipChaser(source TipSource, log zerolog.Logger) *TipChaser {
	return &TipChaser{
		source: source,
		Rec:    make(chan chain.Message, 1000),
		poll:   tipPollInterval,
		log:    log.With().Str("component", "TipChaser").Logger(),
	}
}

// Implements chain.MessageSubscriber
func (c *TipChaser) GetChan() chan chain.Message {
	return c.Rec
}

// Subscribe must be called before the service is started.
func (c *TipChaser) Subscribe(ch chan<- chain.TipEvent, blocking bool) {
	c.listeners = append(c.listeners, TipSubscription{ch, blocking})
}

// Implements conductor.Service
func (c *TipChaser) Run(started, stopped chan bool, stop chan context.Context) error {
	go func() {
		started <- true
		tip := c.source.Tip()
		last := chain.TipEvent{Hash: tip.Hash, Height: tip.Height}
		for {
			select {
			case <-stop:
				stopped <- true
				return
			case msg, ok := <-c.Rec:
				if !ok {
					// unregistered by the bus, polling only from here on
					c.Rec = nil
					continue
				}
				if msg.EventType != chain.CHAIN_TIP_CHANGED {
					continue
				}
				var e chain.TipEvent
				if err := json.Unmarshal(msg.Message, &e); err != nil {
					c.log.Error().Err(err).Str("id", msg.ID).Msg("bad tip event")
					continue
				}
				if e.Hash != last.Hash && e.Height >= last.Height {
					last = e
					c.sendEvent(e)
				}
			case <-time.After(c.poll):
				tip := c.source.Tip()
				if tip.Hash != last.Hash {
					c.log.Debug().Msg("falling back to polling the tip")
					last = chain.TipEvent{Hash: tip.Hash, Height: tip.Height}
					c.sendEvent(last)
				}
			}
		}
	}()
	return nil
}

func (c *TipChaser) sendEvent(e chain.TipEvent) {
	c.log.Info().Str("tip", e.Hash.Short()).Int("height", e.Height).Msg("discovered new tip")
	for _, ch := range c.listeners {
		if ch.blocking {
			ch.channel <- e
		} else {
			// non-blocking send.
			select {
			case ch.channel <- e:
			default:
			}
		}
	}
}
