package receivers

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	chain "github.com/dogecoinfoundation/forkchain/pkg"
	"github.com/dogecoinfoundation/forkchain/pkg/conductor"
	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const (
	callbackMaxRetries   = 6
	callbackInitialDelay = 1 * time.Second
	callbackMaxDelay     = 32 * time.Second
	callbackTimeout      = 30 * time.Second
)

func NewCallbackSender(config chain.CallbackConfig, bus chain.MessageBus, log zerolog.Logger) CallbackSender {
	client := resty.New().
		SetTimeout(callbackTimeout).
		SetRetryCount(callbackMaxRetries).
		SetRetryWaitTime(callbackInitialDelay).
		SetRetryMaxWaitTime(callbackMaxDelay).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() != http.StatusOK
		})
	return CallbackSender{
		Rec:        make(chan chain.Message, 1000),
		Path:       config.Path,
		HMACSecret: config.HMACSecret,
		Bus:        bus,
		client:     client,
		log:        log.With().Str("component", "CallbackSender").Str("path", config.Path).Logger(),
	}
}

type CallbackSender struct {
	// incomming msgs
	Rec        chan chain.Message
	Path       string
	HMACSecret string
	Bus        chain.MessageBus
	client     *resty.Client
	log        zerolog.Logger
}

// Implements chain.MessageSubscriber
func (s CallbackSender) GetChan() chan chain.Message {
	return s.Rec
}

// Implements conductor.Service
func (s CallbackSender) Run(started, stopped chan bool, stop chan context.Context) error {
	go func() {
		started <- true
		for {
			select {
			// handle stopping the service
			case <-stop:
				stopped <- true
				return
			case msg, ok := <-s.Rec:
				if !ok {
					<-stop
					stopped <- true
					return
				}
				// deliver in the background so one slow endpoint doesn't
				// back up the bus
				go s.deliver(msg)
			}
		}
	}()
	return nil
}

// deliver posts msg and reports a final failure on the bus as SYS_ERR.
// A failed SYS_ERR is only logged, so a broken endpoint subscribed to
// SYS events cannot feed itself.
func (s CallbackSender) deliver(msg chain.Message) {
	err := s.post(msg)
	if err == nil {
		return
	}
	s.log.Warn().Err(err).Str("id", msg.ID).Msg("callback failed")
	if msg.EventType == chain.SYS_ERR {
		return
	}
	if err := s.Bus.Send(chain.SYS_ERR, fmt.Sprintf("CallbackSender: %s: %v", msg.ID, err)); err != nil {
		s.log.Warn().Err(err).Msg("could not report callback failure")
	}
}

// post delivers msg, retrying with exponential backoff until the endpoint
// answers 200.
func (s CallbackSender) post(msg chain.Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return errors.Wrap(err, "failed to serialize message")
	}

	req := s.client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(body)
	if s.HMACSecret != "" {
		timestamp := fmt.Sprintf("%d", time.Now().Unix())
		signature := generateSha256HMAC(timestamp, body, s.HMACSecret)
		req.SetHeader("X-Forkchain-Signature", fmt.Sprintf("sha256=%s", signature))
		req.SetHeader("X-Forkchain-Timestamp", timestamp)
	}

	resp, err := req.Post(s.Path)
	if err != nil {
		return errors.Wrapf(err, "posting to %s", s.Path)
	}
	if resp.StatusCode() != http.StatusOK {
		return errors.Errorf("request failed after %d attempts: %s", callbackMaxRetries+1, resp.Status())
	}
	s.log.Debug().Str("id", msg.ID).Msg("callback delivered")
	return nil
}

// Reads config and sets up any configured callbacks
func SetupCallbacks(cond *conductor.Conductor, bus chain.MessageBus, conf chain.Config, log zerolog.Logger) {
	for name, c := range conf.Callbacks {
		s := NewCallbackSender(c, bus, log)
		cond.Service(fmt.Sprintf("Callback sender for: %s", c.Path), s)
		bus.Register(s, eventTypes(log, name, c.Types)...)
	}
}

func generateSha256HMAC(timestamp string, payload []byte, secret string) string {
	if secret == "" {
		return ""
	}

	dataToSign := []byte(fmt.Sprintf("%s.%s", timestamp, string(payload)))
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(dataToSign)

	return hex.EncodeToString(h.Sum(nil))
}
