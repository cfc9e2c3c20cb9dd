package chain

import (
	"time"

	"github.com/jinzhu/configor"
	"github.com/pkg/errors"
)

type Config struct {
	Chain struct {
		// how many heights behind the tip a new block may still attach
		CutOffAge int `default:"10"`
		// block assembly policy: first-valid | max-fee
		Policy string `default:"max-fee"`
		// coinbase value paid by assembled blocks
		CoinbaseReward string `default:"25"`
		// keep side branches below the cut-off line instead of discarding them
		NoPrune bool
		// address paid by the genesis coinbase
		GenesisAddress string
		GenesisReward  string `default:"100"`
	}

	Miner struct {
		Enabled  bool   `default:"false"`
		Address  string // coinbase payee
		Interval string `default:"10s"`
	}

	WebAPI struct {
		Bind string `default:"localhost"`
		Port string `default:"8420"`
	}

	Log LogConfig

	// event log files, see receivers.SetupLoggers
	Loggers map[string]LoggersConfig

	// webhook targets, see receivers.SetupCallbacks
	Callbacks map[string]CallbackConfig

	// optional MQTT broker, see receivers.SetupMQTT
	MQTT MQTTConfig
}

type LogConfig struct {
	Level string `default:"info"`
	File  string // optional rotating log file
	JSON  bool   // plain JSON lines instead of console output
}

type LoggersConfig struct {
	Path  string
	Types []string
}

type MQTTConfig struct {
	Address  string
	ClientID string `default:"forkchain"`
	Username string
	Password string
	Queues   map[string]MQTTQueueConfig
}

type MQTTQueueConfig struct {
	TopicFilter string
	Types       []string
}

type CallbackConfig struct {
	Path       string
	Types      []string
	HMACSecret string
}

func LoadConfig(confPath string) (Config, error) {
	c := Config{}
	if err := configor.Load(&c, confPath); err != nil {
		return c, errors.Wrapf(err, "loading config %s", confPath)
	}
	return c, nil
}

// ApplyDefaults fills zero fields from the default tags. Used when the
// config came from somewhere other than LoadConfig (eg: viper).
func (c *Config) ApplyDefaults() error {
	return configor.New(&configor.Config{Silent: true}).Load(c)
}

func (c Config) SelectionPolicy() (Policy, error) {
	return ParsePolicy(c.Chain.Policy)
}

func (c Config) Reward() (Amount, error) {
	return ParseAmount(c.Chain.CoinbaseReward)
}

func (c Config) GenesisValue() (Amount, error) {
	return ParseAmount(c.Chain.GenesisReward)
}

func (c Config) MinerInterval() (time.Duration, error) {
	d, err := time.ParseDuration(c.Miner.Interval)
	if err != nil {
		return 0, NewErr(BadRequest, "invalid miner interval %q: %v", c.Miner.Interval, err)
	}
	return d, nil
}

// ChainOptions turns the Chain section into BlockChain options.
func (c Config) ChainOptions() []Option {
	return []Option{
		WithCutOffAge(c.Chain.CutOffAge),
		WithPruning(!c.Chain.NoPrune),
	}
}
