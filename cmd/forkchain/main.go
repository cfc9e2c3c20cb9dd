package main

import (
	"encoding/json"
	"fmt"
	"os"

	chain "github.com/dogecoinfoundation/forkchain/pkg"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	var config chain.Config
	var remote string

	// define root command
	rootCmd := &cobra.Command{
		Use: "forkchain",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
			os.Exit(0)
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return LoadConfig(&config)
		},
	}

	// Add flags for each configuration option
	flags := rootCmd.PersistentFlags()
	flags.Int("cutoff-age", 0, "How many heights behind the tip a block may still attach")
	flags.String("policy", "", "Block assembly policy: first-valid | max-fee")
	flags.String("webapi-port", "", "Web API port")
	flags.String("webapi-bind", "", "Web API bind")
	flags.String("miner-address", "", "Coinbase address for mined blocks")
	flags.Bool("mine", false, "Enable the miner")
	flags.String("log-level", "", "Log level")
	flags.StringVar(&remote, "remote", "", "Base URL of a running forkchain server")

	// Bind flags to config fields
	viper.BindPFlag("Chain.CutOffAge", flags.Lookup("cutoff-age"))
	viper.BindPFlag("Chain.Policy", flags.Lookup("policy"))
	viper.BindPFlag("WebAPI.Port", flags.Lookup("webapi-port"))
	viper.BindPFlag("WebAPI.Bind", flags.Lookup("webapi-bind"))
	viper.BindPFlag("Miner.Address", flags.Lookup("miner-address"))
	viper.BindPFlag("Miner.Enabled", flags.Lookup("mine"))
	viper.BindPFlag("Log.Level", flags.Lookup("log-level"))

	serverCmd := &cobra.Command{
		Use:   "server",
		Short: "Start the forkchain server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return Server(config)
		},
	}

	configCmd := &cobra.Command{
		Use:   "showconf",
		Short: "Print the config state and exit",
		Run: func(cmd *cobra.Command, args []string) {
			o, _ := json.MarshalIndent(config, ">", " ")
			fmt.Println(string(o))
			os.Exit(0)
		},
	}

	rootCmd.AddCommand(serverCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(clientCommands(&config, &remote)...)
	rootCmd.AddCommand(simulateCommand())
	rootCmd.AddCommand(keygenCommand())

	// Execute the Cobra command
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// LoadConfig reads the config file (if any) through viper, layers bound
// flags on top, then fills whatever is still unset from the defaults.
func LoadConfig(config *chain.Config) error {
	configFileName, set := os.LookupEnv("FORKCHAIN_ENV")
	if set {
		viper.SetConfigName(configFileName)
	} else {
		viper.SetConfigName("config")
	}

	// Set config file name and search paths
	viper.SetConfigType("toml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("/etc/forkchain/")
	viper.AddConfigPath("$HOME/.forkchain")

	if err := viper.ReadInConfig(); err != nil {
		if _, missing := err.(viper.ConfigFileNotFoundError); !missing {
			return errors.Wrap(err, "failed to read config file")
		}
	}

	if err := viper.Unmarshal(config); err != nil {
		return errors.Wrap(err, "failed to unmarshal config")
	}
	return config.ApplyDefaults()
}
