package main

import (
	"github.com/dogecoinfoundation/forkchain/pkg/keys"
	"github.com/spf13/cobra"
)

type keyInfo struct {
	Address keys.Address `json:"address"`
	WIF     string       `json:"wif"`
}

func keygenCommand() *cobra.Command {
	var mainnet bool
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a key pair and print its address and WIF",
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := keys.GenerateKey(keys.ChainFromTestNetFlag(!mainnet))
			if err != nil {
				return err
			}
			return printJSON(keyInfo{Address: key.Address(), WIF: key.WIF()})
		},
	}
	cmd.Flags().BoolVar(&mainnet, "mainnet", false, "use the main chain address prefix")
	return cmd
}
