package main

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	chain "github.com/dogecoinfoundation/forkchain/pkg"
	"github.com/dogecoinfoundation/forkchain/pkg/keys"
	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

/*
	These commands are convenience CLI tools that operate on a
	running forkchain server by calling its REST API.
*/

func clientCommands(c *chain.Config, remote *string) []*cobra.Command {
	tipCmd := &cobra.Command{
		Use:   "tip",
		Short: "Show the canonical tip of a running server",
		RunE: func(cmd *cobra.Command, args []string) error {
			var tip chain.TipInfo
			if err := getJSON(*c, *remote, "/chain/tip", &tip); err != nil {
				return err
			}
			return printJSON(tip)
		},
	}

	mempoolCmd := &cobra.Command{
		Use:   "mempool",
		Short: "List pending transactions of a running server",
		RunE: func(cmd *cobra.Command, args []string) error {
			var res chain.MempoolResponse
			if err := getJSON(*c, *remote, "/mempool", &res); err != nil {
				return err
			}
			return printJSON(res)
		},
	}

	mineCmd := &cobra.Command{
		Use:   "mine [address]",
		Short: "Assemble and submit one block on the tip",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]string{}
			if len(args) == 1 {
				body["address"] = args[0]
			}
			var res chain.MineResponse
			if err := postJSON(*c, *remote, "/chain/mine", body, &res); err != nil {
				return err
			}
			return printJSON(res)
		},
	}

	var wif string
	var inputs, outputs []string
	submitCmd := &cobra.Command{
		Use:   "submit-tx",
		Short: "Build, sign and submit a transaction",
		Example: "  forkchain submit-tx --wif <key> --in <txhash>:0 --out <address>:60 --out <address>:40",
		RunE: func(cmd *cobra.Command, args []string) error {
			tx, err := buildTransaction(wif, inputs, outputs)
			if err != nil {
				return err
			}
			var res chain.SubmitResponse
			if err := postJSON(*c, *remote, "/mempool/tx", tx, &res); err != nil {
				return err
			}
			return printJSON(res)
		},
	}
	submitCmd.Flags().StringVar(&wif, "wif", "", "WIF private key owning every input")
	submitCmd.Flags().StringArrayVar(&inputs, "in", nil, "input as txhash:index (repeatable)")
	submitCmd.Flags().StringArrayVar(&outputs, "out", nil, "output as address:value (repeatable)")
	submitCmd.MarkFlagRequired("wif")

	return []*cobra.Command{tipCmd, mempoolCmd, mineCmd, submitCmd}
}

// buildTransaction signs every input with the single key in wif.
func buildTransaction(wif string, inputs, outputs []string) (*chain.Transaction, error) {
	key, err := keys.DecodeWIF(wif)
	if err != nil {
		return nil, err
	}
	tx := chain.NewTransaction()
	for _, in := range inputs {
		hash, index, found := strings.Cut(in, ":")
		if !found {
			return nil, chain.NewErr(chain.BadRequest, "input must be txhash:index, got %q", in)
		}
		h, err := chain.ParseHash(hash)
		if err != nil {
			return nil, err
		}
		i, err := strconv.ParseUint(index, 10, 32)
		if err != nil {
			return nil, chain.NewErr(chain.BadRequest, "bad input index %q", index)
		}
		tx.AddInput(h, uint32(i))
	}
	for _, out := range outputs {
		addr, value, found := strings.Cut(out, ":")
		if !found {
			return nil, chain.NewErr(chain.BadRequest, "output must be address:value, got %q", out)
		}
		v, err := chain.ParseAmount(value)
		if err != nil {
			return nil, err
		}
		tx.AddOutput(chain.Address(addr), v)
	}
	for i := range tx.Inputs {
		tx.SignInput(i, key)
	}
	tx.Finalize()
	return tx, nil
}

// work out the remote API URL from args or config and return
// a complete path with our best guess
func apiURL(c chain.Config, remote string, path string) (string, error) {
	base := remote
	if base == "" {
		host := c.WebAPI.Bind
		if host == "" {
			host = "localhost"
		}
		base = fmt.Sprintf("http://%s:%s/", host, c.WebAPI.Port)
	}
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}

	p, err := url.Parse(path)
	if err != nil {
		return "", err
	}

	return u.ResolveReference(p).String(), nil
}

func getJSON(c chain.Config, remote string, path string, out any) error {
	return call(c, remote, path, func(r *resty.Request, u string) (*resty.Response, error) {
		return r.SetResult(out).Get(u)
	})
}

func postJSON(c chain.Config, remote string, path string, body any, out any) error {
	return call(c, remote, path, func(r *resty.Request, u string) (*resty.Response, error) {
		return r.SetBody(body).SetResult(out).Post(u)
	})
}

type apiError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func call(c chain.Config, remote string, path string, do func(*resty.Request, string) (*resty.Response, error)) error {
	u, err := apiURL(c, remote, path)
	if err != nil {
		return err
	}
	var failure apiError
	resp, err := do(resty.New().R().SetError(&failure), u)
	if err != nil {
		return errors.Wrapf(err, "calling %s", u)
	}
	if resp.IsError() {
		if failure.Error.Code != "" {
			return &chain.ErrorInfo{Code: chain.ErrorCode(failure.Error.Code), Message: failure.Error.Message}
		}
		return errors.Errorf("unexpected response status: %s", resp.Status())
	}
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
