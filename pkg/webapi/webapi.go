package webapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	chain "github.com/dogecoinfoundation/forkchain/pkg"
	"github.com/dogecoinfoundation/forkchain/pkg/conductor"
	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// WebAPI implements conductor.Service
type WebAPI struct {
	api    chain.API
	config chain.Config
	log    zerolog.Logger
}

// interface guard ensures WebAPI implements conductor.Service
var _ conductor.Service = WebAPI{}

func NewWebAPI(config chain.Config, api chain.API, log zerolog.Logger) (WebAPI, error) {
	return WebAPI{api: api, config: config, log: log.With().Str("component", "WebAPI").Logger()}, nil
}

func (t WebAPI) Run(started, stopped chan bool, stop chan context.Context) error {
	go func() {
		mux := t.createRouter()

		addr := t.config.WebAPI.Bind + ":" + t.config.WebAPI.Port
		server := &http.Server{Addr: addr, Handler: mux}
		t.log.Info().Str("addr", addr).Msg("listening")
		go func() {
			if err := server.ListenAndServe(); err != http.ErrServerClosed {
				t.log.Fatal().Err(err).Msg("HTTP server ListenAndServe")
			}
		}()

		started <- true
		ctx := <-stop
		server.Shutdown(ctx)
		stopped <- true
	}()
	return nil
}

func (t WebAPI) createRouter() *httprouter.Router {
	mux := httprouter.New()

	// GET /chain/tip -> { tip } the canonical tip
	mux.GET("/chain/tip", t.getTip)

	// GET /chain/block/:hash -> { height, block } a retained block
	mux.GET("/chain/block/:hash", t.getBlock)

	// GET /chain/utxos ? address -> { items, balance } unspent outputs at the tip
	mux.GET("/chain/utxos", t.listUTXOs)

	// POST { block } /chain/block -> { height, block } submit a block
	mux.POST("/chain/block", t.submitBlock)

	// POST { address } /chain/mine -> { hash, height, txs } assemble and submit a block on the tip
	mux.POST("/chain/mine", t.mine)

	// GET /mempool -> { items } pending transactions
	mux.GET("/mempool", t.listMempool)

	// POST { tx } /mempool/tx -> { hash } stage a transaction
	mux.POST("/mempool/tx", t.submitTx)

	mux.Handler("GET", "/metrics", promhttp.Handler())

	return mux
}

func (t WebAPI) getTip(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	sendResponse(w, t.log, t.api.GetTip())
}

func (t WebAPI) getBlock(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	hash, err := chain.ParseHash(p.ByName("hash"))
	if err != nil {
		sendError(w, t.log, "GetBlock", err)
		return
	}
	block, err := t.api.GetBlock(hash)
	if err != nil {
		sendError(w, t.log, "GetBlock", err)
		return
	}
	sendResponse(w, t.log, block)
}

func (t WebAPI) listUTXOs(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	address := chain.Address(r.URL.Query().Get("address"))
	sendResponse(w, t.log, t.api.ListUTXOs(address))
}

func (t WebAPI) listMempool(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	sendResponse(w, t.log, t.api.ListMempool())
}

func (t WebAPI) submitTx(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var tx chain.Transaction
	if err := json.NewDecoder(r.Body).Decode(&tx); err != nil {
		sendBadRequest(w, t.log, "SubmitTx: invalid transaction JSON: "+err.Error())
		return
	}
	res, err := t.api.SubmitTransaction(&tx)
	if err != nil {
		sendError(w, t.log, "SubmitTx", err)
		return
	}
	sendResponse(w, t.log, res)
}

func (t WebAPI) submitBlock(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var block chain.Block
	if err := json.NewDecoder(r.Body).Decode(&block); err != nil {
		sendBadRequest(w, t.log, "SubmitBlock: invalid block JSON: "+err.Error())
		return
	}
	res, err := t.api.SubmitBlock(&block)
	if err != nil {
		sendError(w, t.log, "SubmitBlock", err)
		return
	}
	sendResponse(w, t.log, res)
}

type MineRequest struct {
	Address chain.Address `json:"address"`
}

func (t WebAPI) mine(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var req MineRequest
	// an empty body mines to the configured address
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		sendBadRequest(w, t.log, "Mine: invalid request JSON: "+err.Error())
		return
	}
	res, err := t.api.Mine(req.Address)
	if err != nil {
		sendError(w, t.log, "Mine", err)
		return
	}
	sendResponse(w, t.log, res)
}
