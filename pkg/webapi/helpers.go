package webapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	chain "github.com/dogecoinfoundation/forkchain/pkg"
	"github.com/rs/zerolog"
)

var httpCodeForError = map[string]int{
	string(chain.BadRequest):     400,
	string(chain.NotFound):       404,
	string(chain.NoParent):       409,
	string(chain.UnknownParent):  409,
	string(chain.ParentTooOld):   409,
	string(chain.DuplicateBlock): 409,
	string(chain.InvalidTxn):     422,
	string(chain.UnknownError):   500,
}

func HttpStatusForError(code chain.ErrorCode) int {
	status, found := httpCodeForError[string(code)]
	if !found {
		status = http.StatusInternalServerError
	}
	return status
}

func sendResponse(w http.ResponseWriter, log zerolog.Logger, payload any) {
	// note: w.Header after this, so we can call sendError
	b, err := json.Marshal(payload)
	if err != nil {
		sendErrorResponse(w, log, http.StatusInternalServerError, "marshal", fmt.Sprintf("in json.Marshal: %s", err.Error()))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store") // do not cache (Browsers cache GET forever by default)
	w.Write(b)
}

func sendBadRequest(w http.ResponseWriter, log zerolog.Logger, message string) {
	sendErrorResponse(w, log, http.StatusBadRequest, chain.BadRequest, message)
}

func sendError(w http.ResponseWriter, log zerolog.Logger, where string, err error) {
	var info *chain.ErrorInfo
	if errors.As(err, &info) {
		status := HttpStatusForError(info.Code)
		message := fmt.Sprintf("%s: %s", where, info.Message)
		sendErrorResponse(w, log, status, info.Code, message)
	} else {
		message := fmt.Sprintf("%s: %s", where, err.Error())
		sendErrorResponse(w, log, http.StatusInternalServerError, chain.UnknownError, message)
	}
}

func sendErrorResponse(w http.ResponseWriter, log zerolog.Logger, statusCode int, code chain.ErrorCode, message string) {
	log.Warn().Str("code", string(code)).Int("status", statusCode).Msg(message)
	// would prefer to use json.Marshal, but this avoids the need
	// to handle encoding errors arising from json.Marshal itself!
	payload := fmt.Sprintf("{\"error\":{\"code\":%q,\"message\":%q}}", code, message)
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store") // do not cache (Browsers cache GET forever by default)
	w.WriteHeader(statusCode)
	w.Write([]byte(payload))
}
