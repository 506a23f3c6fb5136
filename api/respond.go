// Package api exposes the ledger over HTTP. Expected business-rule
// rejections are reported with the status attached to their error code;
// they are never logged as failures.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/kilianp07/fleetledger/core/logger"
	"github.com/kilianp07/fleetledger/core/model"
	pkgerrors "github.com/kilianp07/fleetledger/pkg/errors"
)

// Session headers. Authentication happens upstream; the ledger only
// records who acted.
const (
	HeaderActorID   = "X-Actor-ID"
	HeaderActorRole = "X-Actor-Role"
	HeaderCarrierID = "X-Carrier-ID"
)

var errBadBody = errors.New("malformed request body")

type errorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable,omitempty"`
	Details   any    `json:"details,omitempty"`
}

func sessionFrom(r *http.Request) model.Session {
	return model.Session{
		ActorID:   r.Header.Get(HeaderActorID),
		Role:      model.Role(r.Header.Get(HeaderActorRole)),
		CarrierID: r.Header.Get(HeaderCarrierID),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, log logger.Logger, err error) {
	code := pkgerrors.CodeOf(err)
	meta := pkgerrors.MetadataFor(code)
	body := errorBody{Code: string(code), Message: meta.PublicMessage, Retryable: meta.Retryable}
	if e := pkgerrors.As(err); e != nil {
		if e.Message() != "" {
			body.Message = e.Message()
		}
		if meta.DetailsAllowed {
			body.Details = e.Details()
		}
	}
	if meta.HTTPStatus >= http.StatusInternalServerError {
		log.Errorf("request failed: %v", err)
		body.Message = meta.PublicMessage
	}
	writeJSON(w, meta.HTTPStatus, map[string]errorBody{"error": body})
}

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, errBadBody, err.Error())
	}
	return nil
}
