package rpc

import (
	"encoding/json"
	"fmt"
	"net/http"

	"boscoin.io/gasmanager/lib/errors"
)

const (
	DefaultContentType = "application/json"
	ProblemContentType = "application/problem+json"
	ProblemTypeBase    = "https://boscoin.io/gasmanager/problems/"
)

// Problem is the body of a failed plain HTTP request; JSON-RPC calls report
// errors in the JSON-RPC envelope instead.
type Problem struct {
	Type   string                 `json:"type"`
	Title  string                 `json:"title"`
	Status int                    `json:"status"`
	Code   uint                   `json:"code,omitempty"`
	Data   map[string]interface{} `json:"data,omitempty"`
}

func NewErrorProblem(err error, status int) Problem {
	p := Problem{
		Type:   ProblemTypeBase + string(errors.KindOf(err)),
		Title:  err.Error(),
		Status: status,
	}
	if e, ok := err.(*errors.Error); ok {
		p.Title = e.Message
		p.Code = e.Code
		p.Data = e.Data
	}

	return p
}

// StatusCode maps the kind of `err` to a HTTP status.
func StatusCode(err error) int {
	switch errors.KindOf(err) {
	case errors.KindAuthorization:
		return http.StatusForbidden
	case errors.KindInvalidInput:
		return http.StatusBadRequest
	case errors.KindStateConflict, errors.KindApprovalMissing, errors.KindNoQuorumPossible:
		return http.StatusConflict
	}

	if e, ok := err.(*errors.Error); ok && e.Code == errors.BadRequestParameter.Code {
		return http.StatusBadRequest
	}

	return http.StatusInternalServerError
}

// WriteJSON writes `v` as json; an error value is written as a Problem.
func WriteJSON(w http.ResponseWriter, code int, v interface{}) error {
	if e, ok := v.(error); ok {
		w.Header().Set("Content-Type", ProblemContentType)
		v = NewErrorProblem(e, code)
	} else {
		w.Header().Set("Content-Type", DefaultContentType)
	}

	w.WriteHeader(code)

	bs, err := json.Marshal(v)
	if err != nil {
		return err
	}

	if _, err := w.Write(bs); err != nil {
		return err
	}

	return nil
}

func WriteJSONError(w http.ResponseWriter, err error) {
	if werr := WriteJSON(w, StatusCode(err), err); werr != nil {
		log.Error("failed to write error", "error", err, "write-error", werr)
	}
}

func panicError(r interface{}) error {
	if err, ok := r.(error); ok {
		return err
	}

	return fmt.Errorf("panic: %v", r)
}
