// Package rpctest serves canned JSON-RPC responses over httptest for
// package tests that exercise the node, bundler and paymaster clients.
package rpctest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// Error is returned by a handler to answer with a JSON-RPC error object.
type Error struct {
	Code    int
	Message string
}

func (e *Error) Error() string { return e.Message }

// HandlerFunc answers one method call. params are the raw positional params.
type HandlerFunc func(params []json.RawMessage) (any, error)

// Server is a fake JSON-RPC endpoint. Unregistered methods answer -32601.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	handlers map[string]HandlerFunc
	calls    map[string][][]json.RawMessage
}

// NewServer starts a server that is closed when t finishes.
func NewServer(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		handlers: map[string]HandlerFunc{},
		calls:    map[string][][]json.RawMessage{},
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

// Handle registers fn for method, replacing any earlier handler.
func (s *Server) Handle(method string, fn HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[method] = fn
}

// Result registers a handler that always returns result.
func (s *Server) Result(method string, result any) {
	s.Handle(method, func([]json.RawMessage) (any, error) { return result, nil })
}

// Calls returns the params of every call made to method, in order.
func (s *Server) Calls(method string) [][]json.RawMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]json.RawMessage, len(s.calls[method]))
	copy(out, s.calls[method])
	return out
}

type request struct {
	ID     json.RawMessage   `json:"id"`
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *errorObject    `json:"error,omitempty"`
}

type errorObject struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	s.calls[req.Method] = append(s.calls[req.Method], req.Params)
	fn, ok := s.handlers[req.Method]
	s.mu.Unlock()

	resp := response{JSONRPC: "2.0", ID: req.ID}
	switch {
	case !ok:
		resp.Error = &errorObject{Code: -32601, Message: "method not found: " + req.Method}
	default:
		result, err := fn(req.Params)
		if err != nil {
			code := -32000
			if e, ok := err.(*Error); ok {
				code = e.Code
			}
			resp.Error = &errorObject{Code: code, Message: err.Error()}
		} else if result == nil {
			resp.Result = json.RawMessage("null")
		} else {
			resp.Result = result
		}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp) //nolint:errcheck
}

// CallArgs decodes the {to, input|data} object of an eth_call.
type CallArgs struct {
	To    string `json:"to"`
	Input string `json:"input"`
	Data  string `json:"data"`
}

// Calldata returns whichever of input or data was sent.
func (c CallArgs) Calldata() string {
	if c.Input != "" {
		return c.Input
	}
	return c.Data
}

// DecodeCall unmarshals the first param of an eth_call.
func DecodeCall(params []json.RawMessage) (CallArgs, error) {
	var c CallArgs
	if len(params) == 0 {
		return c, &Error{Code: -32602, Message: "missing call object"}
	}
	err := json.Unmarshal(params[0], &c)
	return c, err
}
