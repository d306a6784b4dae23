package ipc

import (
	"encoding/json"
	"fmt"

	"github.com/bnema/obsidian-launcher/internal/domain"
	"github.com/google/uuid"
)

const (
	APIPath     = "/api"
	DefaultAddr = "127.0.0.1:7331"
	jsonRPC     = "2.0"
	pingMessage = "ping"
	pongMessage = "pong"
)

const (
	MethodSessionGet          = "session.get"
	MethodSessionAuthenticate = "session.authenticate"
	MethodSessionLaunch       = "session.launch"
	MethodVersionsList        = "versions.list"
	MethodSystemMemory        = "system.memory"
	MethodSettingsGet         = "settings.get"
	MethodSettingsSave        = "settings.save"

	NotificationSessionUpdated = "session.updated"
)

type RequestObject struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      *uuid.UUID      `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type ResponseObject struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uuid.UUID       `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *ErrorObject    `json:"error,omitempty"`
}

// ErrorData carries the session error kind so clients can classify failures.
type ErrorData struct {
	Kind domain.ErrorKind `json:"kind"`
}

type ErrorObject struct {
	Code    int        `json:"code"`
	Message string     `json:"message"`
	Data    *ErrorData `json:"data,omitempty"`
}

// envelope is any inbound message before it is known to be a request,
// notification or response.
type envelope struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      *uuid.UUID      `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *ErrorObject    `json:"error,omitempty"`
}

var (
	ErrorParseError     = ErrorObject{Code: -32700, Message: "Parse error"}
	ErrorInvalidRequest = ErrorObject{Code: -32600, Message: "Invalid Request"}
	ErrorMethodNotFound = ErrorObject{Code: -32601, Message: "Method not found"}
	ErrorInvalidParams  = ErrorObject{Code: -32602, Message: "Invalid params"}
	ErrorInternalError  = ErrorObject{Code: -32603, Message: "Internal error"}
)

const serverErrorCode = -32000

// errorObjectFor converts a host error into a JSON-RPC error. Errors in the
// session taxonomy carry their kind in data.
func errorObjectFor(err error) ErrorObject {
	kind := domain.KindOf(err)
	if kind == "" {
		return ErrorObject{Code: ErrorInternalError.Code, Message: err.Error()}
	}
	return ErrorObject{
		Code:    serverErrorCode,
		Message: err.Error(),
		Data:    &ErrorData{Kind: kind},
	}
}

// RemoteError is a JSON-RPC error returned by the host. It unwraps to the
// domain sentinel for its kind, so errors.Is works across the connection.
type RemoteError struct {
	Code    int
	Message string
	Kind    domain.ErrorKind
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("host error %d: %s", e.Code, e.Message)
}

func (e *RemoteError) Unwrap() error {
	return domain.SentinelFor(e.Kind)
}

func remoteErrorFrom(obj ErrorObject) *RemoteError {
	remote := &RemoteError{Code: obj.Code, Message: obj.Message}
	if obj.Data != nil {
		remote.Kind = obj.Data.Kind
	}
	return remote
}
