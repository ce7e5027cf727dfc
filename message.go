package cdp

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Command is implemented by every generated command parameter type. The
// returned name is the qualified wire-level method string, e.g.
// "Page.navigate".
type Command interface {
	CommandName() string
}

// Event is implemented by every generated event parameter type.
type Event interface {
	EventName() string
}

// Request is an incoming command message: {id, method, params}. Params is
// always a JSON object; a missing or non-object params member is replaced
// with {} during parsing.
type Request struct {
	ID     uint64          `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
}

// RequestError couples a protocol error with the message id, when one could
// be extracted before parsing failed. ID is nil when the failure happened
// before the id was read.
type RequestError struct {
	Err *Error
	ID  *uint64
}

func (e *RequestError) Error() string { return e.Err.Error() }

func (e *RequestError) Unwrap() error { return e.Err }

var emptyObject = json.RawMessage("{}")

// ParseRequest parses an incoming command message. Failures are returned as
// *RequestError, staged so that each check produces its own protocol error:
// invalid JSON, then non-object payload, then missing integer id, then
// missing string method. A present but non-object params value is not an
// error; it is silently replaced with the empty object, matching the
// reference dispatcher's behavior.
func ParseRequest(data []byte) (*Request, error) {
	if !json.Valid(data) {
		return nil, &RequestError{Err: ErrInvalidMessage()}
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, &RequestError{Err: ErrMustBeObject()}
	}
	var members map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &members); err != nil {
		return nil, &RequestError{Err: ErrMustBeObject()}
	}

	var id uint64
	rawID, ok := members["id"]
	if !ok || json.Unmarshal(rawID, &id) != nil {
		return nil, &RequestError{Err: ErrMustHaveID()}
	}

	var method string
	rawMethod, ok := members["method"]
	if !ok || json.Unmarshal(rawMethod, &method) != nil {
		return nil, &RequestError{Err: ErrMustHaveMethod(), ID: &id}
	}

	params := emptyObject
	if rawParams, ok := members["params"]; ok {
		if p := bytes.TrimSpace(rawParams); len(p) > 0 && p[0] == '{' {
			params = p
		}
	}

	return &Request{ID: id, Method: method, Params: params}, nil
}

// MarshalCommand encodes a client-side command message: {id, method, params}.
// The command value itself serializes as the params object.
func MarshalCommand(id uint64, cmd Command) ([]byte, error) {
	return json.Marshal(struct {
		ID     uint64 `json:"id"`
		Method string `json:"method"`
		Params any    `json:"params"`
	}{ID: id, Method: cmd.CommandName(), Params: cmd})
}

// MarshalResponse encodes a success result: {id, result}. A nil result is
// encoded as the empty object.
func MarshalResponse(id uint64, result any) ([]byte, error) {
	if result == nil {
		result = Empty{}
	}
	return json.Marshal(struct {
		ID     uint64 `json:"id"`
		Result any    `json:"result"`
	}{ID: id, Result: result})
}

// MarshalErrorResponse encodes a command failure: {id, error}.
func MarshalErrorResponse(id uint64, e *Error) ([]byte, error) {
	return json.Marshal(struct {
		ID    uint64 `json:"id"`
		Error *Error `json:"error"`
	}{ID: id, Error: e})
}

// MarshalGeneralError encodes a failure with no associated id: {error}.
// Used for transport-level failures before an id is known.
func MarshalGeneralError(e *Error) ([]byte, error) {
	return json.Marshal(struct {
		Error *Error `json:"error"`
	}{Error: e})
}

// MarshalEvent encodes an event push: {method, params}. A nil params value
// is encoded as the empty object.
func MarshalEvent(name string, params any) ([]byte, error) {
	if params == nil {
		params = Empty{}
	}
	return json.Marshal(struct {
		Method string `json:"method"`
		Params any    `json:"params"`
	}{Method: name, Params: params})
}

// MarshalEventMsg encodes a generated event value as an event push.
func MarshalEventMsg(ev Event) ([]byte, error) {
	return MarshalEvent(ev.EventName(), ev)
}

// OutgoingKind classifies a server-to-client message.
type OutgoingKind int

const (
	// OutgoingResult is a command success: {id, result}.
	OutgoingResult OutgoingKind = iota
	// OutgoingError is a command failure: {id, error}.
	OutgoingError
	// OutgoingGeneralError is a failure with no id: {error}.
	OutgoingGeneralError
	// OutgoingEvent is an event push: {method, params}.
	OutgoingEvent
)

func (k OutgoingKind) String() string {
	switch k {
	case OutgoingResult:
		return "result"
	case OutgoingError:
		return "error"
	case OutgoingGeneralError:
		return "general error"
	case OutgoingEvent:
		return "event"
	default:
		return fmt.Sprintf("outgoing kind %d", int(k))
	}
}

// Outgoing is a parsed server-to-client message. Exactly the fields implied
// by Kind are meaningful; Result and Params preserve the raw bytes of the
// payload they were parsed from.
type Outgoing struct {
	Kind   OutgoingKind
	ID     uint64
	Result json.RawMessage
	Err    *Error
	Method string
	Params json.RawMessage
}

// ParseOutgoing parses and classifies a server-to-client message. The four
// shapes are tried in order: command success, command failure, general
// failure, event.
func ParseOutgoing(data []byte) (*Outgoing, error) {
	var shape struct {
		ID     *uint64         `json:"id"`
		Result json.RawMessage `json:"result"`
		Error  *Error          `json:"error"`
		Method *string         `json:"method"`
		Params json.RawMessage `json:"params"`
	}
	if err := json.Unmarshal(data, &shape); err != nil {
		return nil, fmt.Errorf("cdp: malformed outgoing message: %w", err)
	}

	switch {
	case shape.ID != nil && shape.Result != nil:
		return &Outgoing{Kind: OutgoingResult, ID: *shape.ID, Result: shape.Result}, nil
	case shape.ID != nil && shape.Error != nil:
		return &Outgoing{Kind: OutgoingError, ID: *shape.ID, Err: shape.Error}, nil
	case shape.Error != nil:
		return &Outgoing{Kind: OutgoingGeneralError, Err: shape.Error}, nil
	case shape.Method != nil && shape.Params != nil:
		return &Outgoing{Kind: OutgoingEvent, Method: *shape.Method, Params: shape.Params}, nil
	default:
		return nil, errors.New("cdp: outgoing message matches no known shape")
	}
}
