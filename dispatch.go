package cdp

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnrecognized is returned by Dispatch when no variant matches the method
// name and the dispatcher has no wildcard. Callers translate it into a
// method-not-found protocol error when replying on the wire.
var ErrUnrecognized = errors.New("cdp: unrecognized method")

// Variant is one alternative of a Dispatcher: a method name paired with a
// typed decoder for its params. Construct variants with Unit, Exact, Cmd,
// Evt, or Wildcard.
type Variant[V any] struct {
	name     string
	decode   func(params json.RawMessage) (V, error)
	wildcard func(method string, params json.RawMessage) (V, error)
}

// Unit matches name and yields value. Params must still decode as the
// canonical empty object, i.e. be an object; its members are ignored.
func Unit[V any](name string, value V) Variant[V] {
	return Variant[V]{
		name: name,
		decode: func(params json.RawMessage) (V, error) {
			var e Empty
			if err := json.Unmarshal(params, &e); err != nil {
				var zero V
				return zero, ErrInvalidParams(err.Error())
			}
			return value, nil
		},
	}
}

// Exact matches name, decodes params into P, and wraps the result.
func Exact[V, P any](name string, wrap func(P) V) Variant[V] {
	return Variant[V]{
		name:   name,
		decode: decodeInto(wrap),
	}
}

// Cmd matches the command name declared by P itself.
func Cmd[V any, P Command](wrap func(P) V) Variant[V] {
	var zero P
	return Variant[V]{
		name:   zero.CommandName(),
		decode: decodeInto(wrap),
	}
}

// Evt matches the event name declared by P itself.
func Evt[V any, P Event](wrap func(P) V) Variant[V] {
	var zero P
	return Variant[V]{
		name:   zero.EventName(),
		decode: decodeInto(wrap),
	}
}

// Wildcard matches any method. It may only appear as the final variant of a
// dispatcher and receives the method name along with the raw params.
func Wildcard[V any](fn func(method string, params json.RawMessage) (V, error)) Variant[V] {
	return Variant[V]{wildcard: fn}
}

func decodeInto[V, P any](wrap func(P) V) func(json.RawMessage) (V, error) {
	return func(params json.RawMessage) (V, error) {
		var p P
		if err := json.Unmarshal(params, &p); err != nil {
			var zero V
			return zero, ErrInvalidParams(err.Error())
		}
		return wrap(p), nil
	}
}

// Dispatcher routes (method, params) pairs to typed values. Variants are
// tried in declaration order; the first name match wins.
type Dispatcher[V any] struct {
	byName   map[string]func(json.RawMessage) (V, error)
	wildcard func(method string, params json.RawMessage) (V, error)
}

// NewDispatcher validates and assembles a dispatcher from its variants.
// Construction fails on an empty variant list, a duplicate method name, or a
// wildcard anywhere but the final position.
func NewDispatcher[V any](variants ...Variant[V]) (*Dispatcher[V], error) {
	if len(variants) == 0 {
		return nil, errors.New("cdp: dispatcher needs at least one variant")
	}
	d := &Dispatcher[V]{
		byName: make(map[string]func(json.RawMessage) (V, error), len(variants)),
	}
	for i, v := range variants {
		if v.wildcard != nil {
			if i != len(variants)-1 {
				return nil, errors.New("cdp: wildcard variant must come last")
			}
			d.wildcard = v.wildcard
			continue
		}
		if v.name == "" {
			return nil, fmt.Errorf("cdp: variant %d has an empty method name", i)
		}
		if v.decode == nil {
			return nil, fmt.Errorf("cdp: variant %q has no decoder", v.name)
		}
		if _, dup := d.byName[v.name]; dup {
			return nil, fmt.Errorf("cdp: duplicate variant for method %q", v.name)
		}
		d.byName[v.name] = v.decode
	}
	return d, nil
}

// MustDispatcher is NewDispatcher, panicking on a malformed variant list.
// Generated bindings use it in package-level initializers, where the variant
// set is fixed at generation time.
func MustDispatcher[V any](variants ...Variant[V]) *Dispatcher[V] {
	d, err := NewDispatcher(variants...)
	if err != nil {
		panic(err)
	}
	return d
}

// Dispatch decodes params into the typed value registered for method. An
// unknown method falls through to the wildcard when one exists and otherwise
// returns ErrUnrecognized. Decode failures return a *Error with code
// CodeInvalidParams.
func (d *Dispatcher[V]) Dispatch(method string, params json.RawMessage) (V, error) {
	if len(params) == 0 {
		params = emptyObject
	}
	if decode, ok := d.byName[method]; ok {
		return decode(params)
	}
	if d.wildcard != nil {
		return d.wildcard(method, params)
	}
	var zero V
	return zero, fmt.Errorf("%w: %q", ErrUnrecognized, method)
}

// DispatchRequest dispatches a parsed incoming request.
func (d *Dispatcher[V]) DispatchRequest(req *Request) (V, error) {
	return d.Dispatch(req.Method, req.Params)
}
