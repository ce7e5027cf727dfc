package cdp

import (
	"encoding/json"
	"errors"
	"testing"
)

// pageMessage mirrors the aggregate enums generated per domain: one variant
// per command, with an optional catch-all.
type pageMessage interface{ isPageMessage() }

type pageEnable struct{}

func (pageEnable) isPageMessage() {}

type pageNavigate struct {
	Cmd navigateCmd
}

func (pageNavigate) isPageMessage() {}

type pageOther struct {
	Method string
	Params json.RawMessage
}

func (pageOther) isPageMessage() {}

func newPageDispatcher(withWildcard bool) *Dispatcher[pageMessage] {
	variants := []Variant[pageMessage]{
		Unit[pageMessage]("Page.enable", pageEnable{}),
		Cmd(func(c navigateCmd) pageMessage { return pageNavigate{Cmd: c} }),
	}
	if withWildcard {
		variants = append(variants, Wildcard(func(method string, params json.RawMessage) (pageMessage, error) {
			return pageOther{Method: method, Params: params}, nil
		}))
	}
	return MustDispatcher(variants...)
}

func TestDispatchUnit(t *testing.T) {
	d := newPageDispatcher(false)
	got, err := d.Dispatch("Page.enable", json.RawMessage(`{}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := got.(pageEnable); !ok {
		t.Errorf("expected pageEnable, got %T", got)
	}
}

func TestDispatchUnitParams(t *testing.T) {
	d := newPageDispatcher(false)

	// Members of the params object are ignored.
	if _, err := d.Dispatch("Page.enable", json.RawMessage(`{"extra":1}`)); err != nil {
		t.Errorf("unexpected error for object params: %v", err)
	}

	// Nil params stand in for the empty object.
	if _, err := d.Dispatch("Page.enable", nil); err != nil {
		t.Errorf("unexpected error for nil params: %v", err)
	}

	// Anything that is not an object is rejected.
	_, err := d.Dispatch("Page.enable", json.RawMessage(`[1]`))
	var protoErr *Error
	if !errors.As(err, &protoErr) || protoErr.Code != CodeInvalidParams {
		t.Errorf("expected invalid params error, got %v", err)
	}
}

func TestDispatchTyped(t *testing.T) {
	d := newPageDispatcher(false)
	got, err := d.Dispatch("Page.navigate", json.RawMessage(`{"url":"https://example.com"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	nav, ok := got.(pageNavigate)
	if !ok {
		t.Fatalf("expected pageNavigate, got %T", got)
	}
	if nav.Cmd.URL != "https://example.com" {
		t.Errorf("expected url to survive decoding, got %q", nav.Cmd.URL)
	}
}

func TestDispatchInvalidParams(t *testing.T) {
	d := newPageDispatcher(false)
	_, err := d.Dispatch("Page.navigate", json.RawMessage(`{"url":7}`))
	var protoErr *Error
	if !errors.As(err, &protoErr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if protoErr.Code != CodeInvalidParams {
		t.Errorf("expected code %d, got %d", CodeInvalidParams, protoErr.Code)
	}
}

func TestDispatchUnrecognized(t *testing.T) {
	d := newPageDispatcher(false)
	_, err := d.Dispatch("Network.enable", json.RawMessage(`{}`))
	if !errors.Is(err, ErrUnrecognized) {
		t.Errorf("expected ErrUnrecognized, got %v", err)
	}
}

// An explicit name match must win over the wildcard; anything else falls
// through with the raw bytes intact.
func TestDispatchPrecedence(t *testing.T) {
	d := newPageDispatcher(true)

	got, err := d.Dispatch("Page.navigate", json.RawMessage(`{"url":"https://example.com"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := got.(pageNavigate); !ok {
		t.Errorf("expected named variant to win over wildcard, got %T", got)
	}

	raw := json.RawMessage(`{"weird":[1,null,"x"]}`)
	got, err = d.Dispatch("Debugger.pause", raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	other, ok := got.(pageOther)
	if !ok {
		t.Fatalf("expected wildcard variant, got %T", got)
	}
	if other.Method != "Debugger.pause" {
		t.Errorf("expected method to pass through, got %q", other.Method)
	}
	if string(other.Params) != string(raw) {
		t.Errorf("expected params preserved byte-for-byte, got %s", other.Params)
	}
}

func TestDispatchRequest(t *testing.T) {
	d := newPageDispatcher(false)
	req, err := ParseRequest([]byte(`{"id":1,"method":"Page.enable"}`))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	got, err := d.DispatchRequest(req)
	if err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	if _, ok := got.(pageEnable); !ok {
		t.Errorf("expected pageEnable, got %T", got)
	}
}

func TestNewDispatcherValidation(t *testing.T) {
	wildcard := Wildcard(func(method string, params json.RawMessage) (pageMessage, error) {
		return pageOther{Method: method, Params: params}, nil
	})

	tests := []struct {
		name     string
		variants []Variant[pageMessage]
	}{
		{
			name:     "no variants",
			variants: nil,
		},
		{
			name: "duplicate name",
			variants: []Variant[pageMessage]{
				Unit[pageMessage]("Page.enable", pageEnable{}),
				Unit[pageMessage]("Page.enable", pageEnable{}),
			},
		},
		{
			name: "wildcard not last",
			variants: []Variant[pageMessage]{
				wildcard,
				Unit[pageMessage]("Page.enable", pageEnable{}),
			},
		},
		{
			name: "two wildcards",
			variants: []Variant[pageMessage]{
				wildcard,
				wildcard,
			},
		},
		{
			name: "empty name",
			variants: []Variant[pageMessage]{
				Unit[pageMessage]("", pageEnable{}),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewDispatcher(tt.variants...); err == nil {
				t.Error("expected construction to fail")
			}
		})
	}
}

func TestEvtVariant(t *testing.T) {
	type wrapped struct{ ev loadFiredEvent }
	d := MustDispatcher(
		Evt(func(e loadFiredEvent) wrapped { return wrapped{ev: e} }),
	)
	got, err := d.Dispatch("Page.loadEventFired", json.RawMessage(`{"timestamp":3.25}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ev.Timestamp != 3.25 {
		t.Errorf("expected timestamp 3.25, got %v", got.ev.Timestamp)
	}
}

func TestExactVariant(t *testing.T) {
	type params struct {
		Depth int `json:"depth"`
	}
	d := MustDispatcher(
		Exact("DOM.getDocument", func(p params) int { return p.Depth }),
	)
	got, err := d.Dispatch("DOM.getDocument", json.RawMessage(`{"depth":-1}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != -1 {
		t.Errorf("expected -1, got %d", got)
	}
}
