// Package cdp implements the message envelope and typed dispatch layer of
// the Chrome DevTools wire protocol: numbered commands, named events, and a
// fixed JSON-RPC-derived error taxonomy.
//
// The package is transport-free. It parses and produces message payloads and
// decides, given a (method, params) pair, which typed value the payload
// deserializes into. Connection handling, HTTP discovery, and WebSocket
// framing live with the caller.
//
// Typed bindings for the protocol's domains are produced by the cdpgen
// subpackage from the machine-readable protocol schema.
package cdp
