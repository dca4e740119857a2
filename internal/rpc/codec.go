// Package rpc serves Munera's Connect services. Messages are plain Go
// structs carried by a JSON codec, so browsers and curl can call every
// procedure with Content-Type: application/json.
package rpc

import (
	"encoding/json"
	"fmt"
)

// jsonCodec replaces Connect's protobuf-only JSON codec.
type jsonCodec struct{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (jsonCodec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, msg); err != nil {
		return fmt.Errorf("failed to decode message: %w", err)
	}
	return nil
}
