package main

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// EncodeJSON marshals an outgoing text frame
func EncodeJSON(event string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(Envelope{T: event, Data: payload})
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", event, err)
	}
	return data, nil
}

// EncodeBinary marshals an outgoing binary frame. The json tags double as
// msgpack field names so both frame kinds share one schema.
func EncodeBinary(event string, payload interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(Envelope{T: event, Data: payload}); err != nil {
		return nil, fmt.Errorf("encode %s: %w", event, err)
	}
	return buf.Bytes(), nil
}

// DecodeBinary is the inverse of EncodeBinary
func DecodeBinary(data []byte, v interface{}) error {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.SetCustomStructTag("json")
	return dec.Decode(v)
}

// binaryEvents are encoded with msgpack; everything else is JSON
var binaryEvents = map[string]bool{
	MsgRoundUpdate: true,
}

// Frame is an encoded outgoing message
type Frame struct {
	Data   []byte
	Binary bool
}

// EncodeFrame picks the encoding for event
func EncodeFrame(event string, payload interface{}) (Frame, error) {
	if binaryEvents[event] {
		data, err := EncodeBinary(event, payload)
		return Frame{Data: data, Binary: true}, err
	}
	data, err := EncodeJSON(event, payload)
	return Frame{Data: data}, err
}
