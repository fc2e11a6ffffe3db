// Package hub fans pre-encoded JSON out to websocket clients using a single
// goroutine that owns the client set.
package hub

import "encoding/json"

// Message is one websocket text frame, tagged with the topic it belongs to.
type Message struct {
	Topic string
	Data  []byte
}

// NewMessage wraps pre-encoded JSON.
func NewMessage(topic string, data []byte) Message {
	return Message{Topic: topic, Data: data}
}

// envelope is the wire shape dashboard clients read.
type envelope struct {
	Topic string `json:"topic"`
	Data  any    `json:"data"`
}

// Encode builds a message whose payload is {"topic": ..., "data": v}.
func Encode(topic string, v any) (Message, error) {
	data, err := json.Marshal(envelope{Topic: topic, Data: v})
	if err != nil {
		return Message{}, err
	}
	return NewMessage(topic, data), nil
}
