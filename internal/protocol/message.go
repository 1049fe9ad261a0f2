// Package protocol defines the WebSocket wire envelope and the
// non-event message types exchanged over it.
package protocol

import (
	"encoding/json"
	"fmt"

	"scrabbled/internal/event"
)

// MessageType is the outer "type" discriminator of every frame.
type MessageType string

const (
	TypeAuthRequest   MessageType = "AUTH_REQUEST"
	TypeAuthResponse  MessageType = "AUTH_RESPONSE"
	TypeNewConnection MessageType = "NEW_CONNECTION"
	TypeEndConnection MessageType = "END_CONNECTION"
	TypeEvent         MessageType = "EVENT"
)

// Status is the wire-level state of an EVENT message's payload.
type Status string

const (
	StatusRequested Status = "REQUESTED"
	StatusApproved  Status = "APPROVED"
	StatusRejected  Status = "REJECTED"
)

// Message is the envelope every frame is sent as: {"type":..., "payload":...}.
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// AuthRequest is the client's mandatory first frame.
type AuthRequest struct {
	Username string `json:"username"`
	GameID   int    `json:"game_id"`
}

// AuthResponse answers an AuthRequest.
type AuthResponse struct {
	OK bool `json:"ok"`
}

// NewConnection announces a peer joining the same game.
type NewConnection struct {
	Username string `json:"username"`
}

// EndConnection announces a peer leaving the game.
type EndConnection struct {
	Username string `json:"username"`
}

// EventPayload wraps an Event with its wire status.
type EventPayload struct {
	Event  event.Event
	Status Status
}

type eventPayloadJSON struct {
	Event  json.RawMessage `json:"event"`
	Status Status          `json:"status"`
	Reason string          `json:"reason,omitempty"`
}

// ErrUnknownMessageType is returned by Decode for an unrecognized "type".
var ErrUnknownMessageType = fmt.Errorf("protocol: unknown message type")

// NewAuthRequest builds an AUTH_REQUEST frame.
func NewAuthRequest(username string, gameID int) (Message, error) {
	return encode(TypeAuthRequest, AuthRequest{Username: username, GameID: gameID})
}

// NewAuthResponse builds an AUTH_RESPONSE frame.
func NewAuthResponse(ok bool) (Message, error) {
	return encode(TypeAuthResponse, AuthResponse{OK: ok})
}

// NewConnectionMessage builds a NEW_CONNECTION frame.
func NewConnectionMessage(username string) (Message, error) {
	return encode(TypeNewConnection, NewConnection{Username: username})
}

// NewEndConnectionMessage builds an END_CONNECTION frame.
func NewEndConnectionMessage(username string) (Message, error) {
	return encode(TypeEndConnection, EndConnection{Username: username})
}

// NewEventMessage wraps e with status into an EVENT frame. reason is
// emitted only when non-empty; the engine sets it only for
// StatusRejected.
func NewEventMessage(e event.Event, status Status, reason string) (Message, error) {
	rawEvent, err := event.Marshal(e)
	if err != nil {
		return Message{}, err
	}
	payload := eventPayloadJSON{Event: rawEvent, Status: status, Reason: reason}
	return encode(TypeEvent, payload)
}

func encode(t MessageType, payload any) (Message, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}
	return Message{Type: t, Payload: raw}, nil
}

// DecodeAuthRequest decodes m's payload as an AuthRequest; m must have
// Type == TypeAuthRequest.
func DecodeAuthRequest(m Message) (AuthRequest, error) {
	var a AuthRequest
	err := json.Unmarshal(m.Payload, &a)
	return a, err
}

// DecodedEvent is the result of decoding an EVENT frame's payload.
type DecodedEvent struct {
	Event  event.Event
	Status Status
	Reason string
}

// DecodeEvent decodes m's payload as an EventPayload; m must have
// Type == TypeEvent.
func DecodeEvent(m Message) (DecodedEvent, error) {
	var p eventPayloadJSON
	if err := json.Unmarshal(m.Payload, &p); err != nil {
		return DecodedEvent{}, err
	}
	e, err := event.Unmarshal(p.Event)
	if err != nil {
		return DecodedEvent{}, err
	}
	return DecodedEvent{Event: e, Status: p.Status, Reason: p.Reason}, nil
}
