package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bullion/bullion-cli/internal/debug"
)

// keyedPayload is implemented by payload types whose JSON objects must carry
// certain keys. Presence is what counts: an empty string is a valid value. For
// array payloads the keys apply to every element.
type keyedPayload interface {
	requiredKeys() []string
}

// rawEnvelope detects missing envelope keys before Data is decoded into T.
type rawEnvelope struct {
	Status  *int            `json:"status"`
	IsError *bool           `json:"iserror"`
	Message *string         `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Interpret classifies a completed exchange. In order: a transport error is
// returned as *TransportError; an empty body is ErrNoResponseBody; a non-2xx
// status is a *ServerError; a 2xx body is strictly decoded into Envelope[T].
//
// A decoded envelope is returned as-is even when its iserror flag is set;
// use Envelope.Err to reject those.
func Interpret[T any](status int, body []byte, transportErr error) (*Envelope[T], error) {
	if transportErr != nil {
		var te *TransportError
		if errors.As(transportErr, &te) {
			return nil, te
		}
		return nil, &TransportError{Err: transportErr}
	}

	if len(body) == 0 {
		return nil, ErrNoResponseBody
	}

	if status < 200 || status > 299 {
		message, ok := errorMessage(body)
		if !ok {
			message = fmt.Sprintf("Server returned %d", status)
		}
		return nil, &ServerError{StatusCode: status, Message: message}
	}

	env, err := decodeEnvelope[T](body)
	if err != nil {
		if message, ok := stringField(body, "err_message_en"); ok {
			return nil, &ServerError{StatusCode: status, Message: message}
		}
		return nil, fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}
	return env, nil
}

func decodeEnvelope[T any](body []byte) (*Envelope[T], error) {
	var raw rawEnvelope
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}
	switch {
	case raw.Status == nil:
		return nil, errors.New("missing key status")
	case raw.IsError == nil:
		return nil, errors.New("missing key iserror")
	case raw.Message == nil:
		return nil, errors.New("missing key message")
	case len(raw.Data) == 0 || bytes.Equal(bytes.TrimSpace(raw.Data), []byte("null")):
		return nil, errors.New("missing key data")
	}

	env := &Envelope[T]{
		Status:  *raw.Status,
		IsError: *raw.IsError,
		Message: *raw.Message,
	}
	if err := json.Unmarshal(raw.Data, &env.Data); err != nil {
		return nil, fmt.Errorf("data: %w", err)
	}
	if p, ok := any(env.Data).(keyedPayload); ok {
		if err := checkKeys(raw.Data, p.requiredKeys()); err != nil {
			return nil, fmt.Errorf("data: %w", err)
		}
	}
	return env, nil
}

// checkKeys reports the first required key that is absent or null in the
// object, or in any object of the array, held by data.
func checkKeys(data json.RawMessage, keys []string) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return err
		}
		for i, item := range items {
			if err := missingKey(item, keys); err != nil {
				return fmt.Errorf("item %d: %w", i, err)
			}
		}
		return nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return err
	}
	return missingKey(obj, keys)
}

func missingKey(obj map[string]json.RawMessage, keys []string) error {
	for _, key := range keys {
		v, ok := obj[key]
		if !ok || bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
			return fmt.Errorf("missing key %s", key)
		}
	}
	return nil
}

// errorMessage returns the first string among err_message_en, err_message
// and message in a JSON object body.
func errorMessage(body []byte) (string, bool) {
	var obj map[string]any
	if err := json.Unmarshal(body, &obj); err != nil {
		return "", false
	}
	for _, key := range []string{"err_message_en", "err_message", "message"} {
		if s, ok := obj[key].(string); ok {
			return s, true
		}
	}
	return "", false
}

func stringField(body []byte, key string) (string, bool) {
	var obj map[string]any
	if err := json.Unmarshal(body, &obj); err != nil {
		return "", false
	}
	s, ok := obj[key].(string)
	return s, ok
}

// logPayload logs a JSON object response with long strings truncated.
func logPayload(ctx context.Context, ep Endpoint, status int, body []byte) {
	if !debug.IsEnabled(ctx) {
		return
	}
	var obj map[string]any
	if err := json.Unmarshal(body, &obj); err != nil {
		return
	}
	slog.Debug("response", "endpoint", ep.String(), "status", status, "payload", debug.TruncateStrings(obj, debug.MaxLoggedString))
}
