package api

import (
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterpret_LoginSuccess(t *testing.T) {
	body := []byte(`{"status":201,"iserror":false,"message":"ok","data":{"token":"abc"}}`)

	env, err := Interpret[LoginData](201, body, nil)
	require.NoError(t, err)
	assert.Equal(t, "abc", env.Data.Token)
	assert.Equal(t, 201, env.Status)
	assert.Equal(t, "ok", env.Message)
	assert.False(t, env.IsError)
}

func TestInterpret_ServerErrorMessages(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"err_message_en", 401, `{"err_message_en":"Invalid credentials"}`, "Invalid credentials"},
		{"prefers err_message_en", 400, `{"message":"m","err_message":"e","err_message_en":"en"}`, "en"},
		{"err_message", 400, `{"err_message":"Email taken","message":"bad"}`, "Email taken"},
		{"message", 404, `{"message":"User not found"}`, "User not found"},
		{"non-string fields skipped", 422, `{"err_message_en":42,"message":"fallback"}`, "fallback"},
		{"no known keys", 403, `{"error":"nope"}`, "Server returned 403"},
		{"non-JSON", 500, `<html>Internal Server Error</html>`, "Server returned 500"},
		{"JSON array", 502, `["x"]`, "Server returned 502"},
		{"3xx counts as failure", 302, `{"message":"moved"}`, "moved"},
		{"success-shaped body on 500", 500, `{"status":500,"iserror":true,"message":"boom","data":{}}`, "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Interpret[LoginData](tt.status, []byte(tt.body), nil)
			var serverErr *ServerError
			require.ErrorAs(t, err, &serverErr)
			assert.Equal(t, tt.want, serverErr.Message)
			assert.Equal(t, tt.want, err.Error())
			assert.Equal(t, tt.status, serverErr.StatusCode)
			assert.Equal(t, KindServer, Kind(err))
		})
	}
}

func TestInterpret_MissingData(t *testing.T) {
	_, err := Interpret[LoginData](200, []byte(`{"status":200,"iserror":false,"message":"ok"}`), nil)
	require.ErrorIs(t, err, ErrDecodeFailed)
	assert.Equal(t, KindDecodeFailed, Kind(err))

	_, err = Interpret[LoginData](200, []byte(`{"status":200,"iserror":true,"message":"ok","err_message_en":"Session expired"}`), nil)
	var serverErr *ServerError
	require.ErrorAs(t, err, &serverErr)
	assert.Equal(t, "Session expired", serverErr.Message)
	assert.Equal(t, 200, serverErr.StatusCode)
}

func TestInterpret_DecodeFailures(t *testing.T) {
	bodies := map[string]string{
		"not JSON":           `ok`,
		"null data":          `{"status":200,"iserror":false,"message":"ok","data":null}`,
		"missing status":     `{"iserror":false,"message":"ok","data":{"token":"t"}}`,
		"missing iserror":    `{"status":200,"message":"ok","data":{"token":"t"}}`,
		"missing message":    `{"status":200,"iserror":false,"data":{"token":"t"}}`,
		"wrong status type":  `{"status":"200","iserror":false,"message":"ok","data":{"token":"t"}}`,
		"missing token":      `{"status":200,"iserror":false,"message":"ok","data":{}}`,
		"only err_message":   `{"err_message":"not used on 2xx"}`,
		"wrong data type":    `{"status":200,"iserror":false,"message":"ok","data":"abc"}`,
		"array instead of o": `[]`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			_, err := Interpret[LoginData](200, []byte(body), nil)
			require.ErrorIs(t, err, ErrDecodeFailed)
			assert.Equal(t, ErrDecodeFailed, errors.Unwrap(err))
		})
	}
}

func TestInterpret_RequiredUserFields(t *testing.T) {
	const prefix = `{"status":200,"iserror":false,"message":"ok","data":`
	tests := []struct {
		name    string
		decode  func(body []byte) error
		data    string
		wantErr bool
	}{
		{"user without _id", decodeAs[User], `{"email":"a@b.co"}`, true},
		{"user with null email", decodeAs[User], `{"_id":"1","email":null}`, true},
		{"user with empty email", decodeAs[User], `{"_id":"1","email":""}`, false},
		{"user with empty _id", decodeAs[User], `{"_id":"","email":"a@b.co"}`, false},
		{"list with a user missing email", decodeAs[UserList], `[{"_id":"1","email":"a@b.co"},{"_id":"2"}]`, true},
		{"list with an empty email", decodeAs[UserList], `[{"_id":"1","email":"a@b.co"},{"_id":"2","email":""}]`, false},
		{"empty list", decodeAs[UserList], `[]`, false},
		{"login with empty token", decodeAs[LoginData], `{"token":""}`, false},
		{"login without token", decodeAs[LoginData], `{"name":"Ada"}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.decode([]byte(prefix + tt.data + `}`))
			if tt.wantErr {
				require.ErrorIs(t, err, ErrDecodeFailed)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestInterpret_EmptyValuesKept(t *testing.T) {
	env, err := Interpret[UserList](200, []byte(`{"status":200,"iserror":false,"message":"ok","data":[{"_id":"1","email":""}]}`), nil)
	require.NoError(t, err)
	require.Len(t, env.Data, 1)
	assert.Equal(t, "1", env.Data[0].ID)
	assert.Empty(t, env.Data[0].Email)
}

func decodeAs[T any](body []byte) error {
	_, err := Interpret[T](200, body, nil)
	return err
}

func TestInterpret_IsErrorEnvelopePassesThrough(t *testing.T) {
	body := []byte(`{"status":200,"iserror":true,"message":"Email already registered","data":{"token":"x"}}`)

	env, err := Interpret[LoginData](200, body, nil)
	require.NoError(t, err)
	assert.True(t, env.IsError)

	envErr := env.Err()
	var e *EnvelopeError
	require.ErrorAs(t, envErr, &e)
	assert.Equal(t, "Email already registered", envErr.Error())
	assert.Equal(t, KindServer, Kind(envErr))
}

func TestInterpret_EmptyBody(t *testing.T) {
	for _, status := range []int{200, 204, 500} {
		_, err := Interpret[LoginData](status, nil, nil)
		require.ErrorIs(t, err, ErrNoResponseBody)
		assert.Equal(t, "No data received from server", err.Error())
	}
}

func TestInterpret_TransportErrorFirst(t *testing.T) {
	cause := &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}

	_, err := Interpret[LoginData](0, []byte(`{"status":200}`), cause)
	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Same(t, cause, errors.Unwrap(err))
	assert.True(t, IsTransportError(err))
	assert.Equal(t, KindTransport, Kind(err))

	_, err = Interpret[LoginData](0, nil, &TransportError{Err: cause})
	require.ErrorAs(t, err, &te)
	assert.Same(t, cause, te.Err, "existing transport errors are not double wrapped")
}
