package envelope

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnwrapSuccess(t *testing.T) {
	var out struct {
		X int `json:"x"`
	}
	require.NoError(t, Unwrap([]byte(`{"success":true,"data":{"x":1}}`), &out))
	assert.Equal(t, 1, out.X)
}

func TestUnwrapScalarData(t *testing.T) {
	var token string
	require.NoError(t, Unwrap([]byte(`{"success":true,"message":"ok","data":"abc.def.ghi"}`), &token))
	assert.Equal(t, "abc.def.ghi", token)
}

func TestUnwrapVoid(t *testing.T) {
	assert.NoError(t, Unwrap([]byte(`{"success":true}`), nil))

	var out map[string]any
	require.NoError(t, Unwrap([]byte(`{"success":true,"data":null}`), &out))
	assert.Nil(t, out)
}

func TestUnwrapFailures(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		message string
	}{
		{name: "failure with message", body: `{"success":false,"message":"bad"}`, message: "bad"},
		{name: "failure without message", body: `{"success":false}`, message: GenericMessage},
		{name: "missing success", body: `{"data":{"x":1}}`, message: GenericMessage},
		{name: "success not a bool", body: `{"success":"true","data":1}`, message: GenericMessage},
		{name: "array body", body: `[1,2]`, message: GenericMessage},
		{name: "plain text", body: `Too many requests.`, message: GenericMessage},
		{name: "empty body", body: ``, message: GenericMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Unwrap([]byte(tt.body), nil)
			require.Error(t, err)

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.message, apiErr.Message)
			assert.True(t, IsAPIError(err))
		})
	}
}

func TestUnwrapDataTypeMismatch(t *testing.T) {
	var out []string
	err := Unwrap([]byte(`{"success":true,"data":{"x":1}}`), &out)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, GenericMessage, apiErr.Message)
	assert.Error(t, apiErr.Unwrap())
}

func TestMessage(t *testing.T) {
	msg, err := Message([]byte(`{"success":true,"message":"Review reported"}`))
	require.NoError(t, err)
	assert.Equal(t, "Review reported", msg)

	_, err = Message([]byte(`{"success":false,"message":"already reported"}`))
	assert.EqualError(t, err, "already reported")
}
