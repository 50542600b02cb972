package api

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResult_MarshalSuccessFlattensPayload(t *testing.T) {
	payload := struct {
		GeneratedID string `json:"generatedId"`
		Count       int    `json:"count"`
	}{"TC-LOGIN-001", 2}

	data, err := json.Marshal(Success(payload))

	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"generatedId":"TC-LOGIN-001","count":2}`, string(data))
}

func TestResult_MarshalFailure(t *testing.T) {
	data, err := json.Marshal(Failure(NotFound("Directory not found: %s", "/tmp/x")))

	require.NoError(t, err)
	assert.JSONEq(t, `{"success":false,"error":"Directory not found: /tmp/x"}`, string(data))
}

func TestResult_NonObjectPayloadFails(t *testing.T) {
	_, err := json.Marshal(Success([]string{"a"}))

	assert.Error(t, err)
}

func TestErrorKinds(t *testing.T) {
	err := InvalidInput("meta is required")

	assert.Equal(t, "meta is required", err.Error())
	assert.True(t, IsInputError(err))
	assert.True(t, errors.Is(err, ErrInvalidInput))
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.True(t, errors.Is(AlreadyExists("x"), ErrAlreadyExists))
}
