package util

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
)

func TestIsRetryableError(t *testing.T) {
	jsonErr := json.Unmarshal([]byte(`{"process_id":`), &struct{}{})
	typeErr := json.Unmarshal([]byte(`{"n": "x"}`), &struct {
		N int64 `json:"n"`
	}{})

	cases := []struct {
		name      string
		err       error
		retryable bool
		errType   string
	}{
		{"nil", nil, false, ""},
		{"json syntax", jsonErr, false, "json_decode_error"},
		{"json type", typeErr, false, "json_decode_error"},
		{"wrapped json", fmt.Errorf("handler: %w", jsonErr), false, "json_decode_error"},
		{"no rows", fmt.Errorf("find: %w", pgx.ErrNoRows), false, "not_found"},
		{"duplicate key", errors.New(`duplicate key value violates unique constraint "milestones_pkey"`), false, "duplicate_key"},
		{"db connection", errors.New("failed to connect to host: connection refused"), true, "db_connection_error"},
		{"deadline", context.DeadlineExceeded, true, "timeout"},
		{"canceled", context.Canceled, false, "context_canceled"},
		{"unknown", errors.New("something went sideways"), false, "unknown_error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			retryable, errType := IsRetryableError(tc.err)
			assert.Equal(t, tc.retryable, retryable)
			assert.Equal(t, tc.errType, errType)
		})
	}
}
