package redis

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type statusDoc struct {
	Status   string   `json:"status"`
	Attempts int      `json:"attempts"`
	Errors   []string `json:"errors"`
}

func TestApplyUpdateKeepsForeignFields(t *testing.T) {
	stored := []byte(`{"status":"submitted","attempts":1,"errors":null,"owner":"sequencer","nested":{"a":1}}`)

	var doc statusDoc
	merged, err := applyUpdate(stored, &doc, func() {
		doc.Status = "started"
		doc.Attempts++
		doc.Errors = append(doc.Errors, "boom")
	})
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(merged, &got))
	assert.Equal(t, map[string]interface{}{
		"status":   "started",
		"attempts": 2.0,
		"errors":   []interface{}{"boom"},
		"owner":    "sequencer",
		"nested":   map[string]interface{}{"a": 1.0},
	}, got)
}

func TestApplyUpdateWithoutChanges(t *testing.T) {
	stored := []byte(`{"status":"started","attempts":3,"errors":["x"],"owner":"sequencer"}`)
	var doc statusDoc
	merged, err := applyUpdate(stored, &doc, func() {})
	require.NoError(t, err)
	assert.JSONEq(t, string(stored), string(merged))
}

func TestApplyUpdateRejectsInvalidDocuments(t *testing.T) {
	var doc statusDoc
	_, err := applyUpdate([]byte(`{"status":`), &doc, func() {})
	assert.Error(t, err)
}
