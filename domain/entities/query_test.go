package entities

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryResultJSON(t *testing.T) {
	res := NewQueryResult()
	res.Columns = []string{"id", "name"}
	res.Rows = append(res.Rows, []any{int64(1), "Alice"})

	data, err := json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t, `{"columns":["id","name"],"rows":[[1,"Alice"]]}`, string(data))
}

func TestQueryResultErrorOmitsPayload(t *testing.T) {
	data, err := json.Marshal(ErrorResult("no such table: staff"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"error":"no such table: staff"}`, string(data))
}

func TestQueryResultEmptyIsNotNull(t *testing.T) {
	data, err := json.Marshal(&QueryResult{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"columns":[],"rows":[]}`, string(data))
}

func TestQueryRequestDistinguishesAbsentField(t *testing.T) {
	var absent QueryRequest
	require.NoError(t, json.Unmarshal([]byte(`{}`), &absent))
	assert.Nil(t, absent.Query)

	var present QueryRequest
	require.NoError(t, json.Unmarshal([]byte(`{"query":"SELECT 1"}`), &present))
	require.NotNil(t, present.Query)
	assert.Equal(t, "SELECT 1", *present.Query)
}
