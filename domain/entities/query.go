package entities

import "encoding/json"

// QueryRequest is the body accepted by POST /query.
// Query is nil when the field is absent from the JSON document.
type QueryRequest struct {
	Query *string `json:"query"`
}

// QueryResult is the body returned by POST /query. Error is mutually
// exclusive with Columns/Rows.
type QueryResult struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
	Error   string   `json:"error,omitempty"`
}

// NewQueryResult returns an empty, non-nil success payload
func NewQueryResult() *QueryResult {
	return &QueryResult{Columns: []string{}, Rows: [][]any{}}
}

// ErrorResult returns a payload carrying only an error message
func ErrorResult(msg string) *QueryResult {
	return &QueryResult{Error: msg}
}

// Failed reports whether the result carries an error
func (r *QueryResult) Failed() bool {
	return r.Error != ""
}

// MarshalJSON emits {"error": ...} alone for failures and {"columns", "rows"}
// otherwise.
func (r QueryResult) MarshalJSON() ([]byte, error) {
	if r.Error != "" {
		return json.Marshal(struct {
			Error string `json:"error"`
		}{r.Error})
	}
	cols := r.Columns
	if cols == nil {
		cols = []string{}
	}
	rows := r.Rows
	if rows == nil {
		rows = [][]any{}
	}
	return json.Marshal(struct {
		Columns []string `json:"columns"`
		Rows    [][]any  `json:"rows"`
	}{cols, rows})
}
