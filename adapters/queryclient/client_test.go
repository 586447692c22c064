package queryclient

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ketoprak/askandsign/domain/entities"
	"github.com/ketoprak/askandsign/internal/auth"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name string
		res  *entities.QueryResult
		want string
	}{
		{
			name: "error",
			res:  entities.ErrorResult("no such table: staff"),
			want: "Error: no such table: staff",
		},
		{
			name: "empty rows",
			res:  &entities.QueryResult{Columns: []string{"name"}, Rows: [][]any{}},
			want: NoDataMessage,
		},
		{
			name: "rows",
			res: &entities.QueryResult{
				Columns: []string{"name", "age"},
				Rows:    [][]any{{"Alice", float64(30)}},
			},
			want: "Columns: [\"name\",\"age\"]\n\n Rows: [[\"Alice\",30]]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(tt.res))
		})
	}
}

func TestExecuteSQLQuery(t *testing.T) {
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"columns":["n"],"rows":[[3]]}`)
	}))
	defer srv.Close()

	c := New(srv.URL, zaptest.NewLogger(t))
	out := c.ExecuteSQLQuery(context.Background(), "SELECT COUNT(*) AS n FROM employees")

	assert.JSONEq(t, `{"query":"SELECT COUNT(*) AS n FROM employees"}`, gotBody)
	assert.Equal(t, "Columns: [\"n\"]\n\n Rows: [[3]]", out)
}

func TestExecuteSQLQueryServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"error":"Missing 'query' field in request body"}`)
	}))
	defer srv.Close()

	out := New(srv.URL, zaptest.NewLogger(t)).ExecuteSQLQuery(context.Background(), "")
	assert.Equal(t, "Error: Missing 'query' field in request body", out)
}

func TestExecuteSQLQueryClientError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `<html>oops</html>`)
	}))
	defer srv.Close()

	out := New(srv.URL, zaptest.NewLogger(t)).ExecuteSQLQuery(context.Background(), "SELECT 1")
	assert.True(t, strings.HasPrefix(out, "Client error: "), out)

	srv.Close()
	out = New(srv.URL, zaptest.NewLogger(t)).ExecuteSQLQuery(context.Background(), "SELECT 1")
	assert.True(t, strings.HasPrefix(out, "Client error: "), out)
}

func TestExecuteSQLQuerySignsRequests(t *testing.T) {
	signer := auth.NewSigner("s3cret")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := auth.BearerToken(r.Header.Get("Authorization"))
		require.NoError(t, err)
		_, err = signer.ValidateToken(token)
		require.NoError(t, err)
		io.WriteString(w, `{"columns":[],"rows":[]}`)
	}))
	defer srv.Close()

	out := New(srv.URL, zaptest.NewLogger(t), WithSigner(signer)).ExecuteSQLQuery(context.Background(), "SELECT 1 WHERE 0")
	assert.Equal(t, NoDataMessage, out)
}
