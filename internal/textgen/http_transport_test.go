package textgen_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nikolayk812/storefront/internal/textgen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPTransportGenerate(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantText  string
		wantError bool
	}{
		{
			name:     "well formed reply",
			status:   http.StatusOK,
			body:     `{"candidates":[{"content":{"parts":[{"text":"Estilo que habla por vos."}]}}]}`,
			wantText: "Estilo que habla por vos.",
		},
		{
			name:     "no candidates",
			status:   http.StatusOK,
			body:     `{"candidates":[]}`,
			wantText: "",
		},
		{
			name:     "no parts",
			status:   http.StatusOK,
			body:     `{"candidates":[{"content":{}}]}`,
			wantText: "",
		},
		{
			name:     "client error body",
			status:   http.StatusBadRequest,
			body:     `{"error":{"code":400,"message":"API key not valid"}}`,
			wantText: "",
		},
		{
			name:      "server error",
			status:    http.StatusServiceUnavailable,
			body:      `{}`,
			wantError: true,
		},
		{
			name:      "rate limited",
			status:    http.StatusTooManyRequests,
			body:      `{}`,
			wantError: true,
		},
		{
			name:      "not json",
			status:    http.StatusOK,
			body:      `<html>oops</html>`,
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotBody map[string]any
			var gotPath, gotKey string

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path
				gotKey = r.URL.Query().Get("key")
				raw, _ := io.ReadAll(r.Body)
				_ = json.Unmarshal(raw, &gotBody)

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			transport := textgen.NewHTTPTransport(textgen.HTTPConfig{
				APIKey:  "secret",
				BaseURL: srv.URL,
				Model:   "test-model",
				Timeout: 5 * time.Second,
			})

			text, err := transport.Generate(t.Context(), "hola")
			if tt.wantError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantText, text)

			assert.Equal(t, "/models/test-model:generateContent", gotPath)
			assert.Equal(t, "secret", gotKey)
			assert.Equal(t, map[string]any{
				"contents": []any{map[string]any{"parts": []any{map[string]any{"text": "hola"}}}},
			}, gotBody)
		})
	}
}

func TestHTTPTransportWithGenerator(t *testing.T) {
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = io.WriteString(w, `{"candidates":[{"content":{"parts":[{"text":"Tercera es la vencida."}]}}]}`)
	}))
	defer srv.Close()

	transport := textgen.NewHTTPTransport(textgen.HTTPConfig{BaseURL: srv.URL, Timeout: time.Second})
	g := textgen.NewGenerator(transport, textgen.WithBaseDelay(time.Millisecond))

	got := g.Slogan(t.Context(), "Campera")

	assert.False(t, got.IsFallback())
	assert.Equal(t, "Tercera es la vencida.", got.Text)
	assert.Equal(t, int32(3), calls.Load())
}
