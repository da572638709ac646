package logging

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"debug":    zerolog.DebugLevel,
		"WARN":     zerolog.WarnLevel,
		"warning":  zerolog.WarnLevel,
		"error":    zerolog.ErrorLevel,
		"disabled": zerolog.Disabled,
		"":         zerolog.InfoLevel,
		"verbose":  zerolog.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), "level %q", in)
	}
}

func TestRequestLoggerUsesRoutePattern(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "info", Format: "json", Output: &buf})
	t.Cleanup(func() { Init(Config{Level: "info"}) })

	r := chi.NewRouter()
	r.Use(RequestLogger)
	r.Get("/movie_details/{movieId}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/movie_details/42", nil))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "/movie_details/{movieId}", entry["route"])
	assert.Equal(t, float64(http.StatusNotFound), entry["status"])
	assert.Equal(t, "request", entry["message"])

	// The global logger is what the rest of the code writes to.
	buf.Reset()
	log.Info().Msg("hello")
	assert.Contains(t, buf.String(), `"hello"`)
}
