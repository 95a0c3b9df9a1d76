package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/iurnickita/shopadmin/internal/logger/config"
)

func TestNewZapLog(t *testing.T) {
	zl, err := NewZapLog(config.Config{LogLevel: "debug"})
	require.NoError(t, err)
	require.True(t, zl.Core().Enabled(zapcore.DebugLevel))

	_, err = NewZapLog(config.Config{LogLevel: "loud"})
	require.Error(t, err)
}

func TestRequestLogMdlw(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	h := RequestLogMdlw(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("short and stout"))
	}, zap.New(core))

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/admin/", nil))

	require.Equal(t, http.StatusTeapot, rec.Code)
	require.NotEmpty(t, rec.Header().Get(HeaderRequestID))

	entries := logs.All()
	require.Len(t, entries, 2)
	fields := entries[1].ContextMap()
	require.EqualValues(t, http.StatusTeapot, fields["code"])
	require.EqualValues(t, len("short and stout"), fields["length"])
	require.Equal(t, rec.Header().Get(HeaderRequestID), fields["request_id"])
}

func TestRequestLogMdlwKeepsRequestID(t *testing.T) {
	h := RequestLogMdlw(func(w http.ResponseWriter, r *http.Request) {}, zap.NewNop())

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set(HeaderRequestID, "abc")
	rec := httptest.NewRecorder()
	h(rec, r)
	require.Equal(t, "abc", rec.Header().Get(HeaderRequestID))
}
