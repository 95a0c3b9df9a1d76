package session

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iurnickita/shopadmin/internal/model"
)

// nextRequest carries the cookies set by rec into a new request.
func nextRequest(rec *httptest.ResponseRecorder) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		r.AddCookie(c)
	}
	return r
}

func newSessions(t *testing.T) *Sessions {
	t.Helper()
	key, err := GenerateKey()
	require.NoError(t, err)
	return NewSessions(key, false)
}

func TestSearch(t *testing.T) {
	s := newSessions(t)

	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	err := s.SetSearch(rec, r, ProductSearchKey, model.ProductSearch{Stock: []model.ProductStock{model.ProductStockOut}})
	require.NoError(t, err)

	var filter model.ProductSearch
	found, err := s.GetSearch(nextRequest(rec), ProductSearchKey, &filter)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []model.ProductStock{model.ProductStockOut}, filter.Stock)

	var customer model.CustomerSearch
	found, err = s.GetSearch(nextRequest(rec), CustomerSearchKey, &customer)
	require.NoError(t, err)
	require.False(t, found)
}

func TestCSRFToken(t *testing.T) {
	s := newSessions(t)

	rec := httptest.NewRecorder()
	token, err := s.CSRFToken(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	require.NotEmpty(t, token)

	r := nextRequest(rec)
	require.True(t, s.ValidCSRFToken(r, token))
	require.False(t, s.ValidCSRFToken(r, token+"x"))
	require.False(t, s.ValidCSRFToken(r, ""))

	// без куки токен не принимается
	require.False(t, s.ValidCSRFToken(httptest.NewRequest(http.MethodGet, "/", nil), token))

	// повторный запрос отдает тот же токен
	again, err := s.CSRFToken(httptest.NewRecorder(), nextRequest(rec))
	require.NoError(t, err)
	require.Equal(t, token, again)
}

func TestFlash(t *testing.T) {
	s := newSessions(t)

	rec := httptest.NewRecorder()
	require.NoError(t, s.SetAuthError(rec, httptest.NewRequest(http.MethodGet, "/", nil), "bad credentials"))

	rec2 := httptest.NewRecorder()
	msg, err := s.PopAuthError(rec2, nextRequest(rec))
	require.NoError(t, err)
	require.Equal(t, "bad credentials", msg)

	msg, err = s.PopAuthError(httptest.NewRecorder(), nextRequest(rec2))
	require.NoError(t, err)
	require.Empty(t, msg)
}

func TestTamperedCookie(t *testing.T) {
	s := newSessions(t)
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: SessionName, Value: "garbage"})

	var filter model.ProductSearch
	found, err := s.GetSearch(r, ProductSearchKey, &filter)
	require.NoError(t, err)
	require.False(t, found)
}
