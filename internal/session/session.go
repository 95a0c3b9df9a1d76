package session

import (
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
)

const (
	SessionName = "shopadmin-session"

	// Фильтры поиска для списков товаров и покупателей
	ProductSearchKey  = "admin.product.search"
	CustomerSearchKey = "admin.customer.search"

	csrfTokenKey = "csrf_token"
	authErrorKey = "auth_error"
	successKey   = "success"
)

var ErrRandom = errors.New("random key generation failed")

// Sessions keeps per-browser state in a signed cookie.
type Sessions struct {
	store sessions.Store
}

func NewSessions(key []byte, secure bool) *Sessions {
	store := sessions.NewCookieStore(key)
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &Sessions{store: store}
}

// GenerateKey returns a fresh random session key.
func GenerateKey() ([]byte, error) {
	key := securecookie.GenerateRandomKey(32)
	if key == nil {
		return nil, ErrRandom
	}
	return key, nil
}

func (s *Sessions) get(r *http.Request) (*sessions.Session, error) {
	// при поврежденной куке хранилище отдает новую пустую сессию вместе с ошибкой
	sess, err := s.store.Get(r, SessionName)
	if sess == nil {
		return nil, err
	}
	return sess, nil
}

// SetSearch stores a search filter under key.
func (s *Sessions) SetSearch(w http.ResponseWriter, r *http.Request, key string, filter any) error {
	raw, err := json.Marshal(filter)
	if err != nil {
		return err
	}
	sess, err := s.get(r)
	if err != nil {
		return err
	}
	sess.Values[key] = string(raw)
	return sess.Save(r, w)
}

// GetSearch decodes the filter stored under key into dst.
func (s *Sessions) GetSearch(r *http.Request, key string, dst any) (bool, error) {
	sess, err := s.get(r)
	if err != nil {
		return false, err
	}
	raw, ok := sess.Values[key].(string)
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal([]byte(raw), dst)
}

// CSRFToken returns the session token, creating it on first use.
func (s *Sessions) CSRFToken(w http.ResponseWriter, r *http.Request) (string, error) {
	sess, err := s.get(r)
	if err != nil {
		return "", err
	}
	if token, ok := sess.Values[csrfTokenKey].(string); ok && token != "" {
		return token, nil
	}
	key := securecookie.GenerateRandomKey(32)
	if key == nil {
		return "", ErrRandom
	}
	token := base64.RawURLEncoding.EncodeToString(key)
	sess.Values[csrfTokenKey] = token
	return token, sess.Save(r, w)
}

func (s *Sessions) ValidCSRFToken(r *http.Request, token string) bool {
	if token == "" {
		return false
	}
	sess, err := s.get(r)
	if err != nil {
		return false
	}
	expected, ok := sess.Values[csrfTokenKey].(string)
	if !ok || expected == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(token)) == 1
}

func (s *Sessions) SetAuthError(w http.ResponseWriter, r *http.Request, msg string) error {
	return s.addFlash(w, r, msg, authErrorKey)
}

// PopAuthError returns and clears the last authentication error.
func (s *Sessions) PopAuthError(w http.ResponseWriter, r *http.Request) (string, error) {
	return s.popFlash(w, r, authErrorKey)
}

func (s *Sessions) AddSuccess(w http.ResponseWriter, r *http.Request, msg string) error {
	return s.addFlash(w, r, msg, successKey)
}

func (s *Sessions) PopSuccess(w http.ResponseWriter, r *http.Request) (string, error) {
	return s.popFlash(w, r, successKey)
}

func (s *Sessions) addFlash(w http.ResponseWriter, r *http.Request, msg string, key string) error {
	sess, err := s.get(r)
	if err != nil {
		return err
	}
	sess.AddFlash(msg, key)
	return sess.Save(r, w)
}

func (s *Sessions) popFlash(w http.ResponseWriter, r *http.Request, key string) (string, error) {
	sess, err := s.get(r)
	if err != nil {
		return "", err
	}
	flashes := sess.Flashes(key)
	if len(flashes) == 0 {
		return "", nil
	}
	if err := sess.Save(r, w); err != nil {
		return "", err
	}
	msg, _ := flashes[len(flashes)-1].(string)
	return msg, nil
}

// Clear drops every value of the session.
func (s *Sessions) Clear(w http.ResponseWriter, r *http.Request) error {
	sess, err := s.get(r)
	if err != nil {
		return err
	}
	sess.Values = make(map[interface{}]interface{})
	sess.Options = &sessions.Options{Path: "/", MaxAge: -1}
	return sess.Save(r, w)
}
