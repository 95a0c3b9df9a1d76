package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/iurnickita/shopadmin/internal/auth/config"
	"github.com/iurnickita/shopadmin/internal/password"
	"github.com/iurnickita/shopadmin/internal/session"
	"github.com/iurnickita/shopadmin/internal/store"
	"github.com/iurnickita/shopadmin/internal/token"
)

type Auth interface {
	LoginPage(w http.ResponseWriter, r *http.Request)
	Login(w http.ResponseWriter, r *http.Request)
	Logout(w http.ResponseWriter, r *http.Request)
	Middleware(h http.HandlerFunc) http.HandlerFunc
}

var ErrInvalidCredentials = errors.New("invalid login id or password")

const cookieMemberToken = "shopadminMemberToken"

type ctxKey struct{}

// MemberID returns the authenticated member set by Middleware.
func MemberID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ctxKey{}).(string)
	return id, ok && id != ""
}

// WithMemberID returns a context carrying the member id.
func WithMemberID(ctx context.Context, memberID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, memberID)
}

type auth struct {
	cfg      config.Config
	store    store.Store
	sessions *session.Sessions
	encoder  password.Encoder
	tokens   *token.Tokens
	zaplog   *zap.Logger
}

func NewAuth(cfg config.Config, store store.Store, sessions *session.Sessions, encoder password.Encoder, zaplog *zap.Logger) Auth {
	return &auth{
		cfg:      cfg,
		store:    store,
		sessions: sessions,
		encoder:  encoder,
		tokens:   token.NewTokens(cfg.JWTSecret, cfg.TokenTTL),
		zaplog:   zaplog,
	}
}

type LoginPageJSONResponse struct {
	Error     string `json:"error"`
	CSRFToken string `json:"csrfToken"`
}

func (a *auth) LoginPage(w http.ResponseWriter, r *http.Request) {
	// уже вошли
	if _, err := a.getMemberID(r); err == nil {
		http.Redirect(w, r, a.cfg.HomePath, http.StatusFound)
		return
	}

	lastError, err := a.sessions.PopAuthError(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	csrfToken, err := a.sessions.CSRFToken(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	responseJSON, err := json.Marshal(LoginPageJSONResponse{Error: lastError, CSRFToken: csrfToken})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(responseJSON)
}

func (a *auth) Login(w http.ResponseWriter, r *http.Request) {
	err := r.ParseForm()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !a.sessions.ValidCSRFToken(r, r.PostForm.Get("_token")) {
		http.Error(w, "", http.StatusBadRequest)
		return
	}

	memberID, err := a.authenticate(r.Context(), r.PostForm.Get("login_id"), r.PostForm.Get("password"))
	if err != nil {
		switch err {
		case ErrInvalidCredentials:
			a.zaplog.Info("login failed", zap.String("login", r.PostForm.Get("login_id")))
			if err := a.sessions.SetAuthError(w, r, err.Error()); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			http.Redirect(w, r, a.cfg.LoginPath, http.StatusSeeOther)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	tokenString, err := a.tokens.Build(memberID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cookieMemberToken,
		Value:    tokenString,
		Path:     "/",
		MaxAge:   int(a.cfg.TokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   a.cfg.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, a.cfg.HomePath, http.StatusSeeOther)
}

func (a *auth) authenticate(ctx context.Context, login string, pass string) (string, error) {
	if login == "" || pass == "" {
		return "", ErrInvalidCredentials
	}
	member, err := a.store.MemberGetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, store.ErrNoRows) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}
	if !a.encoder.Verify(member.Password, pass, member.Salt) {
		return "", ErrInvalidCredentials
	}
	return member.ID, nil
}

func (a *auth) Logout(w http.ResponseWriter, r *http.Request) {
	err := r.ParseForm()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !a.sessions.ValidCSRFToken(r, r.PostForm.Get("_token")) {
		http.Error(w, "", http.StatusBadRequest)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     cookieMemberToken,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	if err := a.sessions.Clear(w, r); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, a.cfg.LoginPath, http.StatusSeeOther)
}

func (a *auth) Middleware(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// получение id сотрудника
		memberID, err := a.getMemberID(r)
		if err != nil {
			if wantsHTML(r) {
				http.Redirect(w, r, a.cfg.LoginPath, http.StatusFound)
				return
			}
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}

		// передаём управление хендлеру
		h.ServeHTTP(w, r.WithContext(WithMemberID(r.Context(), memberID)))
	}
}

func (a *auth) getMemberID(r *http.Request) (string, error) {
	tokenCookie, err := r.Cookie(cookieMemberToken)
	if err != nil {
		return "", err
	}
	return a.tokens.GetMemberID(tokenCookie.Value)
}

func wantsHTML(r *http.Request) bool {
	if r.Header.Get("X-Requested-With") == "XMLHttpRequest" {
		return false
	}
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}
