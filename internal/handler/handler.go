package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/iurnickita/shopadmin/internal/auth"
	"github.com/iurnickita/shopadmin/internal/gzip"
	"github.com/iurnickita/shopadmin/internal/handler/config"
	"github.com/iurnickita/shopadmin/internal/logger"
	"github.com/iurnickita/shopadmin/internal/model"
	"github.com/iurnickita/shopadmin/internal/service"
	"github.com/iurnickita/shopadmin/internal/session"
)

const (
	headerCSRFToken = "X-CSRF-Token"
	formCSRFToken   = "_token"
	shutdownTimeout = 10 * time.Second

	msgPasswordChanged = "password changed"
)

func Serve(ctx context.Context, cfg config.Config, auth auth.Auth, service service.Service, sessions *session.Sessions, zaplog *zap.Logger) error {
	h := newHandler(auth, service, sessions, cfg.AdminRoute, zaplog)
	router := h.newRouter()

	srv := &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()
	zaplog.Info("server started", zap.String("addr", cfg.ServerAddr), zap.String("admin", h.prefix))

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	zaplog.Info("server shutting down")
	return srv.Shutdown(shutdownCtx)
}

type handler struct {
	auth     auth.Auth
	service  service.Service
	sessions *session.Sessions
	prefix   string
	zaplog   *zap.Logger
}

func newHandler(auth auth.Auth, service service.Service, sessions *session.Sessions, adminRoute string, zaplog *zap.Logger) *handler {
	return &handler{
		auth:     auth,
		service:  service,
		sessions: sessions,
		prefix:   "/" + strings.Trim(adminRoute, "/"),
		zaplog:   zaplog,
	}
}

func (h *handler) newRouter() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+h.prefix+"/login", gzip.GzipMiddleware(logger.RequestLogMdlw(h.auth.LoginPage, h.zaplog)))
	mux.HandleFunc("POST "+h.prefix+"/login", gzip.GzipMiddleware(logger.RequestLogMdlw(h.auth.Login, h.zaplog)))
	mux.HandleFunc("POST "+h.prefix+"/logout", gzip.GzipMiddleware(logger.RequestLogMdlw(h.auth.Logout, h.zaplog)))
	mux.HandleFunc("GET "+h.prefix+"/{$}", gzip.GzipMiddleware(logger.RequestLogMdlw(h.auth.Middleware(h.GetDashboard), h.zaplog)))
	mux.HandleFunc("GET "+h.prefix+"/sale_chart", gzip.GzipMiddleware(logger.RequestLogMdlw(h.auth.Middleware(h.GetSaleChart), h.zaplog)))
	mux.HandleFunc("GET "+h.prefix+"/change_password", gzip.GzipMiddleware(logger.RequestLogMdlw(h.auth.Middleware(h.GetChangePassword), h.zaplog)))
	mux.HandleFunc("POST "+h.prefix+"/change_password", gzip.GzipMiddleware(logger.RequestLogMdlw(h.auth.Middleware(h.PostChangePassword), h.zaplog)))
	mux.HandleFunc("GET "+h.prefix+"/search_nonstock", gzip.GzipMiddleware(logger.RequestLogMdlw(h.auth.Middleware(h.SearchNonStockProducts), h.zaplog)))
	mux.HandleFunc("GET "+h.prefix+"/search_customer", gzip.GzipMiddleware(logger.RequestLogMdlw(h.auth.Middleware(h.SearchCustomer), h.zaplog)))

	return mux
}

type GetDashboardJSONResponse struct {
	service.Dashboard
	CSRFToken string `json:"csrfToken"`
}

func (h *handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.service.Dashboard(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	// токен нужен странице для запроса графика продаж
	csrfToken, err := h.sessions.CSRFToken(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, GetDashboardJSONResponse{Dashboard: dashboard, CSRFToken: csrfToken})
}

func (h *handler) GetSaleChart(w http.ResponseWriter, r *http.Request) {
	// только асинхронный запрос со страницы админки
	if !isXMLHttpRequest(r) || !h.sessions.ValidCSRFToken(r, csrfTokenFrom(r)) {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	chart, err := h.service.SalesChart(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, chart)
}

type GetChangePasswordJSONResponse struct {
	Success   string `json:"success,omitempty"`
	Error     string `json:"error,omitempty"`
	CSRFToken string `json:"csrfToken"`
}

func (h *handler) GetChangePassword(w http.ResponseWriter, r *http.Request) {
	success, err := h.sessions.PopSuccess(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	csrfToken, err := h.sessions.CSRFToken(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, GetChangePasswordJSONResponse{Success: success, CSRFToken: csrfToken})
}

func (h *handler) PostChangePassword(w http.ResponseWriter, r *http.Request) {
	err := r.ParseForm()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !h.sessions.ValidCSRFToken(r, r.PostForm.Get(formCSRFToken)) {
		http.Error(w, "", http.StatusBadRequest)
		return
	}

	memberID, _ := auth.MemberID(r.Context())
	first := r.PostForm.Get("change_password[first]")
	second := r.PostForm.Get("change_password[second]")
	if first != second {
		h.writeFormError(w, r, http.StatusUnprocessableEntity, "passwords do not match")
		return
	}

	err = h.service.ChangePassword(r.Context(), memberID, first)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInsufficientData):
			h.writeFormError(w, r, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrPasswordPolicy):
			h.writeFormError(w, r, http.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, service.ErrMemberNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	if err := h.sessions.AddSuccess(w, r, msgPasswordChanged); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, h.prefix+"/change_password", http.StatusFound)
}

func (h *handler) writeFormError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	csrfToken, err := h.sessions.CSRFToken(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	responseJSON, err := json.Marshal(GetChangePasswordJSONResponse{Error: msg, CSRFToken: csrfToken})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(responseJSON)
}

// Быстрые фильтры: условие поиска кладется в сессию, список открывается с первой страницы

func (h *handler) SearchNonStockProducts(w http.ResponseWriter, r *http.Request) {
	search := model.ProductSearch{Stock: []model.ProductStock{model.ProductStockOut}}
	if err := h.sessions.SetSearch(w, r, session.ProductSearchKey, search); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, h.prefix+"/product/page/1", http.StatusFound)
}

func (h *handler) SearchCustomer(w http.ResponseWriter, r *http.Request) {
	search := model.CustomerSearch{CustomerStatus: []model.CustomerStatus{model.CustomerStatusRegular}}
	if err := h.sessions.SetSearch(w, r, session.CustomerSearchKey, search); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, h.prefix+"/customer/page/1", http.StatusFound)
}

func (h *handler) writeJSON(w http.ResponseWriter, v any) {
	responseJSON, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(responseJSON)
}

func isXMLHttpRequest(r *http.Request) bool {
	return r.Header.Get("X-Requested-With") == "XMLHttpRequest"
}

func csrfTokenFrom(r *http.Request) string {
	if token := r.Header.Get(headerCSRFToken); token != "" {
		return token
	}
	return r.URL.Query().Get(formCSRFToken)
}
