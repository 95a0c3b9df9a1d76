package pluginclient

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/iurnickita/shopadmin/internal/model"
)

const recommendedPath = "/plugins/recommended"

type PluginClient interface {
	GetRecommended(ctx context.Context) ([]model.Plugin, error)
}

type pluginClient struct {
	repoURL string
	client  *resty.Client
	strict  *bluemonday.Policy
	ugc     *bluemonday.Policy
	zaplog  *zap.Logger
}

// NewPluginClient builds a client for the package repository.
// Server certificates are verified against the system CA pool.
func NewPluginClient(repoURL string, timeout time.Duration, zaplog *zap.Logger) PluginClient {
	tlsConfig := &tls.Config{MinVersion: tls.VersionTLS12}
	if pool, err := x509.SystemCertPool(); err == nil {
		tlsConfig.RootCAs = pool
	} else {
		zaplog.Warn("system cert pool unavailable, using Go defaults", zap.Error(err))
	}

	client := resty.New().
		SetTimeout(timeout).
		SetTLSClientConfig(tlsConfig).
		SetHeader("Accept", "application/json")

	return pluginClient{
		repoURL: strings.TrimRight(repoURL, "/"),
		client:  client,
		strict:  bluemonday.StrictPolicy(),
		ugc:     bluemonday.UGCPolicy(),
		zaplog:  zaplog,
	}
}

func (c pluginClient) GetRecommended(ctx context.Context) ([]model.Plugin, error) {
	setreq := c.client.R()
	setreq.SetContext(ctx)
	setreq.Method = http.MethodGet
	setreq.URL = c.repoURL + recommendedPath

	start := time.Now()
	setresp, err := setreq.Send()
	if err != nil {
		c.zaplog.Info("http get_info",
			zap.String("url", setreq.URL),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err))
		return nil, err
	}
	c.zaplog.Info("http get_info",
		zap.String("url", setreq.URL),
		zap.Int("code", setresp.StatusCode()),
		zap.Int("length", len(setresp.Body())),
		zap.Duration("duration", time.Since(start)))

	switch {
	case setresp.IsSuccess():
		var plugins []model.Plugin
		err = json.Unmarshal(setresp.Body(), &plugins)
		if err != nil {
			return nil, err
		}
		return c.sanitize(plugins), nil
	default:
		return nil, fmt.Errorf("plugin repository status: %d", setresp.StatusCode())
	}
}

// Тексты приходят из внешнего репозитория и попадают в админку как есть
func (c pluginClient) sanitize(plugins []model.Plugin) []model.Plugin {
	out := make([]model.Plugin, 0, len(plugins))
	for _, p := range plugins {
		p.Code = c.strict.Sanitize(p.Code)
		p.Name = c.strict.Sanitize(p.Name)
		p.Version = c.strict.Sanitize(p.Version)
		p.Author = c.strict.Sanitize(p.Author)
		p.Description = c.ugc.Sanitize(p.Description)
		p.Image = safeURL(p.Image)
		p.URL = safeURL(p.URL)
		out = append(out, p)
	}
	return out
}

func safeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return ""
	}
	return u.String()
}
