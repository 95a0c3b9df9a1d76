package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	waffleconfig "github.com/dalemusser/waffle/config"
	"go.uber.org/zap"

	authConfig "github.com/iurnickita/shopadmin/internal/auth/config"
	handlerConfig "github.com/iurnickita/shopadmin/internal/handler/config"
	loggerConfig "github.com/iurnickita/shopadmin/internal/logger/config"
	"github.com/iurnickita/shopadmin/internal/model"
	serviceConfig "github.com/iurnickita/shopadmin/internal/service/config"
	storeConfig "github.com/iurnickita/shopadmin/internal/store/config"
)

type Config struct {
	Handler handlerConfig.Config
	Auth    authConfig.Config
	Service serviceConfig.Config
	Store   storeConfig.Config
	Logger  loggerConfig.Config
}

const (
	envPrefix = "SHOPADMIN"
	tokenTTL  = 12 * time.Hour
)

var ErrPluginTimeout = errors.New("plugin timeout must be positive")

// appConfigKeys are read from config files, SHOPADMIN_* environment
// variables and --flags, in increasing precedence.
var appConfigKeys = []waffleconfig.AppKey{
	{Name: "run_address", Default: ":8080", Desc: "HTTP listen address"},
	{Name: "database_uri", Default: "", Desc: "PostgreSQL DSN"},
	{Name: "database_migrate", Default: false, Desc: "Create missing tables on startup"},
	{Name: "shop_log_level", Default: "info", Desc: "Log level: debug, info, warn, error"},
	{Name: "admin_route", Default: "admin", Desc: "URL prefix of the back office"},

	// Рекомендуемые плагины
	{Name: "package_repo_url", Default: "https://package-api.ec-cube.net/v42", Desc: "Plugin repository base URL"},
	{Name: "plugin_timeout", Default: "5s", Desc: "Plugin repository request timeout (e.g., 5s, 1500ms)"},

	{Name: "timezone", Default: "Local", Desc: "Shop time zone for day and month boundaries"},
	{Name: "session_key", Default: "", Desc: "Session signing key (random when blank)"},
	{Name: "jwt_secret", Default: "", Desc: "Login token secret (random when blank)"},

	// Новые, в обработке, отмененные, отправленные
	{Name: "order_excludes", Default: "7,8,3,5", Desc: "Order statuses hidden from the status counts"},
	// В продажи не идут незавершенные и отмененные
	{Name: "sales_excludes", Default: "8,3,7", Desc: "Order statuses left out of sales figures"},
}

// values is the part of the loaded app config this package reads.
type values interface {
	String(key string) string
	Bool(key string) bool
}

// GetConfig loads the configuration. Cookies are marked Secure in the prod environment.
func GetConfig(zaplog *zap.Logger) (Config, error) {
	coreCfg, appValues, err := waffleconfig.LoadWithAppConfig(zaplog, envPrefix, appConfigKeys)
	if err != nil {
		return Config{}, err
	}
	return build(appValues, coreCfg.Env == "prod")
}

func build(v values, secure bool) (Config, error) {
	var cfg Config
	var err error

	cfg.Handler.ServerAddr = v.String("run_address")
	cfg.Handler.AdminRoute = v.String("admin_route")
	cfg.Handler.SessionKey = v.String("session_key")
	cfg.Handler.SecureCookie = secure

	cfg.Store.DBDsn = v.String("database_uri")
	cfg.Store.Migrate = v.Bool("database_migrate")

	cfg.Logger.LogLevel = v.String("shop_log_level")

	cfg.Service.PackageRepoURL = v.String("package_repo_url")
	cfg.Service.PluginTimeout, err = time.ParseDuration(v.String("plugin_timeout"))
	if err != nil {
		return Config{}, fmt.Errorf("plugin_timeout: %w", err)
	}
	// нулевой таймаут у http.Client означает ожидание без ограничения
	if cfg.Service.PluginTimeout <= 0 {
		return Config{}, ErrPluginTimeout
	}
	cfg.Service.Location, err = time.LoadLocation(v.String("timezone"))
	if err != nil {
		return Config{}, fmt.Errorf("timezone: %w", err)
	}
	cfg.Service.OrderExcludes, err = parseStatusSet(v.String("order_excludes"))
	if err != nil {
		return Config{}, fmt.Errorf("order_excludes: %w", err)
	}
	cfg.Service.SalesExcludes, err = parseStatusSet(v.String("sales_excludes"))
	if err != nil {
		return Config{}, fmt.Errorf("sales_excludes: %w", err)
	}

	prefix := "/" + strings.Trim(cfg.Handler.AdminRoute, "/")
	cfg.Auth.JWTSecret = v.String("jwt_secret")
	cfg.Auth.HomePath = prefix + "/"
	cfg.Auth.LoginPath = prefix + "/login"
	cfg.Auth.TokenTTL = tokenTTL
	cfg.Auth.SecureCookie = secure

	return cfg, nil
}

// parseStatusSet reads a comma separated list of order status ids.
func parseStatusSet(s string) (model.StatusSet, error) {
	var ids []model.OrderStatus
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.Atoi(part)
		if err != nil {
			return model.StatusSet{}, err
		}
		ids = append(ids, model.OrderStatus(id))
	}
	return model.NewStatusSet(ids...), nil
}
