package config

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iurnickita/shopadmin/internal/model"
)

// testValues отдает заданные значения, остальное берется из appConfigKeys
type testValues map[string]string

func (tv testValues) String(key string) string {
	if v, ok := tv[key]; ok {
		return v
	}
	for _, k := range appConfigKeys {
		if k.Name == key {
			return fmt.Sprint(k.Default)
		}
	}
	return ""
}

func (tv testValues) Bool(key string) bool {
	return tv.String(key) == "true"
}

func TestBuildDefaults(t *testing.T) {
	cfg, err := build(testValues{}, false)
	require.NoError(t, err)

	require.Equal(t, ":8080", cfg.Handler.ServerAddr)
	require.Equal(t, "info", cfg.Logger.LogLevel)
	require.Equal(t, 5*time.Second, cfg.Service.PluginTimeout)
	require.Equal(t, "/admin/", cfg.Auth.HomePath)
	require.Equal(t, "/admin/login", cfg.Auth.LoginPath)
	require.False(t, cfg.Store.Migrate)
	require.False(t, cfg.Auth.SecureCookie)

	require.Equal(t, []model.OrderStatus{
		model.OrderStatusCancel,
		model.OrderStatusDelivered,
		model.OrderStatusPending,
		model.OrderStatusProcessing,
	}, cfg.Service.OrderExcludes.Slice())
	require.Equal(t, []model.OrderStatus{
		model.OrderStatusCancel,
		model.OrderStatusPending,
		model.OrderStatusProcessing,
	}, cfg.Service.SalesExcludes.Slice())
}

func TestBuildValues(t *testing.T) {
	cfg, err := build(testValues{
		"run_address":      ":9000",
		"database_uri":     "postgres://shop",
		"admin_route":      "/back/",
		"timezone":         "Asia/Tokyo",
		"plugin_timeout":   "1500ms",
		"sales_excludes":   "3, 8",
		"database_migrate": "true",
	}, true)
	require.NoError(t, err)

	require.Equal(t, ":9000", cfg.Handler.ServerAddr)
	require.Equal(t, "postgres://shop", cfg.Store.DBDsn)
	require.Equal(t, "Asia/Tokyo", cfg.Service.Location.String())
	require.Equal(t, 1500*time.Millisecond, cfg.Service.PluginTimeout)
	require.Equal(t, []model.OrderStatus{model.OrderStatusCancel, model.OrderStatusProcessing}, cfg.Service.SalesExcludes.Slice())
	require.True(t, cfg.Store.Migrate)
	require.Equal(t, "/back/login", cfg.Auth.LoginPath)
	require.True(t, cfg.Handler.SecureCookie)
	require.True(t, cfg.Auth.SecureCookie)
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name   string
		values testValues
		err    error
	}{
		{name: "bad status", values: testValues{"order_excludes": "1,x"}},
		{name: "unknown zone", values: testValues{"timezone": "Mars/Olympus"}},
		{name: "bad timeout", values: testValues{"plugin_timeout": "soon"}},
		{name: "zero timeout", values: testValues{"plugin_timeout": "0s"}, err: ErrPluginTimeout},
		{name: "negative timeout", values: testValues{"plugin_timeout": "-1s"}, err: ErrPluginTimeout},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := build(test.values, false)
			require.Error(t, err)
			if test.err != nil {
				require.ErrorIs(t, err, test.err)
			}
		})
	}
}
