package service

import (
	"context"
	"errors"
	"maps"
	"slices"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/iurnickita/shopadmin/internal/metrics"
	"github.com/iurnickita/shopadmin/internal/model"
	"github.com/iurnickita/shopadmin/internal/password"
	"github.com/iurnickita/shopadmin/internal/sales"
	"github.com/iurnickita/shopadmin/internal/service/config"
	"github.com/iurnickita/shopadmin/internal/service/pluginclient"
	"github.com/iurnickita/shopadmin/internal/store"
)

type Service interface {
	Dashboard(ctx context.Context) (Dashboard, error)
	SalesChart(ctx context.Context) (sales.Chart, error)
	ChangePassword(ctx context.Context, memberID string, newPassword string) error
}

var (
	ErrInsufficientData = errors.New("insufficient data")
	ErrPasswordPolicy   = errors.New("password must be 8 to 32 characters")
	ErrMemberNotFound   = errors.New("member not found")
)

const (
	passwordMinLen = 8
	passwordMaxLen = 32
)

// Dashboard is the view model of the back-office home screen.
type Dashboard struct {
	Orders             map[model.OrderStatus]int `json:"orders"`
	OrderStatuses      []model.OrderStatusInfo   `json:"orderStatuses"`
	SalesThisMonth     model.Sales               `json:"salesThisMonth"`
	SalesToday         model.Sales               `json:"salesToday"`
	SalesYesterday     model.Sales               `json:"salesYesterday"`
	RecommendedPlugins []model.Plugin            `json:"recommendedPlugins"`
	metrics.Shop
}

func (d Dashboard) clone() Dashboard {
	d.Orders = maps.Clone(d.Orders)
	d.OrderStatuses = slices.Clone(d.OrderStatuses)
	d.RecommendedPlugins = slices.Clone(d.RecommendedPlugins)
	return d
}

// Hooks are extension points. Each callback gets a copy of its input and
// returns the value the service continues with. Nil callbacks are skipped.
type Hooks struct {
	OrderExcludes   func(ctx context.Context, excludes model.StatusSet) model.StatusSet
	SalesExcludes   func(ctx context.Context, excludes model.StatusSet) model.StatusSet
	Complete        func(ctx context.Context, dashboard Dashboard) Dashboard
	PasswordChanged func(ctx context.Context, member model.Member)
}

type Option func(*service)

func WithHooks(hooks Hooks) Option {
	return func(s *service) {
		s.hooks = append(s.hooks, hooks)
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *service) {
		s.now = now
	}
}

func WithPluginClient(client pluginclient.PluginClient) Option {
	return func(s *service) {
		s.plugins = client
	}
}

func WithEncoder(encoder password.Encoder) Option {
	return func(s *service) {
		s.encoder = encoder
	}
}

type service struct {
	cfg     config.Config
	store   store.Store
	sales   sales.Sales
	metrics metrics.Metrics
	plugins pluginclient.PluginClient
	encoder password.Encoder
	hooks   []Hooks
	now     func() time.Time
	zaplog  *zap.Logger
}

func NewService(cfg config.Config, store store.Store, zaplog *zap.Logger, opts ...Option) (Service, error) {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}

	service := service{
		cfg:     cfg,
		store:   store,
		sales:   sales.NewSales(store),
		metrics: metrics.NewMetrics(store),
		now:     time.Now,
		zaplog:  zaplog,
	}
	for _, opt := range opts {
		opt(&service)
	}
	if service.plugins == nil {
		service.plugins = pluginclient.NewPluginClient(cfg.PackageRepoURL, cfg.PluginTimeout, zaplog)
	}
	if service.encoder == nil {
		service.encoder = password.NewEncoder(0)
	}

	return &service, nil
}

func (service *service) orderExcludes(ctx context.Context) model.StatusSet {
	excludes := service.cfg.OrderExcludes
	for _, h := range service.hooks {
		if h.OrderExcludes != nil {
			excludes = h.OrderExcludes(ctx, excludes)
		}
	}
	return excludes
}

func (service *service) salesExcludes(ctx context.Context) model.StatusSet {
	excludes := service.cfg.SalesExcludes
	for _, h := range service.hooks {
		if h.SalesExcludes != nil {
			excludes = h.SalesExcludes(ctx, excludes)
		}
	}
	return excludes
}

func (service *service) Dashboard(ctx context.Context) (Dashboard, error) {
	now := service.now().In(service.cfg.Location)
	orderExcludes := service.orderExcludes(ctx)
	salesExcludes := service.salesExcludes(ctx)

	var dashboard Dashboard
	var plugins []model.Plugin

	g, gctx := errgroup.WithContext(ctx)

	// Состояние заказов
	g.Go(func() error {
		counts, err := service.store.OrderCountByStatus(gctx, orderExcludes)
		if err != nil {
			return err
		}
		dashboard.Orders = counts
		return nil
	})
	g.Go(func() error {
		var err error
		dashboard.OrderStatuses, err = service.store.OrderStatusGet(gctx, orderExcludes)
		return err
	})

	// Продажи
	g.Go(func() error {
		var err error
		dashboard.SalesToday, err = service.sales.ByDay(gctx, now, salesExcludes)
		return err
	})
	g.Go(func() error {
		var err error
		dashboard.SalesYesterday, err = service.sales.ByDay(gctx, now.AddDate(0, 0, -1), salesExcludes)
		return err
	})
	g.Go(func() error {
		var err error
		dashboard.SalesThisMonth, err = service.sales.ByMonth(gctx, now, salesExcludes)
		return err
	})

	// Состояние магазина
	g.Go(func() error {
		var err error
		dashboard.Shop, err = service.metrics.Collect(gctx)
		return err
	})

	// Рекомендуемые плагины: ошибка не ломает страницу
	g.Go(func() error {
		plugins = service.recommendedPlugins(gctx)
		return nil
	})

	if err := g.Wait(); err != nil {
		service.zaplog.Error("dashboard", zap.Error(err))
		return Dashboard{}, err
	}

	for _, h := range service.hooks {
		if h.Complete != nil {
			dashboard = h.Complete(ctx, dashboard.clone())
		}
	}

	// исключенные статусы в выдачу не попадают, в том числе из хуков
	maps.DeleteFunc(dashboard.Orders, func(status model.OrderStatus, _ int) bool {
		return orderExcludes.Contains(status)
	})
	dashboard.OrderStatuses = slices.DeleteFunc(dashboard.OrderStatuses, func(status model.OrderStatusInfo) bool {
		return orderExcludes.Contains(status.ID)
	})
	if dashboard.OrderStatuses == nil {
		dashboard.OrderStatuses = []model.OrderStatusInfo{}
	}
	dashboard.RecommendedPlugins = plugins

	return dashboard, nil
}

func (service *service) recommendedPlugins(ctx context.Context) []model.Plugin {
	plugins, err := service.plugins.GetRecommended(ctx)
	if err != nil {
		service.zaplog.Warn("recommended plugins unavailable", zap.Error(err))
		return []model.Plugin{}
	}
	if plugins == nil {
		return []model.Plugin{}
	}
	return plugins
}

func (service *service) SalesChart(ctx context.Context) (sales.Chart, error) {
	now := service.now().In(service.cfg.Location)
	return service.sales.Chart(ctx, now, service.salesExcludes(ctx))
}

func (service *service) ChangePassword(ctx context.Context, memberID string, newPassword string) error {
	if memberID == "" || newPassword == "" {
		return ErrInsufficientData
	}
	if n := len([]rune(newPassword)); n < passwordMinLen || n > passwordMaxLen {
		return ErrPasswordPolicy
	}

	member, err := service.store.MemberGet(ctx, memberID)
	if err != nil {
		switch err {
		case store.ErrNoRows:
			return ErrMemberNotFound
		default:
			return err
		}
	}

	// у перенесенных учетных записей соли может не быть
	salt := member.Salt
	if salt == "" {
		salt, err = service.encoder.CreateSalt()
		if err != nil {
			return err
		}
	}

	hash, err := service.encoder.Encode(newPassword, salt)
	if err != nil {
		return err
	}
	member.Password = hash
	member.Salt = salt

	err = service.store.MemberPut(ctx, member)
	if err != nil {
		switch err {
		case store.ErrNoRows:
			return ErrMemberNotFound
		default:
			return err
		}
	}

	for _, h := range service.hooks {
		if h.PasswordChanged != nil {
			h.PasswordChanged(ctx, member)
		}
	}
	service.zaplog.Info("password changed", zap.String("member", member.ID))

	return nil
}
