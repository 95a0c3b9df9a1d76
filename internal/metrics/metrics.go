package metrics

import (
	"context"

	"github.com/iurnickita/shopadmin/internal/store"
)

// Состояние магазина
type Shop struct {
	NonStockProducts int `json:"countNonStockProducts"`
	Products         int `json:"countProducts"`
	Customers        int `json:"countCustomers"`
}

type Metrics interface {
	NonStockProducts(ctx context.Context) (int, error)
	Products(ctx context.Context) (int, error)
	Customers(ctx context.Context) (int, error)
	Collect(ctx context.Context) (Shop, error)
}

type metrics struct {
	store store.Store
}

func NewMetrics(store store.Store) Metrics {
	metrics := metrics{store: store}
	return &metrics
}

// Товары, у которых закончился хотя бы один вариант с учетом остатка
func (metrics *metrics) NonStockProducts(ctx context.Context) (int, error) {
	return metrics.store.ProductCountNonStock(ctx)
}

// Товары в статусах "показан" и "скрыт"
func (metrics *metrics) Products(ctx context.Context) (int, error) {
	return metrics.store.ProductCount(ctx)
}

// Постоянные покупатели
func (metrics *metrics) Customers(ctx context.Context) (int, error) {
	return metrics.store.CustomerCountRegular(ctx)
}

func (metrics *metrics) Collect(ctx context.Context) (Shop, error) {
	var shop Shop
	var err error

	shop.NonStockProducts, err = metrics.NonStockProducts(ctx)
	if err != nil {
		return Shop{}, err
	}
	shop.Products, err = metrics.Products(ctx)
	if err != nil {
		return Shop{}, err
	}
	shop.Customers, err = metrics.Customers(ctx)
	if err != nil {
		return Shop{}, err
	}
	return shop, nil
}
