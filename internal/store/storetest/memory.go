// Package storetest provides an in-memory store.Store for tests.
package storetest

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iurnickita/shopadmin/internal/model"
	"github.com/iurnickita/shopadmin/internal/store"
)

type ProductClass struct {
	Stock     int
	Unlimited bool
}

type Product struct {
	ID      int
	Status  model.ProductStatus
	Classes []ProductClass
}

// Memory mirrors the SQL queries of the real store over slices.
// Setting Err makes every call fail with it.
type Memory struct {
	mu sync.Mutex

	Orders    []model.Order
	Statuses  []model.OrderStatusInfo
	Products  []Product
	Customers []model.CustomerStatus
	Members   map[string]model.Member

	Err   error
	calls int
}

var _ store.Store = (*Memory)(nil)

// Calls returns how many store methods were invoked.
func (m *Memory) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *Memory) enter() (func(), error) {
	m.mu.Lock()
	m.calls++
	if m.Err != nil {
		m.mu.Unlock()
		return nil, m.Err
	}
	return m.mu.Unlock, nil
}

func (m *Memory) MemberGet(_ context.Context, id string) (model.Member, error) {
	unlock, err := m.enter()
	if err != nil {
		return model.Member{}, err
	}
	defer unlock()

	member, ok := m.Members[id]
	if !ok {
		return model.Member{}, store.ErrNoRows
	}
	return member, nil
}

func (m *Memory) MemberGetByLogin(_ context.Context, login string) (model.Member, error) {
	unlock, err := m.enter()
	if err != nil {
		return model.Member{}, err
	}
	defer unlock()

	for _, member := range m.Members {
		if member.Login == login {
			return member, nil
		}
	}
	return model.Member{}, store.ErrNoRows
}

func (m *Memory) MemberPut(_ context.Context, member model.Member) error {
	unlock, err := m.enter()
	if err != nil {
		return err
	}
	defer unlock()

	if _, ok := m.Members[member.ID]; !ok {
		return store.ErrNoRows
	}
	m.Members[member.ID] = member
	return nil
}

func (m *Memory) OrderCountByStatus(_ context.Context, excludes model.StatusSet) (map[model.OrderStatus]int, error) {
	unlock, err := m.enter()
	if err != nil {
		return nil, err
	}
	defer unlock()

	counts := make(map[model.OrderStatus]int)
	for _, order := range m.Orders {
		if !excludes.Contains(order.Status) {
			counts[order.Status]++
		}
	}
	return counts, nil
}

func (m *Memory) OrderStatusGet(_ context.Context, excludes model.StatusSet) ([]model.OrderStatusInfo, error) {
	unlock, err := m.enter()
	if err != nil {
		return nil, err
	}
	defer unlock()

	statuses := []model.OrderStatusInfo{}
	for _, status := range m.Statuses {
		if !excludes.Contains(status.ID) {
			statuses = append(statuses, status)
		}
	}
	slices.SortStableFunc(statuses, func(a, b model.OrderStatusInfo) int {
		return a.SortNo - b.SortNo
	})
	return statuses, nil
}

func (m *Memory) OrderGetByDate(_ context.Context, from time.Time, to time.Time, excludes model.StatusSet) ([]model.Order, error) {
	unlock, err := m.enter()
	if err != nil {
		return nil, err
	}
	defer unlock()

	var orders []model.Order
	for _, order := range m.Orders {
		if order.OrderDate.Before(from) || order.OrderDate.After(to) {
			continue
		}
		if excludes.Contains(order.Status) {
			continue
		}
		orders = append(orders, order)
	}
	slices.SortStableFunc(orders, func(a, b model.Order) int {
		return a.OrderDate.Compare(b.OrderDate)
	})
	return orders, nil
}

func (m *Memory) OrderSalesGet(_ context.Context, from time.Time, to time.Time, excludes model.StatusSet) (decimal.Decimal, int, error) {
	unlock, err := m.enter()
	if err != nil {
		return decimal.Zero, 0, err
	}
	defer unlock()

	amount := decimal.Zero
	count := 0
	for _, order := range m.Orders {
		if order.OrderDate.Before(from) || !order.OrderDate.Before(to) {
			continue
		}
		if excludes.Contains(order.Status) {
			continue
		}
		amount = amount.Add(order.PaymentTotal)
		count++
	}
	return amount, count, nil
}

func (m *Memory) ProductCountNonStock(_ context.Context) (int, error) {
	unlock, err := m.enter()
	if err != nil {
		return 0, err
	}
	defer unlock()

	count := 0
	for _, product := range m.Products {
		if slices.ContainsFunc(product.Classes, func(pc ProductClass) bool {
			return !pc.Unlimited && pc.Stock == 0
		}) {
			count++
		}
	}
	return count, nil
}

func (m *Memory) ProductCount(_ context.Context) (int, error) {
	unlock, err := m.enter()
	if err != nil {
		return 0, err
	}
	defer unlock()

	count := 0
	for _, product := range m.Products {
		if product.Status == model.ProductStatusShow || product.Status == model.ProductStatusHide {
			count++
		}
	}
	return count, nil
}

func (m *Memory) CustomerCountRegular(_ context.Context) (int, error) {
	unlock, err := m.enter()
	if err != nil {
		return 0, err
	}
	defer unlock()

	count := 0
	for _, status := range m.Customers {
		if status == model.CustomerStatusRegular {
			count++
		}
	}
	return count, nil
}

func (m *Memory) Close() error {
	return nil
}
