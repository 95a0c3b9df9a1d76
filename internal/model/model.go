package model

import (
	"encoding/json"
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// Заказы

type OrderStatus int

const (
	OrderStatusNew        OrderStatus = 1
	OrderStatusCancel     OrderStatus = 3
	OrderStatusInProgress OrderStatus = 4
	OrderStatusDelivered  OrderStatus = 5
	OrderStatusPaid       OrderStatus = 6
	OrderStatusPending    OrderStatus = 7
	OrderStatusProcessing OrderStatus = 8
	OrderStatusReturned   OrderStatus = 9
)

type Order struct {
	ID           int
	Status       OrderStatus
	OrderDate    time.Time
	PaymentTotal decimal.Decimal
}

// Справочник статусов заказа
type OrderStatusInfo struct {
	ID     OrderStatus `json:"id"`
	Name   string      `json:"name"`
	SortNo int         `json:"sortNo"`
}

// StatusSet is an immutable set of order statuses.
// The zero value is an empty set.
type StatusSet struct {
	ids []OrderStatus
}

func NewStatusSet(ids ...OrderStatus) StatusSet {
	set := make([]OrderStatus, 0, len(ids))
	for _, id := range ids {
		if !slices.Contains(set, id) {
			set = append(set, id)
		}
	}
	slices.Sort(set)
	return StatusSet{ids: set}
}

func (s StatusSet) Contains(id OrderStatus) bool {
	_, found := slices.BinarySearch(s.ids, id)
	return found
}

func (s StatusSet) Len() int {
	return len(s.ids)
}

// Slice returns a sorted copy of the set members.
func (s StatusSet) Slice() []OrderStatus {
	return slices.Clone(s.ids)
}

// Int32s returns the members in the form the store binds as a SQL array.
func (s StatusSet) Int32s() []int32 {
	out := make([]int32, len(s.ids))
	for i, id := range s.ids {
		out[i] = int32(id)
	}
	return out
}

func (s StatusSet) With(ids ...OrderStatus) StatusSet {
	return NewStatusSet(append(s.Slice(), ids...)...)
}

func (s StatusSet) Without(ids ...OrderStatus) StatusSet {
	out := make([]OrderStatus, 0, len(s.ids))
	for _, id := range s.ids {
		if !slices.Contains(ids, id) {
			out = append(out, id)
		}
	}
	return StatusSet{ids: out}
}

func (s StatusSet) MarshalJSON() ([]byte, error) {
	if s.ids == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s.ids)
}

// Продажи за один день или месяц

type Sales struct {
	Key    string
	Amount decimal.Decimal
	Count  int
}

// Empty reports whether no orders fell into the period.
func (s Sales) Empty() bool {
	return s.Count == 0
}

// Пустой результат отдается как {}
func (s Sales) MarshalJSON() ([]byte, error) {
	if s.Empty() {
		return []byte("{}"), nil
	}
	return json.Marshal(struct {
		Key    string          `json:"key"`
		Amount decimal.Decimal `json:"orderAmount"`
		Count  int             `json:"orderCount"`
	}{s.Key, s.Amount, s.Count})
}

// Товары и покупатели

type ProductStatus int

const (
	ProductStatusShow      ProductStatus = 1
	ProductStatusHide      ProductStatus = 2
	ProductStatusAbolished ProductStatus = 3
)

type ProductStock int

const (
	ProductStockIn  ProductStock = 1
	ProductStockOut ProductStock = 2
)

type CustomerStatus int

const (
	CustomerStatusProvisional CustomerStatus = 1
	CustomerStatusRegular     CustomerStatus = 2
	CustomerStatusWithdrawing CustomerStatus = 3
)

// Фильтры поиска, передаваемые через сессию

type ProductSearch struct {
	Stock []ProductStock `json:"stock"`
}

type CustomerSearch struct {
	CustomerStatus []CustomerStatus `json:"customer_status"`
}

// Рекомендуемые плагины

type Plugin struct {
	ID          int             `json:"id"`
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	Version     string          `json:"version"`
	Author      string          `json:"author"`
	Description string          `json:"description"`
	Image       string          `json:"image"`
	URL         string          `json:"url"`
	Price       decimal.Decimal `json:"price"`
}

// Сотрудники

type Member struct {
	ID       string
	Login    string
	Name     string
	Password string
	Salt     string
}
