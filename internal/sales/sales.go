package sales

import (
	"context"
	"encoding/json"
	"time"

	"github.com/iurnickita/shopadmin/internal/model"
	"github.com/iurnickita/shopadmin/internal/store"
)

type Sales interface {
	Aggregate(ctx context.Context, from time.Time, to time.Time, excludes model.StatusSet, g Granularity) (*Series, error)
	Chart(ctx context.Context, now time.Time, excludes model.StatusSet) (Chart, error)
	ByDay(ctx context.Context, day time.Time, excludes model.StatusSet) (model.Sales, error)
	ByMonth(ctx context.Context, month time.Time, excludes model.StatusSet) (model.Sales, error)
}

// Chart holds the three series drawn on the dashboard.
// It is encoded as a [weekly, monthly, yearly] array.
type Chart struct {
	Weekly  *Series
	Monthly *Series
	Yearly  *Series
}

func (c Chart) MarshalJSON() ([]byte, error) {
	return json.Marshal([]*Series{c.Weekly, c.Monthly, c.Yearly})
}

type sales struct {
	store store.Store
}

func NewSales(store store.Store) Sales {
	return &sales{store: store}
}

func (sales *sales) Aggregate(ctx context.Context, from time.Time, to time.Time, excludes model.StatusSet, g Granularity) (*Series, error) {
	series := NewSeries(from, to, g)

	orders, err := sales.store.OrderGetByDate(ctx, from, to, excludes)
	if err != nil {
		return nil, err
	}
	for _, order := range orders {
		series.Add(order)
	}

	return series, nil
}

func (sales *sales) Chart(ctx context.Context, now time.Time, excludes model.StatusSet) (Chart, error) {
	today := Day.Start(now)

	// неделя: с этого дня неделю назад по текущий момент
	weekly, err := sales.Aggregate(ctx, today.AddDate(0, 0, -7), now, excludes, Day)
	if err != nil {
		return Chart{}, err
	}

	// месяц: с первого числа
	monthly, err := sales.Aggregate(ctx, Month.Start(now), now, excludes, Day)
	if err != nil {
		return Chart{}, err
	}

	// год: помесячно, с начала месяца год назад
	yearly, err := sales.Aggregate(ctx, Month.Start(now.AddDate(-1, 0, 0)), now, excludes, Month)
	if err != nil {
		return Chart{}, err
	}

	return Chart{Weekly: weekly, Monthly: monthly, Yearly: yearly}, nil
}

func (sales *sales) ByDay(ctx context.Context, day time.Time, excludes model.StatusSet) (model.Sales, error) {
	return sales.single(ctx, day, excludes, Day)
}

func (sales *sales) ByMonth(ctx context.Context, month time.Time, excludes model.StatusSet) (model.Sales, error) {
	return sales.single(ctx, month, excludes, Month)
}

func (sales *sales) single(ctx context.Context, t time.Time, excludes model.StatusSet, g Granularity) (model.Sales, error) {
	from := g.Start(t)
	amount, count, err := sales.store.OrderSalesGet(ctx, from, g.Next(from), excludes)
	if err != nil {
		return model.Sales{}, err
	}
	if count == 0 {
		return model.Sales{}, nil
	}
	return model.Sales{
		Key:    from.Format(g.Layout()),
		Amount: amount,
		Count:  count,
	}, nil
}
