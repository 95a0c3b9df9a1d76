package sales

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iurnickita/shopadmin/internal/model"
)

type Granularity int

const (
	Day Granularity = iota
	Month
)

// Layout returns the time layout used to build bucket keys.
func (g Granularity) Layout() string {
	if g == Month {
		return "2006/01"
	}
	return "2006/01/02"
}

// Start truncates t to the beginning of its calendar unit in t's location.
func (g Granularity) Start(t time.Time) time.Time {
	if g == Month {
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// Next returns the beginning of the unit following the one starting at t.
func (g Granularity) Next(t time.Time) time.Time {
	if g == Month {
		return t.AddDate(0, 1, 0)
	}
	return t.AddDate(0, 0, 1)
}

type Bucket struct {
	Price decimal.Decimal `json:"price"`
	Count int             `json:"count"`
}

// Series is a dense, ordered set of buckets covering [from, to].
type Series struct {
	granularity Granularity
	loc         *time.Location
	keys        []string
	buckets     map[string]*Bucket
}

// NewSeries creates one zero bucket per calendar unit in [from, to], inclusive.
// Keys are computed in from's location.
func NewSeries(from time.Time, to time.Time, g Granularity) *Series {
	loc := from.Location()
	s := &Series{
		granularity: g,
		loc:         loc,
		buckets:     make(map[string]*Bucket),
	}
	to = to.In(loc)
	for unit := g.Start(from); !unit.After(to); unit = g.Next(unit) {
		key := unit.Format(g.Layout())
		s.keys = append(s.keys, key)
		s.buckets[key] = &Bucket{Price: decimal.Zero}
	}
	return s
}

// Key formats t the way bucket keys of this series are formatted.
func (s *Series) Key(t time.Time) string {
	return t.In(s.loc).Format(s.granularity.Layout())
}

// Add accumulates the order into its bucket. It reports false when the
// order date falls outside the series.
func (s *Series) Add(order model.Order) bool {
	bucket, ok := s.buckets[s.Key(order.OrderDate)]
	if !ok {
		return false
	}
	bucket.Price = bucket.Price.Add(order.PaymentTotal)
	bucket.Count++
	return true
}

func (s *Series) Len() int {
	return len(s.keys)
}

func (s *Series) Keys() []string {
	keys := make([]string, len(s.keys))
	copy(keys, s.keys)
	return keys
}

func (s *Series) Get(key string) (Bucket, bool) {
	bucket, ok := s.buckets[key]
	if !ok {
		return Bucket{}, false
	}
	return *bucket, true
}

// Total sums every bucket of the series.
func (s *Series) Total() Bucket {
	total := Bucket{Price: decimal.Zero}
	for _, bucket := range s.buckets {
		total.Price = total.Price.Add(bucket.Price)
		total.Count += bucket.Count
	}
	return total
}

// MarshalJSON writes the buckets as an object keeping chronological key order.
func (s *Series) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range s.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(s.buckets[key])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
