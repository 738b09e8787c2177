package main

import (
	"context"
	"fmt"
	"io"
	"math"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wippyai/jsonplan"
	"github.com/wippyai/jsonplan/convert"
	"github.com/wippyai/jsonplan/plan"
)

type Customer struct {
	ID    uuid.UUID
	Name  string
	Email *string
	Tags  []string
}

type LineItem struct {
	SKU       string
	Quantity  int
	UnitPrice float64
}

type Order struct {
	ID       uuid.UUID
	PlacedAt time.Time
	Customer Customer
	Items    []LineItem
	Notes    map[string]string
	Shipped  bool
}

// Shape is rendered through its method set.
type Shape interface {
	Kind() string
	Area() float64
}

type Circle struct{ Radius float64 }

func (Circle) Kind() string    { return "circle" }
func (c Circle) Area() float64 { return math.Round(math.Pi*c.Radius*c.Radius*100) / 100 }

type Rect struct{ W, H float64 }

func (Rect) Kind() string    { return "rect" }
func (r Rect) Area() float64 { return r.W * r.H }

// program is a compiled sample ready to run.
type program struct {
	plan   *plan.Plan
	root   reflect.Value
	encode func(ctx context.Context, out io.Writer, opts ...jsonplan.StreamOption) error
}

func newProgram[T any](opts *convert.Options, v T) (*program, error) {
	s, err := jsonplan.Compile[T](opts)
	if err != nil {
		return nil, err
	}
	return &program{
		plan: s.Plan(),
		root: reflect.ValueOf(&v).Elem(),
		encode: func(ctx context.Context, out io.Writer, so ...jsonplan.StreamOption) error {
			return s.Encode(ctx, out, v, so...)
		},
	}, nil
}

type sample struct {
	help  string
	build func(opts *convert.Options) (*program, error)
}

var samples = map[string]sample{
	"order": {
		help:  "a single order with nested customer and items",
		build: func(o *convert.Options) (*program, error) { return newProgram(o, sampleOrder(0)) },
	},
	"orders": {
		help:  "a batch of 50 orders",
		build: func(o *convert.Options) (*program, error) { return newProgram(o, sampleOrders(50)) },
	},
	"shapes": {
		help:  "a slice of interface values rendered through the Shape method set",
		build: func(o *convert.Options) (*program, error) { return newProgram(o, sampleShapes()) },
	},
}

func lookupSample(name string) (sample, error) {
	s, ok := samples[name]
	if !ok {
		return sample{}, fmt.Errorf("unknown sample %q (have %s)", name, strings.Join(sampleNames(), ", "))
	}
	return s, nil
}

func sampleNames() []string {
	names := make([]string, 0, len(samples))
	for name := range samples {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var placed = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func sampleOrder(i int) Order {
	id := uuid.NewSHA1(uuid.NameSpaceOID, fmt.Appendf(nil, "order-%d", i))
	tags := []string{"retail"}
	if i%3 == 0 {
		tags = append(tags, "priority")
	}
	var email *string
	if i%2 == 0 {
		e := fmt.Sprintf("customer%d@example.com", i)
		email = &e
	}
	return Order{
		ID:       id,
		PlacedAt: placed.Add(time.Duration(i) * time.Hour),
		Customer: Customer{
			ID:    uuid.NewSHA1(uuid.NameSpaceOID, fmt.Appendf(nil, "customer-%d", i)),
			Name:  fmt.Sprintf("Customer <%d>", i),
			Email: email,
			Tags:  tags,
		},
		Items: []LineItem{
			{SKU: "A-100", Quantity: 1 + i%4, UnitPrice: 9.5},
			{SKU: "B-200", Quantity: 2, UnitPrice: 120},
			{SKU: "C-300", Quantity: 1, UnitPrice: 0.99},
		},
		Notes:   map[string]string{"gift": "no", "channel": "web"},
		Shipped: i%3 == 0,
	}
}

func sampleOrders(n int) []Order {
	orders := make([]Order, n)
	for i := range orders {
		orders[i] = sampleOrder(i)
	}
	return orders
}

func sampleShapes() []Shape {
	return []Shape{Circle{Radius: 1}, Rect{W: 2, H: 3}, nil, Circle{Radius: 2.5}}
}
