package listeners_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/storefront/app/listeners"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/event"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
)

type published struct {
	kind string
	data interface{}
}

type fakeFeed struct{ got []published }

func (f *fakeFeed) Publish(kind string, data interface{}) {
	f.got = append(f.got, published{kind, data})
}

type fakeReports struct{ forgotten int }

func (f *fakeReports) ForgetReports(context.Context) { f.forgotten++ }

func counterValue(t *testing.T, name string) float64 {
	t.Helper()
	families, err := metrics.DefaultRegistry.Gather()
	assert.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() == name && len(mf.GetMetric()) > 0 {
			return mf.GetMetric()[0].GetCounter().GetValue()
		}
	}
	return 0
}

func TestOrderPlacedFansOut(t *testing.T) {
	d := event.New()
	feed := &fakeFeed{}
	reports := &fakeReports{}
	listeners.Register(d, feed, reports)

	before := counterValue(t, "storefront_units_sold_total")
	d.Fire(services.EventOrderPlaced, services.OrderPlaced{
		OrderID: 1,
		Units:   4,
		Stock: []services.StockLevel{
			{ProductID: 1, Name: "Widget", Stock: 2},
			{ProductID: 2, Name: "Gadget", Stock: 9},
		},
	})

	assert.Equal(t, 1, reports.forgotten)
	assert.Len(t, feed.got, 2)
	assert.Equal(t, "stock", feed.got[0].kind)
	assert.Equal(t, before+4, counterValue(t, "storefront_units_sold_total"))
}

func TestProductEventsReachFeed(t *testing.T) {
	d := event.New()
	feed := &fakeFeed{}
	listeners.Register(d, feed, nil)

	d.Fire(services.EventProductUpdated, services.StockLevel{ProductID: 3, Stock: 1})
	d.Fire(services.EventProductDeleted, services.ProductDeleted{ProductID: 3})
	d.Fire(services.EventUserDeleted, services.UserDeleted{UserID: 9})

	assert.Equal(t, []string{"stock", "product.deleted"}, []string{feed.got[0].kind, feed.got[1].kind})
}

func TestNilCollaboratorsAreSkipped(t *testing.T) {
	d := event.New()
	listeners.Register(d, nil, nil)
	assert.NotPanics(t, func() {
		d.Fire(services.EventOrderPlaced, services.OrderPlaced{Units: 1})
	})
}

func TestFeedsPublishToEveryFeed(t *testing.T) {
	a, b := &fakeFeed{}, &fakeFeed{}
	d := event.New()
	listeners.Register(d, listeners.Feeds{a, b}, nil)

	d.Fire(services.EventProductDeleted, services.ProductDeleted{ProductID: 7})

	assert.Len(t, a.got, 1)
	assert.Len(t, b.got, 1)
	assert.Equal(t, "product.deleted", b.got[0].kind)
}
