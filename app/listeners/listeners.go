// Package listeners reacts to committed business events: order metrics,
// the stock feeds, report cache invalidation and the audit log.
package listeners

import (
	"context"

	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/event"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
)

// Publisher is a stock feed; *ws.Hub and *sse.Broker satisfy it.
type Publisher interface {
	Publish(kind string, data interface{})
}

// Feeds publishes to every feed in order.
type Feeds []Publisher

func (f Feeds) Publish(kind string, data interface{}) {
	for _, p := range f {
		p.Publish(kind, data)
	}
}

// ReportCache drops cached reports; *services.ProductService satisfies it.
type ReportCache interface {
	ForgetReports(ctx context.Context)
}

// Register subscribes every listener on d. feed and reports may be nil.
func Register(d *event.Dispatcher, feed Publisher, reports ReportCache) {
	d.Listen(services.EventOrderPlaced, func(payload interface{}) {
		placed, ok := payload.(services.OrderPlaced)
		if !ok {
			return
		}
		metrics.OrdersPlaced.Inc()
		metrics.UnitsSold.Add(float64(placed.Units))
		logger.Info("audit: order placed",
			"order_id", placed.OrderID,
			"username", placed.Username,
			"total", placed.Total,
			"units", placed.Units,
		)
		if reports != nil {
			reports.ForgetReports(context.Background())
		}
		if feed != nil {
			for _, level := range placed.Stock {
				feed.Publish("stock", level)
			}
		}
	})

	d.Listen(services.EventProductUpdated, func(payload interface{}) {
		if level, ok := payload.(services.StockLevel); ok && feed != nil {
			feed.Publish("stock", level)
		}
	})

	d.Listen(services.EventProductDeleted, func(payload interface{}) {
		if deleted, ok := payload.(services.ProductDeleted); ok && feed != nil {
			feed.Publish("product.deleted", deleted)
		}
	})

	d.Listen(services.EventUserDeleted, func(payload interface{}) {
		if deleted, ok := payload.(services.UserDeleted); ok {
			logger.Info("audit: user deleted",
				"user_id", deleted.UserID,
				"username", deleted.Username,
				"orders", deleted.Orders,
			)
		}
	})
}
