package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/pkg/apperror"
	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/shashiranjanraj/storefront/pkg/event"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
)

// LineRequest asks for quantity units of one product.
type LineRequest struct {
	ProductID uint `json:"product_id" validate:"required"`
	Quantity  int  `json:"quantity"   validate:"gt=0"`
}

type PlaceOrderInput struct {
	Lines []LineRequest `json:"lines" validate:"required,min=1,dive"`
}

// PlaceOrderForInput is the admin variant with an explicit buyer.
type PlaceOrderForInput struct {
	UserID uint          `json:"user_id" validate:"required"`
	Date   *time.Time    `json:"date"`
	Status string        `json:"status"  validate:"omitempty,max=32"`
	Lines  []LineRequest `json:"lines"   validate:"required,min=1,dive"`
}

type UpdateOrderInput struct {
	Date   *time.Time `json:"date"   validate:"required"`
	Total  *float64   `json:"total"  validate:"required,gte=0"`
	Status string     `json:"status" validate:"required,max=32"`
}

type OrderService struct {
	db       *gorm.DB
	orders   *repositories.OrderRepository
	products *repositories.ProductRepository
	users    *repositories.UserRepository
	events   *event.Dispatcher
	now      func() time.Time
}

func NewOrderService(db *gorm.DB, events *event.Dispatcher) *OrderService {
	return &OrderService{
		db:       db,
		orders:   repositories.NewOrderRepository(db),
		products: repositories.NewProductRepository(db),
		users:    repositories.NewUserRepository(db),
		events:   events,
		now:      time.Now,
	}
}

// PlaceOrder buys lines for the acting user. Either every line is reserved
// and the order committed, or nothing changes.
func (s *OrderService) PlaceOrder(ctx context.Context, buyer auth.Principal, lines []LineRequest) (models.Order, error) {
	if err := requireAuthenticated(buyer); err != nil {
		return models.Order{}, err
	}
	user, err := s.users.FindByUsername(ctx, buyer.Username)
	if err != nil {
		return models.Order{}, err
	}
	return s.place(ctx, user, s.now(), models.StatusPending, lines)
}

// PlaceOrderFor lets an admin place an order on behalf of any user. The
// total is always computed from current prices.
func (s *OrderService) PlaceOrderFor(ctx context.Context, actor auth.Principal, in PlaceOrderForInput) (models.Order, error) {
	if err := requireAdmin(actor); err != nil {
		return models.Order{}, err
	}
	if err := validateInput(in); err != nil {
		return models.Order{}, err
	}
	user, err := s.users.FindByID(ctx, in.UserID)
	if err != nil {
		return models.Order{}, err
	}

	date := s.now()
	if in.Date != nil {
		date = *in.Date
	}
	status := models.StatusPending
	if in.Status != "" {
		status = in.Status
	}
	return s.place(ctx, user, date, status, in.Lines)
}

func (s *OrderService) place(ctx context.Context, buyer models.User, date time.Time, status string, requested []LineRequest) (models.Order, error) {
	lines, err := mergeLines(requested)
	if err != nil {
		s.reject(ctx, err)
		return models.Order{}, err
	}

	var (
		order  models.Order
		levels []StockLevel
		units  int
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		products := s.products.WithTx(tx)
		orders := s.orders.WithTx(tx)

		ids := make([]uint, len(lines))
		for i, l := range lines {
			ids[i] = l.ProductID
		}
		locked, err := products.FindForUpdate(ctx, ids)
		if err != nil {
			return err
		}
		byID := make(map[uint]models.Product, len(locked))
		for _, p := range locked {
			byID[p.ID] = p
		}

		total := decimal.Zero
		for _, l := range lines {
			p, ok := byID[l.ProductID]
			if !ok {
				return apperror.NotFound("product", l.ProductID)
			}
			if l.Quantity > p.Stock {
				return apperror.InsufficientStock(p.Name, l.Quantity, p.Stock)
			}
			total = total.Add(decimal.NewFromFloat(p.Price).Mul(decimal.NewFromInt(int64(l.Quantity))))
		}

		order = models.Order{
			UserID: buyer.ID,
			Date:   date,
			Total:  total.Round(2).InexactFloat64(),
			Status: status,
		}
		if err := orders.Create(ctx, &order); err != nil {
			return err
		}

		rows := make([]models.OrderLine, 0, len(lines))
		for _, l := range lines {
			p := byID[l.ProductID]
			ok, err := products.DecrementStock(ctx, p.ID, l.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				return apperror.InsufficientStock(p.Name, l.Quantity, p.Stock)
			}
			rows = append(rows, models.OrderLine{
				OrderID:   order.ID,
				ProductID: p.ID,
				Quantity:  l.Quantity,
				UnitPrice: p.Price,
			})
			levels = append(levels, StockLevel{ProductID: p.ID, Name: p.Name, Price: p.Price, Stock: p.Stock - l.Quantity})
			units += l.Quantity
		}
		return orders.CreateLines(ctx, rows)
	})
	if err != nil {
		s.reject(ctx, err)
		return models.Order{}, err
	}

	placed, err := s.orders.FindByID(ctx, order.ID)
	if err != nil {
		return models.Order{}, err
	}

	logger.WithCtx(ctx).Info("order placed", "order_id", placed.ID, "username", buyer.Username, "total", placed.Total, "units", units)
	s.events.Fire(EventOrderPlaced, OrderPlaced{
		OrderID:  placed.ID,
		Username: buyer.Username,
		Total:    placed.Total,
		Units:    units,
		Stock:    levels,
	})
	return placed, nil
}

// mergeLines validates the request and folds repeated products into one line.
func mergeLines(requested []LineRequest) ([]LineRequest, error) {
	if err := validateInput(PlaceOrderInput{Lines: requested}); err != nil {
		return nil, err
	}
	merged := make([]LineRequest, 0, len(requested))
	index := make(map[uint]int, len(requested))
	for _, l := range requested {
		if i, ok := index[l.ProductID]; ok {
			merged[i].Quantity += l.Quantity
			continue
		}
		index[l.ProductID] = len(merged)
		merged = append(merged, l)
	}
	return merged, nil
}

func (s *OrderService) reject(ctx context.Context, err error) {
	kind := apperror.KindOf(err)
	metrics.OrderRejections.WithLabelValues(kind.String()).Inc()
	if kind == apperror.KindUnexpected {
		logger.WithCtx(ctx).Error("order placement failed", "error", err)
		return
	}
	logger.WithCtx(ctx).Info("order rejected", "reason", kind.String(), "error", err)
}

func (s *OrderService) ListAll(ctx context.Context, actor auth.Principal) ([]models.Order, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.orders.All(ctx)
}

// ListByOwner returns the orders of username, visible to that user and to
// admins.
func (s *OrderService) ListByOwner(ctx context.Context, actor auth.Principal, username string) ([]models.Order, error) {
	if err := selfOrAdmin(actor, username); err != nil {
		return nil, err
	}
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.orders.ByUser(ctx, user.ID)
}

func (s *OrderService) Get(ctx context.Context, actor auth.Principal, id uint) (models.Order, error) {
	if err := requireAuthenticated(actor); err != nil {
		return models.Order{}, err
	}
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return models.Order{}, err
	}
	owner := ""
	if order.User != nil {
		owner = order.User.Username
	}
	if err := selfOrAdmin(actor, owner); err != nil {
		return models.Order{}, err
	}
	return order, nil
}

func (s *OrderService) TotalSpent(ctx context.Context, actor auth.Principal, username string) (float64, error) {
	if err := requireAdmin(actor); err != nil {
		return 0, err
	}
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return 0, err
	}
	return s.orders.TotalSpent(ctx, user.ID)
}

func (s *OrderService) CountPerUser(ctx context.Context, actor auth.Principal) ([]repositories.UserOrderCount, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.orders.CountPerUser(ctx)
}

func (s *OrderService) UnitsPerUser(ctx context.Context, actor auth.Principal) ([]repositories.UserUnits, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.orders.UnitsPerUser(ctx)
}

func (s *OrderService) LinesReport(ctx context.Context, actor auth.Principal, f repositories.LineFilter) ([]repositories.LineReport, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.orders.LinesReport(ctx, f)
}

// Update rewrites the header of an order. Owner and lines never change.
func (s *OrderService) Update(ctx context.Context, actor auth.Principal, id uint, in UpdateOrderInput) (models.Order, error) {
	if err := requireAdmin(actor); err != nil {
		return models.Order{}, err
	}
	if err := validateInput(in); err != nil {
		return models.Order{}, err
	}

	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return models.Order{}, err
	}
	order.Date = *in.Date
	order.Total = *in.Total
	order.Status = in.Status
	if err := s.orders.SaveHeader(ctx, &order); err != nil {
		return models.Order{}, err
	}
	return s.orders.FindByID(ctx, id)
}

// Delete removes the order and its lines in one transaction.
func (s *OrderService) Delete(ctx context.Context, actor auth.Principal, id uint) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		orders := s.orders.WithTx(tx)
		if _, err := orders.FindByID(ctx, id); err != nil {
			return err
		}
		if err := orders.DeleteLinesOfOrders(ctx, []uint{id}); err != nil {
			return err
		}
		return orders.Delete(ctx, []uint{id})
	})
}

// DeleteAllForUser removes every order of userID with its lines. A user
// without orders is reported as NotFound.
func (s *OrderService) DeleteAllForUser(ctx context.Context, actor auth.Principal, userID uint) (int, error) {
	if err := requireAdmin(actor); err != nil {
		return 0, err
	}
	var deleted int
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		orders := s.orders.WithTx(tx)
		if _, err := s.users.WithTx(tx).FindByID(ctx, userID); err != nil {
			return err
		}
		ids, err := orders.IDsByUser(ctx, userID)
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			return apperror.NotFound("orders of user", userID)
		}
		if err := orders.DeleteLinesOfOrders(ctx, ids); err != nil {
			return err
		}
		deleted = len(ids)
		return orders.Delete(ctx, ids)
	})
	return deleted, err
}
