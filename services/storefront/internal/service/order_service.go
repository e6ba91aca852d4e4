package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	events "github.com/Kedar-sonavani/Kalashree-Collection/pkg/domain"
	"github.com/Kedar-sonavani/Kalashree-Collection/pkg/mylogger"
	"github.com/Kedar-sonavani/Kalashree-Collection/pkg/outbox/worker"
	"github.com/Kedar-sonavani/Kalashree-Collection/services/storefront/internal/domain"
	"github.com/Kedar-sonavani/Kalashree-Collection/services/storefront/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type OrderService interface {
	Place(ctx context.Context, input *domain.PlaceOrderInput) (*domain.Order, error)
	List(ctx context.Context) ([]domain.Order, error)
	ListMine(ctx context.Context, email string) ([]domain.Order, error)
	Items(ctx context.Context, orderID uuid.UUID) ([]domain.OrderItem, error)
	Update(ctx context.Context, id uuid.UUID, input *domain.UpdateOrderInput) (*domain.Order, error)
}

type orderService struct {
	pool        *pgxpool.Pool
	logger      *zap.Logger
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	outboxRepo  worker.OutboxRepository
	tracer      trace.Tracer
	topic       string
	now         func() time.Time
}

func NewOrderService(
	pool *pgxpool.Pool,
	logger *zap.Logger,
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	outboxRepo worker.OutboxRepository,
	topic string,
) OrderService {
	return &orderService{
		pool:        pool,
		logger:      logger,
		orderRepo:   orderRepo,
		productRepo: productRepo,
		outboxRepo:  outboxRepo,
		tracer:      otel.Tracer("order_service"),
		topic:       topic,
		now:         time.Now,
	}
}

// Place writes the order, its items, the stock decrements and the
// OrderPlaced event in one transaction. Product rows stay locked from the
// stock check until commit, so two checkouts of the last unit cannot both
// succeed.
func (s *orderService) Place(ctx context.Context, input *domain.PlaceOrderInput) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.Place")
	defer span.End()

	span.SetAttributes(
		attribute.String("customer_email", input.CustomerEmail),
		attribute.Int("items_count", len(input.Items)),
	)

	requested := input.RequestedQuantities()
	productIDs := make([]uuid.UUID, 0, len(requested))
	for id := range requested {
		productIDs = append(productIDs, id)
	}
	slices.SortFunc(productIDs, func(a, b uuid.UUID) int {
		return bytes.Compare(a[:], b[:])
	})

	order := &domain.Order{
		CustomerName:    input.CustomerName,
		CustomerEmail:   input.CustomerEmail,
		CustomerPhone:   input.CustomerPhone,
		ShippingAddress: input.ShippingAddress,
		Status:          domain.OrderStatusPending,
		Items:           make([]domain.OrderItem, 0, len(input.Items)),
	}

	err := inTx(ctx, s.pool, s.logger, func(tx pgx.Tx) error {
		lines, err := s.productRepo.LockForOrder(ctx, tx, productIDs)
		if err != nil {
			return err
		}

		checked := make(map[uuid.UUID]bool, len(requested))
		for _, item := range input.Items {
			line, ok := lines[item.ProductID]
			if !ok {
				return &MissingProductError{Title: item.Title}
			}

			if !checked[item.ProductID] {
				if requested[item.ProductID] > line.Stock {
					return &StockError{Title: line.Title, Available: line.Stock}
				}
				checked[item.ProductID] = true
			}

			productID := item.ProductID
			order.Items = append(order.Items, domain.OrderItem{
				ProductID:       &productID,
				Quantity:        item.Quantity,
				PriceAtPurchase: line.EffectivePrice(),
				ProductTitle:    line.Title,
			})
		}

		order.CalculateTotal()
		if !order.TotalPrice.Equal(input.TotalPrice) {
			mylogger.Warn(ctx, s.logger, "Client total differs from computed total",
				zap.String("client_total", input.TotalPrice.String()),
				zap.String("computed_total", order.TotalPrice.String()),
			)
		}

		if err := s.orderRepo.Create(ctx, tx, order); err != nil {
			return err
		}

		for _, id := range productIDs {
			err := s.productRepo.DecrementStock(ctx, tx, id, requested[id])
			if errors.Is(err, repository.ErrInsufficientStock) {
				line := lines[id]
				return &StockError{Title: line.Title, Available: line.Stock}
			}
			if err != nil {
				return err
			}
		}

		return emitEvent(ctx, tx, s.outboxRepo, s.topic, "Order", order.ID.String(), events.EventOrderPlaced, placedEvent(order))
	})
	if err != nil {
		span.RecordError(err)

		var stockErr *StockError
		var missingErr *MissingProductError
		if errors.As(err, &stockErr) || errors.As(err, &missingErr) {
			mylogger.Warn(ctx, s.logger, "Order rejected", zap.Error(err))
		} else {
			span.SetStatus(codes.Error, "place order failed")
			mylogger.Error(ctx, s.logger, "Failed to place order", zap.Error(err))
		}

		return nil, err
	}

	mylogger.Info(ctx, s.logger, "Order placed",
		zap.Stringer("order_id", order.ID),
		zap.String("total", order.TotalPrice.String()),
	)

	return order, nil
}

func (s *orderService) List(ctx context.Context) ([]domain.Order, error) {
	return s.orderRepo.List(ctx)
}

func (s *orderService) ListMine(ctx context.Context, email string) ([]domain.Order, error) {
	return s.orderRepo.ListByEmail(ctx, email)
}

func (s *orderService) Items(ctx context.Context, orderID uuid.UUID) ([]domain.OrderItem, error) {
	return s.orderRepo.Items(ctx, orderID)
}

// Update changes status and admin notes. Cancelling an unfinished order puts
// its items back into stock in the same transaction.
func (s *orderService) Update(ctx context.Context, id uuid.UUID, input *domain.UpdateOrderInput) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.Update")
	defer span.End()

	span.SetAttributes(attribute.String("order_id", id.String()))

	var order *domain.Order
	err := inTx(ctx, s.pool, s.logger, func(tx pgx.Tx) error {
		var err error
		if order, err = s.orderRepo.GetForUpdate(ctx, tx, id); err != nil {
			return err
		}

		from := order.Status
		if input.Status != nil {
			next := *input.Status
			if !from.CanTransitionTo(next) {
				return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, next)
			}
			order.Status = next
		}
		if input.AdminNotes != nil {
			order.AdminNotes = *input.AdminNotes
		}

		if order.Status == from {
			return s.orderRepo.Update(ctx, tx, order)
		}

		if order.Status == domain.OrderStatusCancelled {
			for _, item := range order.Items {
				if item.ProductID == nil {
					continue
				}
				if _, err := s.productRepo.IncrementStock(ctx, tx, *item.ProductID, item.Quantity); err != nil {
					return fmt.Errorf("restock %s: %w", *item.ProductID, err)
				}
			}
		}

		if err := s.orderRepo.Update(ctx, tx, order); err != nil {
			return err
		}

		return emitEvent(ctx, tx, s.outboxRepo, s.topic, "Order", order.ID.String(), events.EventOrderStatusChanged, events.OrderStatusChangedEvent{
			OrderID:       order.ID.String(),
			CustomerName:  order.CustomerName,
			CustomerEmail: order.CustomerEmail,
			From:          string(from),
			To:            string(order.Status),
			ChangedAt:     s.now().UTC(),
		})
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	mylogger.Info(ctx, s.logger, "Order updated",
		zap.Stringer("order_id", order.ID),
		zap.String("status", string(order.Status)),
	)

	return order, nil
}

func placedEvent(order *domain.Order) events.OrderPlacedEvent {
	lines := make([]events.OrderLine, len(order.Items))
	for i, item := range order.Items {
		lines[i] = events.OrderLine{
			ProductID: item.ProductID.String(),
			Title:     item.ProductTitle,
			Quantity:  item.Quantity,
			Price:     item.PriceAtPurchase,
		}
	}

	return events.OrderPlacedEvent{
		OrderID:         order.ID.String(),
		CustomerName:    order.CustomerName,
		CustomerEmail:   order.CustomerEmail,
		ShippingAddress: order.ShippingAddress,
		TotalPrice:      order.TotalPrice,
		Items:           lines,
		PlacedAt:        order.CreatedAt,
	}
}
