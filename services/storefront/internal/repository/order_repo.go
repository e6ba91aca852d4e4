package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Kedar-sonavani/Kalashree-Collection/pkg/mylogger"
	"github.com/Kedar-sonavani/Kalashree-Collection/services/storefront/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type OrderRepository interface {
	Create(ctx context.Context, tx pgx.Tx, order *domain.Order) error
	List(ctx context.Context) ([]domain.Order, error)
	ListByEmail(ctx context.Context, email string) ([]domain.Order, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Order, error)
	Items(ctx context.Context, orderID uuid.UUID) ([]domain.OrderItem, error)
	Update(ctx context.Context, tx pgx.Tx, order *domain.Order) error
}

// querier is satisfied by both the pool and an open transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const orderColumns = `
	id, customer_name, customer_email, customer_phone, shipping_address,
	total_price, status, admin_notes, created_at, updated_at`

type orderRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
	tracer trace.Tracer
}

func NewOrderRepository(pool *pgxpool.Pool, logger *zap.Logger) OrderRepository {
	return &orderRepo{
		pool:   pool,
		logger: logger,
		tracer: otel.Tracer("order_repository"),
	}
}

func (r *orderRepo) Create(ctx context.Context, tx pgx.Tx, order *domain.Order) error {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.Create")
	defer span.End()

	span.SetAttributes(
		attribute.String("customer_email", order.CustomerEmail),
		attribute.Int("items_count", len(order.Items)),
	)

	if order.Status == "" {
		order.Status = domain.OrderStatusPending
	}

	queryOrder := `
		INSERT INTO orders (
			customer_name, customer_email, customer_phone, shipping_address,
			total_price, status, admin_notes
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`

	if err := tx.QueryRow(
		ctx,
		queryOrder,
		order.CustomerName,
		order.CustomerEmail,
		order.CustomerPhone,
		order.ShippingAddress,
		order.TotalPrice,
		string(order.Status),
		order.AdminNotes,
	).Scan(
		&order.ID,
		&order.CreatedAt,
		&order.UpdatedAt,
	); err != nil {
		span.RecordError(err)
		mylogger.Error(ctx, r.logger, "Failed to insert order", zap.Error(err))

		return fmt.Errorf("failed to insert order: %w", rangeError(err))
	}

	queryItem := `
		INSERT INTO order_items (order_id, product_id, position, quantity, price_at_purchase, product_title)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	for i := range order.Items {
		item := &order.Items[i]
		item.OrderID = order.ID

		if err := tx.QueryRow(
			ctx,
			queryItem,
			order.ID,
			item.ProductID,
			i,
			item.Quantity,
			item.PriceAtPurchase,
			item.ProductTitle,
		).Scan(&item.ID); err != nil {
			span.RecordError(err)
			mylogger.Error(
				ctx,
				r.logger,
				"Failed to insert order item",
				zap.Stringer("order_id", order.ID),
				zap.Int("position", i),
				zap.Error(err),
			)

			return fmt.Errorf("failed to insert order item: %w", rangeError(err))
		}
	}

	return nil
}

func (r *orderRepo) List(ctx context.Context) ([]domain.Order, error) {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.List")
	defer span.End()

	orders, err := r.listOrders(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC`)
	if err != nil {
		span.RecordError(err)
		mylogger.Error(ctx, r.logger, "Failed to list orders", zap.Error(err))
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	span.SetAttributes(attribute.Int("result_count", len(orders)))

	return orders, nil
}

func (r *orderRepo) ListByEmail(ctx context.Context, email string) ([]domain.Order, error) {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.ListByEmail")
	defer span.End()

	query := `SELECT ` + orderColumns + `
		FROM orders
		WHERE LOWER(customer_email) = $1
		ORDER BY created_at DESC`

	orders, err := r.listOrders(ctx, query, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		span.RecordError(err)
		mylogger.Error(ctx, r.logger, "Failed to list customer orders", zap.Error(err))
		return nil, fmt.Errorf("failed to list customer orders: %w", err)
	}

	span.SetAttributes(attribute.Int("result_count", len(orders)))

	return orders, nil
}

func (r *orderRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.GetByID")
	defer span.End()

	span.SetAttributes(attribute.String("order_id", id.String()))

	order, err := r.getOrder(ctx, r.pool, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	if err != nil {
		if !errors.Is(err, ErrOrderNotFound) {
			span.RecordError(err)
			mylogger.Error(ctx, r.logger, "Failed to get order", zap.Stringer("order_id", id), zap.Error(err))
		}

		return nil, err
	}

	return order, nil
}

func (r *orderRepo) GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Order, error) {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.GetForUpdate")
	defer span.End()

	span.SetAttributes(attribute.String("order_id", id.String()))

	order, err := r.getOrder(ctx, tx, `SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, id)
	if err != nil {
		if !errors.Is(err, ErrOrderNotFound) {
			span.RecordError(err)
			mylogger.Error(ctx, r.logger, "Failed to lock order", zap.Stringer("order_id", id), zap.Error(err))
		}

		return nil, err
	}

	return order, nil
}

func (r *orderRepo) Items(ctx context.Context, orderID uuid.UUID) ([]domain.OrderItem, error) {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.Items")
	defer span.End()

	span.SetAttributes(attribute.String("order_id", orderID.String()))

	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, orderID).Scan(&exists); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to check order: %w", err)
	}
	if !exists {
		return nil, ErrOrderNotFound
	}

	items, err := r.loadItems(ctx, r.pool, []uuid.UUID{orderID})
	if err != nil {
		span.RecordError(err)
		mylogger.Error(ctx, r.logger, "Failed to query order_items", zap.Stringer("order_id", orderID), zap.Error(err))
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}

	return nonNilItems(items[orderID]), nil
}

func (r *orderRepo) Update(ctx context.Context, tx pgx.Tx, order *domain.Order) error {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.Update")
	defer span.End()

	span.SetAttributes(
		attribute.String("order_id", order.ID.String()),
		attribute.String("status", string(order.Status)),
	)

	query := `
		UPDATE orders
		SET status = $1, admin_notes = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING updated_at
	`

	err := tx.QueryRow(ctx, query, string(order.Status), order.AdminNotes, order.ID).Scan(&order.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			mylogger.Warn(ctx, r.logger, "Order not found", zap.Stringer("order_id", order.ID))
			return ErrOrderNotFound
		}

		span.RecordError(err)
		mylogger.Error(ctx, r.logger, "Failed to update order", zap.Error(err))

		return fmt.Errorf("failed to update order: %w", err)
	}

	return nil
}

func (r *orderRepo) getOrder(ctx context.Context, q querier, query string, id uuid.UUID) (*domain.Order, error) {
	order, err := scanOrder(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}

		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	items, err := r.loadItems(ctx, q, []uuid.UUID{order.ID})
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}

	order.Items = nonNilItems(items[order.ID])

	return &order, nil
}

func (r *orderRepo) listOrders(ctx context.Context, query string, args ...any) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]domain.Order, 0)
	ids := make([]uuid.UUID, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}

		orders = append(orders, order)
		ids = append(ids, order.ID)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(ids) == 0 {
		return orders, nil
	}

	items, err := r.loadItems(ctx, r.pool, ids)
	if err != nil {
		return nil, err
	}

	for i := range orders {
		orders[i].Items = nonNilItems(items[orders[i].ID])
	}

	return orders, nil
}

func (r *orderRepo) loadItems(ctx context.Context, q querier, orderIDs []uuid.UUID) (map[uuid.UUID][]domain.OrderItem, error) {
	query := `
		SELECT id, order_id, product_id, quantity, price_at_purchase, product_title
		FROM order_items
		WHERE order_id = ANY($1::uuid[])
		ORDER BY order_id, position
	`

	rows, err := q.Query(ctx, query, uuidStrings(orderIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	res := make(map[uuid.UUID][]domain.OrderItem, len(orderIDs))
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.Quantity,
			&item.PriceAtPurchase,
			&item.ProductTitle,
		); err != nil {
			return nil, err
		}

		res[item.OrderID] = append(res[item.OrderID], item)
	}

	return res, rows.Err()
}

func scanOrder(row rowScanner) (domain.Order, error) {
	var o domain.Order
	var status string

	err := row.Scan(
		&o.ID,
		&o.CustomerName,
		&o.CustomerEmail,
		&o.CustomerPhone,
		&o.ShippingAddress,
		&o.TotalPrice,
		&status,
		&o.AdminNotes,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	o.Status = domain.OrderStatus(status)

	return o, err
}

func nonNilItems(items []domain.OrderItem) []domain.OrderItem {
	if items == nil {
		return []domain.OrderItem{}
	}

	return items
}
