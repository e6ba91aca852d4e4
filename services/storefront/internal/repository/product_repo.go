package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Kedar-sonavani/Kalashree-Collection/pkg/mylogger"
	"github.com/Kedar-sonavani/Kalashree-Collection/services/storefront/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type ProductRepository interface {
	List(ctx context.Context) ([]domain.Product, error)
	ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]domain.Product, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	ListSharingCategories(ctx context.Context, id uuid.UUID, limit int) ([]domain.Product, error)
	ListRandom(ctx context.Context, excludeID uuid.UUID, limit int) ([]domain.Product, error)
	Create(ctx context.Context, tx pgx.Tx, input *domain.ProductInput) (uuid.UUID, error)
	Update(ctx context.Context, tx pgx.Tx, id uuid.UUID, input *domain.ProductInput) error
	ReplaceCategories(ctx context.Context, tx pgx.Tx, id uuid.UUID, categoryIDs []uuid.UUID) error
	LockByID(ctx context.Context, tx pgx.Tx, id uuid.UUID) error
	HasActiveOrders(ctx context.Context, tx pgx.Tx, id uuid.UUID) (bool, error)
	Delete(ctx context.Context, tx pgx.Tx, id uuid.UUID) error
	LockForOrder(ctx context.Context, tx pgx.Tx, ids []uuid.UUID) (map[uuid.UUID]domain.StockLine, error)
	DecrementStock(ctx context.Context, tx pgx.Tx, id uuid.UUID, quantity int) error
	IncrementStock(ctx context.Context, tx pgx.Tx, id uuid.UUID, delta int) (int, error)
}

const productColumns = `
	p.id, p.title, p.description, p.price, p.discount_price, p.stock, p.images,
	p.is_featured, p.force_new, p.material, p.care_instructions, p.origin,
	p.manufacturer, p.weight, p.created_at, p.updated_at,
	COALESCE(
		ARRAY_AGG(pc.category_id::text ORDER BY pc.category_id) FILTER (WHERE pc.category_id IS NOT NULL),
		'{}'
	) AS category_ids`

func productQuery(where, tail string) string {
	return `SELECT ` + productColumns + `
		FROM products p
		LEFT JOIN product_categories pc ON pc.product_id = p.id
		` + where + `
		GROUP BY p.id
		` + tail
}

type productRepo struct {
	pool   *pgxpool.Pool
	tracer trace.Tracer
	logger *zap.Logger
}

func NewProductRepository(pool *pgxpool.Pool, logger *zap.Logger) ProductRepository {
	return &productRepo{
		pool:   pool,
		logger: logger,
		tracer: otel.Tracer("contract/product_repo"),
	}
}

func (r *productRepo) fail(ctx context.Context, span trace.Span, msg string, err error, fields ...zap.Field) {
	span.RecordError(err)
	span.SetStatus(codes.Error, msg)
	mylogger.Error(ctx, r.logger, msg, append(fields, zap.Error(err))...)
}

func (r *productRepo) List(ctx context.Context) ([]domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.List")
	defer span.End()

	products, err := r.query(ctx, productQuery("", "ORDER BY p.created_at DESC"))
	if err != nil {
		r.fail(ctx, span, "Error listing products", err)
		return nil, fmt.Errorf("error listing products: %w", err)
	}

	span.SetAttributes(attribute.Int("result_count", len(products)))

	return products, nil
}

func (r *productRepo) ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.ListByCategory")
	defer span.End()

	span.SetAttributes(attribute.String("category_id", categoryID.String()))

	query := productQuery(
		`WHERE EXISTS (
			SELECT 1 FROM product_categories f
			WHERE f.product_id = p.id AND f.category_id = $1
		)`,
		"ORDER BY p.created_at DESC",
	)

	products, err := r.query(ctx, query, categoryID)
	if err != nil {
		r.fail(ctx, span, "Error listing category products", err, zap.Stringer("category_id", categoryID))
		return nil, fmt.Errorf("error listing products of category %s: %w", categoryID, err)
	}

	return products, nil
}

func (r *productRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.GetByID")
	defer span.End()

	span.SetAttributes(attribute.String("id", id.String()))

	p, err := scanProduct(r.pool.QueryRow(ctx, productQuery("WHERE p.id = $1", ""), id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}

		r.fail(ctx, span, "Error get by id", err, zap.Stringer("id", id))
		return nil, fmt.Errorf("error getting product: %w", err)
	}

	return &p, nil
}

func (r *productRepo) ListSharingCategories(ctx context.Context, id uuid.UUID, limit int) ([]domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.ListSharingCategories")
	defer span.End()

	span.SetAttributes(
		attribute.String("id", id.String()),
		attribute.Int("limit", limit),
	)

	query := productQuery(
		`WHERE p.id <> $1 AND EXISTS (
			SELECT 1
			FROM product_categories mine
			JOIN product_categories theirs ON theirs.category_id = mine.category_id
			WHERE mine.product_id = $1 AND theirs.product_id = p.id
		)`,
		"ORDER BY RANDOM() LIMIT $2",
	)

	products, err := r.query(ctx, query, id, limit)
	if err != nil {
		r.fail(ctx, span, "Error listing products sharing categories", err, zap.Stringer("id", id))
		return nil, fmt.Errorf("error listing related products: %w", err)
	}

	return products, nil
}

func (r *productRepo) ListRandom(ctx context.Context, excludeID uuid.UUID, limit int) ([]domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.ListRandom")
	defer span.End()

	span.SetAttributes(attribute.Int("limit", limit))

	products, err := r.query(ctx, productQuery("WHERE p.id <> $1", "ORDER BY RANDOM() LIMIT $2"), excludeID, limit)
	if err != nil {
		r.fail(ctx, span, "Error listing random products", err)
		return nil, fmt.Errorf("error listing random products: %w", err)
	}

	return products, nil
}

func (r *productRepo) Create(ctx context.Context, tx pgx.Tx, input *domain.ProductInput) (uuid.UUID, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.Create")
	defer span.End()

	span.SetAttributes(attribute.String("title", input.Title))

	query := `
		INSERT INTO products (
			title, description, price, discount_price, stock, images, is_featured,
			force_new, material, care_instructions, origin, manufacturer, weight
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id
	`

	var id uuid.UUID
	err := tx.QueryRow(ctx, query, productArgs(input)...).Scan(&id)
	if err != nil {
		r.fail(ctx, span, "Error creating product", err)
		return uuid.Nil, fmt.Errorf("error creating product: %w", rangeError(err))
	}

	return id, nil
}

func (r *productRepo) Update(ctx context.Context, tx pgx.Tx, id uuid.UUID, input *domain.ProductInput) error {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.Update")
	defer span.End()

	span.SetAttributes(attribute.String("id", id.String()))

	query := `
		UPDATE products
		SET title = $1, description = $2, price = $3, discount_price = $4, stock = $5,
			images = $6, is_featured = $7, force_new = $8, material = $9,
			care_instructions = $10, origin = $11, manufacturer = $12, weight = $13,
			updated_at = NOW()
		WHERE id = $14
	`

	commandTag, err := tx.Exec(ctx, query, append(productArgs(input), id)...)
	if err != nil {
		r.fail(ctx, span, "Failed to update product", err, zap.Stringer("id", id))
		return fmt.Errorf("error updating product: %w", rangeError(err))
	}

	if commandTag.RowsAffected() == 0 {
		return ErrProductNotFound
	}

	return nil
}

func (r *productRepo) ReplaceCategories(ctx context.Context, tx pgx.Tx, id uuid.UUID, categoryIDs []uuid.UUID) error {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.ReplaceCategories")
	defer span.End()

	span.SetAttributes(
		attribute.String("id", id.String()),
		attribute.Int("categories", len(categoryIDs)),
	)

	if _, err := tx.Exec(ctx, `DELETE FROM product_categories WHERE product_id = $1`, id); err != nil {
		r.fail(ctx, span, "Failed to clear product categories", err, zap.Stringer("id", id))
		return fmt.Errorf("error clearing categories: %w", err)
	}

	if len(categoryIDs) == 0 {
		return nil
	}

	query := `
		INSERT INTO product_categories (product_id, category_id)
		SELECT DISTINCT $1::uuid, c FROM UNNEST($2::uuid[]) AS c
	`

	if _, err := tx.Exec(ctx, query, id, uuidStrings(categoryIDs)); err != nil {
		if pgErrorCode(err) == pgForeignKeyViolation {
			return ErrUnknownCategory
		}

		r.fail(ctx, span, "Failed to link product categories", err, zap.Stringer("id", id))
		return fmt.Errorf("error linking categories: %w", err)
	}

	return nil
}

func (r *productRepo) LockByID(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.LockByID")
	defer span.End()

	var locked uuid.UUID
	err := tx.QueryRow(ctx, `SELECT id FROM products WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrProductNotFound
		}

		r.fail(ctx, span, "Failed to lock product", err, zap.Stringer("id", id))
		return fmt.Errorf("error locking product: %w", err)
	}

	return nil
}

func (r *productRepo) HasActiveOrders(ctx context.Context, tx pgx.Tx, id uuid.UUID) (bool, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.HasActiveOrders")
	defer span.End()

	statuses := make([]string, len(domain.ActiveOrderStatuses))
	for i, s := range domain.ActiveOrderStatuses {
		statuses[i] = string(s)
	}

	query := `
		SELECT EXISTS (
			SELECT 1
			FROM order_items oi
			JOIN orders o ON o.id = oi.order_id
			WHERE oi.product_id = $1 AND o.status = ANY($2)
		)
	`

	var exists bool
	if err := tx.QueryRow(ctx, query, id, statuses).Scan(&exists); err != nil {
		r.fail(ctx, span, "Failed to check active orders", err, zap.Stringer("id", id))
		return false, fmt.Errorf("error checking active orders: %w", err)
	}

	span.SetAttributes(attribute.Bool("has_active_orders", exists))

	return exists, nil
}

func (r *productRepo) Delete(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.Delete")
	defer span.End()

	commandTag, err := tx.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		r.fail(ctx, span, "Error deleting product by id", err, zap.Stringer("id", id))
		return fmt.Errorf("error deleting product by id: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return ErrProductNotFound
	}

	return nil
}

// LockForOrder locks the rows in id order so that two checkouts touching the
// same products always acquire them in the same sequence.
func (r *productRepo) LockForOrder(ctx context.Context, tx pgx.Tx, ids []uuid.UUID) (map[uuid.UUID]domain.StockLine, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.LockForOrder")
	defer span.End()

	span.SetAttributes(attribute.Int("products", len(ids)))

	query := `
		SELECT id, title, price, discount_price, stock
		FROM products
		WHERE id = ANY($1::uuid[])
		ORDER BY id
		FOR UPDATE
	`

	rows, err := tx.Query(ctx, query, uuidStrings(ids))
	if err != nil {
		r.fail(ctx, span, "Failed to lock products for order", err)
		return nil, fmt.Errorf("error locking products: %w", err)
	}
	defer rows.Close()

	res := make(map[uuid.UUID]domain.StockLine, len(ids))
	for rows.Next() {
		var line domain.StockLine
		var discount decimal.NullDecimal

		if err := rows.Scan(&line.ID, &line.Title, &line.Price, &discount, &line.Stock); err != nil {
			r.fail(ctx, span, "Failed to scan locked product", err)
			return nil, fmt.Errorf("error scanning locked product: %w", err)
		}

		line.DiscountPrice = fromNullDecimal(discount)
		res[line.ID] = line
	}

	if err := rows.Err(); err != nil {
		r.fail(ctx, span, "Failed to iterate locked products", err)
		return nil, fmt.Errorf("error locking products: %w", err)
	}

	return res, nil
}

func (r *productRepo) DecrementStock(ctx context.Context, tx pgx.Tx, id uuid.UUID, quantity int) error {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.DecrementStock")
	defer span.End()

	span.SetAttributes(
		attribute.String("id", id.String()),
		attribute.Int("quantity", quantity),
	)

	var ok bool
	if err := tx.QueryRow(ctx, `SELECT decrement_stock($1, $2)`, id, quantity).Scan(&ok); err != nil {
		r.fail(ctx, span, "Error decreasing stock", err, zap.Stringer("id", id), zap.Int("quantity", quantity))
		return fmt.Errorf("error decreasing stock for product %s: %w", id, err)
	}

	if !ok {
		return ErrInsufficientStock
	}

	return nil
}

// IncrementStock applies a signed delta clamped to [0, MaxStock] and returns the new
// stock. It prefers the increment_stock procedure and falls back to a
// read-modify-write when the procedure is missing from the schema.
func (r *productRepo) IncrementStock(ctx context.Context, tx pgx.Tx, id uuid.UUID, delta int) (int, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.IncrementStock")
	defer span.End()

	span.SetAttributes(
		attribute.String("id", id.String()),
		attribute.Int("delta", delta),
	)

	savepoint, err := tx.Begin(ctx)
	if err != nil {
		r.fail(ctx, span, "Failed to open savepoint", err)
		return 0, fmt.Errorf("error opening savepoint: %w", err)
	}

	var stock *int
	err = savepoint.QueryRow(ctx, `SELECT increment_stock($1, $2)`, id, delta).Scan(&stock)
	if err != nil {
		_ = savepoint.Rollback(ctx)

		if pgErrorCode(err) != pgUndefinedFunction {
			r.fail(ctx, span, "Failed to increment stock", err, zap.Stringer("id", id))
			return 0, fmt.Errorf("error incrementing stock: %w", rangeError(err))
		}

		mylogger.Warn(ctx, r.logger, "increment_stock missing, falling back to read-modify-write",
			zap.Stringer("id", id),
		)
		span.SetAttributes(attribute.Bool("fallback", true))

		return r.incrementStockFallback(ctx, tx, id, delta)
	}

	if err := savepoint.Commit(ctx); err != nil {
		r.fail(ctx, span, "Failed to release savepoint", err)
		return 0, fmt.Errorf("error releasing savepoint: %w", err)
	}

	if stock == nil {
		return 0, ErrProductNotFound
	}

	return *stock, nil
}

func (r *productRepo) incrementStockFallback(ctx context.Context, tx pgx.Tx, id uuid.UUID, delta int) (int, error) {
	var current int
	err := tx.QueryRow(ctx, `SELECT stock FROM products WHERE id = $1 FOR UPDATE`, id).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrProductNotFound
		}

		return 0, fmt.Errorf("error reading stock: %w", err)
	}

	next := min(max(current+delta, 0), domain.MaxStock)

	if _, err := tx.Exec(ctx, `UPDATE products SET stock = $2, updated_at = NOW() WHERE id = $1`, id, next); err != nil {
		return 0, fmt.Errorf("error writing stock: %w", err)
	}

	return next, nil
}

func (r *productRepo) query(ctx context.Context, query string, args ...any) ([]domain.Product, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]domain.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}

		products = append(products, p)
	}

	return products, rows.Err()
}

func scanProduct(row rowScanner) (domain.Product, error) {
	var p domain.Product
	var discount decimal.NullDecimal
	var categoryIDs []string

	err := row.Scan(
		&p.ID,
		&p.Title,
		&p.Description,
		&p.Price,
		&discount,
		&p.Stock,
		&p.Images,
		&p.IsFeatured,
		&p.ForceNew,
		&p.Material,
		&p.CareInstructions,
		&p.Origin,
		&p.Manufacturer,
		&p.Weight,
		&p.CreatedAt,
		&p.UpdatedAt,
		&categoryIDs,
	)
	if err != nil {
		return domain.Product{}, err
	}

	p.DiscountPrice = fromNullDecimal(discount)
	if p.CategoryIDs, err = parseUUIDs(categoryIDs); err != nil {
		return domain.Product{}, err
	}

	return p, nil
}

func productArgs(in *domain.ProductInput) []any {
	images := in.Images
	if images == nil {
		images = []string{}
	}

	return []any{
		in.Title,
		in.Description,
		in.Price,
		toNullDecimal(in.DiscountPrice),
		in.Stock,
		images,
		in.IsFeatured,
		in.ForceNew,
		in.Material,
		in.CareInstructions,
		in.Origin,
		in.Manufacturer,
		in.Weight,
	}
}

func toNullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}

	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

func fromNullDecimal(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}

	v := d.Decimal
	return &v
}
