package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/nourtarek555/BuyerMS3/internal/cart"
)

var ErrOrderNotFound = errors.New("order not found")

// DBPool matches the methods from *pgxpool.Pool that we use.
// This allows us to mock the database in tests.
type DBPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, orderID string) (*Order, error)
	ListByBuyer(ctx context.Context, buyerID string) ([]Order, error)
	ListBySeller(ctx context.Context, sellerID string) ([]Order, error)
	UpdateStatus(ctx context.Context, orderID string, status Status) error
}

type PostgresRepository struct {
	pool DBPool
}

func NewPostgresRepository(pool DBPool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const orderColumns = `id, buyer_id, seller_id, total_price, status, created_at,
         buyer_name, buyer_address, seller_name, delivery_type, delivery_price`

func (r *PostgresRepository) Create(ctx context.Context, o *Order) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	if o.Status == "" {
		o.Status = StatusPending
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx,
		`INSERT INTO orders (`+orderColumns+`)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		o.ID, o.BuyerID, o.SellerID, o.TotalPrice, string(o.Status), o.CreatedAt,
		o.BuyerName, o.BuyerAddress, o.SellerName, string(o.DeliveryType), o.DeliveryPrice,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for _, it := range o.Items {
		_, err = tx.Exec(ctx,
			`INSERT INTO order_items (id, order_id, product_id, seller_id, product_name, unit_price, quantity, image_url)
             VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			uuid.NewString(), o.ID, it.ProductID, it.SellerID, it.ProductName, it.UnitPrice, it.Quantity, it.ImageURL,
		)
		if err != nil {
			return fmt.Errorf("insert order_item: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, orderID string) (*Order, error) {
	var o Order
	var status, deliveryType string
	err := r.pool.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`,
		orderID,
	).Scan(&o.ID, &o.BuyerID, &o.SellerID, &o.TotalPrice, &status, &o.CreatedAt,
		&o.BuyerName, &o.BuyerAddress, &o.SellerName, &deliveryType, &o.DeliveryPrice)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("select order: %w", err)
	}
	o.Status = Status(status)
	o.DeliveryType = DeliveryType(deliveryType)

	o.Items, err = r.loadItems(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *PostgresRepository) ListByBuyer(ctx context.Context, buyerID string) ([]Order, error) {
	return r.list(ctx, `buyer_id`, buyerID)
}

func (r *PostgresRepository) ListBySeller(ctx context.Context, sellerID string) ([]Order, error) {
	return r.list(ctx, `seller_id`, sellerID)
}

func (r *PostgresRepository) list(ctx context.Context, column, value string) ([]Order, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE `+column+` = $1 ORDER BY created_at DESC`,
		value,
	)
	if err != nil {
		return nil, fmt.Errorf("select orders: %w", err)
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		var o Order
		var status, deliveryType string
		if err := rows.Scan(&o.ID, &o.BuyerID, &o.SellerID, &o.TotalPrice, &status, &o.CreatedAt,
			&o.BuyerName, &o.BuyerAddress, &o.SellerName, &deliveryType, &o.DeliveryPrice); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		o.Status = Status(status)
		o.DeliveryType = DeliveryType(deliveryType)
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	for i := range orders {
		items, err := r.loadItems(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}
	return orders, nil
}

func (r *PostgresRepository) loadItems(ctx context.Context, orderID string) (map[string]cart.Item, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT product_id, seller_id, product_name, unit_price, quantity, image_url
         FROM order_items WHERE order_id = $1`,
		orderID,
	)
	if err != nil {
		return nil, fmt.Errorf("select order_items: %w", err)
	}
	defer rows.Close()

	items := make(map[string]cart.Item)
	for rows.Next() {
		var it cart.Item
		if err := rows.Scan(&it.ProductID, &it.SellerID, &it.ProductName, &it.UnitPrice, &it.Quantity, &it.ImageURL); err != nil {
			return nil, fmt.Errorf("scan order_item: %w", err)
		}
		items[it.ProductID] = it
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return items, nil
}

// UpdateStatus writes only the status column. Transition legality is the
// caller's responsibility; this is the persistence half of the lifecycle.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, orderID string, status Status) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE orders SET status = $2, updated_at = now() WHERE id = $1`,
		orderID, string(status),
	)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrOrderNotFound
	}
	return nil
}
