package sqlite

import (
	"context"
	"strings"
	"time"

	"github.com/fwojciec/bookhaven"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ bookhaven.OrderService = (*OrderService)(nil)

// OrderService implements bookhaven.OrderService using SQLite.
type OrderService struct {
	db *DB
}

// NewOrderService creates a new OrderService.
func NewOrderService(db *DB) *OrderService {
	return &OrderService{db: db}
}

// CreateOrder persists an order and its items in one transaction.
func (s *OrderService) CreateOrder(ctx context.Context, order *bookhaven.Order) error {
	if err := order.Validate(); err != nil {
		return err
	}

	order.ID = uuid.New().String()
	order.CreatedAt = time.Now().UTC()

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (id, customer_name, customer_email, customer_phone, customer_location,
			delivery, payment, feedback, total, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, order.ID, order.Customer.Name, order.Customer.Email, order.Customer.Phone, order.Customer.Location,
		order.Delivery, string(order.Payment), order.Feedback, order.Total, formatTime(order.CreatedAt))
	if err != nil {
		return err
	}

	for i, item := range order.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, line, book_id, title, unit_price, quantity, subtotal)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, order.ID, i, item.BookID, item.Title, item.UnitPrice, item.Quantity, item.Subtotal)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// FindOrderByID retrieves an order with its items.
func (s *OrderService) FindOrderByID(ctx context.Context, id string) (*bookhaven.Order, error) {
	orders, err := s.FindOrders(ctx, bookhaven.OrderFilter{ID: &id, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, bookhaven.Errorf(bookhaven.ENOTFOUND, "order not found")
	}
	return orders[0], nil
}

// FindOrders retrieves orders matching the filter, newest first.
func (s *OrderService) FindOrders(ctx context.Context, filter bookhaven.OrderFilter) ([]*bookhaven.Order, error) {
	var query strings.Builder
	var args []any

	query.WriteString(`SELECT id, customer_name, customer_email, customer_phone, customer_location,
		delivery, payment, feedback, total, created_at FROM orders WHERE 1=1`)

	if filter.ID != nil {
		query.WriteString(" AND id = ?")
		args = append(args, *filter.ID)
	}
	if filter.Email != nil {
		query.WriteString(" AND customer_email = ?")
		args = append(args, *filter.Email)
	}

	query.WriteString(" ORDER BY created_at DESC, rowid DESC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	orders, err := s.scanOrders(ctx, query.String(), args)
	if err != nil {
		return nil, err
	}

	// Items are loaded after the order rows are closed; the pool holds a
	// single connection.
	for _, o := range orders {
		if o.Items, err = s.findItems(ctx, o.ID); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (s *OrderService) scanOrders(ctx context.Context, query string, args []any) ([]*bookhaven.Order, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*bookhaven.Order
	for rows.Next() {
		var o bookhaven.Order
		var payment, createdAt string

		if err := rows.Scan(&o.ID, &o.Customer.Name, &o.Customer.Email, &o.Customer.Phone, &o.Customer.Location,
			&o.Delivery, &payment, &o.Feedback, &o.Total, &createdAt); err != nil {
			return nil, err
		}
		o.Payment = bookhaven.PaymentMethod(payment)

		o.CreatedAt, err = parseRFC3339(createdAt, "created_at")
		if err != nil {
			return nil, err
		}

		orders = append(orders, &o)
	}
	return orders, rows.Err()
}

func (s *OrderService) findItems(ctx context.Context, orderID string) ([]bookhaven.OrderItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT book_id, title, unit_price, quantity, subtotal
		FROM order_items
		WHERE order_id = ?
		ORDER BY line ASC
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []bookhaven.OrderItem
	for rows.Next() {
		var item bookhaven.OrderItem
		if err := rows.Scan(&item.BookID, &item.Title, &item.UnitPrice, &item.Quantity, &item.Subtotal); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
