package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Order models a completed purchase with its customer and shipping fields.
type Order struct {
	OrderID    int64           `json:"orderId"`
	UserID     int64           `json:"userId"`
	FirstName  string          `json:"firstName"`
	LastName   string          `json:"lastName"`
	Address    string          `json:"address"`
	City       string          `json:"city"`
	State      string          `json:"state"`
	PostalCode string          `json:"postalCode"`
	Country    string          `json:"country"`
	Phone      string          `json:"phone"`
	Email      string          `json:"email"`
	OrderDate  time.Time       `json:"orderDate"`
	Total      decimal.Decimal `json:"total"`
	Details    []OrderDetail   `json:"details,omitempty"`
}

// OrderDetail models one album line of an order. GenreID is an optional
// reference kept for reporting; it survives the album but not the order.
type OrderDetail struct {
	OrderDetailID int64           `json:"orderDetailId"`
	OrderID       int64           `json:"orderId"`
	AlbumID       int64           `json:"albumId"`
	GenreID       *int64          `json:"genreId,omitempty"`
	Quantity      int             `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unitPrice"`
}

// CreateOrder inserts the order together with its detail lines in one
// transaction. A zero Total is computed from the lines.
func (s *Store) CreateOrder(ctx context.Context, order Order) (Order, error) {
	if err := ValidateOrder(order); err != nil {
		return Order{}, err
	}

	if order.OrderDate.IsZero() {
		order.OrderDate = time.Now().UTC()
	}
	if order.Total.IsZero() {
		for _, d := range order.Details {
			order.Total = order.Total.Add(d.UnitPrice.Mul(decimal.NewFromInt(int64(d.Quantity))))
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Order{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback()
		}
	}()

	var orderID int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (user_id, first_name, last_name, address, city, state, postal_code, country, phone, email, order_date, total)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING order_id
	`, order.UserID, order.FirstName, order.LastName, order.Address, order.City, order.State,
		order.PostalCode, order.Country, order.Phone, order.Email, order.OrderDate, order.Total).Scan(&orderID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return Order{}, fmt.Errorf("%w: user does not exist", ErrConstraintViolation)
		}
		return Order{}, fmt.Errorf("insert order: %w", err)
	}

	for i := range order.Details {
		detail := &order.Details[i]
		detail.OrderID = orderID

		var genreID any
		if detail.GenreID != nil {
			genreID = *detail.GenreID
		}

		if err := tx.QueryRowContext(ctx, `
			INSERT INTO order_details (order_id, album_id, genre_id, quantity, unit_price)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING order_detail_id
		`, orderID, detail.AlbumID, genreID, detail.Quantity, detail.UnitPrice).Scan(&detail.OrderDetailID); err != nil {
			if isForeignKeyViolation(err) {
				return Order{}, fmt.Errorf("%w: album or genre does not exist", ErrConstraintViolation)
			}
			return Order{}, fmt.Errorf("insert order detail: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Order{}, fmt.Errorf("commit tx: %w", err)
	}
	tx = nil

	order.OrderID = orderID
	return order, nil
}

// OrderByID returns the order with its detail lines loaded.
func (s *Store) OrderByID(ctx context.Context, id int64) (Order, error) {
	var o Order
	err := s.db.QueryRowContext(ctx, `
		SELECT order_id, user_id, first_name, last_name, address, city, state, postal_code, country, phone, email, order_date, total
		FROM orders
		WHERE order_id = $1
	`, id).Scan(
		&o.OrderID,
		&o.UserID,
		&o.FirstName,
		&o.LastName,
		&o.Address,
		&o.City,
		&o.State,
		&o.PostalCode,
		&o.Country,
		&o.Phone,
		&o.Email,
		&o.OrderDate,
		&o.Total,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Order{}, ErrNotFound
		}
		return Order{}, fmt.Errorf("select order: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT order_detail_id, order_id, album_id, genre_id, quantity, unit_price
		FROM order_details
		WHERE order_id = $1
		ORDER BY order_detail_id ASC
	`, id)
	if err != nil {
		return Order{}, fmt.Errorf("select order details: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			d       OrderDetail
			genreID sql.NullInt64
		)
		if err := rows.Scan(&d.OrderDetailID, &d.OrderID, &d.AlbumID, &genreID, &d.Quantity, &d.UnitPrice); err != nil {
			return Order{}, fmt.Errorf("scan order detail: %w", err)
		}
		if genreID.Valid {
			v := genreID.Int64
			d.GenreID = &v
		}
		o.Details = append(o.Details, d)
	}
	if err := rows.Err(); err != nil {
		return Order{}, fmt.Errorf("iterate order details: %w", err)
	}

	return o, nil
}

// Orders returns all orders, newest first, without detail lines.
func (s *Store) Orders(ctx context.Context) ([]Order, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT order_id, user_id, first_name, last_name, address, city, state, postal_code, country, phone, email, order_date, total
		FROM orders
		ORDER BY order_date DESC, order_id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("select orders: %w", err)
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(
			&o.OrderID,
			&o.UserID,
			&o.FirstName,
			&o.LastName,
			&o.Address,
			&o.City,
			&o.State,
			&o.PostalCode,
			&o.Country,
			&o.Phone,
			&o.Email,
			&o.OrderDate,
			&o.Total,
		); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}

	return orders, nil
}

// DeleteOrder removes the order and its detail lines in one transaction.
func (s *Store) DeleteOrder(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM order_details
		WHERE order_id = $1
	`, id); err != nil {
		return fmt.Errorf("delete order details: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
		DELETE FROM orders
		WHERE order_id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete order rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	tx = nil

	return nil
}
