package store

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
)

func TestCreateOrderComputesTotal(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	orderDate := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`
		INSERT INTO orders (user_id, first_name, last_name, address, city, state, postal_code, country, phone, email, order_date, total)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING order_id
	`)).
		WithArgs(int64(5), "Ada", "Lovelace", "12 Crescent Rd", "London", "", "N1 9GU", "UK", "", "ada@example.com",
			orderDate, decimal.RequireFromString("29.97")).
		WillReturnRows(sqlmock.NewRows([]string{"order_id"}).AddRow(int64(21)))
	mock.ExpectQuery(regexp.QuoteMeta(`
		INSERT INTO order_details (order_id, album_id, genre_id, quantity, unit_price)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING order_detail_id
	`)).
		WithArgs(int64(21), int64(7), nil, 3, decimal.RequireFromString("9.99")).
		WillReturnRows(sqlmock.NewRows([]string{"order_detail_id"}).AddRow(int64(31)))
	mock.ExpectCommit()

	order, err := s.CreateOrder(context.Background(), Order{
		UserID:     5,
		FirstName:  "Ada",
		LastName:   "Lovelace",
		Address:    "12 Crescent Rd",
		City:       "London",
		PostalCode: "N1 9GU",
		Country:    "UK",
		Email:      "ada@example.com",
		OrderDate:  orderDate,
		Details: []OrderDetail{
			{AlbumID: 7, Quantity: 3, UnitPrice: decimal.RequireFromString("9.99")},
		},
	})
	if err != nil {
		t.Fatalf("CreateOrder error: %v", err)
	}

	if order.OrderID != 21 {
		t.Fatalf("expected order ID 21, got %d", order.OrderID)
	}
	if !order.Total.Equal(decimal.RequireFromString("29.97")) {
		t.Fatalf("expected computed total 29.97, got %s", order.Total)
	}
	if order.Details[0].OrderDetailID != 31 || order.Details[0].OrderID != 21 {
		t.Fatalf("unexpected detail: %#v", order.Details[0])
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateOrderWithoutLines(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	_, err = s.CreateOrder(context.Background(), Order{UserID: 5})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestOrderByIDLoadsDetails(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	orderDate := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`
		SELECT order_id, user_id, first_name, last_name, address, city, state, postal_code, country, phone, email, order_date, total
		FROM orders
		WHERE order_id = $1
	`)).
		WithArgs(int64(21)).
		WillReturnRows(sqlmock.NewRows([]string{
			"order_id", "user_id", "first_name", "last_name", "address", "city", "state",
			"postal_code", "country", "phone", "email", "order_date", "total",
		}).AddRow(int64(21), int64(5), "Ada", "Lovelace", "12 Crescent Rd", "London", "",
			"N1 9GU", "UK", "", "ada@example.com", orderDate, "29.97"))
	mock.ExpectQuery(regexp.QuoteMeta(`
		SELECT order_detail_id, order_id, album_id, genre_id, quantity, unit_price
		FROM order_details
		WHERE order_id = $1
		ORDER BY order_detail_id ASC
	`)).
		WithArgs(int64(21)).
		WillReturnRows(sqlmock.NewRows([]string{
			"order_detail_id", "order_id", "album_id", "genre_id", "quantity", "unit_price",
		}).
			AddRow(int64(31), int64(21), int64(7), int64(2), 3, "9.99").
			AddRow(int64(32), int64(21), int64(8), nil, 1, "11.99"))

	order, err := s.OrderByID(context.Background(), 21)
	if err != nil {
		t.Fatalf("OrderByID error: %v", err)
	}

	if len(order.Details) != 2 {
		t.Fatalf("expected 2 details, got %d", len(order.Details))
	}
	if order.Details[0].GenreID == nil || *order.Details[0].GenreID != 2 {
		t.Fatalf("expected genre id 2 on first detail, got %#v", order.Details[0].GenreID)
	}
	if order.Details[1].GenreID != nil {
		t.Fatalf("expected nil genre id on second detail, got %#v", order.Details[1].GenreID)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDeleteOrderCascades(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`
		DELETE FROM order_details
		WHERE order_id = $1
	`)).
		WithArgs(int64(21)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta(`
		DELETE FROM orders
		WHERE order_id = $1
	`)).
		WithArgs(int64(21)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := s.DeleteOrder(context.Background(), 21); err != nil {
		t.Fatalf("DeleteOrder error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDeleteOrderNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`
		DELETE FROM order_details
		WHERE order_id = $1
	`)).
		WithArgs(int64(404)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`
		DELETE FROM orders
		WHERE order_id = $1
	`)).
		WithArgs(int64(404)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	if err := s.DeleteOrder(context.Background(), 404); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
