package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/artpar/solarshop/internal/core/domain"
)

// =============================================================================
// Order Rows
// =============================================================================

// orderRow represents an order row in the database.
type orderRow struct {
	ID              int     `db:"id"`
	ReferenceID     string  `db:"reference_id"`
	CustomerName    string  `db:"customer_name"`
	CustomerPhone   string  `db:"customer_phone"`
	CustomerEmail   string  `db:"customer_email"`
	CustomerAddress string  `db:"customer_address"`
	CustomerCity    string  `db:"customer_city"`
	Items           string  `db:"items"`
	Total           int64   `db:"total"`
	Status          string  `db:"status"`
	PaymentMethod   string  `db:"payment_method"`
	PaymentProofURL string  `db:"payment_proof_url"`
	Notes           string  `db:"notes"`
	NotifiedAt      *string `db:"notified_at"`
	CreatedAt       string  `db:"created_at"`
	UpdatedAt       string  `db:"updated_at"`
}

// rowToOrder converts a database row to a domain.Order.
func rowToOrder(row *orderRow) (*domain.Order, error) {
	var items []domain.LineItem
	if row.Items != "" && row.Items != "null" {
		if err := json.Unmarshal([]byte(row.Items), &items); err != nil {
			return nil, NewStoreError("rowToOrder", "order", row.ReferenceID, "failed to parse items", ErrInvalidData)
		}
	}

	return &domain.Order{
		ID:          row.ID,
		ReferenceID: row.ReferenceID,
		Customer: domain.Customer{
			Name:    row.CustomerName,
			Phone:   row.CustomerPhone,
			Email:   row.CustomerEmail,
			Address: row.CustomerAddress,
			City:    row.CustomerCity,
		},
		Items:           items,
		Total:           row.Total,
		Status:          domain.OrderStatus(row.Status),
		PaymentMethod:   domain.PaymentMethod(row.PaymentMethod),
		PaymentProofURL: row.PaymentProofURL,
		Notes:           row.Notes,
		NotifiedAt:      parseOptionalTime(row.NotifiedAt),
		CreatedAt:       parseTime(row.CreatedAt),
		UpdatedAt:       parseTime(row.UpdatedAt),
	}, nil
}

func rowsToOrders(rows []orderRow) ([]domain.Order, error) {
	orders := make([]domain.Order, 0, len(rows))
	for i := range rows {
		o, err := rowToOrder(&rows[i])
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	return orders, nil
}

// =============================================================================
// Order Functions
// =============================================================================

// createOrder persists an order. The total must equal the sum of the line
// items; a mismatched order is rejected before it reaches the database.
func createOrder(ctx context.Context, exec executor, order *domain.Order) error {
	if err := order.Validate(); err != nil {
		return NewStoreError("CreateOrder", "order", order.ReferenceID, err.Error(), ErrInvalidData)
	}

	itemsJSON, err := json.Marshal(order.Items)
	if err != nil {
		return NewStoreError("CreateOrder", "order", order.ReferenceID, "failed to serialize items", ErrInvalidData)
	}

	var notifiedAt *string
	if order.NotifiedAt != nil {
		s := formatTime(*order.NotifiedAt)
		notifiedAt = &s
	}

	query := `
		INSERT INTO orders (
			reference_id, customer_name, customer_phone, customer_email,
			customer_address, customer_city, items, total, status,
			payment_method, payment_proof_url, notes, notified_at,
			created_at, updated_at
		) VALUES (
			:reference_id, :customer_name, :customer_phone, :customer_email,
			:customer_address, :customer_city, :items, :total, :status,
			:payment_method, :payment_proof_url, :notes, :notified_at,
			:created_at, :updated_at
		)`

	row := map[string]any{
		"reference_id":      order.ReferenceID,
		"customer_name":     order.Customer.Name,
		"customer_phone":    order.Customer.Phone,
		"customer_email":    order.Customer.Email,
		"customer_address":  order.Customer.Address,
		"customer_city":     order.Customer.City,
		"items":             string(itemsJSON),
		"total":             order.Total,
		"status":            string(order.Status),
		"payment_method":    string(order.PaymentMethod),
		"payment_proof_url": order.PaymentProofURL,
		"notes":             order.Notes,
		"notified_at":       notifiedAt,
		"created_at":        formatTime(order.CreatedAt),
		"updated_at":        formatTime(order.UpdatedAt),
	}

	result, err := exec.NamedExecContext(ctx, query, row)
	if err != nil {
		if isUniqueViolation(err, "orders.reference_id") {
			return NewStoreError("CreateOrder", "order", order.ReferenceID, "order with this ID already exists", ErrDuplicateID)
		}
		return NewStoreError("CreateOrder", "order", order.ReferenceID, err.Error(), err)
	}

	id, _ := result.LastInsertId()
	order.ID = int(id)
	return nil
}

func getOrder(ctx context.Context, exec executor, id string) (*domain.Order, error) {
	var row orderRow
	err := exec.GetContext(ctx, &row, `SELECT * FROM orders WHERE reference_id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NewStoreError("GetOrder", "order", id, "order not found", ErrNotFound)
		}
		return nil, NewStoreError("GetOrder", "order", id, err.Error(), err)
	}
	return rowToOrder(&row)
}

// updateOrderStatus moves an order from one status to another. It fails with
// ErrConflict if the stored status is no longer from.
func updateOrderStatus(ctx context.Context, exec executor, id string, from, to domain.OrderStatus, at time.Time) error {
	result, err := exec.ExecContext(ctx,
		`UPDATE orders SET status = ?, updated_at = ? WHERE reference_id = ? AND status = ?`,
		string(to), formatTime(at), id, string(from))
	if err != nil {
		return NewStoreError("UpdateOrderStatus", "order", id, err.Error(), err)
	}

	if n, _ := result.RowsAffected(); n > 0 {
		return nil
	}
	if _, err := getOrder(ctx, exec, id); err != nil {
		return err
	}
	return NewStoreError("UpdateOrderStatus", "order", id, "order status changed concurrently", ErrConflict)
}

func deleteOrder(ctx context.Context, exec executor, id string) error {
	result, err := exec.ExecContext(ctx, `DELETE FROM orders WHERE reference_id = ?`, id)
	if err != nil {
		return NewStoreError("DeleteOrder", "order", id, err.Error(), err)
	}
	return checkAffected(result, "DeleteOrder", "order", id)
}

func listOrders(ctx context.Context, exec executor, filter OrderFilter, opts ListOptions) ([]domain.Order, error) {
	opts = opts.Normalize()

	var rows []orderRow
	var err error
	if filter.Status != "" {
		err = exec.SelectContext(ctx, &rows,
			`SELECT * FROM orders WHERE status = ? ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
			string(filter.Status), opts.Limit, opts.Offset)
	} else {
		err = exec.SelectContext(ctx, &rows,
			`SELECT * FROM orders ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
			opts.Limit, opts.Offset)
	}
	if err != nil {
		return nil, NewStoreError("ListOrders", "order", "", err.Error(), err)
	}
	return rowsToOrders(rows)
}

// listUnnotifiedOrders returns the oldest orders that have not yet been
// relayed, oldest first.
func listUnnotifiedOrders(ctx context.Context, exec executor, limit int) ([]domain.Order, error) {
	if limit <= 0 {
		limit = 50
	}

	var rows []orderRow
	err := exec.SelectContext(ctx, &rows,
		`SELECT * FROM orders WHERE notified_at IS NULL ORDER BY id ASC LIMIT ?`, limit)
	if err != nil {
		return nil, NewStoreError("ListUnnotifiedOrders", "order", "", err.Error(), err)
	}
	return rowsToOrders(rows)
}

// markOrderNotified sets notified_at. Marking an already-notified order is a
// no-op; marking an unknown order returns ErrNotFound.
func markOrderNotified(ctx context.Context, exec executor, id string, at time.Time) error {
	result, err := exec.ExecContext(ctx,
		`UPDATE orders SET notified_at = ? WHERE reference_id = ? AND notified_at IS NULL`,
		formatTime(at), id)
	if err != nil {
		return NewStoreError("MarkOrderNotified", "order", id, err.Error(), err)
	}

	if n, _ := result.RowsAffected(); n > 0 {
		return nil
	}
	_, err = getOrder(ctx, exec, id)
	return err
}
