/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"sim-broker-go/models"
)

const (
	insertOrderQuery = `INSERT INTO orders
		(cl_ord_id, sender_id, symbol, side, order_type, quantity, limit_price,
		 time_in_force, status, filled_quantity, remaining_quantity, reject_reason,
		 created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	insertExecutionQuery = `INSERT INTO executions
		(order_id, exec_id, exec_quantity, exec_price, executed_at)
		VALUES (?, ?, ?, ?, ?)`

	selectOrderColumns = `id, cl_ord_id, sender_id, symbol, side, order_type,
		quantity, limit_price, time_in_force, status, filled_quantity,
		remaining_quantity, reject_reason, created_at, updated_at`
)

// InsertOrder persists a new order, enforcing cl_ord_id uniqueness
// atomically via the unique index. The assigned internal id is written
// back into o.
func (bdb *BrokerDb) InsertOrder(o *models.Order) error {
	now := time.Now().UTC()
	o.CreatedAt = now
	o.UpdatedAt = now

	res, err := bdb.stmtInsertOrder.Exec(
		o.ClOrdID, o.SenderID, o.Symbol, string(o.Side), string(o.OrderType),
		o.Quantity, limitPriceArg(o.LimitPrice), string(o.TimeInForce),
		string(o.Status), o.FilledQuantity, o.RemainingQuantity,
		nullString(o.RejectReason), o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateClOrdID
		}
		return fmt.Errorf("failed to insert order: %v", err)
	}

	o.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read order id: %v", err)
	}
	return nil
}

// GetOrder loads an order by internal id.
func (bdb *BrokerDb) GetOrder(id int64) (*models.Order, error) {
	row := bdb.db.QueryRow(`SELECT `+selectOrderColumns+` FROM orders WHERE id = ?`, id)
	return scanOrder(row)
}

// GetOrderByClOrdID loads an order by its client-supplied identifier.
func (bdb *BrokerDb) GetOrderByClOrdID(clOrdID string) (*models.Order, error) {
	row := bdb.db.QueryRow(`SELECT `+selectOrderColumns+` FROM orders WHERE cl_ord_id = ?`, clOrdID)
	return scanOrder(row)
}

// ListOrders returns all orders in insertion order, newest last.
func (bdb *BrokerDb) ListOrders() ([]models.Order, error) {
	rows, err := bdb.db.Query(`SELECT ` + selectOrderColumns + ` FROM orders ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %v", err)
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		o, err := scanOrderRows(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

// ListExecutions returns the executions of an order, oldest first.
func (bdb *BrokerDb) ListExecutions(orderID int64) ([]models.Execution, error) {
	rows, err := bdb.db.Query(
		`SELECT id, order_id, exec_id, exec_quantity, exec_price, executed_at
		 FROM executions WHERE order_id = ? ORDER BY id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list executions: %v", err)
	}
	defer rows.Close()

	var execs []models.Execution
	for rows.Next() {
		var e models.Execution
		if err := rows.Scan(&e.ID, &e.OrderID, &e.ExecID, &e.ExecQuantity, &e.ExecPrice, &e.ExecutedAt); err != nil {
			return nil, fmt.Errorf("failed to scan execution: %v", err)
		}
		execs = append(execs, e)
	}
	return execs, rows.Err()
}

// --- Transactional operations (lifecycle engine path) ---

// GetOrder loads an order inside the transaction. The single-writer
// connection means the row cannot change under us before commit.
func (t *Tx) GetOrder(id int64) (*models.Order, error) {
	row := t.tx.QueryRow(`SELECT `+selectOrderColumns+` FROM orders WHERE id = ?`, id)
	return scanOrder(row)
}

// GetSymbol loads a symbol row inside the transaction.
func (t *Tx) GetSymbol(symbol string) (*models.Symbol, error) {
	row := t.tx.Stmt(t.bdb.stmtGetSymbol).QueryRow(symbol)
	var s models.Symbol
	if err := row.Scan(&s.ID, &s.Symbol, &s.LastPrice, &s.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load symbol: %v", err)
	}
	return &s, nil
}

// InsertExecution appends an immutable fill record. The assigned row id
// is written back into e.
func (t *Tx) InsertExecution(e *models.Execution) error {
	e.ExecutedAt = time.Now().UTC()
	res, err := t.tx.Stmt(t.bdb.stmtInsertExec).Exec(
		e.OrderID, e.ExecID, e.ExecQuantity, e.ExecPrice, e.ExecutedAt)
	if err != nil {
		return fmt.Errorf("failed to insert execution: %v", err)
	}
	e.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read execution id: %v", err)
	}
	return nil
}

// UpdateOrderFill writes the post-fill quantities and status.
func (t *Tx) UpdateOrderFill(id int64, filled, remaining int, status models.OrderStatus) error {
	_, err := t.tx.Exec(
		`UPDATE orders SET filled_quantity = ?, remaining_quantity = ?, status = ?, updated_at = ?
		 WHERE id = ?`,
		filled, remaining, string(status), time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update order fill: %v", err)
	}
	return nil
}

// UpdateOrderStatus transitions an order's status, recording a reject
// reason when one is given.
func (t *Tx) UpdateOrderStatus(id int64, status models.OrderStatus, rejectReason string) error {
	_, err := t.tx.Exec(
		`UPDATE orders SET status = ?, reject_reason = COALESCE(?, reject_reason), updated_at = ?
		 WHERE id = ?`,
		string(status), nullString(rejectReason), time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update order status: %v", err)
	}
	return nil
}

// SumExecutions returns the notional value and total quantity of an
// order's executions, for average-price reporting.
func (t *Tx) SumExecutions(orderID int64) (totalValue float64, totalQty int, err error) {
	row := t.tx.QueryRow(
		`SELECT COALESCE(SUM(exec_quantity * exec_price), 0), COALESCE(SUM(exec_quantity), 0)
		 FROM executions WHERE order_id = ?`, orderID)
	if err := row.Scan(&totalValue, &totalQty); err != nil {
		return 0, 0, fmt.Errorf("failed to sum executions: %v", err)
	}
	return totalValue, totalQty, nil
}

// --- Scan helpers ---

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row *sql.Row) (*models.Order, error) {
	o, err := scanOrderRows(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return o, nil
}

func scanOrderRows(row rowScanner) (*models.Order, error) {
	var o models.Order
	var limitPrice sql.NullFloat64
	var rejectReason sql.NullString

	err := row.Scan(
		&o.ID, &o.ClOrdID, &o.SenderID, &o.Symbol, &o.Side, &o.OrderType,
		&o.Quantity, &limitPrice, &o.TimeInForce, &o.Status,
		&o.FilledQuantity, &o.RemainingQuantity, &rejectReason,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan order: %v", err)
	}

	if limitPrice.Valid {
		o.LimitPrice = &limitPrice.Float64
	}
	if rejectReason.Valid {
		o.RejectReason = rejectReason.String
	}
	return &o, nil
}

func limitPriceArg(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
