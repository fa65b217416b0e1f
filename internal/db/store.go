package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/repairdesk/backend/internal/models"
)

var ErrOutOfStock = errors.New("product out of stock")

type Store struct {
	Pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Store{Pool: pool}, nil
}

func (s *Store) Close() {
	s.Pool.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.Pool.Ping(ctx)
}

func (s *Store) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

const repairColumns = `id, customer_name, customer_phone, customer_email, device_model, device_type,
	issue, urgency, historical_value, technical_complexity, created_at, stage,
	estimated_hours, technician_id, technician_name`

// ListRepairJobs returns open repair orders, oldest first. Delivered and
// cancelled orders are never part of a triage snapshot.
func (s *Store) ListRepairJobs(ctx context.Context, stage string, limit int) ([]models.RepairJob, error) {
	if limit <= 0 || limit > 500 {
		limit = 200
	}

	query := `SELECT ` + repairColumns + ` FROM repair_orders`
	args := []any{}
	wheres := []string{"status NOT IN ('delivered', 'cancelled')"}
	if stage != "" {
		args = append(args, stage)
		wheres = append(wheres, fmt.Sprintf("stage = $%d", len(args)))
	}
	query += " WHERE " + strings.Join(wheres, " AND ")
	query += " ORDER BY created_at ASC, id ASC LIMIT $" + fmt.Sprint(len(args)+1)
	args = append(args, limit)

	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.RepairJob{}
	for rows.Next() {
		j, err := scanRepairJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

// GetRepairJob returns pgx.ErrNoRows when the order does not exist.
func (s *Store) GetRepairJob(ctx context.Context, id string) (models.RepairJob, error) {
	row := s.Pool.QueryRow(ctx, `SELECT `+repairColumns+` FROM repair_orders WHERE id = $1`, id)
	return scanRepairJob(row)
}

func (s *Store) ListProducts(ctx context.Context) ([]models.ProductStock, error) {
	rows, err := s.Pool.Query(ctx, `SELECT id, name, stock, component_type, supplier_name, price FROM products ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.ProductStock{}
	for rows.Next() {
		var (
			p             models.ProductStock
			componentType *string
			supplier      *string
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.Stock, &componentType, &supplier, &p.Price); err != nil {
			return nil, err
		}
		if componentType != nil {
			p.ComponentType = models.ComponentType(strings.ToLower(strings.TrimSpace(*componentType)))
		}
		if supplier != nil {
			p.SupplierName = *supplier
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// CommitReservations records each reservation and decrements its stock in a
// single transaction. Reservation ids already on record are skipped, so
// committing the same plan twice takes stock once. If any product has run out,
// nothing is committed and the error wraps ErrOutOfStock. The count covers
// newly recorded reservations only.
func (s *Store) CommitReservations(ctx context.Context, reservations []models.InventoryReservation) (int, error) {
	committed := 0
	err := s.WithTx(ctx, func(tx pgx.Tx) error {
		for _, r := range reservations {
			qty := r.Quantity
			if qty <= 0 {
				qty = 1
			}
			reservedAt := r.ReservedAt
			if reservedAt.IsZero() {
				reservedAt = time.Now().UTC()
			}
			tag, err := tx.Exec(ctx, `INSERT INTO reservations (id, repair_job_id, product_id, quantity, status, reserved_at)
				VALUES ($1, $2, $3, $4, $5, $6) ON CONFLICT (id) DO NOTHING`,
				r.ID, r.RepairJobID, r.ProductID, qty, models.ReservationReserved, reservedAt)
			if err != nil {
				return err
			}
			if tag.RowsAffected() == 0 {
				continue
			}
			tag, err = tx.Exec(ctx, `UPDATE products SET stock = stock - $2 WHERE id = $1 AND stock >= $2`, r.ProductID, qty)
			if err != nil {
				return err
			}
			if tag.RowsAffected() == 0 {
				return fmt.Errorf("reservation %s for product %s: %w", r.ID, r.ProductID, ErrOutOfStock)
			}
			committed++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return committed, nil
}

func scanRepairJob(row pgx.Row) (models.RepairJob, error) {
	var (
		j              models.RepairJob
		customerName   *string
		customerPhone  *string
		customerEmail  *string
		deviceType     *string
		historical     *float64
		stage          *string
		technicianID   *string
		technicianName *string
	)
	err := row.Scan(&j.ID, &customerName, &customerPhone, &customerEmail, &j.DeviceModel, &deviceType,
		&j.Issue, &j.Urgency, &historical, &j.TechnicalComplexity, &j.CreatedAt, &stage,
		&j.EstimatedHours, &technicianID, &technicianName)
	if err != nil {
		return models.RepairJob{}, err
	}
	j.CustomerName = deref(customerName)
	j.CustomerPhone = deref(customerPhone)
	j.CustomerEmail = deref(customerEmail)
	j.DeviceType = deref(deviceType)
	j.Stage = deref(stage)
	j.TechnicianID = deref(technicianID)
	j.TechnicianName = deref(technicianName)
	if historical != nil {
		j.HistoricalValue = *historical
	}
	return j, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
