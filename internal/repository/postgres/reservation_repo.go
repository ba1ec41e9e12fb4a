package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"tablereservations/internal/domain"
)

const detailColumns = `r.id, c.name, c.email, c.phone, r.time_slot, r.table_number, r.number_of_guests`

type reservationRepository struct {
	DB *sql.DB
}

func NewReservationRepository(db *sql.DB) domain.ReservationRepository {
	return &reservationRepository{DB: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDetail(row rowScanner) (*domain.ReservationDetail, error) {
	d := &domain.ReservationDetail{}
	var phone sql.NullString
	if err := row.Scan(&d.ID, &d.CustomerName, &d.Email, &phone, &d.TimeSlot, &d.TableNumber, &d.NumberOfGuests); err != nil {
		return nil, err
	}
	d.Phone = stringPtr(phone)
	d.TimeSlot = d.TimeSlot.UTC()
	return d, nil
}

func (r *reservationRepository) Create(ctx context.Context, res *domain.Reservation) error {
	query := `
		INSERT INTO reservations (id, customer_id, time_slot, table_number, number_of_guests, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.DB.ExecContext(ctx, query, res.ID, res.CustomerID, res.TimeSlot, res.TableNumber, res.NumberOfGuests, res.CreatedAt, res.UpdatedAt)
	if err != nil {
		if constraint, ok := uniqueConstraint(err); ok && constraint == reservationsSlotTable {
			return domain.ErrTableTaken
		}
		return err
	}
	return nil
}

func (r *reservationRepository) OccupiedTables(ctx context.Context, slot time.Time) ([]int, error) {
	query := `
		SELECT table_number
		FROM reservations
		WHERE time_slot = $1
		ORDER BY table_number
	`
	rows, err := r.DB.QueryContext(ctx, query, slot)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tables := []int{}
	for rows.Next() {
		var n int
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		tables = append(tables, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tables, nil
}

func (r *reservationRepository) GetDetail(ctx context.Context, id string) (*domain.ReservationDetail, error) {
	query := `
		SELECT ` + detailColumns + `
		FROM reservations r
		JOIN customers c ON c.id = r.customer_id
		WHERE r.id = $1
	`
	d, err := scanDetail(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return d, nil
}

// Update locks the row, re-checks occupancy of the target pair, and writes, all in one transaction.
func (r *reservationRepository) Update(ctx context.Context, id string, patch domain.ReservationPatch, updatedAt time.Time) (*domain.ReservationDetail, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	res := &domain.Reservation{}
	err = tx.QueryRowContext(ctx, `
		SELECT id, customer_id, time_slot, table_number, number_of_guests, created_at, updated_at
		FROM reservations
		WHERE id = $1
		FOR UPDATE
	`, id).Scan(&res.ID, &res.CustomerID, &res.TimeSlot, &res.TableNumber, &res.NumberOfGuests, &res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	if patch.Apply(res) {
		var taken bool
		err = tx.QueryRowContext(ctx, `
			SELECT EXISTS (
				SELECT 1 FROM reservations
				WHERE time_slot = $1 AND table_number = $2 AND id <> $3
			)
		`, res.TimeSlot, res.TableNumber, res.ID).Scan(&taken)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, domain.ErrTableConflict
		}
	}
	res.UpdatedAt = updatedAt

	_, err = tx.ExecContext(ctx, `
		UPDATE reservations
		SET time_slot = $1, table_number = $2, number_of_guests = $3, updated_at = $4
		WHERE id = $5
	`, res.TimeSlot, res.TableNumber, res.NumberOfGuests, res.UpdatedAt, res.ID)
	if err != nil {
		if constraint, ok := uniqueConstraint(err); ok && constraint == reservationsSlotTable {
			return nil, domain.ErrTableConflict
		}
		return nil, err
	}

	c := &domain.Customer{}
	var phone sql.NullString
	err = tx.QueryRowContext(ctx, `SELECT name, email, phone FROM customers WHERE id = $1`, res.CustomerID).
		Scan(&c.Name, &c.Email, &phone)
	if err != nil {
		return nil, fmt.Errorf("load customer: %w", err)
	}
	c.Phone = stringPtr(phone)

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	d := domain.NewReservationDetail(res, c)
	d.TimeSlot = d.TimeSlot.UTC()
	return d, nil
}

func (r *reservationRepository) Delete(ctx context.Context, id string) (*domain.ReservationDetail, error) {
	query := `
		DELETE FROM reservations r
		USING customers c
		WHERE r.id = $1 AND c.id = r.customer_id
		RETURNING ` + detailColumns
	return r.deleteReturning(ctx, query, id)
}

func (r *reservationRepository) DeleteOwned(ctx context.Context, id, email string) (*domain.ReservationDetail, error) {
	query := `
		DELETE FROM reservations r
		USING customers c
		WHERE r.id = $1 AND c.id = r.customer_id AND c.email = $2
		RETURNING ` + detailColumns
	return r.deleteReturning(ctx, query, id, email)
}

func (r *reservationRepository) deleteReturning(ctx context.Context, query string, args ...any) (*domain.ReservationDetail, error) {
	d, err := scanDetail(r.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return d, nil
}

func (r *reservationRepository) List(ctx context.Context, params domain.PaginationParams) ([]*domain.ReservationDetail, int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM reservations`).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT ` + detailColumns + `
		FROM reservations r
		JOIN customers c ON c.id = r.customer_id
		ORDER BY r.time_slot, r.table_number
		LIMIT $1 OFFSET $2
	`
	items, err := r.queryDetails(ctx, query, params.PageSize, params.Offset())
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *reservationRepository) ListAll(ctx context.Context) ([]*domain.ReservationDetail, error) {
	query := `
		SELECT ` + detailColumns + `
		FROM reservations r
		JOIN customers c ON c.id = r.customer_id
		ORDER BY r.time_slot, r.table_number
	`
	return r.queryDetails(ctx, query)
}

func (r *reservationRepository) queryDetails(ctx context.Context, query string, args ...any) ([]*domain.ReservationDetail, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]*domain.ReservationDetail, 0)
	for rows.Next() {
		d, err := scanDetail(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
