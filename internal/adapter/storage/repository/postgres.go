package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/MikeRez0/smmrefund/internal/adapter/storage"
	"github.com/MikeRez0/smmrefund/internal/core/domain"
	"github.com/MikeRez0/smmrefund/internal/core/port"
	"github.com/govalues/decimal"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var orderColumns = []string{
	"id", "external_order_id", "user_id", "quantity", "charge", "status",
	"remains", "start_count", "refund_amount", "refund_at", "refund_reason",
	"created_at", "updated_at",
}

type Repository struct {
	db *storage.DB
}

func NewRepository(db *storage.DB) (*Repository, error) {
	return &Repository{db: db}, nil
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	order := domain.Order{}
	err := row.Scan(
		&order.ID,
		&order.ExternalOrderID,
		&order.UserID,
		&order.Quantity,
		&order.Charge,
		&order.Status,
		&order.Remains,
		&order.StartCount,
		&order.RefundAmount,
		&order.RefundAt,
		&order.RefundReason,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDataNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (or *Repository) CreateOrder(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if order.Status == "" {
		order.Status = domain.OrderStatusPending
	}
	statement := or.db.QueryBuilder.Insert("smm_orders").
		Columns("external_order_id", "user_id", "quantity", "charge", "status", "refund_amount").
		Values(order.ExternalOrderID, order.UserID, order.Quantity, order.Charge, order.Status, decimal.Zero).
		Suffix("RETURNING " + strings.Join(orderColumns, ", "))

	sql, args, err := statement.ToSql()
	if err != nil {
		return nil, err
	}

	created, err := scanOrder(or.db.QueryRow(ctx, sql, args...))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, domain.ErrConflictingData
		}
		return nil, err
	}
	return created, nil
}

func (or *Repository) ReadOrder(ctx context.Context, orderID int64) (*domain.Order, error) {
	statement := or.db.QueryBuilder.
		Select(orderColumns...).
		From("smm_orders").
		Where(sq.Eq{"id": orderID})

	sql, args, err := statement.ToSql()
	if err != nil {
		return nil, err
	}

	return scanOrder(or.db.QueryRow(ctx, sql, args...))
}

func (or *Repository) ListOrdersByIDs(ctx context.Context, orderIDs []int64) ([]*domain.Order, error) {
	return or.listOrders(ctx, sq.Eq{"id": orderIDs})
}

func (or *Repository) ListEligibleOrders(ctx context.Context) ([]*domain.Order, error) {
	return or.listOrders(ctx, sq.And{
		sq.NotEq{"external_order_id": nil},
		sq.NotEq{"status": []string{
			string(domain.OrderStatusCompleted),
			string(domain.OrderStatusCanceled),
			string(domain.OrderStatusRefunded),
		}},
	})
}

func (or *Repository) listOrders(ctx context.Context, where sq.Sqlizer) ([]*domain.Order, error) {
	statement := or.db.QueryBuilder.
		Select(orderColumns...).
		From("smm_orders").
		Where(where).
		OrderBy("id")

	sql, args, err := statement.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := or.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]*domain.Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, order)
	}

	err = rows.Err()
	if err != nil {
		return nil, err
	}

	return list, nil
}

func (or *Repository) UpdateOrderProgress(ctx context.Context, orderID int64, remains, startCount *int64) error {
	statement := or.db.QueryBuilder.
		Update("smm_orders").
		Set("remains", sq.Expr("COALESCE(?, remains)", remains)).
		Set("start_count", sq.Expr("COALESCE(?, start_count)", startCount)).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": orderID})

	sql, args, err := statement.ToSql()
	if err != nil {
		return err
	}

	tag, err := or.db.Exec(ctx, sql, args...)
	if err != nil {
		return mapConstraintError(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrDataNotFound
	}
	return nil
}

func (or *Repository) ReadBalanceByUserID(ctx context.Context, userID int64) (*domain.Balance, error) {
	statement := or.db.QueryBuilder.
		Select("user_id", "current").
		From("balance").
		Where(sq.Eq{"user_id": userID})

	sql, args, err := statement.ToSql()
	if err != nil {
		return nil, err
	}

	balance := domain.Balance{}
	err = or.db.QueryRow(ctx, sql, args...).Scan(&balance.UserID, &balance.Current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDataNotFound
		}
		return nil, err
	}
	return &balance, nil
}

func (or *Repository) SettleOrder(ctx context.Context, orderID int64, settleFn port.SettleFn) (*domain.SettlementResult, error) {
	var result *domain.SettlementResult

	err := pgx.BeginFunc(ctx, or.db, func(tx pgx.Tx) error {
		lock := or.db.QueryBuilder.
			Select(orderColumns...).
			From("smm_orders").
			Where(sq.Eq{"id": orderID}).
			Suffix("FOR UPDATE")

		sql, args, err := lock.ToSql()
		if err != nil {
			return err
		}
		order, err := scanOrder(tx.QueryRow(ctx, sql, args...))
		if err != nil {
			return err
		}
		before := order.Status

		settlement, err := settleFn(order)
		if err != nil {
			return err
		}

		res := &domain.SettlementResult{Order: order, Settlement: settlement}

		if settlement != nil {
			if err := or.insertSettlement(ctx, tx, settlement); err != nil {
				return err
			}
			current, err := or.creditBalance(ctx, tx, order.UserID, settlement.Credited)
			if err != nil {
				return err
			}
			res.NewBalance = &current
		}

		if settlement != nil || order.Status != before {
			update := or.db.QueryBuilder.
				Update("smm_orders").
				Set("status", order.Status).
				Set("refund_amount", order.RefundAmount).
				Set("refund_at", order.RefundAt).
				Set("refund_reason", order.RefundReason).
				Set("updated_at", sq.Expr("now()")).
				Where(sq.Eq{"id": order.ID}).
				Suffix("RETURNING updated_at")

			sql, args, err := update.ToSql()
			if err != nil {
				return err
			}
			var updatedAt time.Time
			if err := tx.QueryRow(ctx, sql, args...).Scan(&updatedAt); err != nil {
				return err
			}
			order.UpdatedAt = updatedAt
			res.Changed = true
		}

		result = res
		return nil
	})
	if err != nil {
		return nil, mapConstraintError(err)
	}

	return result, nil
}

func (or *Repository) insertSettlement(ctx context.Context, tx pgx.Tx, s *domain.Settlement) error {
	statement := or.db.QueryBuilder.
		Insert("settlements").
		Columns("id", "order_id", "user_id", "idempotency_key", "status_from", "status_to",
			"amount", "currency", "credited", "ledger_currency", "reason", "source", "created_at").
		Values(s.ID, s.OrderID, s.UserID, s.IdempotencyKey, s.StatusFrom, s.StatusTo,
			s.Amount, s.Currency, s.Credited, s.LedgerCurrency, s.Reason, s.Source, s.CreatedAt)

	sql, args, err := statement.ToSql()
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, sql, args...)
	return err
}

// creditBalance adds amount in place, so concurrent credits for one user never
// overwrite each other.
func (or *Repository) creditBalance(ctx context.Context, tx pgx.Tx, userID int64, amount decimal.Decimal) (decimal.Decimal, error) {
	statement := or.db.QueryBuilder.
		Insert("balance").
		Columns("user_id", "current").
		Values(userID, amount).
		Suffix("ON CONFLICT (user_id) DO UPDATE SET current = balance.current + EXCLUDED.current RETURNING current")

	sql, args, err := statement.ToSql()
	if err != nil {
		return decimal.Zero, err
	}

	var current decimal.Decimal
	if err := tx.QueryRow(ctx, sql, args...).Scan(&current); err != nil {
		return decimal.Zero, fmt.Errorf("credit balance: %w", err)
	}
	return current, nil
}

func (or *Repository) ListSettlements(ctx context.Context, orderID int64) ([]*domain.Settlement, error) {
	statement := or.db.QueryBuilder.
		Select("id", "order_id", "user_id", "idempotency_key", "status_from", "status_to",
			"amount", "currency", "credited", "ledger_currency", "reason", "source", "created_at").
		From("settlements").
		Where(sq.Eq{"order_id": orderID}).
		OrderBy("created_at")

	sql, args, err := statement.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := or.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]*domain.Settlement, 0)
	for rows.Next() {
		s := domain.Settlement{}
		err := rows.Scan(&s.ID, &s.OrderID, &s.UserID, &s.IdempotencyKey, &s.StatusFrom, &s.StatusTo,
			&s.Amount, &s.Currency, &s.Credited, &s.LedgerCurrency, &s.Reason, &s.Source, &s.CreatedAt)
		if err != nil {
			return nil, err
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}

func mapConstraintError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgerrcode.UniqueViolation:
		return fmt.Errorf("%w: %s", domain.ErrAlreadySettled, pgErr.ConstraintName)
	case pgerrcode.CheckViolation:
		return fmt.Errorf("%w: %s", domain.ErrDataInvariant, pgErr.ConstraintName)
	}
	return err
}
