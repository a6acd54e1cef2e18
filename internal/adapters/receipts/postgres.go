package receipts

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hxuan190/route-aggregator/internal/domain"
)

// PostgreSQL error codes
const pgErrUniqueViolation = "23505"

// Postgres writes receipts to the execution_receipts table
// (sql/postgres/001_receipts.sql).
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

func (p *Postgres) Name() string { return "postgres" }

func (p *Postgres) Close() {
	p.pool.Close()
}

// Exec runs raw SQL, used for migrations.
func (p *Postgres) Exec(ctx context.Context, sql string) error {
	_, err := p.pool.Exec(ctx, sql)
	return err
}

func numeric(s string) (pgtype.Numeric, error) {
	if s == "" {
		s = "0"
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return pgtype.Numeric{}, fmt.Errorf("invalid amount %q", s)
	}
	return pgtype.Numeric{Int: v, Valid: true}, nil
}

func (p *Postgres) Record(ctx context.Context, r domain.ExecutionReceipt) error {
	amounts := make([]pgtype.Numeric, 3)
	for i, s := range []string{r.AmountIn, r.AmountOut, r.MinAmountOut} {
		n, err := numeric(s)
		if err != nil {
			return fmt.Errorf("insert receipt %s: %w", r.ID, err)
		}
		amounts[i] = n
	}

	query := `
		INSERT INTO execution_receipts (
			receipt_id, plan_hash, token_in, token_out, amount_in, amount_out,
			min_amount_out, payer, recipient, executed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := p.pool.Exec(ctx, query,
		r.ID,
		r.PlanHash,
		r.TokenIn,
		r.TokenOut,
		amounts[0],
		amounts[1],
		amounts[2],
		r.Payer,
		r.Recipient,
		r.ExecutedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateReceipt
		}
		return fmt.Errorf("insert receipt: %w", err)
	}
	return nil
}

func (p *Postgres) Get(ctx context.Context, id string) (domain.ExecutionReceipt, error) {
	query := `
		SELECT receipt_id, plan_hash, token_in, token_out, amount_in::text, amount_out::text,
			min_amount_out::text, payer, recipient, executed_at
		FROM execution_receipts
		WHERE receipt_id = $1
	`
	var r domain.ExecutionReceipt
	err := p.pool.QueryRow(ctx, query, id).Scan(
		&r.ID,
		&r.PlanHash,
		&r.TokenIn,
		&r.TokenOut,
		&r.AmountIn,
		&r.AmountOut,
		&r.MinAmountOut,
		&r.Payer,
		&r.Recipient,
		&r.ExecutedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ExecutionReceipt{}, ErrNotFound
		}
		return domain.ExecutionReceipt{}, fmt.Errorf("get receipt: %w", err)
	}
	return r, nil
}

func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgErrUniqueViolation
	}
	return false
}
