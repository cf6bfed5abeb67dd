package transactionrepo

import (
	"context"
	"strconv"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/avoronov/bankcards/internal/domain"
	"github.com/avoronov/bankcards/internal/pg"
	"github.com/avoronov/bankcards/pkg/paging"
)

const transactionColumns = "id, sender_card_id, receiver_card_id, amount, status, created_at"

// Repository is the append-only transfer ledger: rows are inserted once and
// never updated or deleted.
type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{db: db}
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var tx domain.Transaction
	err := row.Scan(&tx.ID, &tx.SenderCardID, &tx.ReceiverCardID, &tx.Amount, &tx.Status, &tx.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

func (r *Repository) Create(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	query := `
        INSERT INTO transactions (sender_card_id, receiver_card_id, amount, status, created_at)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING ` + transactionColumns + `
	`
	created, err := scanTransaction(r.db.QueryRow(ctx, query, tx.SenderCardID, tx.ReceiverCardID,
		tx.Amount, tx.Status, tx.CreatedAt))
	if err != nil {
		zap.L().Error("can't create transaction", zap.Error(err))
		return nil, err
	}
	return created, nil
}

// ListBySenderOwner pages transactions sent from any card owned by the user.
func (r *Repository) ListBySenderOwner(ctx context.Context, p paging.Params, userID int64) ([]domain.Transaction, int64, error) {
	where := `
        FROM transactions t
        JOIN cards c ON c.id = t.sender_card_id
        WHERE c.user_id = $1
    `
	return r.pageQuery(ctx, p, where, userID)
}

// ListByReceiverOwner pages transactions received on any card owned by the user.
func (r *Repository) ListByReceiverOwner(ctx context.Context, p paging.Params, userID int64) ([]domain.Transaction, int64, error) {
	where := `
        FROM transactions t
        JOIN cards c ON c.id = t.receiver_card_id
        WHERE c.user_id = $1
    `
	return r.pageQuery(ctx, p, where, userID)
}

// ListByOwner pages transactions where the user owns either side.
func (r *Repository) ListByOwner(ctx context.Context, p paging.Params, userID int64) ([]domain.Transaction, int64, error) {
	where := `
        FROM transactions t
        WHERE EXISTS (
            SELECT 1 FROM cards c
            WHERE c.user_id = $1 AND c.id IN (t.sender_card_id, t.receiver_card_id)
        )
    `
	return r.pageQuery(ctx, p, where, userID)
}

func (r *Repository) ListAll(ctx context.Context, p paging.Params) ([]domain.Transaction, int64, error) {
	where := `
        FROM transactions t
    `
	return r.pageQuery(ctx, p, where)
}

func (r *Repository) pageQuery(ctx context.Context, p paging.Params, where string, args ...any) ([]domain.Transaction, int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) "+where, args...).Scan(&total); err != nil {
		zap.L().Error("can't count transactions", zap.Error(err))
		return nil, 0, err
	}

	limitPos := len(args) + 1
	query := "SELECT " + prefixColumns() + " " + where +
		" ORDER BY " + sortColumn(p) +
		" LIMIT $" + strconv.Itoa(limitPos) + " OFFSET $" + strconv.Itoa(limitPos+1)
	args = append(args, p.Limit(), p.Offset())

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		zap.L().Error("can't list transactions", zap.Error(err))
		return nil, 0, err
	}
	defer rows.Close()

	var transactions []domain.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			zap.L().Error("can't scan transaction row", zap.Error(err))
			return nil, 0, err
		}
		transactions = append(transactions, *tx)
	}
	return transactions, total, nil
}

func prefixColumns() string {
	return "t.id, t.sender_card_id, t.receiver_card_id, t.amount, t.status, t.created_at"
}

var sortColumns = map[string]string{
	"id":         "t.id",
	"amount":     "t.amount",
	"created_at": "t.created_at",
}

func sortColumn(p paging.Params) string {
	column, ok := sortColumns[p.Sort]
	if !ok {
		return "t.created_at DESC"
	}
	if p.Desc {
		return column + " DESC"
	}
	return column + " ASC"
}
