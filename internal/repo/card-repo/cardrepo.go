package cardrepo

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/avoronov/bankcards/internal/domain"
	"github.com/avoronov/bankcards/internal/pg"
	"github.com/avoronov/bankcards/pkg/paging"
)

const cardColumns = "id, number_encrypted, number_last4, user_id, balance, expiration, status"

// uniqueViolationCode is the postgres error code for a unique constraint hit.
const uniqueViolationCode = "23505"

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{db: db}
}

func scanCard(row pgx.Row) (*domain.Card, error) {
	var card domain.Card
	err := row.Scan(&card.ID, &card.NumberEncrypted, &card.NumberLast4, &card.UserID,
		&card.Balance, &card.Expiration, &card.Status)
	if err != nil {
		return nil, err
	}
	return &card, nil
}

func (r *Repository) FindByID(ctx context.Context, id int64) (*domain.Card, error) {
	query := `
        SELECT ` + cardColumns + `
        FROM cards
        WHERE id = $1
    `
	card, err := scanCard(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		zap.L().Error("can't find card by id", zap.Error(err))
		return nil, err
	}
	return card, nil
}

// FindByIDForUpdate locks the card row for the rest of the surrounding
// transaction. Callers must be inside a TXManager scope; concurrent balance
// mutations on the same card serialize on this lock.
func (r *Repository) FindByIDForUpdate(ctx context.Context, id int64) (*domain.Card, error) {
	query := `
        SELECT ` + cardColumns + `
        FROM cards
        WHERE id = $1
        FOR UPDATE
    `
	card, err := scanCard(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		zap.L().Error("can't lock card by id", zap.Error(err))
		return nil, err
	}
	return card, nil
}

func (r *Repository) ExistsByNumberEncrypted(ctx context.Context, numberEncrypted string) (bool, error) {
	query := `
        SELECT EXISTS (SELECT 1 FROM cards WHERE number_encrypted = $1)
    `
	var exists bool
	if err := r.db.QueryRow(ctx, query, numberEncrypted).Scan(&exists); err != nil {
		zap.L().Error("can't check card number existence", zap.Error(err))
		return false, err
	}
	return exists, nil
}

func (r *Repository) Create(ctx context.Context, card *domain.Card) (*domain.Card, error) {
	query := `
        INSERT INTO cards (number_encrypted, number_last4, user_id, balance, expiration, status)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING ` + cardColumns + `
	`
	created, err := scanCard(r.db.QueryRow(ctx, query, card.NumberEncrypted, card.NumberLast4,
		card.UserID, card.Balance, card.Expiration, card.Status))
	if err != nil {
		// Two issuers may roll the same number concurrently; the unique
		// index on the ciphertext decides the loser.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return nil, domain.NewConflictError("card number is already in use")
		}
		zap.L().Error("can't create card", zap.Error(err))
		return nil, err
	}
	return created, nil
}

func (r *Repository) UpdateStatus(ctx context.Context, id int64, status domain.CardStatus) (*domain.Card, error) {
	query := `
        UPDATE cards
        SET status = $1
        WHERE id = $2
        RETURNING ` + cardColumns + `
	`
	updated, err := scanCard(r.db.QueryRow(ctx, query, status, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		zap.L().Error("can't update card status", zap.Error(err))
		return nil, err
	}
	return updated, nil
}

func (r *Repository) UpdateBalance(ctx context.Context, id int64, balance decimal.Decimal) error {
	query := `
        UPDATE cards
        SET balance = $1
        WHERE id = $2
    `
	if _, err := r.db.Exec(ctx, query, balance, id); err != nil {
		zap.L().Error("can't update card balance", zap.Error(err))
		return err
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	query := `
        DELETE FROM cards
        WHERE id = $1
    `
	if _, err := r.db.Exec(ctx, query, id); err != nil {
		zap.L().Error("can't delete card", zap.Error(err))
		return err
	}
	return nil
}

// ListAll returns a page of all cards, optionally narrowed to one owner.
func (r *Repository) ListAll(ctx context.Context, p paging.Params, userID *int64) ([]domain.Card, int64, error) {
	where := ""
	countArgs := []any{}
	if userID != nil {
		where = "WHERE user_id = $1"
		countArgs = append(countArgs, *userID)
	}

	var total int64
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM cards "+where, countArgs...).Scan(&total); err != nil {
		zap.L().Error("can't count cards", zap.Error(err))
		return nil, 0, err
	}

	args := countArgs
	limitPos := len(args) + 1
	query := "SELECT " + cardColumns + " FROM cards " + where +
		" ORDER BY " + sortColumn(p) +
		" LIMIT $" + strconv.Itoa(limitPos) + " OFFSET $" + strconv.Itoa(limitPos+1)
	args = append(args, p.Limit(), p.Offset())

	return r.queryCards(ctx, query, args, total)
}

// ListByUser returns a page of one user's cards, optionally narrowed by status.
func (r *Repository) ListByUser(ctx context.Context, p paging.Params, userID int64, status *domain.CardStatus) ([]domain.Card, int64, error) {
	where := "WHERE user_id = $1"
	countArgs := []any{userID}
	if status != nil {
		where += " AND status = $2"
		countArgs = append(countArgs, *status)
	}

	var total int64
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM cards "+where, countArgs...).Scan(&total); err != nil {
		zap.L().Error("can't count user cards", zap.Error(err))
		return nil, 0, err
	}

	args := countArgs
	limitPos := len(args) + 1
	query := "SELECT " + cardColumns + " FROM cards " + where +
		" ORDER BY " + sortColumn(p) +
		" LIMIT $" + strconv.Itoa(limitPos) + " OFFSET $" + strconv.Itoa(limitPos+1)
	args = append(args, p.Limit(), p.Offset())

	return r.queryCards(ctx, query, args, total)
}

// FindExpired returns cards whose expiration date has passed but whose status
// does not reflect it yet.
func (r *Repository) FindExpired(ctx context.Context, before time.Time, limit int) ([]domain.Card, error) {
	query := `
        SELECT ` + cardColumns + `
        FROM cards
        WHERE expiration < $1 AND status <> $2
        ORDER BY expiration ASC
        LIMIT $3
    `
	rows, err := r.db.Query(ctx, query, before, domain.CardStatusExpired, limit)
	if err != nil {
		zap.L().Error("can't find expired cards", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var cards []domain.Card
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			zap.L().Error("can't scan expired card row", zap.Error(err))
			return nil, err
		}
		cards = append(cards, *card)
	}
	return cards, nil
}

func (r *Repository) queryCards(ctx context.Context, query string, args []any, total int64) ([]domain.Card, int64, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		zap.L().Error("can't list cards", zap.Error(err))
		return nil, 0, err
	}
	defer rows.Close()

	var cards []domain.Card
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			zap.L().Error("can't scan card row", zap.Error(err))
			return nil, 0, err
		}
		cards = append(cards, *card)
	}
	return cards, total, nil
}

var sortColumns = map[string]string{
	"id":         "id",
	"balance":    "balance",
	"expiration": "expiration",
	"status":     "status",
}

func sortColumn(p paging.Params) string {
	column, ok := sortColumns[p.Sort]
	if !ok {
		column = "id"
	}
	if p.Desc {
		return column + " DESC"
	}
	return column + " ASC"
}

