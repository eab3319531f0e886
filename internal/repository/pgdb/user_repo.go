package pgdb

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
	"github.com/marble-shop/go-backend/internal/domain"
	"github.com/marble-shop/go-backend/internal/repository/pgdb/converter"
	"github.com/marble-shop/go-backend/pkg/e"
	"github.com/marble-shop/go-backend/pkg/tr"
)

// UserRepo реализует репозиторий покупателей поверх PostgreSQL.
type UserRepo struct {
	pool *pgxpool.Pool
	conv converter.UserConverter
}

func NewUserRepo(pool *pgxpool.Pool, conv converter.UserConverter) *UserRepo {
	return &UserRepo{pool: pool, conv: conv}
}

func (u *UserRepo) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	model := u.conv.ToModel(user)
	query := `
		INSERT INTO users (uid, name, phone_number, email, address)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := tr.QuerierFromCtx(ctx, u.pool).
		QueryRow(ctx, query, model.UID, model.Name, model.PhoneNumber, model.Email, model.Address).
		Scan(&model.ID, &model.CreatedAt)
	if err != nil {
		if postgresDuplicate(err) {
			return nil, e.Wrap(whereami.WhereAmI(), e.Detail(e.ErrUserAlreadyExists, "user %s already exists", user.UID))
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return u.conv.ToEntity(model), nil
}

func (u *UserRepo) GetByUID(ctx context.Context, uid string) (*domain.User, error) {
	query := `
		SELECT id, uid, name, phone_number, email, address, created_at
		FROM users
		WHERE uid = $1
	`

	var model converter.UserModel
	err := tr.QuerierFromCtx(ctx, u.pool).QueryRow(ctx, query, uid).Scan(
		&model.ID, &model.UID, &model.Name, &model.PhoneNumber, &model.Email, &model.Address, &model.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrUserNotFound)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return u.conv.ToEntity(&model), nil
}

func (u *UserRepo) GetByIDs(ctx context.Context, ids []int64) ([]domain.User, error) {
	query := `
		SELECT id, uid, name, phone_number, email, address, created_at
		FROM users
		WHERE id = ANY($1)
	`

	rows, err := tr.QuerierFromCtx(ctx, u.pool).Query(ctx, query, ids)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	result := make([]domain.User, 0, len(ids))
	for rows.Next() {
		var model converter.UserModel
		if err := rows.Scan(
			&model.ID, &model.UID, &model.Name, &model.PhoneNumber, &model.Email, &model.Address, &model.CreatedAt,
		); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		result = append(result, *u.conv.ToEntity(&model))
	}

	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return result, nil
}
