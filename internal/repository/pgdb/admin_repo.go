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
)

type AdminRepo struct {
	pool *pgxpool.Pool
	conv converter.AdminConverter
}

func NewAdminRepo(pool *pgxpool.Pool, conv converter.AdminConverter) *AdminRepo {
	return &AdminRepo{pool: pool, conv: conv}
}

func (a *AdminRepo) Create(ctx context.Context, admin *domain.Admin) (*domain.Admin, error) {
	model := a.conv.ToModel(admin)
	query := `
		INSERT INTO admins (uid, name, phone, email)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := a.pool.QueryRow(ctx, query, model.UID, model.Name, model.Phone, model.Email).
		Scan(&model.ID, &model.CreatedAt)
	if err != nil {
		if postgresDuplicate(err) {
			return nil, e.Wrap(whereami.WhereAmI(), e.Detail(e.ErrAdminAlreadyExists, "admin %s already exists", admin.UID))
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return a.conv.ToEntity(model), nil
}

func (a *AdminRepo) GetByUID(ctx context.Context, uid string) (*domain.Admin, error) {
	query := `
		SELECT id, uid, name, phone, email, created_at
		FROM admins
		WHERE uid = $1
	`

	var model converter.AdminModel
	err := a.pool.QueryRow(ctx, query, uid).Scan(
		&model.ID, &model.UID, &model.Name, &model.Phone, &model.Email, &model.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrAdminNotFound)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return a.conv.ToEntity(&model), nil
}
