package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/marble-shop/go-backend/internal/domain"
	"github.com/marble-shop/go-backend/pkg/e"
	"github.com/marble-shop/go-backend/pkg/logger"
)

type AdminUseCase struct {
	adminRepo AdminRepository
	logger    logger.Logger
}

func NewAdminUC(adminRepo AdminRepository, logger logger.Logger) *AdminUseCase {
	return &AdminUseCase{
		adminRepo: adminRepo,
		logger:    logger,
	}
}

func (a *AdminUseCase) Register(ctx context.Context, req *RegisterAdminReq) (*domain.Admin, error) {
	const op = "AdminUseCase.Register"

	uid := strings.TrimSpace(req.UID)
	if uid == "" {
		return nil, e.Wrap(op, e.ErrUIDRequired)
	}

	admin, err := a.adminRepo.Create(ctx, domain.NewAdmin(uid, req.Name, req.Phone, req.Email))
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	a.logger.Infof("admin registered: uid=%s id=%d", admin.UID, admin.ID)

	return admin, nil
}

func (a *AdminUseCase) Get(ctx context.Context, uid string) (*domain.Admin, error) {
	const op = "AdminUseCase.Get"

	if strings.TrimSpace(uid) == "" {
		return nil, e.Wrap(op, e.ErrUIDRequired)
	}

	admin, err := a.adminRepo.GetByUID(ctx, uid)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return admin, nil
}

// Authorize пропускает только зарегистрированных администраторов.
func (a *AdminUseCase) Authorize(ctx context.Context, uid string) error {
	const op = "AdminUseCase.Authorize"

	if strings.TrimSpace(uid) == "" {
		return e.Wrap(op, e.ErrForbidden)
	}

	_, err := a.adminRepo.GetByUID(ctx, uid)
	if err != nil {
		if errors.Is(err, e.ErrAdminNotFound) {
			a.logger.Warnf("admin authorization rejected: uid=%s", uid)
			return e.Wrap(op, e.ErrForbidden)
		}
		return e.Wrap(op, err)
	}

	return nil
}
