package usecase

import (
	"context"
	"strings"

	"github.com/marble-shop/go-backend/internal/domain"
	"github.com/marble-shop/go-backend/pkg/e"
	"github.com/marble-shop/go-backend/pkg/logger"
)

type UserUseCase struct {
	userRepo UserRepository
	logger   logger.Logger
}

func NewUserUC(userRepo UserRepository, logger logger.Logger) *UserUseCase {
	return &UserUseCase{
		userRepo: userRepo,
		logger:   logger,
	}
}

// Register сохраняет покупателя. Повторная регистрация того же UID: ErrUserAlreadyExists.
func (u *UserUseCase) Register(ctx context.Context, req *RegisterUserReq) (*domain.User, error) {
	const op = "UserUseCase.Register"

	uid := strings.TrimSpace(req.UID)
	if uid == "" {
		return nil, e.Wrap(op, e.ErrUIDRequired)
	}

	user, err := u.userRepo.Create(ctx, domain.NewUser(uid, req.Name, req.PhoneNumber, req.Email, req.Address))
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	u.logger.Infof("user registered: uid=%s id=%d", user.UID, user.ID)

	return user, nil
}

func (u *UserUseCase) Get(ctx context.Context, uid string) (*domain.User, error) {
	const op = "UserUseCase.Get"

	if strings.TrimSpace(uid) == "" {
		return nil, e.Wrap(op, e.ErrUIDRequired)
	}

	user, err := u.userRepo.GetByUID(ctx, uid)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return user, nil
}
