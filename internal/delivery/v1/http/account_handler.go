package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/marble-shop/go-backend/internal/usecase"
	"github.com/marble-shop/go-backend/pkg/logger"
)

type AccountHandler struct {
	userUsecase  usecase.UserUC
	adminUsecase usecase.AdminUC
	logger       logger.Logger
}

func NewAccountHandler(userUsecase usecase.UserUC, adminUsecase usecase.AdminUC, logger logger.Logger) *AccountHandler {
	return &AccountHandler{userUsecase: userUsecase, adminUsecase: adminUsecase, logger: logger}
}

// getUser
//
//	@Summary	Покупатель по UID
//	@Tags		users
//	@Produce	json
//	@Param		uid	path		string	true	"UID"
//	@Success	200	{object}	map[string]interface{}
//	@Failure	400	{object}	ErrorResponse
//	@Router		/user/{uid} [get]
func (a *AccountHandler) getUser(w http.ResponseWriter, r *http.Request) {
	user, err := a.userUsecase.Get(r.Context(), chi.URLParam(r, "uid"))
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, map[string]interface{}{"user": newUserResponse(user)})
}

// registerUser
//
//	@Summary	Регистрация покупателя
//	@Tags		users
//	@Accept		json
//	@Produce	json
//	@Param		request	body		RegisterUserRequest	true	"Покупатель"
//	@Success	201		{object}	map[string]interface{}
//	@Failure	400		{object}	ErrorResponse
//	@Failure	409		{object}	ErrorResponse
//	@Router		/user/register [post]
func (a *AccountHandler) registerUser(w http.ResponseWriter, r *http.Request) {
	var req RegisterUserRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	user, err := a.userUsecase.Register(r.Context(), &usecase.RegisterUserReq{
		UID:         req.UID,
		Name:        req.Name,
		PhoneNumber: req.PhoneNumber,
		Email:       req.Email,
		Address:     req.Address,
	})
	if err != nil {
		a.logger.Warnf("user registration failed: %v", err)
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusCreated, map[string]interface{}{
		"message": "User Added Successfully",
		"success": true,
		"user":    newUserResponse(user),
	})
}

// getAdmin
//
//	@Summary	Администратор по UID
//	@Tags		admins
//	@Produce	json
//	@Param		uid	path		string	true	"UID"
//	@Success	200	{object}	map[string]interface{}
//	@Failure	400	{object}	ErrorResponse
//	@Router		/admin/{uid} [get]
func (a *AccountHandler) getAdmin(w http.ResponseWriter, r *http.Request) {
	admin, err := a.adminUsecase.Get(r.Context(), chi.URLParam(r, "uid"))
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, map[string]interface{}{"admin": newAdminResponse(admin)})
}

// registerAdmin
//
//	@Summary	Регистрация администратора
//	@Tags		admins
//	@Accept		json
//	@Produce	json
//	@Param		request	body		RegisterAdminRequest	true	"Администратор"
//	@Success	201		{object}	map[string]interface{}
//	@Failure	400		{object}	ErrorResponse
//	@Failure	409		{object}	ErrorResponse
//	@Router		/admin/register [post]
func (a *AccountHandler) registerAdmin(w http.ResponseWriter, r *http.Request) {
	var req RegisterAdminRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	admin, err := a.adminUsecase.Register(r.Context(), &usecase.RegisterAdminReq{
		UID:   req.UID,
		Name:  req.Name,
		Phone: req.Phone,
		Email: req.Email,
	})
	if err != nil {
		a.logger.Warnf("admin registration failed: %v", err)
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusCreated, map[string]interface{}{
		"message": "Admin Added Successfully",
		"admin":   newAdminResponse(admin),
	})
}
