package users

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/mfontenla/easyshop-api/internal/auth"
	"github.com/mfontenla/easyshop-api/internal/domain"
	"github.com/mfontenla/easyshop-api/internal/rest"
)

type Store interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

type Handler struct {
	store  Store
	tokens *auth.TokenManager
	logger *slog.Logger
}

func NewHandler(store Store, tokens *auth.TokenManager, logger *slog.Logger) *Handler {
	return &Handler{store: store, tokens: tokens, logger: logger}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

type signupRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Phone    string `json:"phone"`
	Zip      string `json:"zip"`
	Country  string `json:"country"`
}

var ruleMessages = map[string]string{
	"Name.required":     "The name is required",
	"Email.required":    "The email is required",
	"Email.email":       "Invalid email address",
	"Password.required": "The password is required",
	"Password.min":      "The password must be at least 6 characters",
}

func validateSignup(req *signupRequest) string {
	err := validate.Struct(req)
	if err == nil {
		return ""
	}
	errs, ok := err.(validator.ValidationErrors)
	if !ok || len(errs) == 0 {
		return "Invalid request body"
	}
	first := errs[0]
	if msg, ok := ruleMessages[first.Field()+"."+first.Tag()]; ok {
		return msg
	}
	return "Invalid value for field " + first.Field()
}

func (h *Handler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rest.Fail(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}

	if msg := validateSignup(&req); msg != "" {
		rest.Fail(w, h.logger, http.StatusBadRequest, msg)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.logger.Error("failed to hash password", "error", err)
		rest.Internal(w, h.logger, err)
		return
	}

	user := &domain.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Phone:        req.Phone,
		Zip:          req.Zip,
		Country:      req.Country,
	}
	if err := h.store.Create(r.Context(), user); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			rest.Fail(w, h.logger, http.StatusBadRequest, "A user with that email already exists")
			return
		}
		h.logger.Error("failed to create user", "error", err)
		rest.Internal(w, h.logger, err)
		return
	}

	h.logger.Info("user signed up", "user_id", user.ID)
	rest.Success(w, h.logger, http.StatusOK, user.Summary())
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string              `json:"token"`
	User  *domain.UserSummary `json:"user"`
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rest.Fail(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		rest.Fail(w, h.logger, http.StatusBadRequest, "The email and password are required")
		return
	}

	user, err := h.store.GetByEmail(r.Context(), req.Email)
	if err != nil {
		h.logger.Error("failed to look up user", "error", err)
		rest.Internal(w, h.logger, err)
		return
	}
	if user == nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		rest.Fail(w, h.logger, http.StatusBadRequest, "Invalid email or password")
		return
	}

	token, err := h.tokens.Generate(user.ID, user.Email, user.IsAdmin)
	if err != nil {
		h.logger.Error("failed to generate token", "error", err)
		rest.Internal(w, h.logger, err)
		return
	}

	h.logger.Info("user logged in", "user_id", user.ID)
	rest.Success(w, h.logger, http.StatusOK, loginResponse{Token: token, User: user.Summary()})
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("userId")

	user, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get user", "error", err, "user_id", id)
		rest.Internal(w, h.logger, err)
		return
	}
	if user == nil {
		rest.Fail(w, h.logger, http.StatusNotFound, "User not found")
		return
	}

	rest.Success(w, h.logger, http.StatusOK, user.Summary())
}
