package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/Varun5711/expense-tracker/internal/apperr"
	"github.com/Varun5711/expense-tracker/internal/logger"
	usermodel "github.com/Varun5711/expense-tracker/internal/models/user"
	"github.com/Varun5711/expense-tracker/internal/respond"
)

type IdentityService interface {
	Register(ctx context.Context, req usermodel.RegisterRequest) (*usermodel.RegisterResponse, error)
	Login(ctx context.Context, req usermodel.LoginRequest) (*usermodel.LoginResponse, error)
}

type AuthHandler struct {
	identity IdentityService
	log      *logger.Logger
}

func NewAuthHandler(identity IdentityService, log *logger.Logger) *AuthHandler {
	return &AuthHandler{
		identity: identity,
		log:      log,
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req usermodel.RegisterRequest
	if err := decodeBody(r, &req); err != nil {
		respond.Error(w, r, h.log, err)
		return
	}

	resp, err := h.identity.Register(r.Context(), req)
	if err != nil {
		respond.Error(w, r, h.log, err)
		return
	}

	respond.JSON(w, http.StatusCreated, resp)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req usermodel.LoginRequest
	if err := decodeBody(r, &req); err != nil {
		respond.Error(w, r, h.log, err)
		return
	}

	resp, err := h.identity.Login(r.Context(), req)
	if err != nil {
		respond.Error(w, r, h.log, err)
		return
	}

	respond.JSON(w, http.StatusOK, resp)
}

const maxBodyBytes = 1 << 20

// decodeBody reads a JSON object body. A body that is not a JSON object is a
// validation failure on the body as a whole.
func decodeBody(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		fields := apperr.FieldErrors{}
		fields.Add("body", "Request body must be a valid JSON object")
		return apperr.Validation(fields)
	}
	return nil
}
