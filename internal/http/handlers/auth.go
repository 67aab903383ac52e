package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	types "github.com/mediccompanion/backend/internal/domain"
	"github.com/mediccompanion/backend/internal/http/response"
	"github.com/mediccompanion/backend/internal/pkg/ctxutil"
	errs "github.com/mediccompanion/backend/internal/pkg/errors"
	"github.com/mediccompanion/backend/internal/platform/logger"
	"github.com/mediccompanion/backend/internal/services"
)

type AuthHandler struct {
	log         *logger.Logger
	authService services.AuthService
}

func NewAuthHandler(baseLog *logger.Logger, authService services.AuthService) *AuthHandler {
	return &AuthHandler{
		log:         baseLog.With("handler", "AuthHandler"),
		authService: authService,
	}
}

type registerRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
	Timezone  string `json:"timezone"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}

	patient, err := h.authService.Register(c.Request.Context(), &types.Patient{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      req.Role,
		Timezone:  req.Timezone,
	})
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, patient)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}

	token, patient, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"access_token": token,
		"expires_in":   int(h.authService.AccessTTL().Seconds()),
		"patient":      patient,
	})
}

func (h *AuthHandler) Me(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil {
		response.RespondServiceError(c, errs.ErrUnauthorized)
		return
	}
	response.RespondOK(c, gin.H{
		"patient_id": rd.PatientID,
		"email":      rd.Email,
		"role":       rd.Role,
	})
}

func (h *AuthHandler) UpdateMe(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil {
		response.RespondServiceError(c, errs.ErrUnauthorized)
		return
	}

	var req services.UpdateProfileInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}

	patient, err := h.authService.UpdateProfile(c.Request.Context(), rd.PatientID, req)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, patient)
}
