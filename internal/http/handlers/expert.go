package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mediccompanion/backend/internal/http/response"
	"github.com/mediccompanion/backend/internal/platform/logger"
	"github.com/mediccompanion/backend/internal/services"
)

type ExpertHandler struct {
	log       *logger.Logger
	expertSvc services.ExpertService
}

func NewExpertHandler(baseLog *logger.Logger, expertSvc services.ExpertService) *ExpertHandler {
	return &ExpertHandler{
		log:       baseLog.With("handler", "ExpertHandler"),
		expertSvc: expertSvc,
	}
}

func (h *ExpertHandler) Patients(c *gin.Context) {
	patients, err := h.expertSvc.Patients(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"patients": patients, "count": len(patients)})
}

// PatientRisk serves the per-patient risk summary (?window_days=N).
func (h *ExpertHandler) PatientRisk(c *gin.Context) {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	windowDays := 0
	if raw := c.Query("window_days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "bad_request", err)
			return
		}
		windowDays = n
	}

	summary, err := h.expertSvc.PatientRisk(c.Request.Context(), patientID, windowDays)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, summary)
}
