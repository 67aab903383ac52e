package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	types "github.com/mediccompanion/backend/internal/domain"
	"github.com/mediccompanion/backend/internal/http/response"
	"github.com/mediccompanion/backend/internal/platform/logger"
	"github.com/mediccompanion/backend/internal/services"
)

type AdherenceHandler struct {
	log          *logger.Logger
	adherenceSvc services.AdherenceService
	nudgeSvc     services.NudgeService
}

func NewAdherenceHandler(baseLog *logger.Logger, adherenceSvc services.AdherenceService, nudgeSvc services.NudgeService) *AdherenceHandler {
	return &AdherenceHandler{
		log:          baseLog.With("handler", "AdherenceHandler"),
		adherenceSvc: adherenceSvc,
		nudgeSvc:     nudgeSvc,
	}
}

// Today returns the resolved dose list for one calendar date
// (?date=YYYY-MM-DD, default today in the patient's timezone).
func (h *AdherenceHandler) Today(c *gin.Context) {
	patientID, ok := requirePatient(c)
	if !ok {
		return
	}

	view, err := h.adherenceSvc.Today(c.Request.Context(), patientID, c.Query("date"))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, view)
}

func (h *AdherenceHandler) MarkDose(c *gin.Context) {
	patientID, ok := requirePatient(c)
	if !ok {
		return
	}

	var req services.MarkDoseInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}

	doseLog, err := h.adherenceSvc.MarkDose(c.Request.Context(), patientID, req)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}

	// A missed mark may tip the patient into at-risk territory; the nudge is
	// best-effort and never fails the request.
	if req.Status == types.DoseStatusMissed && h.nudgeSvc != nil {
		if report, err := h.adherenceSvc.Summary(c.Request.Context(), patientID, 0); err != nil {
			h.log.Warn("Post-mark summary failed", "patient_id", patientID, "error", err)
		} else if _, err := h.nudgeSvc.NotifyIfAtRisk(c.Request.Context(), patientID, report); err != nil {
			h.log.Warn("Nudge send failed", "patient_id", patientID, "error", err)
		}
	}
	response.RespondOK(c, doseLog)
}

// Summary returns the adherence report (?window_days=N, default 7). When
// ?nudge=1 an at-risk report also triggers the email nudge.
func (h *AdherenceHandler) Summary(c *gin.Context) {
	patientID, ok := requirePatient(c)
	if !ok {
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

	report, err := h.adherenceSvc.Summary(c.Request.Context(), patientID, windowDays)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}

	if c.Query("nudge") == "1" && h.nudgeSvc != nil {
		if _, err := h.nudgeSvc.NotifyIfAtRisk(c.Request.Context(), patientID, report); err != nil {
			h.log.Warn("Nudge send failed", "patient_id", patientID, "error", err)
		}
	}
	response.RespondOK(c, report)
}

func (h *AdherenceHandler) History(c *gin.Context) {
	patientID, ok := requirePatient(c)
	if !ok {
		return
	}

	var from, to time.Time
	if raw := c.Query("from"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "bad_request", err)
			return
		}
		from = t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "bad_request", err)
			return
		}
		to = t.AddDate(0, 0, 1).Add(-time.Second)
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	logs, err := h.adherenceSvc.History(c.Request.Context(), patientID, from, to, limit, offset)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"logs": logs})
}
