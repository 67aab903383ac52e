package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	types "github.com/mediccompanion/backend/internal/domain"
	"github.com/mediccompanion/backend/internal/http/response"
	"github.com/mediccompanion/backend/internal/platform/logger"
	"github.com/mediccompanion/backend/internal/services"
)

type PlanHandler struct {
	log     *logger.Logger
	planSvc services.PlanService
}

func NewPlanHandler(baseLog *logger.Logger, planSvc services.PlanService) *PlanHandler {
	return &PlanHandler{
		log:     baseLog.With("handler", "PlanHandler"),
		planSvc: planSvc,
	}
}

func (h *PlanHandler) Generate(c *gin.Context) {
	patientID, ok := requirePatient(c)
	if !ok {
		return
	}

	var req types.PlanInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}

	result, err := h.planSvc.GeneratePlan(c.Request.Context(), patientID, req)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, result)
}

type continuePlanRequest struct {
	ReviewID uuid.UUID `json:"review_id"`
	Prompt   string    `json:"prompt"`
}

func (h *PlanHandler) Continue(c *gin.Context) {
	patientID, ok := requirePatient(c)
	if !ok {
		return
	}

	var req continuePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}

	result, err := h.planSvc.ContinuePlan(c.Request.Context(), patientID, req.ReviewID, req.Prompt)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, result)
}

type approvePlanRequest struct {
	ReviewID uuid.UUID `json:"review_id"`
	Meds     []string  `json:"meds"`
}

func (h *PlanHandler) Approve(c *gin.Context) {
	patientID, ok := requirePatient(c)
	if !ok {
		return
	}

	var req approvePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}

	meds, err := h.planSvc.ApprovePlan(c.Request.Context(), patientID, req.ReviewID, req.Meds)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"review_id":           req.ReviewID,
		"medications_created": len(meds),
		"medications":         meds,
	})
}

func (h *PlanHandler) Reviews(c *gin.Context) {
	patientID, ok := requirePatient(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	reviews, err := h.planSvc.Reviews(c.Request.Context(), patientID, limit)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"reviews": reviews})
}
