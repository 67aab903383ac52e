package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	types "github.com/mediccompanion/backend/internal/domain"
	"github.com/mediccompanion/backend/internal/http/response"
	"github.com/mediccompanion/backend/internal/pkg/ctxutil"
	errs "github.com/mediccompanion/backend/internal/pkg/errors"
	"github.com/mediccompanion/backend/internal/platform/logger"
	"github.com/mediccompanion/backend/internal/services"
)

type MedicationHandler struct {
	log           *logger.Logger
	medicationSvc services.MedicationService
}

func NewMedicationHandler(baseLog *logger.Logger, medicationSvc services.MedicationService) *MedicationHandler {
	return &MedicationHandler{
		log:           baseLog.With("handler", "MedicationHandler"),
		medicationSvc: medicationSvc,
	}
}

func requirePatient(c *gin.Context) (uuid.UUID, bool) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.PatientID == uuid.Nil {
		response.RespondServiceError(c, errs.ErrUnauthorized)
		return uuid.Nil, false
	}
	return rd.PatientID, true
}

type scheduleRequest struct {
	TimeOfDay    string `json:"time_of_day"`
	DosageAmount string `json:"dosage_amount"`
}

type createMedicationRequest struct {
	Name      string            `json:"name"`
	Dosage    string            `json:"dosage"`
	Schedules []scheduleRequest `json:"schedules"`
}

func (h *MedicationHandler) Create(c *gin.Context) {
	patientID, ok := requirePatient(c)
	if !ok {
		return
	}

	var req createMedicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}

	med := &types.Medication{
		Name:   req.Name,
		Dosage: req.Dosage,
	}
	for _, s := range req.Schedules {
		med.Schedules = append(med.Schedules, types.Schedule{
			TimeOfDay:    s.TimeOfDay,
			DosageAmount: s.DosageAmount,
		})
	}

	created, err := h.medicationSvc.Create(c.Request.Context(), patientID, med)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, created)
}

func (h *MedicationHandler) List(c *gin.Context) {
	patientID, ok := requirePatient(c)
	if !ok {
		return
	}
	activeOnly := c.Query("all") == ""

	meds, err := h.medicationSvc.List(c.Request.Context(), patientID, activeOnly)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"medications": meds})
}

func (h *MedicationHandler) Get(c *gin.Context) {
	patientID, ok := requirePatient(c)
	if !ok {
		return
	}
	medicationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}

	med, err := h.medicationSvc.Get(c.Request.Context(), patientID, medicationID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, med)
}

type updateMedicationRequest struct {
	Name   string `json:"name"`
	Dosage string `json:"dosage"`
}

func (h *MedicationHandler) Update(c *gin.Context) {
	patientID, ok := requirePatient(c)
	if !ok {
		return
	}
	medicationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}

	var req updateMedicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}

	med, err := h.medicationSvc.Update(c.Request.Context(), patientID, medicationID, req.Name, req.Dosage)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, med)
}

type updateSchedulesRequest struct {
	Schedules []scheduleRequest `json:"schedules"`
}

func (h *MedicationHandler) UpdateSchedules(c *gin.Context) {
	patientID, ok := requirePatient(c)
	if !ok {
		return
	}
	medicationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}

	var req updateSchedulesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	schedules := make([]*types.Schedule, 0, len(req.Schedules))
	for _, s := range req.Schedules {
		schedules = append(schedules, &types.Schedule{
			TimeOfDay:    s.TimeOfDay,
			DosageAmount: s.DosageAmount,
		})
	}

	med, err := h.medicationSvc.UpdateSchedules(c.Request.Context(), patientID, medicationID, schedules)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, med)
}

func (h *MedicationHandler) Deactivate(c *gin.Context) {
	patientID, ok := requirePatient(c)
	if !ok {
		return
	}
	medicationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}

	if err := h.medicationSvc.Deactivate(c.Request.Context(), patientID, medicationID); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"deactivated": true})
}
