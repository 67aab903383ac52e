package app

import (
	"github.com/gin-gonic/gin"

	httpH "github.com/mediccompanion/backend/internal/http/handlers"
	httpMW "github.com/mediccompanion/backend/internal/http/middleware"
	"github.com/mediccompanion/backend/internal/platform/logger"
	"github.com/mediccompanion/backend/internal/server"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Auth       *httpH.AuthHandler
	Medication *httpH.MedicationHandler
	Adherence  *httpH.AdherenceHandler
	Plan       *httpH.PlanHandler
	Expert     *httpH.ExpertHandler
}

func wireHandlers(log *logger.Logger, serviceset Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Auth:       httpH.NewAuthHandler(log, serviceset.Auth),
		Medication: httpH.NewMedicationHandler(log, serviceset.Medication),
		Adherence:  httpH.NewAdherenceHandler(log, serviceset.Adherence, serviceset.Nudge),
		Plan:       httpH.NewPlanHandler(log, serviceset.Plan),
		Expert:     httpH.NewExpertHandler(log, serviceset.Expert),
	}
}

func wireMiddleware(log *logger.Logger, serviceset Services) Middleware {
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, serviceset.Auth),
	}
}

func wireRouter(log *logger.Logger, handlerset Handlers, middleware Middleware) *gin.Engine {
	return server.NewRouter(server.RouterConfig{
		Log:               log,
		AuthMiddleware:    middleware.Auth,
		AuthHandler:       handlerset.Auth,
		MedicationHandler: handlerset.Medication,
		AdherenceHandler:  handlerset.Adherence,
		PlanHandler:       handlerset.Plan,
		ExpertHandler:     handlerset.Expert,
	})
}
