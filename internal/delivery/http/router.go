package http

import (
	"net/http"

	"smart-opd/internal/delivery/http/handler"
	"smart-opd/internal/delivery/http/middleware"
	"smart-opd/pkg/response"

	"github.com/gorilla/mux"
)

type RouterConfig struct {
	TokenHandler      *handler.TokenHandler
	QueueHandler      *handler.QueueHandler
	AuthHandler       *handler.AuthHandler
	DoctorHandler     *handler.DoctorHandler
	DepartmentHandler *handler.DepartmentHandler
	AuditLogHandler   *handler.AuditLogHandler
	AuthMiddleware    *middleware.AuthMiddleware
}

func NewRouter(cfg RouterConfig) *mux.Router {
	router := mux.NewRouter()
	router.Use(middleware.CORS)

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		response.Success(w, http.StatusOK, "OK", nil)
	}).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()

	// Public: patient self-registration, status page, display boards.
	api.HandleFunc("/tokens", cfg.TokenHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/tokens/{id}/status", cfg.TokenHandler.GetStatus).Methods(http.MethodGet)
	api.HandleFunc("/queue/current", cfg.QueueHandler.Current).Methods(http.MethodGet)
	api.HandleFunc("/queue/live", cfg.QueueHandler.Live).Methods(http.MethodGet)
	api.HandleFunc("/departments", cfg.DepartmentHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/departments/{id}", cfg.DepartmentHandler.Get).Methods(http.MethodGet)

	// Auth
	api.HandleFunc("/auth/register/doctor", cfg.AuthHandler.RegisterDoctor).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", cfg.AuthHandler.Login).Methods(http.MethodPost)
	api.HandleFunc("/auth/refresh-token", cfg.AuthHandler.RefreshToken).Methods(http.MethodPost)

	authed := api.NewRoute().Subrouter()
	authed.Use(cfg.AuthMiddleware.Authenticate)
	authed.HandleFunc("/auth/logout", cfg.AuthHandler.Logout).Methods(http.MethodPost)
	authed.HandleFunc("/auth/me", cfg.AuthHandler.Me).Methods(http.MethodGet)

	// Staff: queue advancement, admins and doctors alike.
	staff := api.NewRoute().Subrouter()
	staff.Use(cfg.AuthMiddleware.Authenticate, middleware.RequireStaff)
	staff.HandleFunc("/queue/next", cfg.QueueHandler.CallNext).Methods(http.MethodPost)
	staff.HandleFunc("/queue/complete", cfg.QueueHandler.Complete).Methods(http.MethodPost)
	staff.HandleFunc("/queue/missed", cfg.QueueHandler.Missed).Methods(http.MethodPost)

	// Queue reset is destructive and admin-only.
	reset := api.NewRoute().Subrouter()
	reset.Use(cfg.AuthMiddleware.Authenticate, middleware.RequireAdmin)
	reset.HandleFunc("/queue/reset", cfg.QueueHandler.Reset).Methods(http.MethodPost)

	// Doctor self-service
	doctor := api.PathPrefix("/doctor").Subrouter()
	doctor.Use(cfg.AuthMiddleware.Authenticate, middleware.RequireDoctor)
	doctor.HandleFunc("/profile", cfg.DoctorHandler.Profile).Methods(http.MethodGet)
	doctor.HandleFunc("/queue/pause", cfg.DoctorHandler.SetQueuePaused(true)).Methods(http.MethodPost)
	doctor.HandleFunc("/queue/resume", cfg.DoctorHandler.SetQueuePaused(false)).Methods(http.MethodPost)

	// Admin
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(cfg.AuthMiddleware.Authenticate, middleware.RequireAdmin)
	admin.HandleFunc("/tokens", cfg.TokenHandler.List).Methods(http.MethodGet)
	admin.HandleFunc("/doctors", cfg.DoctorHandler.List).Methods(http.MethodGet)
	admin.HandleFunc("/doctors/{id}", cfg.DoctorHandler.Get).Methods(http.MethodGet)
	admin.HandleFunc("/doctors/{id}/approve", cfg.DoctorHandler.Approve).Methods(http.MethodPost)
	admin.HandleFunc("/doctors/{id}/reject", cfg.DoctorHandler.Reject).Methods(http.MethodPost)
	admin.HandleFunc("/departments", cfg.DepartmentHandler.Create).Methods(http.MethodPost)
	admin.HandleFunc("/departments/{id}", cfg.DepartmentHandler.Update).Methods(http.MethodPut)
	admin.HandleFunc("/departments/{id}", cfg.DepartmentHandler.Delete).Methods(http.MethodDelete)
	admin.HandleFunc("/audit-logs", cfg.AuditLogHandler.List).Methods(http.MethodGet)
	admin.HandleFunc("/audit-logs/{id}", cfg.AuditLogHandler.Get).Methods(http.MethodGet)

	return router
}
