package routers

import (
	"hospital-service/internal/app/delivery/http/controllers"
	"hospital-service/internal/app/delivery/http/middlewares"
	"hospital-service/internal/pkg/constvars"
	"net/http"

	"github.com/go-chi/chi/v5"
)

func attachAppointmentRoutes(router chi.Router, middlewares *middlewares.Middlewares, rateLimit func(http.Handler) http.Handler, appointmentController *controllers.AppointmentController) {
	router.Use(rateLimit)
	router.Use(middlewares.Authenticate)

	router.With(middlewares.Authorize(constvars.RolePatient, constvars.RoleReceptionist)).Post("/", appointmentController.CreateAppointment)
	router.Get("/", appointmentController.FindAll)
	router.Get("/available-slots", appointmentController.GetAvailableSlots)
	router.Get("/{id}", appointmentController.FindByID)
	router.With(middlewares.Authorize(constvars.RoleDoctor, constvars.RoleReceptionist)).Put("/{id}", appointmentController.UpdateStatus)
	router.With(middlewares.Authorize(constvars.RolePatient, constvars.RoleReceptionist)).Delete("/{id}", appointmentController.Cancel)
}
