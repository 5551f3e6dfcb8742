package routers

import (
	"hospital-service/internal/app/delivery/http/controllers"
	"hospital-service/internal/app/delivery/http/middlewares"
	"hospital-service/internal/pkg/constvars"
	"net/http"

	"github.com/go-chi/chi/v5"
)

func attachPaymentRoutes(router chi.Router, middlewares *middlewares.Middlewares, rateLimit func(http.Handler) http.Handler, paymentController *controllers.PaymentController) {
	// Daraja posts here without credentials and retries anything but a 200
	router.With(middlewares.BodyBuffer(paymentController.AcknowledgeMpesaCallback)).Post("/callback", paymentController.MpesaCallback)

	router.Group(func(r chi.Router) {
		r.Use(rateLimit)
		r.Use(middlewares.Authenticate)

		r.With(middlewares.Authorize(constvars.RolePatient, constvars.RoleReceptionist)).Post("/initiate", paymentController.InitiatePayment)
		r.With(middlewares.Authorize(constvars.RolePatient, constvars.RoleReceptionist)).Post("/process", paymentController.ProcessPayment)
		r.Get("/status/{reference}", paymentController.CheckStatus)
		r.Get("/{reference}/receipt", paymentController.GetReceipt)
	})
}
