package main

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) router() {
	s.Factory.Router.Use(middleware.RequestID)
	s.Factory.Router.Use(middleware.RealIP)
	s.Factory.Router.Use(s.Factory.Middleware.LoggerMiddleware)
	s.Factory.Router.Use(middleware.Recoverer)
	s.Factory.Router.Use(s.Factory.Middleware.Cors)

	s.Factory.Router.Handle("/metrics", promhttp.Handler())

	s.Factory.Router.Route("/api/v1", func(r chi.Router) {
		r.Get("/healthz", s.Handlers.HealthCheckHandler)
		r.Get("/constants", s.Handlers.Constants)

		r.Route("/wizard", func(r chi.Router) {
			r.Post("/", s.Handlers.StartWizard)

			r.Group(func(r chi.Router) {
				r.Use(s.Factory.Middleware.RequireSession)

				r.Get("/", s.Handlers.WizardState)
				r.Post("/previous", s.Handlers.PreviousStep)
				r.Post("/reset", s.Handlers.ResetWizard)

				r.Post("/personal-info", s.Handlers.SubmitPersonalInfo)
				r.Put("/photo", s.Handlers.UploadPhoto)
				r.Delete("/photo", s.Handlers.RemovePhoto)
				r.Post("/photo/continue", s.Handlers.ContinueFromPhoto)
				r.Post("/location", s.Handlers.SubmitLocation)
				r.Post("/emergency-contact", s.Handlers.SubmitEmergencyContact)
				r.Post("/beneficiaries", s.Handlers.SubmitBeneficiaries)
				r.Post("/submit", s.Handlers.SubmitRegistration)

				r.Route("/agent", func(r chi.Router) {
					r.Post("/lookup", s.Handlers.LookupAgent)
					r.Post("/continue", s.Handlers.ContinueFromAgent)
					r.Post("/change", s.Handlers.ChangeAgent)
				})

				r.Post("/payments", s.Handlers.MakePayment)
				r.Get("/qr-data", s.Handlers.QRData)
				r.Get("/qr-code.png", s.Handlers.QRCode)
				r.Get("/card", s.Handlers.IDCard)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(s.Factory.Middleware.RequireAdmin)

			r.Route("/submissions", func(r chi.Router) {
				r.Get("/", s.Handlers.ListSubmissions)
				r.Get("/{registration_id}", s.Handlers.SubmissionByRegistrationID)
				r.Get("/{registration_id}/payments", s.Handlers.SubmissionPayments)
			})

			r.Route("/members", func(r chi.Router) {
				r.Get("/", s.Handlers.ListMembers)
				r.Get("/{registration_id}", s.Handlers.MemberByRegistrationID)
			})
		})
	})
}
