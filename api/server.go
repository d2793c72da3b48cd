/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/employees/*      Employee management and timesheet submission
  /api/periods/*        Pay period lifecycle and reporting
  /api/payslips/*       Payslip lifecycle and PDF export
  /api/violations       Recorded compliance findings
  /api/compliance/*     Standalone compliance checks
  /api/scenarios/*      Demo scenarios
  /                     API index page

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Employee routes
		r.Route("/employees", func(r chi.Router) {
			r.Get("/", h.ListEmployees)
			r.Post("/", h.CreateEmployee)
			r.Get("/{id}", h.GetEmployee)
			r.Put("/{id}/timesheets/{periodID}", h.SubmitTimesheet)
		})

		// Pay period routes
		r.Route("/periods", func(r chi.Router) {
			r.Get("/", h.ListPeriods)
			r.Post("/", h.CreatePeriod)
			r.Get("/{id}", h.GetPeriod)
			r.Post("/{id}/process", h.ProcessPeriod)
			r.Post("/{id}/approve", h.ApprovePeriod)
			r.Post("/{id}/pay", h.PayPeriod)
			r.Post("/{id}/close", h.ClosePeriod)
			r.Post("/{id}/cancel", h.CancelPeriod)
			r.Get("/{id}/payslips", h.ListPeriodPayslips)
			r.Get("/{id}/summary", h.GetPeriodSummary)
			r.Get("/{id}/compliance", h.GetComplianceReport)
		})

		// Payslip routes
		r.Route("/payslips", func(r chi.Router) {
			r.Post("/calculate", h.CalculatePayslip)
			r.Get("/{id}", h.GetPayslip)
			r.Post("/{id}/approve", h.ApprovePayslip)
			r.Post("/{id}/void", h.VoidPayslip)
			r.Get("/{id}/pdf", h.GetPayslipPDF)
		})

		// Violation routes
		r.Get("/violations", h.ListViolations)

		// Compliance check routes
		r.Route("/compliance", func(r chi.Router) {
			r.Post("/exemption", h.CheckExemption)
			r.Post("/child-labor", h.CheckChildLabor)
			r.Post("/record-keeping", h.CheckRecordKeeping)
		})

		// Scenario routes
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
		})
	})

	// API index page
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Payroll Engine</title></head>
<body style="font-family: system-ui; max-width: 800px; margin: 50px auto; padding: 20px;">
<h1>Payroll Engine API</h1>
<h2>API Endpoints</h2>
<ul>
<li><a href="/api/employees">/api/employees</a> - List employees</li>
<li><a href="/api/periods">/api/periods</a> - List pay periods</li>
<li><a href="/api/violations">/api/violations</a> - List recorded violations</li>
<li><a href="/api/scenarios">/api/scenarios</a> - List demo scenarios</li>
</ul>
</body>
</html>`))
	})

	return r
}
