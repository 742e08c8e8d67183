package http

import (
	"database/sql"
	"net/http"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"

	"github.com/BrightSmileDental/clinic-service/internal/analytics"
	"github.com/BrightSmileDental/clinic-service/internal/appointment"
	"github.com/BrightSmileDental/clinic-service/internal/auth"
	"github.com/BrightSmileDental/clinic-service/internal/availability"
	"github.com/BrightSmileDental/clinic-service/internal/billing"
	"github.com/BrightSmileDental/clinic-service/internal/clinic"
	"github.com/BrightSmileDental/clinic-service/internal/db"
	"github.com/BrightSmileDental/clinic-service/internal/document"
	"github.com/BrightSmileDental/clinic-service/internal/inventory"
	"github.com/BrightSmileDental/clinic-service/internal/messaging"
	"github.com/BrightSmileDental/clinic-service/internal/patient"
	"github.com/BrightSmileDental/clinic-service/internal/staff"
	"github.com/BrightSmileDental/clinic-service/internal/telemetry"
	"github.com/BrightSmileDental/clinic-service/internal/tenant"
)

// SetupRouter initializes all routes for the application. Platform routes
// (clinic provisioning) skip the tenant middleware; everything else runs
// behind auth -> tenant -> permission.
func SetupRouter(database *sql.DB, verifier *auth.Verifier, perms auth.Permissions, publisher messaging.PublisherInterface, metrics *telemetry.Metrics) *mux.Router {
	txManager := db.NewTxManager(database)

	clinicRepo := clinic.NewRepository(database)
	clinicService := clinic.NewService(clinicRepo, publisher)
	clinicHandler := clinic.NewHandler(clinicService)

	patientRepo := patient.NewRepository(database)
	patientService := patient.NewService(patientRepo, publisher, metrics)
	patientHandler := patient.NewHandler(patientService)

	staffRepo := staff.NewRepository(database)
	staffService := staff.NewService(staffRepo, publisher)
	staffHandler := staff.NewHandler(staffService)

	availabilityRepo := availability.NewRepository(database)
	availabilityService := availability.NewService(availabilityRepo)
	availabilityHandler := availability.NewHandler(availabilityService)

	appointmentRepo := appointment.NewRepository(database)
	appointmentService := appointment.NewService(appointmentRepo, availabilityRepo, txManager, publisher, metrics)
	appointmentHandler := appointment.NewHandler(appointmentService, patientService)

	billingRepo := billing.NewRepository(database)
	billingService := billing.NewService(billingRepo, publisher, metrics)
	billingHandler := billing.NewHandler(billingService, patientService)

	inventoryRepo := inventory.NewRepository(database)
	inventoryService := inventory.NewService(inventoryRepo, publisher, metrics)
	inventoryHandler := inventory.NewHandler(inventoryService)

	documentRepo := document.NewRepository(database)
	documentService := document.NewService(documentRepo)
	documentHandler := document.NewHandler(documentService, patientService)

	analyticsRepo := analytics.NewRepository(database)
	analyticsService := analytics.NewService(analyticsRepo)
	analyticsHandler := analytics.NewHandler(analyticsService)

	authed := auth.MiddlewareWithMetrics(verifier, metrics)
	tenanted := tenant.Middleware(clinicRepo.GetSchemaNameByClinicID)

	// platform routes carry auth and permission but no tenant schema
	platform := func(perm string, h http.HandlerFunc) http.Handler {
		return authed(auth.RequirePermissionWithMetrics(perm, perms, metrics)(h))
	}
	// clinic routes additionally resolve the tenant schema
	protected := func(perm string, h http.HandlerFunc) http.Handler {
		return authed(tenanted(auth.RequirePermissionWithMetrics(perm, perms, metrics)(h)))
	}

	r := mux.NewRouter()
	r.Use(otelmux.Middleware("clinic-service"))
	r.Use(CORSMiddleware)

	// Public health endpoint
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","service":"clinic-service"}`))
	}).Methods("GET")

	// Clinic provisioning (PLATFORM_ADMIN, owners see their own)
	r.Handle("/api/clinics", platform("clinic:create", clinicHandler.CreateClinic)).Methods("POST")
	r.Handle("/api/clinics", platform("clinic:view", clinicHandler.ListClinics)).Methods("GET")
	r.Handle("/api/clinics/{id}", platform("clinic:view", clinicHandler.GetClinic)).Methods("GET")
	r.Handle("/api/clinics/{id}", platform("clinic:update", clinicHandler.UpdateClinic)).Methods("PUT")
	r.Handle("/api/clinics/{id}", platform("clinic:delete", clinicHandler.DeleteClinic)).Methods("DELETE")

	// Patients
	r.Handle("/api/patients", protected("patient:create", patientHandler.CreatePatient)).Methods("POST")
	r.Handle("/api/patients", protected("patient:view", patientHandler.ListPatients)).Methods("GET")
	r.Handle("/api/patients/active", protected("patient:view", patientHandler.ListActivePatients)).Methods("GET")
	r.Handle("/api/patients/me", protected("patient:self", patientHandler.GetMyPatient)).Methods("GET")
	r.Handle("/api/patients/{id}", protected("patient:view", patientHandler.GetPatient)).Methods("GET")
	r.Handle("/api/patients/{id}", protected("patient:update", patientHandler.UpdatePatient)).Methods("PUT")
	r.Handle("/api/patients/{id}", protected("patient:delete", patientHandler.DeletePatient)).Methods("DELETE")

	// Staff
	r.Handle("/api/staff", protected("staff:create", staffHandler.CreateStaff)).Methods("POST")
	r.Handle("/api/staff", protected("staff:view", staffHandler.ListStaff)).Methods("GET")
	r.Handle("/api/staff/me", protected("staff:self", staffHandler.GetMyStaff)).Methods("GET")
	r.Handle("/api/staff/dentists", protected("dentist:view", staffHandler.ListDentists)).Methods("GET")
	r.Handle("/api/staff/{id}", protected("staff:view", staffHandler.GetStaff)).Methods("GET")
	r.Handle("/api/staff/{id}", protected("staff:update", staffHandler.UpdateStaff)).Methods("PUT")
	r.Handle("/api/staff/{id}", protected("staff:delete", staffHandler.DeleteStaff)).Methods("DELETE")
	r.Handle("/api/staff/{id}/role", protected("staff:manage", staffHandler.ChangeRole)).Methods("PUT")
	r.Handle("/api/staff/{id}/activate", protected("staff:manage", staffHandler.ActivateStaff)).Methods("POST")
	r.Handle("/api/staff/{id}/deactivate", protected("staff:manage", staffHandler.DeactivateStaff)).Methods("POST")

	// Availability windows and blocked slots
	r.Handle("/api/availability/windows", protected("availability:manage", availabilityHandler.CreateWindow)).Methods("POST")
	r.Handle("/api/availability/windows", protected("availability:view", availabilityHandler.ListWindows)).Methods("GET")
	r.Handle("/api/availability/windows/{id}", protected("availability:manage", availabilityHandler.UpdateWindow)).Methods("PUT")
	r.Handle("/api/availability/windows/{id}", protected("availability:manage", availabilityHandler.DeleteWindow)).Methods("DELETE")
	r.Handle("/api/availability/blocked-slots", protected("availability:manage", availabilityHandler.CreateBlockedSlot)).Methods("POST")
	r.Handle("/api/availability/blocked-slots", protected("availability:view", availabilityHandler.ListBlockedSlots)).Methods("GET")
	r.Handle("/api/availability/blocked-slots/{id}", protected("availability:manage", availabilityHandler.DeleteBlockedSlot)).Methods("DELETE")

	// Appointments
	r.Handle("/api/appointments/slots", protected("appointment:view", appointmentHandler.AvailableSlots)).Methods("GET")
	r.Handle("/api/dentists/{id}/slots", protected("appointment:view", appointmentHandler.DentistSlots)).Methods("GET")
	r.Handle("/api/appointments", protected("appointment:book", appointmentHandler.Book)).Methods("POST")
	r.Handle("/api/appointments", protected("appointment:view", appointmentHandler.List)).Methods("GET")
	r.Handle("/api/appointments/{id}", protected("appointment:view", appointmentHandler.Get)).Methods("GET")
	r.Handle("/api/appointments/{id}/confirm", protected("appointment:manage", appointmentHandler.Confirm)).Methods("POST")
	r.Handle("/api/appointments/{id}/complete", protected("appointment:manage", appointmentHandler.Complete)).Methods("POST")
	r.Handle("/api/appointments/{id}/cancel", protected("appointment:manage", appointmentHandler.Cancel)).Methods("POST")
	r.Handle("/api/appointments/{id}/reschedule-request", protected("appointment:request", appointmentHandler.RequestReschedule)).Methods("POST")
	r.Handle("/api/appointments/{id}/reschedule-approve", protected("appointment:manage", appointmentHandler.ApproveReschedule)).Methods("POST")
	r.Handle("/api/appointments/{id}/reschedule-reject", protected("appointment:manage", appointmentHandler.RejectReschedule)).Methods("POST")
	r.Handle("/api/appointments/{id}/cancel-request", protected("appointment:request", appointmentHandler.RequestCancel)).Methods("POST")
	r.Handle("/api/appointments/{id}/cancel-approve", protected("appointment:manage", appointmentHandler.ApproveCancel)).Methods("POST")
	r.Handle("/api/appointments/{id}/cancel-reject", protected("appointment:manage", appointmentHandler.RejectCancel)).Methods("POST")

	// Billing
	r.Handle("/api/invoices", protected("invoice:create", billingHandler.CreateInvoice)).Methods("POST")
	r.Handle("/api/invoices", protected("invoice:view", billingHandler.ListInvoices)).Methods("GET")
	r.Handle("/api/invoices/{id}", protected("invoice:view", billingHandler.GetInvoice)).Methods("GET")
	r.Handle("/api/invoices/{id}/issue", protected("invoice:manage", billingHandler.IssueInvoice)).Methods("POST")
	r.Handle("/api/invoices/{id}/void", protected("invoice:manage", billingHandler.VoidInvoice)).Methods("POST")
	r.Handle("/api/invoices/{id}/payments", protected("invoice:manage", billingHandler.RecordPayment)).Methods("POST")
	r.Handle("/api/patients/{patientId}/statement", protected("invoice:view", billingHandler.Statement)).Methods("GET")
	r.Handle("/api/statement", protected("invoice:view", billingHandler.Statement)).Methods("GET")

	// Inventory
	r.Handle("/api/inventory", protected("inventory:manage", inventoryHandler.CreateItem)).Methods("POST")
	r.Handle("/api/inventory", protected("inventory:view", inventoryHandler.ListItems)).Methods("GET")
	r.Handle("/api/inventory/{id}", protected("inventory:view", inventoryHandler.GetItem)).Methods("GET")
	r.Handle("/api/inventory/{id}", protected("inventory:manage", inventoryHandler.UpdateItem)).Methods("PUT")
	r.Handle("/api/inventory/{id}", protected("inventory:manage", inventoryHandler.DeleteItem)).Methods("DELETE")
	r.Handle("/api/inventory/{id}/adjustments", protected("inventory:manage", inventoryHandler.AdjustStock)).Methods("POST")
	r.Handle("/api/inventory/{id}/adjustments", protected("inventory:view", inventoryHandler.ListAdjustments)).Methods("GET")

	// Documents
	r.Handle("/api/patients/{patientId}/documents", protected("document:upload", documentHandler.Upload)).Methods("POST")
	r.Handle("/api/patients/{patientId}/documents", protected("document:view", documentHandler.ListForPatient)).Methods("GET")
	r.Handle("/api/documents/{id}/download", protected("document:view", documentHandler.Download)).Methods("GET")
	r.Handle("/api/documents/{id}", protected("document:delete", documentHandler.Delete)).Methods("DELETE")

	// Analytics
	r.Handle("/api/analytics/summary", protected("analytics:view", analyticsHandler.Summary)).Methods("GET")

	return r
}
