package telemetry

import (
	"context"
	"log"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds all custom metrics for the service
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal metric.Int64Counter
	HTTPDurationMs    metric.Float64Histogram

	// Business metrics
	AppointmentTotal     metric.Int64Counter
	SlotConflictsTotal   metric.Int64Counter
	SlotComputeDuration  metric.Float64Histogram
	PatientTotal         metric.Int64Counter
	InvoiceTotal         metric.Int64Counter
	LowStockEventsTotal  metric.Int64Counter

	// Auth metrics
	AuthFailuresTotal       metric.Int64Counter
	PermissionCheckDuration metric.Float64Histogram
}

// InitMetrics initializes all custom metrics
func InitMetrics() (*Metrics, error) {
	meter := otel.Meter("github.com/BrightSmileDental/clinic-service")

	httpRequestsTotal, err := meter.Int64Counter(
		"http_server_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	httpDurationMs, err := meter.Float64Histogram(
		"http_server_duration_milliseconds",
		metric.WithDescription("HTTP request duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	appointmentTotal, err := meter.Int64Counter(
		"appointment_total",
		metric.WithDescription("Total number of appointment operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, err
	}

	slotConflictsTotal, err := meter.Int64Counter(
		"appointment_slot_conflicts_total",
		metric.WithDescription("Bookings rejected because the slot was taken"),
		metric.WithUnit("{conflict}"),
	)
	if err != nil {
		return nil, err
	}

	slotComputeDuration, err := meter.Float64Histogram(
		"slot_compute_duration_ms",
		metric.WithDescription("Available-slot computation duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	patientTotal, err := meter.Int64Counter(
		"patient_total",
		metric.WithDescription("Total number of patient operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, err
	}

	invoiceTotal, err := meter.Int64Counter(
		"invoice_total",
		metric.WithDescription("Total number of invoice operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, err
	}

	lowStockEventsTotal, err := meter.Int64Counter(
		"inventory_low_stock_events_total",
		metric.WithDescription("Stock adjustments that crossed the reorder threshold"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, err
	}

	authFailuresTotal, err := meter.Int64Counter(
		"auth_failures_total",
		metric.WithDescription("Total number of authentication failures"),
		metric.WithUnit("{failure}"),
	)
	if err != nil {
		return nil, err
	}

	permissionCheckDuration, err := meter.Float64Histogram(
		"permission_check_duration_ms",
		metric.WithDescription("Permission check duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	log.Println("✓ Custom metrics initialized")

	return &Metrics{
		HTTPRequestsTotal:       httpRequestsTotal,
		HTTPDurationMs:          httpDurationMs,
		AppointmentTotal:        appointmentTotal,
		SlotConflictsTotal:      slotConflictsTotal,
		SlotComputeDuration:     slotComputeDuration,
		PatientTotal:            patientTotal,
		InvoiceTotal:            invoiceTotal,
		LowStockEventsTotal:     lowStockEventsTotal,
		AuthFailuresTotal:       authFailuresTotal,
		PermissionCheckDuration: permissionCheckDuration,
	}, nil
}

// RecordHTTPRequest records an HTTP request metric
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, route string, statusCode int, durationMs float64) {
	attrs := []attribute.KeyValue{
		attribute.String("http_method", method),
		attribute.String("http_route", route),
		attribute.Int("http_status_code", statusCode),
	}

	m.HTTPRequestsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.HTTPDurationMs.Record(ctx, durationMs, metric.WithAttributes(attrs...))
}

// RecordAppointmentOperation records an appointment operation metric
func (m *Metrics) RecordAppointmentOperation(ctx context.Context, operation string) {
	m.AppointmentTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation),
	))
}

// RecordSlotConflict records a rejected booking attempt
func (m *Metrics) RecordSlotConflict(ctx context.Context, operation string) {
	m.SlotConflictsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation),
	))
}

// RecordSlotComputation records the duration of an available-slot computation
func (m *Metrics) RecordSlotComputation(ctx context.Context, durationMs float64, slotCount int) {
	m.SlotComputeDuration.Record(ctx, durationMs, metric.WithAttributes(
		attribute.Int("slot_count", slotCount),
	))
}

// RecordPatientOperation records a patient operation metric
func (m *Metrics) RecordPatientOperation(ctx context.Context, operation string) {
	m.PatientTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation),
	))
}

// RecordInvoiceOperation records an invoice operation metric
func (m *Metrics) RecordInvoiceOperation(ctx context.Context, operation string) {
	m.InvoiceTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation),
	))
}

// RecordLowStockEvent records a reorder-threshold crossing
func (m *Metrics) RecordLowStockEvent(ctx context.Context, sku string) {
	m.LowStockEventsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("sku", sku),
	))
}

// RecordAuthFailure records an authentication failure metric
func (m *Metrics) RecordAuthFailure(ctx context.Context, reason string) {
	m.AuthFailuresTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("reason", reason),
	))
}

// RecordPermissionCheck records a permission check duration metric
func (m *Metrics) RecordPermissionCheck(ctx context.Context, permission string, durationMs float64, allowed bool) {
	m.PermissionCheckDuration.Record(ctx, durationMs, metric.WithAttributes(
		attribute.String("permission", permission),
		attribute.Bool("allowed", allowed),
	))
}
