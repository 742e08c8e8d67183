package document

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"

	"github.com/BrightSmileDental/clinic-service/internal/auth"
	"github.com/BrightSmileDental/clinic-service/internal/pagination"
	"github.com/BrightSmileDental/clinic-service/internal/patient"
	"github.com/BrightSmileDental/clinic-service/internal/tenant"
)

const testSchema = "clinic_bright_12345678"

type mockService struct {
	uploadFunc   func(ctx context.Context, schemaName, patientID, fileName, contentType, uploadedBy string, content io.Reader) (*DocumentResponse, error)
	getFunc      func(ctx context.Context, schemaName, id string) (*DocumentResponse, error)
	downloadFunc func(ctx context.Context, schemaName, id string) (*DocumentContent, error)
	listFunc     func(ctx context.Context, schemaName, patientID string) ([]DocumentResponse, error)
	deleteFunc   func(ctx context.Context, schemaName, id string) error
}

func (m *mockService) Upload(ctx context.Context, schemaName string, patientID, fileName, contentType, uploadedBy string, content io.Reader) (*DocumentResponse, error) {
	if m.uploadFunc != nil {
		return m.uploadFunc(ctx, schemaName, patientID, fileName, contentType, uploadedBy, content)
	}
	return nil, ErrMissingFile
}

func (m *mockService) Get(ctx context.Context, schemaName string, id string) (*DocumentResponse, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, schemaName, id)
	}
	return nil, ErrDocumentNotFound
}

func (m *mockService) Download(ctx context.Context, schemaName string, id string) (*DocumentContent, error) {
	if m.downloadFunc != nil {
		return m.downloadFunc(ctx, schemaName, id)
	}
	return nil, ErrDocumentNotFound
}

func (m *mockService) ListForPatient(ctx context.Context, schemaName string, patientID string) ([]DocumentResponse, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, schemaName, patientID)
	}
	return nil, nil
}

func (m *mockService) Delete(ctx context.Context, schemaName string, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, schemaName, id)
	}
	return nil
}

var _ ServiceInterface = (*mockService)(nil)

type mockPatientService struct {
	getMyPatientFunc func(ctx context.Context, schemaName, subject string) (*patient.PatientResponse, error)
}

func (m *mockPatientService) CreatePatient(ctx context.Context, schemaName, clinicID string, req patient.CreatePatientRequest) (*patient.PatientResponse, error) {
	return nil, nil
}

func (m *mockPatientService) ListPatients(ctx context.Context, schemaName string) ([]patient.PatientResponse, error) {
	return nil, nil
}

func (m *mockPatientService) ListActivePatients(ctx context.Context, schemaName string) ([]patient.PatientResponse, error) {
	return nil, nil
}

func (m *mockPatientService) ListPatientsWithPagination(ctx context.Context, schemaName string, params pagination.Params, search string) (*patient.PaginatedPatientListResponse, error) {
	return nil, nil
}

func (m *mockPatientService) GetPatient(ctx context.Context, schemaName string, id string) (*patient.PatientResponse, error) {
	return nil, nil
}

func (m *mockPatientService) GetMyPatient(ctx context.Context, schemaName string, subject string) (*patient.PatientResponse, error) {
	if m.getMyPatientFunc != nil {
		return m.getMyPatientFunc(ctx, schemaName, subject)
	}
	return nil, nil
}

func (m *mockPatientService) UpdatePatient(ctx context.Context, schemaName string, id string, req patient.UpdatePatientRequest) (*patient.PatientResponse, error) {
	return nil, nil
}

func (m *mockPatientService) DeletePatient(ctx context.Context, schemaName, clinicID string, id string) error {
	return nil
}

var _ patient.ServiceInterface = (*mockPatientService)(nil)

func tenantRequest(r *http.Request, userID string, roles ...string) *http.Request {
	ctx := auth.ContextWithPrincipal(r.Context(), &auth.Principal{UserID: userID, Roles: roles})
	ctx = tenant.ContextWithTenant(ctx, testSchema, "c1")
	return r.WithContext(ctx)
}

func multipartBody(t *testing.T, field, fileName, content string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(field, fileName)
	if err != nil {
		t.Fatalf("Failed to create form file: %v", err)
	}
	part.Write([]byte(content))
	writer.Close()
	return body, writer.FormDataContentType()
}

func TestUploadHandler_Success(t *testing.T) {
	var gotFileName, gotPatientID string
	service := &mockService{
		uploadFunc: func(ctx context.Context, schemaName, patientID, fileName, contentType, uploadedBy string, content io.Reader) (*DocumentResponse, error) {
			gotFileName = fileName
			gotPatientID = patientID
			data, _ := io.ReadAll(content)
			return &DocumentResponse{ID: "d1", PatientID: patientID, FileName: fileName, SizeBytes: int64(len(data))}, nil
		},
	}
	handler := NewHandler(service, &mockPatientService{})

	body, contentType := multipartBody(t, "file", "xray.png", "fake image bytes")
	req := httptest.NewRequest("POST", "/patients/p1/documents", body)
	req.Header.Set("Content-Type", contentType)
	req = mux.SetURLVars(tenantRequest(req, "staff1", "RECEPTIONIST"), map[string]string{"patientId": "p1"})

	w := httptest.NewRecorder()
	handler.Upload(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("Expected status 201, got %d: %s", w.Code, w.Body.String())
	}
	if gotFileName != "xray.png" || gotPatientID != "p1" {
		t.Errorf("Expected xray.png for p1, got %s for %s", gotFileName, gotPatientID)
	}
}

func TestUploadHandler_MissingFile(t *testing.T) {
	handler := NewHandler(&mockService{}, &mockPatientService{})

	body, contentType := multipartBody(t, "attachment", "xray.png", "bytes")
	req := httptest.NewRequest("POST", "/patients/p1/documents", body)
	req.Header.Set("Content-Type", contentType)
	req = mux.SetURLVars(tenantRequest(req, "staff1", "RECEPTIONIST"), map[string]string{"patientId": "p1"})

	w := httptest.NewRecorder()
	handler.Upload(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestDownloadHandler_StreamsContent(t *testing.T) {
	service := &mockService{
		downloadFunc: func(ctx context.Context, schemaName, id string) (*DocumentContent, error) {
			return &DocumentContent{
				DocumentResponse: DocumentResponse{
					ID:          id,
					PatientID:   "p1",
					FileName:    "consent.pdf",
					ContentType: "application/pdf",
					SizeBytes:   9,
				},
				Content: []byte("%PDF-1.4\n"),
			}, nil
		},
	}
	handler := NewHandler(service, &mockPatientService{})

	req := httptest.NewRequest("GET", "/documents/d1/download", nil)
	req = mux.SetURLVars(tenantRequest(req, "staff1", "DENTIST"), map[string]string{"id": "d1"})

	w := httptest.NewRecorder()
	handler.Download(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("Expected application/pdf, got %s", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "consent.pdf") {
		t.Errorf("Expected filename in disposition, got %s", cd)
	}
	if !bytes.Equal(w.Body.Bytes(), []byte("%PDF-1.4\n")) {
		t.Error("Body does not match stored content")
	}
}

func TestDownloadHandler_PatientCannotReadOthers(t *testing.T) {
	service := &mockService{
		downloadFunc: func(ctx context.Context, schemaName, id string) (*DocumentContent, error) {
			return &DocumentContent{DocumentResponse: DocumentResponse{ID: id, PatientID: "p2"}}, nil
		},
	}
	patients := &mockPatientService{
		getMyPatientFunc: func(ctx context.Context, schemaName, subject string) (*patient.PatientResponse, error) {
			return &patient.PatientResponse{ID: "p1"}, nil
		},
	}
	handler := NewHandler(service, patients)

	req := httptest.NewRequest("GET", "/documents/d1/download", nil)
	req = mux.SetURLVars(tenantRequest(req, "user-p1", "PATIENT"), map[string]string{"id": "d1"})

	w := httptest.NewRecorder()
	handler.Download(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("Expected status 403, got %d", w.Code)
	}
}

func TestListForPatientHandler_OwnDocuments(t *testing.T) {
	service := &mockService{
		listFunc: func(ctx context.Context, schemaName, patientID string) ([]DocumentResponse, error) {
			return []DocumentResponse{{ID: "d1", PatientID: patientID}}, nil
		},
	}
	patients := &mockPatientService{
		getMyPatientFunc: func(ctx context.Context, schemaName, subject string) (*patient.PatientResponse, error) {
			return &patient.PatientResponse{ID: "p1"}, nil
		},
	}
	handler := NewHandler(service, patients)

	req := httptest.NewRequest("GET", "/patients/p1/documents", nil)
	req = mux.SetURLVars(tenantRequest(req, "user-p1", "PATIENT"), map[string]string{"patientId": "p1"})

	w := httptest.NewRecorder()
	handler.ListForPatient(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var resp ListResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Total != 1 {
		t.Errorf("Expected 1 document, got %d", resp.Total)
	}
}

func TestDeleteHandler_NotFound(t *testing.T) {
	service := &mockService{
		deleteFunc: func(ctx context.Context, schemaName, id string) error {
			return ErrDocumentNotFound
		},
	}
	handler := NewHandler(service, &mockPatientService{})

	req := httptest.NewRequest("DELETE", "/documents/missing", nil)
	req = mux.SetURLVars(tenantRequest(req, "staff1", "OWNER"), map[string]string{"id": "missing"})

	w := httptest.NewRecorder()
	handler.Delete(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestUploadService_SizeLimit(t *testing.T) {
	svc := NewService(&stubRepo{})

	big := strings.NewReader(strings.Repeat("a", MaxUploadBytes+1))
	_, err := svc.Upload(context.Background(), testSchema, "p1", "big.bin", "application/octet-stream", "u1", big)
	if err != ErrFileTooLarge {
		t.Errorf("Expected ErrFileTooLarge, got %v", err)
	}

	_, err = svc.Upload(context.Background(), testSchema, "p1", "empty.bin", "", "u1", strings.NewReader(""))
	if err != ErrMissingFile {
		t.Errorf("Expected ErrMissingFile, got %v", err)
	}
}

type stubRepo struct{}

func (s *stubRepo) Insert(ctx context.Context, schemaName string, doc DocumentResponse, content []byte) (*DocumentResponse, error) {
	return &doc, nil
}

func (s *stubRepo) GetMeta(ctx context.Context, schemaName string, id string) (*DocumentResponse, error) {
	return nil, ErrDocumentNotFound
}

func (s *stubRepo) GetContent(ctx context.Context, schemaName string, id string) (*DocumentContent, error) {
	return nil, ErrDocumentNotFound
}

func (s *stubRepo) ListForPatient(ctx context.Context, schemaName string, patientID string) ([]DocumentResponse, error) {
	return nil, nil
}

func (s *stubRepo) Delete(ctx context.Context, schemaName string, id string) error {
	return ErrDocumentNotFound
}
