package document

import (
	"context"
	"io"

	"github.com/google/uuid"
)

// ServiceInterface defines the contract for document business logic.
type ServiceInterface interface {
	Upload(ctx context.Context, schemaName string, patientID, fileName, contentType, uploadedBy string, content io.Reader) (*DocumentResponse, error)
	Get(ctx context.Context, schemaName string, id string) (*DocumentResponse, error)
	Download(ctx context.Context, schemaName string, id string) (*DocumentContent, error)
	ListForPatient(ctx context.Context, schemaName string, patientID string) ([]DocumentResponse, error)
	Delete(ctx context.Context, schemaName string, id string) error
}

type Service struct {
	repo RepositoryInterface
}

func NewService(repo RepositoryInterface) *Service {
	return &Service{repo: repo}
}

// Ensure Service implements ServiceInterface
var _ ServiceInterface = (*Service)(nil)

// Upload stores the file content alongside its metadata. Reads one byte past
// the cap to detect oversized uploads without buffering more than the limit.
func (s *Service) Upload(ctx context.Context, schemaName string, patientID, fileName, contentType, uploadedBy string, content io.Reader) (*DocumentResponse, error) {
	if patientID == "" {
		return nil, ErrPatientNotFound
	}
	if fileName == "" {
		return nil, ErrMissingFile
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	data, err := io.ReadAll(io.LimitReader(content, MaxUploadBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, ErrMissingFile
	}
	if len(data) > MaxUploadBytes {
		return nil, ErrFileTooLarge
	}

	doc := DocumentResponse{
		ID:          uuid.New().String(),
		PatientID:   patientID,
		FileName:    fileName,
		ContentType: contentType,
		SizeBytes:   int64(len(data)),
		UploadedBy:  uploadedBy,
	}
	return s.repo.Insert(ctx, schemaName, doc, data)
}

func (s *Service) Get(ctx context.Context, schemaName string, id string) (*DocumentResponse, error) {
	return s.repo.GetMeta(ctx, schemaName, id)
}

func (s *Service) Download(ctx context.Context, schemaName string, id string) (*DocumentContent, error) {
	return s.repo.GetContent(ctx, schemaName, id)
}

func (s *Service) ListForPatient(ctx context.Context, schemaName string, patientID string) ([]DocumentResponse, error) {
	return s.repo.ListForPatient(ctx, schemaName, patientID)
}

func (s *Service) Delete(ctx context.Context, schemaName string, id string) error {
	return s.repo.Delete(ctx, schemaName, id)
}
