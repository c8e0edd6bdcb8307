package file

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	common_models "broker-crm/internal/common/models"
	"broker-crm/internal/config"
	"broker-crm/internal/features/audit"
	"broker-crm/pkg/utils"

	"go.uber.org/zap"
)

const (
	MaxFileSize       = 10 << 20
	MaxFilesPerRecord = 50
)

var allowedExtensions = []string{".pdf", ".doc", ".docx", ".xls", ".xlsx", ".png", ".jpg", ".jpeg", ".gif", ".txt", ".csv"}

// ForbiddenError is returned when the caller may not touch a file.
type ForbiddenError struct {
	Reason string
}

func (e *ForbiddenError) Error() string   { return "forbidden: " + e.Reason }
func (e *ForbiddenError) HTTPStatus() int { return 403 }

type FileService interface {
	UploadFile(ctx context.Context, upload Upload) (*File, error)
	Archive(ctx context.Context, collection, recordID, fileName string, data []byte) (*File, error)
	GetFilesByRecord(ctx context.Context, collection, recordID string) ([]*File, error)
	GetFile(ctx context.Context, fileID string) (*File, error)
	DeleteFile(ctx context.Context, fileID string) error
	ValidateUpload(ctx context.Context, upload Upload) error
}

type FileServiceImpl struct {
	FileRepo     FileRepository
	Storage      Storage
	AuditService audit.AuditService
	Config       *config.Config
	Logger       *zap.Logger
	Now          func() time.Time
}

func NewFileService(fileRepo FileRepository, storage Storage, auditService audit.AuditService, cfg *config.Config, logger *zap.Logger) FileService {
	return &FileServiceImpl{
		FileRepo:     fileRepo,
		Storage:      storage,
		AuditService: auditService,
		Config:       cfg,
		Logger:       logger,
		Now:          time.Now,
	}
}

func (s *FileServiceImpl) ValidateUpload(ctx context.Context, upload Upload) error {
	err := utils.ValidateStruct(upload)
	if err != nil {
		return err
	}

	verr := &utils.ValidationError{}
	if upload.Size > MaxFileSize {
		verr.Add("file", fmt.Sprintf("is too large (max %dMB)", MaxFileSize>>20))
	}
	ext := strings.ToLower(filepath.Ext(upload.FileName))
	if !slices.Contains(allowedExtensions, ext) {
		verr.Add("file", fmt.Sprintf("type %q is not allowed", ext))
	}
	if len(verr.Fields) > 0 {
		return verr
	}

	count, err := s.FileRepo.CountByRecord(ctx, upload.Collection, upload.RecordID)
	if err != nil {
		return fmt.Errorf("failed to check file count: %w", err)
	}
	if count >= MaxFilesPerRecord {
		verr.Add("record_id", fmt.Sprintf("already has the maximum of %d files", MaxFilesPerRecord))
		return verr
	}
	return nil
}

// UploadFile stores a user supplied file against a record.
func (s *FileServiceImpl) UploadFile(ctx context.Context, upload Upload) (*File, error) {
	if err := s.ValidateUpload(ctx, upload); err != nil {
		return nil, err
	}
	return s.store(ctx, upload, KindUpload)
}

// Archive stores a generated document against a record. Generated files
// skip the per-record limit.
func (s *FileServiceImpl) Archive(ctx context.Context, collection, recordID, fileName string, data []byte) (*File, error) {
	upload := Upload{
		Collection:  collection,
		RecordID:    recordID,
		FileName:    fileName,
		MimeType:    "application/pdf",
		Description: "Generated document",
		Size:        int64(len(data)),
		Content:     bytes.NewReader(data),
	}
	if err := utils.ValidateStruct(upload); err != nil {
		return nil, err
	}
	return s.store(ctx, upload, KindGenerated)
}

func (s *FileServiceImpl) store(ctx context.Context, upload Upload, kind Kind) (*File, error) {
	name := filepath.Base(upload.FileName)
	stored, path, size, err := s.Storage.Put(name, upload.Content)
	if err != nil {
		return nil, fmt.Errorf("failed to save file: %w", err)
	}

	actor := audit.SystemActor
	if claims, ok := utils.ClaimsFromContext(ctx); ok {
		actor = claims.UserID
	}

	file := &File{
		OriginalFilename: name,
		StoredName:       stored,
		URL:              strings.TrimRight(s.Config.FSURL, "/") + "/" + stored,
		Path:             path,
		Size:             size,
		MimeType:         upload.MimeType,
		Collection:       upload.Collection,
		RecordID:         upload.RecordID,
		UploadedBy:       actor,
		Kind:             kind,
		Description:      upload.Description,
		CreatedAt:        s.Now(),
	}
	if err := s.FileRepo.Save(ctx, file); err != nil {
		if rmErr := s.Storage.Remove(path); rmErr != nil {
			s.Logger.Warn("orphaned file left on disk", zap.String("path", path), zap.Error(rmErr))
		}
		return nil, fmt.Errorf("failed to save file metadata: %w", err)
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionCreate, "files", file.ID.Hex(), map[string]common_models.Change{
		"file": {New: name},
		"kind": {New: string(kind)},
	})
	return file, nil
}

func (s *FileServiceImpl) GetFilesByRecord(ctx context.Context, collection, recordID string) ([]*File, error) {
	return s.FileRepo.FindByRecord(ctx, collection, recordID)
}

func (s *FileServiceImpl) GetFile(ctx context.Context, fileID string) (*File, error) {
	return s.FileRepo.Get(ctx, fileID)
}

// DeleteFile removes a file. Only its uploader or an admin may delete it.
func (s *FileServiceImpl) DeleteFile(ctx context.Context, fileID string) error {
	file, err := s.FileRepo.Get(ctx, fileID)
	if err != nil {
		return err
	}

	claims, ok := utils.ClaimsFromContext(ctx)
	if !ok {
		return &ForbiddenError{Reason: "not authenticated"}
	}
	if file.UploadedBy != claims.UserID && !slices.Contains(claims.Roles, "admin") {
		return &ForbiddenError{Reason: "you can only delete your own files"}
	}

	if err := s.Storage.Remove(file.Path); err != nil {
		return fmt.Errorf("failed to delete file from disk: %w", err)
	}
	if err := s.FileRepo.Delete(ctx, fileID); err != nil {
		return err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionDelete, "files", fileID, map[string]common_models.Change{
		"file": {Old: file.OriginalFilename},
	})
	return nil
}
