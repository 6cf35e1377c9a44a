package app

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"focushub/internal/material/domain"
	"focushub/internal/material/repository"
	"focushub/pkg"
	errprocess "focushub/pkg/err"
	"focushub/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ObjectStore blob storage, database.MinIOClient implements it
type ObjectStore interface {
	UploadStream(ctx context.Context, objectName string, r io.Reader, size int64, contentType string) error
	RemoveObject(ctx context.Context, objectName string) error
	PresignGetURL(ctx context.Context, objectName, fileName string, expiry time.Duration) (string, error)
}

// MaterialUseCase study material upload, listing and download
type MaterialUseCase interface {
	Upload(ctx context.Context, userID string, in domain.UploadInput) (*domain.Material, error)
	List(ctx context.Context, userID string, f domain.Filter) ([]domain.Material, error)
	Get(ctx context.Context, userID, id string) (*domain.Material, error)
	Download(ctx context.Context, userID, id string) (*domain.DownloadLink, error)
	Delete(ctx context.Context, userID, id string) error
	Stats(ctx context.Context, userID string) (*domain.StorageStats, error)
}

type materialUseCase struct {
	repo        repository.MaterialRepository
	store       ObjectStore
	maxFileSize int64
	urlExpiry   time.Duration
	now         func() time.Time
	newID       func() string
}

// NewMaterialUseCase zero maxFileSize or urlExpiry fall back to the defaults
func NewMaterialUseCase(repo repository.MaterialRepository, store ObjectStore, maxFileSize int64, urlExpiry time.Duration) MaterialUseCase {
	if maxFileSize <= 0 {
		maxFileSize = domain.DefaultMaxFileSize
	}
	if urlExpiry <= 0 {
		urlExpiry = domain.DefaultURLExpiry
	}
	return &materialUseCase{
		repo:        repo,
		store:       store,
		maxFileSize: maxFileSize,
		urlExpiry:   urlExpiry,
		now:         time.Now,
		newID:       uuid.NewString,
	}
}

func (u *materialUseCase) validate(in domain.UploadInput) error {
	switch {
	case in.File == nil || in.Size <= 0:
		return fmt.Errorf("%w: no file uploaded", domain.ErrValidation)
	case in.Size > u.maxFileSize:
		return fmt.Errorf("%w: file larger than %d bytes", domain.ErrValidation, u.maxFileSize)
	case !domain.AllowedMIME(in.ContentType):
		return fmt.Errorf("%w: file type %s not allowed", domain.ErrValidation, in.ContentType)
	}
	return nil
}

// Upload the object is written first, a failed metadata insert removes it again
func (u *materialUseCase) Upload(ctx context.Context, userID string, in domain.UploadInput) (*domain.Material, error) {
	if err := u.validate(in); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = in.FileName
	}
	description := strings.TrimSpace(in.Description)
	if len([]rune(title)) > domain.MaxTitleLength {
		return nil, fmt.Errorf("%w: title longer than %d characters", domain.ErrValidation, domain.MaxTitleLength)
	}
	if len([]rune(description)) > domain.MaxDescriptionLength {
		return nil, fmt.Errorf("%w: description longer than %d characters", domain.ErrValidation, domain.MaxDescriptionLength)
	}

	now := u.now().UTC()
	id := u.newID()
	m := &domain.Material{
		ID:           id,
		UserID:       userID,
		Title:        title,
		Description:  description,
		Subject:      strings.TrimSpace(in.Subject),
		Tags:         pkg.NormalizeTags(append(append([]string{}, in.Tags...), domain.AutoTags(in.FileName)...)),
		OriginalName: in.FileName,
		ObjectKey:    domain.ObjectKey(userID, id, in.FileName),
		FileType:     domain.FileTypeFromMIME(in.ContentType),
		MimeType:     in.ContentType,
		FileSize:     in.Size,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := u.store.UploadStream(ctx, m.ObjectKey, in.File, in.Size, in.ContentType); err != nil {
		return nil, errprocess.Set(fmt.Sprintf("material[%s] upload object failed: %v", m.ObjectKey, err))
	}
	if err := u.repo.Create(ctx, m); err != nil {
		if rmErr := u.store.RemoveObject(context.WithoutCancel(ctx), m.ObjectKey); rmErr != nil {
			logger.Log.Warn("orphaned object after failed insert", zap.String("object", m.ObjectKey), zap.Error(rmErr))
		}
		return nil, err
	}

	logger.Log.Info("material uploaded", zap.String("id", m.ID), zap.String("user_id", userID), zap.Int64("size", m.FileSize))
	return m, nil
}

func (u *materialUseCase) List(ctx context.Context, userID string, f domain.Filter) ([]domain.Material, error) {
	f.Query = strings.TrimSpace(f.Query)
	f.Tag = strings.ToLower(strings.TrimSpace(f.Tag))
	return u.repo.List(ctx, userID, f)
}

func (u *materialUseCase) Get(ctx context.Context, userID, id string) (*domain.Material, error) {
	return u.repo.FindOwned(ctx, userID, id)
}

// Download counts the access, then presigns a GET that saves under the original name
func (u *materialUseCase) Download(ctx context.Context, userID, id string) (*domain.DownloadLink, error) {
	now := u.now().UTC()
	m, err := u.repo.RecordDownload(ctx, userID, id, now)
	if err != nil {
		return nil, err
	}

	url, err := u.store.PresignGetURL(ctx, m.ObjectKey, m.OriginalName, u.urlExpiry)
	if err != nil {
		return nil, errprocess.Set(fmt.Sprintf("material[%s] presign failed: %v", m.ID, err))
	}
	return &domain.DownloadLink{URL: url, FileName: m.OriginalName, ExpiresAt: now.Add(u.urlExpiry)}, nil
}

// Delete a storage failure is logged and the metadata is removed anyway
func (u *materialUseCase) Delete(ctx context.Context, userID, id string) error {
	m, err := u.repo.FindOwned(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := u.store.RemoveObject(ctx, m.ObjectKey); err != nil {
		logger.Log.Warn("remove object failed", zap.String("object", m.ObjectKey), zap.Error(err))
	}
	return u.repo.Delete(ctx, userID, id)
}

func (u *materialUseCase) Stats(ctx context.Context, userID string) (*domain.StorageStats, error) {
	materials, err := u.repo.List(ctx, userID, domain.Filter{})
	if err != nil {
		return nil, err
	}

	stats := &domain.StorageStats{
		TotalFiles: len(materials),
		ByType:     map[domain.FileType]int{},
		Tags:       []string{},
	}
	for _, m := range materials {
		stats.TotalSize += m.FileSize
		stats.ByType[m.FileType]++
		for _, t := range m.Tags {
			if !pkg.Contains(stats.Tags, t) {
				stats.Tags = append(stats.Tags, t)
			}
		}
	}
	return stats, nil
}
