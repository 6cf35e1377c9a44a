package app

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"focushub/internal/material/domain"
	"focushub/pkg/logger"
	"focushub/pkg/token"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockObjectStore Mock ObjectStore
type MockObjectStore struct {
	mock.Mock
}

// UploadStream drains r so tests can assert on the uploaded bytes
func (m *MockObjectStore) UploadStream(ctx context.Context, objectName string, r io.Reader, size int64, contentType string) error {
	body, _ := io.ReadAll(r)
	args := m.Called(ctx, objectName, string(body), size, contentType)
	return args.Error(0)
}

func (m *MockObjectStore) RemoveObject(ctx context.Context, objectName string) error {
	return m.Called(ctx, objectName).Error(0)
}

func (m *MockObjectStore) PresignGetURL(ctx context.Context, objectName, fileName string, expiry time.Duration) (string, error) {
	args := m.Called(ctx, objectName, fileName, expiry)
	return args.String(0), args.Error(1)
}

// MockMaterialRepo Mock MaterialRepository
type MockMaterialRepo struct {
	mock.Mock
}

func (m *MockMaterialRepo) Create(ctx context.Context, mat *domain.Material) error {
	return m.Called(ctx, mat).Error(0)
}

func (m *MockMaterialRepo) FindOwned(ctx context.Context, userID, id string) (*domain.Material, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.Material), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockMaterialRepo) List(ctx context.Context, userID string, f domain.Filter) ([]domain.Material, error) {
	args := m.Called(ctx, userID, f)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.Material), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockMaterialRepo) RecordDownload(ctx context.Context, userID, id string, at time.Time) (*domain.Material, error) {
	args := m.Called(ctx, userID, id, at)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.Material), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockMaterialRepo) Delete(ctx context.Context, userID, id string) error {
	return m.Called(ctx, userID, id).Error(0)
}

var fixedNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func TestMain(m *testing.M) {
	logger.SetNewNop()
	token.SetSecret("material-test-secret")
	os.Exit(m.Run())
}

func newTestUseCase(repo *MockMaterialRepo, store *MockObjectStore, maxSize int64) *materialUseCase {
	uc := NewMaterialUseCase(repo, store, maxSize, time.Minute).(*materialUseCase)
	uc.now = func() time.Time { return fixedNow }
	uc.newID = func() string { return "m1" }
	return uc
}

func pdfUpload(body string) domain.UploadInput {
	return domain.UploadInput{
		Description: "week 3",
		Subject:     " Biology ",
		Tags:        []string{"Exam"},
		FileName:    "cell_division-notes.PDF",
		ContentType: "application/pdf",
		Size:        int64(len(body)),
		File:        strings.NewReader(body),
	}
}

func TestUpload(t *testing.T) {
	ctx := context.Background()
	repo, store := new(MockMaterialRepo), new(MockObjectStore)
	uc := newTestUseCase(repo, store, 0)

	store.On("UploadStream", ctx, "materials/u1/m1.pdf", "%PDF-1.7", int64(8), "application/pdf").Return(nil).Once()
	repo.On("Create", ctx, mock.AnythingOfType("*domain.Material")).Return(nil).Once()

	m, err := uc.Upload(ctx, "u1", pdfUpload("%PDF-1.7"))
	require.NoError(t, err)

	assert.Equal(t, "cell_division-notes.PDF", m.Title)
	assert.Equal(t, "Biology", m.Subject)
	assert.Equal(t, domain.FilePDF, m.FileType)
	assert.Equal(t, []string{"exam", "cell", "division", "notes"}, m.Tags)
	assert.Equal(t, fixedNow, m.CreatedAt)
	assert.Zero(t, m.DownloadCount)
	store.AssertExpectations(t)
	repo.AssertExpectations(t)
}

func TestUploadRejected(t *testing.T) {
	ctx := context.Background()
	repo, store := new(MockMaterialRepo), new(MockObjectStore)
	uc := newTestUseCase(repo, store, 4)

	for name, in := range map[string]domain.UploadInput{
		"too large":  pdfUpload("12345"),
		"empty":      {FileName: "a.pdf", ContentType: "application/pdf", File: strings.NewReader("")},
		"no file":    {FileName: "a.pdf", ContentType: "application/pdf", Size: 1},
		"bad type":   {FileName: "a.exe", ContentType: "application/x-msdownload", Size: 1, File: strings.NewReader("x")},
		"long title": {Title: strings.Repeat("t", domain.MaxTitleLength+1), FileName: "a.txt", ContentType: "text/plain", Size: 1, File: strings.NewReader("x")},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := uc.Upload(ctx, "u1", in)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
	store.AssertNotCalled(t, "UploadStream", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUploadMetadataFailureRemovesObject(t *testing.T) {
	ctx := context.Background()
	repo, store := new(MockMaterialRepo), new(MockObjectStore)
	uc := newTestUseCase(repo, store, 0)

	store.On("UploadStream", ctx, "materials/u1/m1.pdf", "%PDF", int64(4), "application/pdf").Return(nil).Once()
	repo.On("Create", ctx, mock.Anything).Return(errors.New("mongo down")).Once()
	store.On("RemoveObject", mock.Anything, "materials/u1/m1.pdf").Return(nil).Once()

	_, err := uc.Upload(ctx, "u1", pdfUpload("%PDF"))
	assert.Error(t, err)
	store.AssertExpectations(t)
}

func TestUploadStorageFailure(t *testing.T) {
	ctx := context.Background()
	repo, store := new(MockMaterialRepo), new(MockObjectStore)
	uc := newTestUseCase(repo, store, 0)

	store.On("UploadStream", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("minio down")).Once()

	_, err := uc.Upload(ctx, "u1", pdfUpload("%PDF"))
	assert.Error(t, err)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestDownload(t *testing.T) {
	ctx := context.Background()
	repo, store := new(MockMaterialRepo), new(MockObjectStore)
	uc := newTestUseCase(repo, store, 0)

	stored := &domain.Material{ID: "m1", UserID: "u1", ObjectKey: "materials/u1/m1.pdf", OriginalName: "notes.pdf", DownloadCount: 1}
	repo.On("RecordDownload", ctx, "u1", "m1", fixedNow).Return(stored, nil).Once()
	store.On("PresignGetURL", ctx, "materials/u1/m1.pdf", "notes.pdf", time.Minute).Return("http://minio/signed", nil).Once()

	link, err := uc.Download(ctx, "u1", "m1")
	require.NoError(t, err)
	assert.Equal(t, "http://minio/signed", link.URL)
	assert.Equal(t, "notes.pdf", link.FileName)
	assert.Equal(t, fixedNow.Add(time.Minute), link.ExpiresAt)

	repo.On("RecordDownload", ctx, "u2", "m1", fixedNow).Return(nil, domain.ErrNotFound).Once()
	_, err = uc.Download(ctx, "u2", "m1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("storage failure still removes metadata", func(t *testing.T) {
		repo, store := new(MockMaterialRepo), new(MockObjectStore)
		uc := newTestUseCase(repo, store, 0)

		repo.On("FindOwned", ctx, "u1", "m1").Return(&domain.Material{ID: "m1", ObjectKey: "materials/u1/m1.pdf"}, nil).Once()
		store.On("RemoveObject", ctx, "materials/u1/m1.pdf").Return(errors.New("minio down")).Once()
		repo.On("Delete", ctx, "u1", "m1").Return(nil).Once()

		require.NoError(t, uc.Delete(ctx, "u1", "m1"))
		repo.AssertExpectations(t)
	})

	t.Run("not the owner", func(t *testing.T) {
		repo, store := new(MockMaterialRepo), new(MockObjectStore)
		uc := newTestUseCase(repo, store, 0)

		repo.On("FindOwned", ctx, "u2", "m1").Return(nil, domain.ErrNotFound).Once()

		assert.ErrorIs(t, uc.Delete(ctx, "u2", "m1"), domain.ErrNotFound)
		store.AssertNotCalled(t, "RemoveObject", mock.Anything, mock.Anything)
	})
}

func TestListAndStats(t *testing.T) {
	ctx := context.Background()
	repo, store := new(MockMaterialRepo), new(MockObjectStore)
	uc := newTestUseCase(repo, store, 0)

	materials := []domain.Material{
		{ID: "a", FileType: domain.FilePDF, FileSize: 100, Tags: []string{"bio", "exam"}},
		{ID: "b", FileType: domain.FileImage, FileSize: 50, Tags: []string{"bio"}},
		{ID: "c", FileType: domain.FilePDF, FileSize: 25},
	}
	repo.On("List", ctx, "u1", domain.Filter{Query: "cell", Tag: "bio"}).Return(materials[:1], nil).Once()
	repo.On("List", ctx, "u1", domain.Filter{}).Return(materials, nil).Once()

	got, err := uc.List(ctx, "u1", domain.Filter{Query: " cell ", Tag: "BIO"})
	require.NoError(t, err)
	assert.Len(t, got, 1)

	stats, err := uc.Stats(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalFiles)
	assert.EqualValues(t, 175, stats.TotalSize)
	assert.Equal(t, map[domain.FileType]int{domain.FilePDF: 2, domain.FileImage: 1}, stats.ByType)
	assert.Equal(t, []string{"bio", "exam"}, stats.Tags)
}
