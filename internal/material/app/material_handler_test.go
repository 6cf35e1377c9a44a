package app

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"focushub/internal/material/domain"
	"focushub/pkg/middlewares"
	"focushub/pkg/token"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newMaterialApp(uc MaterialUseCase) *fiber.App {
	h := NewMaterialHandler(uc)
	r := fiber.New()
	g := r.Group("/materials", middlewares.JWTMiddleware())
	g.Post("/", h.Upload)
	g.Get("/", h.List)
	g.Get("/:id/download", h.Download)
	g.Delete("/:id", h.Delete)
	return r
}

func bearer(t *testing.T, req *http.Request, memberID string) *http.Request {
	t.Helper()
	tok, err := token.GenerateJWT(memberID, memberID+"@example.com", string(token.RoleStudent), "material-test")
	require.NoError(t, err)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+tok)
	return req
}

func multipartUpload(t *testing.T, fileName, contentType, content string, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if fileName != "" {
		hdr := textproto.MIMEHeader{}
		hdr.Set("Content-Disposition", `form-data; name="file"; filename="`+fileName+`"`)
		hdr.Set("Content-Type", contentType)
		part, err := w.CreatePart(hdr)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/materials", &body)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	return req
}

func readJSON(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]any{}
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	return out
}

func TestMaterialHandlerUpload(t *testing.T) {
	repo, store := new(MockMaterialRepo), new(MockObjectStore)
	r := newMaterialApp(newTestUseCase(repo, store, 0))

	store.On("UploadStream", mock.Anything, "materials/u1/m1.png", "PNGDATA", int64(7), "image/png").Return(nil).Once()
	repo.On("Create", mock.Anything, mock.MatchedBy(func(m *domain.Material) bool {
		return m.UserID == "u1" && m.Title == "Diagram" && m.Subject == "Chemistry"
	})).Return(nil).Once()

	req := multipartUpload(t, "bonds.png", "image/png", "PNGDATA", map[string]string{
		"title":   "Diagram",
		"subject": "Chemistry",
		"tags":    `["organic","Lab"]`,
	})
	resp, err := r.Test(bearer(t, req, "u1"))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	m := readJSON(t, resp)["material"].(map[string]any)
	assert.Equal(t, "image", m["fileType"])
	assert.Equal(t, []any{"organic", "lab", "bonds"}, m["tags"])
	assert.NotContains(t, m, "objectKey")
	store.AssertExpectations(t)
	repo.AssertExpectations(t)
}

func TestMaterialHandlerUploadErrors(t *testing.T) {
	repo, store := new(MockMaterialRepo), new(MockObjectStore)
	r := newMaterialApp(newTestUseCase(repo, store, 0))

	resp, err := r.Test(bearer(t, multipartUpload(t, "", "", "", map[string]string{"title": "x"}), "u1"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = r.Test(bearer(t, multipartUpload(t, "run.sh", "application/x-sh", "echo", nil), "u1"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = r.Test(multipartUpload(t, "a.pdf", "application/pdf", "%PDF", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestMaterialHandlerListDownloadDelete(t *testing.T) {
	repo, store := new(MockMaterialRepo), new(MockObjectStore)
	r := newMaterialApp(newTestUseCase(repo, store, 0))

	repo.On("List", mock.Anything, "u1", domain.Filter{Query: "cell", Type: domain.FilePDF}).
		Return([]domain.Material{{ID: "m1", Title: "Cells"}}, nil).Once()
	resp, err := r.Test(bearer(t, httptest.NewRequest(http.MethodGet, "/materials?q=cell&type=pdf", nil), "u1"))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, readJSON(t, resp)["count"])

	stored := &domain.Material{ID: "m1", ObjectKey: "materials/u1/m1.pdf", OriginalName: "cells.pdf"}
	repo.On("RecordDownload", mock.Anything, "u1", "m1", fixedNow).Return(stored, nil).Twice()
	store.On("PresignGetURL", mock.Anything, "materials/u1/m1.pdf", "cells.pdf", mock.Anything).Return("http://minio/signed", nil).Twice()

	resp, err = r.Test(bearer(t, httptest.NewRequest(http.MethodGet, "/materials/m1/download", nil), "u1"))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "http://minio/signed", readJSON(t, resp)["url"])

	resp, err = r.Test(bearer(t, httptest.NewRequest(http.MethodGet, "/materials/m1/download?redirect=true", nil), "u1"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "http://minio/signed", resp.Header.Get(fiber.HeaderLocation))

	repo.On("FindOwned", mock.Anything, "u2", "m1").Return(nil, domain.ErrNotFound).Once()
	resp, err = r.Test(bearer(t, httptest.NewRequest(http.MethodDelete, "/materials/m1", nil), "u2"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
