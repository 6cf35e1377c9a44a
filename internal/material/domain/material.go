package domain

import (
	"encoding/json"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"focushub/pkg"
	errprocess "focushub/pkg/err"
)

var (
	// ErrValidation bad upload or query
	ErrValidation = errprocess.ErrValidation
	// ErrNotFound material missing or owned by someone else
	ErrNotFound = errprocess.ErrNotFound
)

// Limits
const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 1000
	DefaultMaxFileSize   = 50 << 20
	DefaultURLExpiry     = 15 * time.Minute
)

// FileType coarse kind of an uploaded file
type FileType string

const (
	FilePDF      FileType = "pdf"
	FileImage    FileType = "image"
	FileVideo    FileType = "video"
	FileDocument FileType = "document"
)

var allowedMIME = map[string]bool{
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document":   true,
	"application/vnd.ms-excel":                                                  true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":         true,
	"application/vnd.ms-powerpoint":                                             true,
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": true,
	"text/plain": true,
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
	"video/mp4":  true,
	"video/webm": true,
	"video/ogg":  true,
}

// AllowedMIME reports whether uploads of mime are accepted, parameters are ignored
func AllowedMIME(mime string) bool {
	return allowedMIME[baseMIME(mime)]
}

// FileTypeFromMIME anything not pdf, image or video is a document
func FileTypeFromMIME(mime string) FileType {
	mime = baseMIME(mime)
	switch {
	case strings.HasPrefix(mime, "image/"):
		return FileImage
	case strings.HasPrefix(mime, "video/"):
		return FileVideo
	case mime == "application/pdf":
		return FilePDF
	}
	return FileDocument
}

func baseMIME(mime string) string {
	mime, _, _ = strings.Cut(mime, ";")
	return strings.ToLower(strings.TrimSpace(mime))
}

var tagSplit = regexp.MustCompile(`[-_\s]+`)

// AutoTags words longer than two characters from the file name, extension dropped
func AutoTags(fileName string) []string {
	name := strings.TrimSuffix(fileName, filepath.Ext(fileName))
	var words []string
	for _, w := range tagSplit.Split(name, -1) {
		if len([]rune(w)) > 2 {
			words = append(words, w)
		}
	}
	return pkg.NormalizeTags(words)
}

// ParseTags form value as a JSON array or comma separated list
func ParseTags(s string) []string {
	var tags []string
	if err := json.Unmarshal([]byte(s), &tags); err == nil {
		return tags
	}
	return pkg.SplitCSV(s)
}

// ObjectKey storage key of a material, materials/<userId>/<id><ext>
func ObjectKey(userID, id, fileName string) string {
	return "materials/" + userID + "/" + id + strings.ToLower(filepath.Ext(fileName))
}

// Material metadata of one stored file
type Material struct {
	ID            string     `bson:"_id" json:"id"`
	UserID        string     `bson:"user" json:"userId"`
	Title         string     `bson:"title" json:"title"`
	Description   string     `bson:"description" json:"description"`
	Subject       string     `bson:"subject" json:"subject"`
	Tags          []string   `bson:"tags" json:"tags"`
	OriginalName  string     `bson:"original_name" json:"originalName"`
	ObjectKey     string     `bson:"object_key" json:"-"`
	FileType      FileType   `bson:"file_type" json:"fileType"`
	MimeType      string     `bson:"mime_type" json:"mimeType"`
	FileSize      int64      `bson:"file_size" json:"fileSize"`
	DownloadCount int        `bson:"download_count" json:"downloadCount"`
	LastAccessed  *time.Time `bson:"last_accessed,omitempty" json:"lastAccessed,omitempty"`
	CreatedAt     time.Time  `bson:"created_at" json:"createdAt"`
	UpdatedAt     time.Time  `bson:"updated_at" json:"updatedAt"`
}

// UploadInput one multipart upload
type UploadInput struct {
	Title       string
	Description string
	Subject     string
	Tags        []string
	FileName    string
	ContentType string
	Size        int64
	File        io.Reader
}

// Filter optional list filters, Query matches title, subject or any tag
type Filter struct {
	Query string
	Type  FileType
	Tag   string
}

// DownloadLink short lived presigned url
type DownloadLink struct {
	URL       string    `json:"url"`
	FileName  string    `json:"fileName"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// StorageStats usage of one user
type StorageStats struct {
	TotalFiles int              `json:"totalFiles"`
	TotalSize  int64            `json:"totalSize"`
	ByType     map[FileType]int `json:"byType"`
	Tags       []string         `json:"tags"`
}
