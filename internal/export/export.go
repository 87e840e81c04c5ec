// Package export renders workouts into PDF, Excel and Word documents and
// publishes them to object storage behind a presigned download URL.
package export

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"fieldready/pt-coach/internal/config"
	"fieldready/pt-coach/internal/domain"
	"fieldready/pt-coach/internal/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Format is a supported export document type.
type Format string

const (
	FormatPDF   Format = "pdf"
	FormatExcel Format = "xlsx"
	FormatWord  Format = "docx"
)

// Formats lists the export menu entries in display order.
var Formats = []Format{FormatPDF, FormatExcel, FormatWord}

var (
	ErrUnknownFormat = errors.New("unknown export format")
	ErrRenderFailed  = errors.New("failed to render workout document")
	ErrStoreFailed   = errors.New("failed to store exported document")
)

// ParseFormat accepts a file extension or the menu label ("excel", "word").
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pdf":
		return FormatPDF, nil
	case "xlsx", "excel":
		return FormatExcel, nil
	case "docx", "word":
		return FormatWord, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Label is the user-facing name of the format.
func (f Format) Label() string {
	switch f {
	case FormatPDF:
		return "PDF"
	case FormatExcel:
		return "Excel"
	case FormatWord:
		return "Word"
	}
	return string(f)
}

// ContentType is the MIME type of documents in this format.
func (f Format) ContentType() string {
	switch f {
	case FormatPDF:
		return "application/pdf"
	case FormatExcel:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatWord:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	}
	return "application/octet-stream"
}

// Document is a rendered export held in memory.
type Document struct {
	Format   Format
	FileName string
	Body     []byte
}

// Render produces the document for w in format f.
func Render(w *domain.Workout, f Format) (*Document, error) {
	var (
		body []byte
		err  error
	)
	switch f {
	case FormatPDF:
		body, err = renderPDF(w)
	case FormatExcel:
		body, err = renderExcel(w)
	case FormatWord:
		body, err = renderWord(w)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
	if err != nil {
		return nil, fmt.Errorf("%w (%s): %v", ErrRenderFailed, f.Label(), err)
	}
	return &Document{Format: f, FileName: FileName(w.Title, f), Body: body}, nil
}

// FileName derives a download file name from the workout title.
func FileName(title string, f Format) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	name := strings.TrimSuffix(b.String(), "-")
	if name == "" {
		name = "workout"
	}
	return name + "." + string(f)
}

// Result describes a stored export.
type Result struct {
	Format      Format `json:"format"`
	ObjectKey   string `json:"-"`
	FileName    string `json:"fileName"`
	DownloadURL string `json:"downloadUrl"`
	Size        int64  `json:"size"`
}

// Service renders workouts and stores the documents.
type Service struct {
	storage   storage.FileStorage
	keyPrefix string
	urlExpiry time.Duration
	logger    *zap.Logger
}

// NewService creates an export service backed by fs.
func NewService(fs storage.FileStorage, cfg config.ExportConfig, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		storage:   fs,
		keyPrefix: strings.Trim(cfg.KeyPrefix, "/"),
		urlExpiry: cfg.URLExpiry,
		logger:    logger,
	}
}

func (s *Service) ExportPDF(ctx context.Context, w *domain.Workout) (*Result, error) {
	return s.Export(ctx, w, FormatPDF)
}

func (s *Service) ExportExcel(ctx context.Context, w *domain.Workout) (*Result, error) {
	return s.Export(ctx, w, FormatExcel)
}

func (s *Service) ExportWord(ctx context.Context, w *domain.Workout) (*Result, error) {
	return s.Export(ctx, w, FormatWord)
}

// Export renders w, uploads it and presigns a download link. An object whose
// link cannot be presigned is removed again.
func (s *Service) Export(ctx context.Context, w *domain.Workout, f Format) (*Result, error) {
	doc, err := Render(w, f)
	if err != nil {
		return nil, err
	}

	key := path.Join(s.keyPrefix, w.ID.Hex(), uuid.NewString()+"."+string(f))
	if err := s.storage.PutObject(ctx, key, f.ContentType(), doc.Body); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreFailed, err)
	}

	url, err := s.storage.GeneratePresignedDownloadURL(ctx, key, s.urlExpiry)
	if err != nil {
		if delErr := s.storage.DeleteObject(ctx, key); delErr != nil {
			s.logger.Warn("failed to remove unreachable export", zap.String("key", key), zap.Error(delErr))
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreFailed, err)
	}

	s.logger.Info("workout exported",
		zap.String("workoutId", w.ID.Hex()),
		zap.String("format", string(f)),
		zap.Int("bytes", len(doc.Body)))

	return &Result{
		Format:      f,
		ObjectKey:   key,
		FileName:    doc.FileName,
		DownloadURL: url,
		Size:        int64(len(doc.Body)),
	}, nil
}
