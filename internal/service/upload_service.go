package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"path"
	"strings"
	"time"
	"unicode"

	"esk/training-app/internal/domain"
	"esk/training-app/internal/repository"
	"esk/training-app/internal/storage"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

var ErrUploadNotFound = newError(ErrNotFound, "file not found")

// allowedMedia maps accepted content types to the folder class they land in.
var allowedMedia = map[string]domain.MediaType{
	"image/jpeg": domain.MediaImage,
	"image/png":  domain.MediaImage,
	"image/gif":  domain.MediaImage,
	"video/mp4":  domain.MediaVideo,
	"video/webm": domain.MediaVideo,
}

const maxFileNameLength = 120

// UploadInput is one file taken from a multipart request.
type UploadInput struct {
	FileName    string
	ContentType string // as declared by the client, may be empty
	Size        int64
	Body        io.ReadSeeker
}

type UploadService interface {
	Upload(ctx context.Context, in UploadInput, actor domain.PublicUser) (*domain.Upload, error)
	// Open streams a stored file by its key relative to /uploads.
	Open(ctx context.Context, objectKey string) (*storage.Object, error)
}

type uploadService struct {
	fileStorage storage.FileStorage
	uploadRepo  repository.UploadRepository
	maxBytes    int64
	now         func() time.Time
	logger      *slog.Logger
}

func NewUploadService(fileStorage storage.FileStorage, uploadRepo repository.UploadRepository, maxBytes int64, logger *slog.Logger) UploadService {
	return &uploadService{
		fileStorage: fileStorage,
		uploadRepo:  uploadRepo,
		maxBytes:    maxBytes,
		now:         time.Now,
		logger:      logger,
	}
}

func (s *uploadService) Upload(ctx context.Context, in UploadInput, actor domain.PublicUser) (*domain.Upload, error) {
	if in.Body == nil {
		return nil, ErrMissingFile
	}
	if s.maxBytes > 0 && in.Size > s.maxBytes {
		return nil, ErrFileTooLarge
	}

	contentType, err := resolveContentType(in.ContentType, in.Body)
	if err != nil {
		return nil, internal("detect content type", err)
	}
	mediaType, ok := allowedMedia[contentType]
	if !ok {
		return nil, ErrUnsupportedType
	}

	folder := "images"
	if mediaType == domain.MediaVideo {
		folder = "videos"
	}
	fileName := fmt.Sprintf("%d-%s", s.now().UnixMilli(), SanitizeFileName(in.FileName))
	objectKey := folder + "/" + fileName

	if err := s.fileStorage.Put(ctx, objectKey, contentType, in.Body, in.Size); err != nil {
		return nil, internal("store upload", err)
	}

	upload := &domain.Upload{
		ID:          uuid.NewString(),
		ObjectKey:   objectKey,
		FileName:    fileName,
		Path:        "/uploads/" + objectKey,
		Type:        mediaType,
		ContentType: contentType,
		Size:        in.Size,
		UploadedBy:  actor.ID,
	}
	if err := s.uploadRepo.Create(ctx, upload); err != nil {
		// The bytes are already stored and reachable by path; losing the
		// metadata row is not worth failing the request.
		s.logger.Error("failed to record upload metadata", "key", objectKey, "error", err)
	}

	s.logger.Info("file uploaded", "key", objectKey, "type", mediaType, "size", in.Size, "user_id", actor.ID)
	return upload, nil
}

func (s *uploadService) Open(ctx context.Context, objectKey string) (*storage.Object, error) {
	obj, err := s.fileStorage.Get(ctx, objectKey)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) || errors.Is(err, storage.ErrInvalidKey) {
			return nil, ErrUploadNotFound
		}
		return nil, internal("open upload", err)
	}
	return obj, nil
}

// resolveContentType trusts the declared type unless it is missing or generic,
// in which case the leading bytes are sniffed and body is rewound.
func resolveContentType(declared string, body io.ReadSeeker) (string, error) {
	if mt, _, err := mime.ParseMediaType(declared); err == nil && mt != "application/octet-stream" {
		return strings.ToLower(mt), nil
	}

	detected, err := mimetype.DetectReader(body)
	if err != nil {
		return "", err
	}
	if _, err := body.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	mt, _, err := mime.ParseMediaType(detected.String())
	if err != nil {
		return detected.String(), nil
	}
	return mt, nil
}

// SanitizeFileName reduces a client-supplied name to a safe single path
// segment. Letters and digits of any script are kept along with dot, dash and
// underscore; spaces become underscores.
func SanitizeFileName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))

	var b strings.Builder
	for _, r := range name {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '.', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('_')
		}
	}

	clean := []rune(strings.TrimLeft(b.String(), "."))
	if len(clean) > maxFileNameLength {
		clean = clean[len(clean)-maxFileNameLength:]
	}
	if len(clean) == 0 {
		return "file"
	}
	return string(clean)
}
