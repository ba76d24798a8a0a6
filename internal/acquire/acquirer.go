package acquire

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"spendbot/internal/domain"
	"spendbot/internal/port"
)

// Config holds acquisition limits and the optional archive target.
type Config struct {
	TempDir       string
	MaxFileSizeMB int64
	// ArchiveBucket enables uploading every acquired document to object storage.
	ArchiveBucket string
}

// Source identifies the document to fetch and who it belongs to.
type Source struct {
	UserID int64
	Ref    port.FileRef
}

// Acquirer downloads documents into a process-scoped temp directory.
type Acquirer struct {
	resolver port.LinkResolver
	client   *http.Client
	storage  port.ObjectStorage
	cfg      Config
	log      *zap.Logger
	now      func() time.Time
}

// NewAcquirer creates an Acquirer. storage may be nil when archiving is disabled.
func NewAcquirer(resolver port.LinkResolver, client *http.Client, storage port.ObjectStorage, cfg Config, log *zap.Logger) *Acquirer {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Acquirer{
		resolver: resolver,
		client:   client,
		storage:  storage,
		cfg:      cfg,
		log:      log,
		now:      time.Now,
	}
}

// Acquire resolves, downloads and stores the document. Every error wraps
// domain.ErrAcquisition plus a more specific cause.
func (a *Acquirer) Acquire(ctx context.Context, src Source) (*TempFile, error) {
	if src.Ref.PlatformFileID == "" && src.Ref.ExternalDocumentID == "" {
		return nil, fmt.Errorf("%w: %w", domain.ErrAcquisition, domain.ErrNoDocument)
	}

	url, err := a.resolver.Resolve(ctx, src.Ref)
	if err != nil {
		return nil, fmt.Errorf("%w: %w: resolving link: %v", domain.ErrAcquisition, domain.ErrDownload, err)
	}

	data, err := a.download(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrAcquisition, err)
	}

	contentType := http.DetectContentType(data)
	fileType, ok := domain.AllowedContentTypes[contentType]
	if !ok {
		return nil, fmt.Errorf("%w: %w: %s", domain.ErrAcquisition, domain.ErrUnsupportedFileType, contentType)
	}

	if err := os.MkdirAll(a.cfg.TempDir, 0o700); err != nil {
		return nil, fmt.Errorf("%w: creating temp dir: %v", domain.ErrAcquisition, err)
	}

	name := fmt.Sprintf("%d_%d_%s.%s", src.UserID, a.now().UnixNano(), uuid.NewString()[:8], fileType)
	path := filepath.Join(a.cfg.TempDir, name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return nil, fmt.Errorf("%w: writing temp file: %v", domain.ErrAcquisition, err)
	}

	a.log.Debug("acquire: document stored",
		zap.Int64("user_id", src.UserID),
		zap.String("path", path),
		zap.String("content_type", contentType),
		zap.Int("bytes", len(data)))

	a.archive(ctx, src.UserID, fileType, contentType, data)

	return &TempFile{
		Path:        path,
		ContentType: contentType,
		FileType:    fileType,
		Size:        int64(len(data)),
	}, nil
}

func (a *Acquirer) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: creating request: %v", domain.ErrDownload, err)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDownload, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d", domain.ErrDownload, resp.StatusCode)
	}

	maxBytes := a.cfg.MaxFileSizeMB * 1024 * 1024
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", domain.ErrDownload, err)
	}
	if int64(len(data)) > maxBytes {
		return nil, domain.ErrFileTooLarge
	}
	return data, nil
}

// archive copies the document to object storage. Failures are logged and never fail
// the acquisition.
func (a *Acquirer) archive(ctx context.Context, userID int64, fileType domain.FileType, contentType string, data []byte) {
	if a.storage == nil || a.cfg.ArchiveBucket == "" {
		return
	}
	key := fmt.Sprintf("receipts/%d/%s.%s", userID, uuid.NewString(), fileType)
	_, err := a.storage.Upload(ctx, port.UploadInput{
		Bucket:      a.cfg.ArchiveBucket,
		Key:         key,
		Body:        bytes.NewReader(data),
		ContentType: contentType,
		Size:        int64(len(data)),
		Metadata:    map[string]string{"user-id": strconv.FormatInt(userID, 10)},
	})
	if err != nil {
		a.log.Warn("acquire: archive upload failed", zap.Int64("user_id", userID), zap.String("key", key), zap.Error(err))
	}
}
