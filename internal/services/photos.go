package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrImageRejected is returned when SafeSearch flags an upload as unsafe.
var ErrImageRejected = errors.New("image rejected: violates community guidelines")

var filenameSanitizer = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// PhotoService uploads user photos into the storage bucket, optionally
// gating them behind Vision SafeSearch before they go public.
type PhotoService struct {
	gcs            *storage.Client
	bucket         string
	safeSearchGate bool
	log            *zap.SugaredLogger
}

func NewPhotoService(ctx context.Context, bucket string, safeSearchGate bool, log *zap.SugaredLogger) (*PhotoService, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("photos: storage client: %w", err)
	}
	return &PhotoService{gcs: client, bucket: bucket, safeSearchGate: safeSearchGate, log: log}, nil
}

// UploadResult is the stored object's location after a successful upload.
type UploadResult struct {
	URL  string `json:"url"`
	Path string `json:"path"`
}

// UploadUserPhoto streams a multipart file into users/<uuid>-<name>. When the
// SafeSearch gate is on, flagged images are deleted and rejected.
func (p *PhotoService) UploadUserPhoto(ctx context.Context, file multipart.File, filename string) (*UploadResult, error) {
	objectName := "users/" + uuid.NewString() + "-" + sanitizeFilename(filename)
	obj := p.gcs.Bucket(p.bucket).Object(objectName)

	w := obj.NewWriter(ctx)
	w.ContentType = contentTypeFor(filename)
	if _, err := io.Copy(w, file); err != nil {
		w.Close()
		return nil, fmt.Errorf("photos: write object: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("photos: finalize object: %w", err)
	}

	if p.safeSearchGate {
		gcsURI := fmt.Sprintf("gs://%s/%s", p.bucket, objectName)
		ss, err := DetectSafeSearch(ctx, gcsURI)
		if err != nil {
			p.log.Warnw("safesearch failed, keeping upload", "object", objectName, "err", err)
		} else if ss.IsUnsafe() {
			p.log.Infow("upload rejected by safesearch",
				"object", objectName, "adult", ss.Adult, "violence", ss.Violence, "racy", ss.Racy)
			if delErr := obj.Delete(ctx); delErr != nil {
				p.log.Warnw("rejected object delete failed", "object", objectName, "err", delErr)
			}
			return nil, ErrImageRejected
		}
	}

	if err := obj.ACL().Set(ctx, storage.AllUsers, storage.RoleReader); err != nil {
		p.log.Debugw("public acl set failed, returning firebase url anyway", "object", objectName, "err", err)
	}

	return &UploadResult{
		URL:  publicURL(p.bucket, objectName),
		Path: objectName,
	}, nil
}

func (p *PhotoService) Close() error {
	return p.gcs.Close()
}

func sanitizeFilename(name string) string {
	name = filepath.Base(strings.TrimSpace(name))
	name = filenameSanitizer.ReplaceAllString(name, "_")
	if name == "" || name == "." {
		name = "photo"
	}
	if len(name) > 100 {
		name = name[len(name)-100:]
	}
	return name
}

func contentTypeFor(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	}
	return "image/jpeg"
}

func publicURL(bucket, objectName string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucket, url.PathEscape(objectName))
}
