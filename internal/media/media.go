package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"github.com/omart/marketplace/internal/logging"
)

const (
	MaxImages       = 5
	DefaultMaxBytes = 5 * 1024 * 1024
)

var (
	ErrNoFiles       = errors.New("at least one image is required")
	ErrTooManyFiles  = fmt.Errorf("too many files, maximum %d images allowed", MaxImages)
	ErrInvalidFile   = errors.New("invalid image file")
	ErrTooLarge      = fmt.Errorf("%w: file too large", ErrInvalidFile)
	ErrUpload        = errors.New("error uploading images")
	ErrNotConfigured = errors.New("image storage is not configured")
)

// File is an image waiting to be uploaded.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

func FromMultipart(headers []*multipart.FileHeader) []File {
	files := make([]File, 0, len(headers))
	for _, fh := range headers {
		fh := fh
		files = append(files, File{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
			Open: func() (io.ReadCloser, error) {
				return fh.Open()
			},
		})
	}
	return files
}

type Image struct {
	URL      string `json:"url"`
	PublicID string `json:"publicId"`
}

type Storage interface {
	Upload(ctx context.Context, r io.Reader, name string) (Image, error)
	Destroy(ctx context.Context, publicID string) error
}

// Validate checks count first, then every file, without touching storage.
func Validate(files []File, existing int, requireOne bool, maxBytes int64) error {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if requireOne && len(files) == 0 {
		return ErrNoFiles
	}
	if existing+len(files) > MaxImages {
		return ErrTooManyFiles
	}
	for _, f := range files {
		if !strings.HasPrefix(strings.ToLower(f.ContentType), "image/") {
			return fmt.Errorf("%w: %s: only image files are allowed", ErrInvalidFile, f.Name)
		}
		if f.Size <= 0 {
			return fmt.Errorf("%w: %s: file is empty", ErrInvalidFile, f.Name)
		}
		if f.Size > maxBytes {
			return fmt.Errorf("%w: %s: maximum size is %dMB", ErrTooLarge, f.Name, maxBytes/(1024*1024))
		}
	}
	return nil
}

// Attacher moves validated files into Storage and undoes partial work.
type Attacher struct {
	Storage  Storage
	MaxBytes int64
}

// Validate applies the package checks with the attacher's size cap.
func (a *Attacher) Validate(files []File, existing int, requireOne bool) error {
	var maxBytes int64
	if a != nil {
		maxBytes = a.MaxBytes
	}
	return Validate(files, existing, requireOne, maxBytes)
}

func (a *Attacher) UploadAll(ctx context.Context, files []File) ([]Image, error) {
	if len(files) == 0 {
		return nil, nil
	}
	if a == nil || a.Storage == nil {
		return nil, fmt.Errorf("%w: %w", ErrUpload, ErrNotConfigured)
	}

	out := make([]Image, 0, len(files))
	for _, f := range files {
		img, err := a.uploadOne(ctx, f)
		if err != nil {
			a.Discard(ctx, out)
			return nil, fmt.Errorf("%w: %w", ErrUpload, err)
		}
		out = append(out, img)
	}
	return out, nil
}

func (a *Attacher) uploadOne(ctx context.Context, f File) (Image, error) {
	rc, err := f.Open()
	if err != nil {
		return Image{}, fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()
	return a.Storage.Upload(ctx, rc, f.Name)
}

// Discard destroys images best-effort; failures are only logged.
func (a *Attacher) Discard(ctx context.Context, images []Image) {
	if a == nil || a.Storage == nil || len(images) == 0 {
		return
	}
	l := logging.FromContext(ctx).With("svc", "media.discard")
	for _, img := range images {
		if img.PublicID == "" {
			continue
		}
		if err := a.Storage.Destroy(ctx, img.PublicID); err != nil {
			l.Warn("image_destroy_failed", "public_id", img.PublicID, "error", err)
		}
	}
}

// UserMessage turns an upload failure into text safe to show to clients.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := strings.ToLower(err.Error())
	switch {
	case errors.Is(err, ErrNotConfigured):
		return "Image storage is not configured. Please try again later."
	case strings.Contains(msg, "api_key"), strings.Contains(msg, "cloud_name"), strings.Contains(msg, "api secret"):
		return "Image storage credentials are invalid."
	case errors.Is(err, context.DeadlineExceeded), strings.Contains(msg, "timeout"):
		return "Image upload timed out. Please try again."
	}
	return "Error uploading images"
}
