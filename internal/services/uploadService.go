package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"mime"
	"path"
	"strings"

	"github.com/deskspace/deskspace/internal/config"
	"github.com/deskspace/deskspace/internal/utils"
	"github.com/google/uuid"
)

// ObjectStore is where image bytes go. storage.Minio satisfies it.
type ObjectStore interface {
	Put(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error)
	Remove(ctx context.Context, name string) error
}

// ImageFile is one uploaded file as received from the client.
type ImageFile struct {
	Filename    string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

// StoredImage is an image written to the object store.
type StoredImage struct {
	Name string
	URL  string
}

const uploadConcurrency = 4

var typeExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// Uploader validates and stores property images.
type Uploader struct {
	objects  ObjectStore
	maxBytes int64
	allowed  map[string]bool
	rollback bool
}

func NewUploader(objects ObjectStore, cfg config.UploadConfig) *Uploader {
	allowed := make(map[string]bool, len(cfg.AllowedTypes))
	for _, t := range cfg.AllowedTypes {
		allowed[strings.ToLower(strings.TrimSpace(t))] = true
	}
	return &Uploader{
		objects:  objects,
		maxBytes: cfg.MaxBytes,
		allowed:  allowed,
		rollback: cfg.FailurePolicy == config.PolicyRollback,
	}
}

func mediaType(contentType string) string {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return mt
}

// Validate checks every file before anything is stored. The error names the
// first offending file.
func (u *Uploader) Validate(files []ImageFile) error {
	for _, f := range files {
		mt := mediaType(f.ContentType)
		if !u.allowed[mt] {
			return invalid("images", "%q has unsupported type %q", f.Filename, mt)
		}
		if f.Size <= 0 {
			return invalid("images", "%q is empty", f.Filename)
		}
		if f.Size > u.maxBytes {
			return invalid("images", "%q exceeds the %d byte limit", f.Filename, u.maxBytes)
		}
	}
	return nil
}

func objectName(f ImageFile) string {
	ext := strings.ToLower(path.Ext(f.Filename))
	if ext == "" || len(ext) > 5 {
		ext = typeExtensions[mediaType(f.ContentType)]
	}
	return "properties/" + uuid.NewString() + ext
}

// Upload stores all files concurrently and returns them in input order. On
// failure every other upload still runs to completion; under the rollback
// policy the ones that succeeded are then removed.
func (u *Uploader) Upload(ctx context.Context, files []ImageFile) ([]StoredImage, error) {
	if err := u.Validate(files); err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, nil
	}

	failed := make([]bool, len(files))
	stored, err := utils.RunOrdered(files, uploadConcurrency, func(i int, f ImageFile) (StoredImage, error) {
		img, err := u.put(ctx, f)
		if err != nil {
			failed[i] = true
			return StoredImage{}, &UpstreamError{
				Op:     "upload " + f.Filename,
				Public: fmt.Sprintf("Failed to upload image %q", f.Filename),
				Err:    err,
			}
		}
		return img, nil
	})
	if err != nil {
		var ok []StoredImage
		for i, img := range stored {
			if !failed[i] {
				ok = append(ok, img)
			}
		}
		u.Release(ctx, ok)
		return nil, err
	}
	return stored, nil
}

func (u *Uploader) put(ctx context.Context, f ImageFile) (StoredImage, error) {
	rc, err := f.Open()
	if err != nil {
		return StoredImage{}, err
	}
	defer rc.Close()

	name := objectName(f)
	url, err := u.objects.Put(ctx, name, rc, f.Size, mediaType(f.ContentType))
	if err != nil {
		return StoredImage{}, err
	}
	return StoredImage{Name: name, URL: url}, nil
}

// UploadImages is Upload returning only the public URLs.
func (u *Uploader) UploadImages(ctx context.Context, files []ImageFile) ([]string, error) {
	stored, err := u.Upload(ctx, files)
	if err != nil {
		return nil, err
	}
	return urlsOf(stored), nil
}

// Release removes stored images under the rollback policy. Under the
// orphan policy it does nothing.
func (u *Uploader) Release(ctx context.Context, images []StoredImage) {
	if !u.rollback || len(images) == 0 {
		return
	}
	// removal must finish even if the request was cancelled
	ctx = context.WithoutCancel(ctx)
	_, _ = utils.RunOrdered(images, uploadConcurrency, func(_ int, img StoredImage) (struct{}, error) {
		if err := u.objects.Remove(ctx, img.Name); err != nil {
			log.Printf("[uploads] Warning: Failed to remove %s: %v", img.Name, err)
		}
		return struct{}{}, nil
	})
}

func urlsOf(images []StoredImage) []string {
	urls := make([]string, len(images))
	for i, img := range images {
		urls[i] = img.URL
	}
	return urls
}
