package handlers

import (
	"io"
	"mime/multipart"

	"github.com/deskspace/deskspace/internal/services"
	"github.com/gofiber/fiber/v2"
)

type UploadHandler struct {
	uploader *services.Uploader
}

func NewUploadHandler(uploader *services.Uploader) *UploadHandler {
	return &UploadHandler{uploader: uploader}
}

func imageFile(fh *multipart.FileHeader) services.ImageFile {
	return services.ImageFile{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Size:        fh.Size,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

// imageFiles skips the empty part a browser sends for an untouched file input.
func imageFiles(headers []*multipart.FileHeader) []services.ImageFile {
	files := make([]services.ImageFile, 0, len(headers))
	for _, fh := range headers {
		if fh.Filename == "" && fh.Size == 0 {
			continue
		}
		files = append(files, imageFile(fh))
	}
	return files
}

// Upload stores a single image from the "file" field and returns its URL.
func (h *UploadHandler) Upload(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "No file uploaded")
	}

	urls, err := h.uploader.UploadImages(c.UserContext(), []services.ImageFile{imageFile(fh)})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"url": urls[0]})
}
