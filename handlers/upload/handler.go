package upload

import (
	"bytes"
	"io"
	"log"

	"github.com/cityforge/cityforge/services/storage"
	"github.com/cityforge/cityforge/utils/response"
	"github.com/gofiber/fiber/v2"
)

// UploadHandler handles image uploads for business listings
type UploadHandler struct {
	store *storage.ImageStore
}

// NewUploadHandler creates a new upload handler. A nil store disables
// uploads (object storage not configured).
func NewUploadHandler(store *storage.ImageStore) *UploadHandler {
	return &UploadHandler{store: store}
}

// Image accepts a multipart image upload and returns its public URL
func (h *UploadHandler) Image(c *fiber.Ctx) error {
	if h.store == nil {
		return response.ServiceUnavailable(c, "Image uploads are not configured")
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		return response.BadRequest(c, "An image file is required")
	}

	if fileHeader.Size > storage.MaxImageSize {
		return response.BadRequest(c, "Image exceeds the maximum size of 16MB")
	}

	contentType := fileHeader.Header.Get(fiber.HeaderContentType)
	if _, ok := storage.AllowedImageTypes[contentType]; !ok {
		return response.BadRequest(c, "Unsupported image type")
	}

	file, err := fileHeader.Open()
	if err != nil {
		log.Printf("upload: open file failed: %v", err)
		return response.InternalServerError(c, "Failed to read upload")
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, storage.MaxImageSize+1))
	if err != nil {
		log.Printf("upload: read file failed: %v", err)
		return response.InternalServerError(c, "Failed to read upload")
	}
	if int64(len(data)) > storage.MaxImageSize {
		return response.BadRequest(c, "Image exceeds the maximum size of 16MB")
	}

	url, err := h.store.UploadImage(c.Context(), bytes.NewReader(data), contentType)
	if err != nil {
		log.Printf("upload: store failed: %v", err)
		return response.InternalServerError(c, "Failed to store image")
	}

	return response.Created(c, fiber.Map{"url": url})
}
