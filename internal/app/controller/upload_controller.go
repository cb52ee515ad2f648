package controller

import (
	"errors"
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"
	apperrors "github.com/gsaan/gsaan-backend/internal/errors"
	"github.com/gsaan/gsaan-backend/internal/middleware"
	"github.com/gsaan/gsaan-backend/internal/storage"
)

var folderIDPattern = regexp.MustCompile(`^[A-Za-z0-9-]{1,64}$`)

var presignFolders = map[string]bool{
	"products": true,
	"uploads":  true,
	"site":     true,
}

type UploadController struct {
	storage storage.ObjectStore
}

func NewUploadController(storage storage.ObjectStore) *UploadController {
	return &UploadController{
		storage: storage,
	}
}

type GeneratePresignedURLRequest struct {
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
	Folder      string `json:"folder"` // defaults to "uploads"
}

// UploadProductImage stores a multipart "file" under the product's folder.
// POST /api/v1/admin/uploads/products/:id
func (ctrl *UploadController) UploadProductImage(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	productID := c.Param("id")
	if !folderIDPattern.MatchString(productID) {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid product ID")
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "An image file is required")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if err := storage.ValidateImage(contentType, header.Size); err != nil {
		log.Warn("Image upload rejected", map[string]interface{}{
			"product_id":   productID,
			"content_type": contentType,
			"size":         header.Size,
		})
		code := apperrors.UploadInvalidFileType
		if errors.Is(err, storage.ErrFileTooLarge) {
			code = apperrors.UploadFileTooLarge
		}
		apperrors.BadRequest(c, code, err.Error())
		return
	}

	file, err := header.Open()
	if err != nil {
		log.Error("Failed to open uploaded file", err)
		apperrors.RespondWithError(c, http.StatusInternalServerError, apperrors.UploadFailed, "Upload failed. Please try again")
		return
	}
	defer file.Close()

	key := storage.ProductImageKey(productID, contentType)
	url, err := ctrl.storage.Upload(c.Request.Context(), key, file, header.Size, contentType)
	if err != nil {
		log.Error("Failed to upload product image", err, map[string]interface{}{
			"product_id": productID,
			"key":        key,
		})
		apperrors.RespondWithError(c, http.StatusInternalServerError, apperrors.UploadFailed, "Upload failed. Please try again")
		return
	}

	log.Info("Product image uploaded", map[string]interface{}{
		"product_id": productID,
		"key":        key,
		"size":       header.Size,
	})
	c.JSON(http.StatusCreated, gin.H{
		"url": url,
		"key": key,
	})
}

// DeleteImage removes an uploaded image by its public URL. Unknown URLs are
// ignored.
// DELETE /api/v1/admin/uploads?url=
func (ctrl *UploadController) DeleteImage(c *gin.Context) {
	fileURL := c.Query("url")
	if fileURL == "" {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "url is required")
		return
	}

	ctrl.storage.DeleteByURL(c.Request.Context(), fileURL)
	c.JSON(http.StatusOK, gin.H{"message": "Image deleted"})
}

// GeneratePresignedURL generates a presigned URL for a direct browser upload
// POST /api/v1/admin/uploads/presigned-url
func (ctrl *UploadController) GeneratePresignedURL(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req GeneratePresignedURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid presigned URL request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "filename and content_type are required")
		return
	}

	if err := storage.ValidateImage(req.ContentType, 0); err != nil {
		log.Warn("Invalid content type", map[string]interface{}{
			"content_type": req.ContentType,
		})
		apperrors.BadRequest(c, apperrors.UploadInvalidFileType, err.Error())
		return
	}

	folder := req.Folder
	if folder == "" {
		folder = "uploads"
	}
	if !presignFolders[folder] {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Unknown upload folder")
		return
	}

	response, err := ctrl.storage.PresignUpload(c.Request.Context(), folder, req.Filename, req.ContentType)
	if err != nil {
		log.Error("Failed to generate presigned URL", err, map[string]interface{}{
			"filename":     req.Filename,
			"content_type": req.ContentType,
			"folder":       folder,
		})
		apperrors.RespondWithError(c, http.StatusInternalServerError, apperrors.UploadFailed, "Failed to generate upload URL")
		return
	}

	log.Info("Presigned URL generated successfully", map[string]interface{}{
		"folder": folder,
		"key":    response.Key,
	})
	c.JSON(http.StatusOK, response)
}
