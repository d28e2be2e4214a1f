package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/meninojhony/modec-challenger/pkg/logger"
	"github.com/meninojhony/modec-challenger/service"
)

// AttachmentHandler manages the document stored alongside a contract (the
// signed copy). Available only when object storage is configured.
type AttachmentHandler struct {
	contracts   *service.ContractService
	attachments *service.AttachmentStore
}

func NewAttachmentHandler(contracts *service.ContractService, attachments *service.AttachmentStore) *AttachmentHandler {
	return &AttachmentHandler{contracts: contracts, attachments: attachments}
}

// Upload stores a document for the contract
func (h *AttachmentHandler) Upload(c *gin.Context) {
	id := c.Param("id")
	if _, err := h.contracts.Get(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		apiError(c, http.StatusBadRequest, "ValidationError", "No file provided")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	name, err := h.attachments.Upload(c.Request.Context(), id, header.Filename, file, header.Size, contentType)
	if err != nil {
		logger.Error(c.Request.Context(), "failed to store document", "contract_id", id, "error", err)
		apiError(c, http.StatusInternalServerError, "InternalServerError", "Failed to store document")
		return
	}

	logger.Info(c.Request.Context(), "document stored", "contract_id", id, "object", name)
	c.JSON(http.StatusCreated, gin.H{
		"contract_id": id,
		"filename":    header.Filename,
	})
}

// Download redirects to a presigned URL for the contract's document
func (h *AttachmentHandler) Download(c *gin.Context) {
	id := c.Param("id")
	if _, err := h.contracts.Get(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}

	name, err := h.attachments.Find(c.Request.Context(), id)
	if err != nil {
		logger.Error(c.Request.Context(), "failed to look up document", "contract_id", id, "error", err)
		apiError(c, http.StatusInternalServerError, "InternalServerError", "Failed to look up document")
		return
	}
	if name == "" {
		apiError(c, http.StatusNotFound, "NotFoundError", "No document stored for this contract")
		return
	}

	url, err := h.attachments.PresignedURL(c.Request.Context(), name)
	if err != nil {
		logger.Error(c.Request.Context(), "failed to presign document", "contract_id", id, "error", err)
		apiError(c, http.StatusInternalServerError, "InternalServerError", "Failed to generate download URL")
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}
