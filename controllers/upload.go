package controllers

import (
	"net/http"
	"strings"

	"MediCall/apperror"
	"MediCall/storage"
	"MediCall/util"
	"MediCall/validation"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

func (h *Handlers) Upload(router gin.IRouter) {
	router.POST("/upload", h.UploadFile)
}

/*
* Cap the request size
* Read the file and its type tag from the multipart form
* Store it and return the public URL
 */
func (h *Handlers) UploadFile(c *gin.Context) {
	limit := h.MaxUploadBytes
	if limit <= 0 {
		limit = defaultMaxUploadBytes
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)

	header, err := c.FormFile("file")
	if err != nil {
		util.Fail(c, apperror.Invalid("file", util.UPLOAD_FILE_REQUIRED))
		return
	}
	typeTag := strings.TrimSpace(c.PostForm("type"))
	if !validation.OneOf(typeTag, storage.Types) {
		util.Fail(c, apperror.Invalid("type", "must be one of: "+strings.Join(storage.Types, ", ")))
		return
	}
	file, err := header.Open()
	if err != nil {
		util.Fail(c, apperror.Unexpected(err))
		return
	}
	defer file.Close()

	upload, err := h.Files.Save(c.Request.Context(), typeTag, header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		log.Error().Err(err).Str("type", typeTag).Msg("Error from saving upload")
		util.Fail(c, apperror.Unexpected(err))
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "File uploaded successfully", "url": upload.URL, "filename": upload.Filename})
}
