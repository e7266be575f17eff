package api

import (
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nthieuit88-gif/ecabitnetv7/internal/server/models"
	"github.com/nthieuit88-gif/ecabitnetv7/internal/server/services"
)

func (a *API) ListDocuments(c *gin.Context) {
	docs, err := a.docs.List(c.Request.Context())
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, docs)
}

func (a *API) GetDocument(c *gin.Context) {
	doc, err := a.docs.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// CreateDocument records metadata only. Devices that could not upload the
// blob (offline, storage failure) still get their record in so other
// participants see the document exists.
func (a *API) CreateDocument(c *gin.Context) {
	var doc models.Document
	if err := c.ShouldBindJSON(&doc); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if doc.OwnerID == "" {
		doc.OwnerID = callerID(c)
	}

	if err := a.docs.Create(c.Request.Context(), &doc); err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, doc)
}

// UploadDocument accepts a multipart upload, stores the blob and creates the
// metadata record in one round trip.
func (a *API) UploadDocument(c *gin.Context) {
	if c.Request.ContentLength > a.config.MaxUploadSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file field required"})
		return
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, a.config.MaxUploadSize+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable file"})
		return
	}
	if int64(len(content)) > a.config.MaxUploadSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
		return
	}

	name := c.PostForm("name")
	if name == "" {
		name = header.Filename
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(content)
	}

	doc, err := a.docs.Upload(c.Request.Context(), services.UploadCommand{
		Name:        name,
		Filename:    SanitizeFilename(header.Filename),
		ContentType: contentType,
		Type:        DocTypeFromFilename(header.Filename),
		OwnerID:     callerID(c),
		Content:     content,
	})
	if err != nil {
		a.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, doc)
}

func (a *API) UpdateDocument(c *gin.Context) {
	var doc models.Document
	if err := c.ShouldBindJSON(&doc); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	doc.ID = c.Param("id")

	if err := a.docs.Update(c.Request.Context(), &doc); err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (a *API) DeleteDocument(c *gin.Context) {
	if err := a.docs.Delete(c.Request.Context(), c.Param("id")); err != nil {
		a.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DocTypeFromFilename maps a filename extension onto the closed type set.
func DocTypeFromFilename(filename string) string {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), ".")) {
	case "pdf":
		return models.DocTypePDF
	case "doc", "docx":
		return models.DocTypeDoc
	case "xls", "xlsx", "csv":
		return models.DocTypeXLS
	case "ppt", "pptx":
		return models.DocTypePPT
	default:
		return models.DocTypeOther
	}
}

// SanitizeFilename strips anything that is not safe inside a storage key or
// a viewer URL: whitespace becomes underscores, everything outside
// [a-zA-Z0-9._-] is dropped.
func SanitizeFilename(filename string) string {
	var b strings.Builder
	for _, r := range filename {
		switch {
		case r == ' ' || r == '\t':
			b.WriteByte('_')
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '_', r == '-':
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "file"
	}
	return b.String()
}
