package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/datasprayio/dataspray/internal/infrastructure/tracing"
)

type uriQuery struct {
	URI string `form:"uri" binding:"required"`
}

// Copy copies source to destination
func (h *Handlers) Copy(c *gin.Context) {
	var q struct {
		Source      string `form:"source" binding:"required"`
		Destination string `form:"destination" binding:"required"`
		Overwrite   bool   `form:"overwrite"`
	}
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, "Invalid request: "+err.Error())
		return
	}

	if err := h.fs.Copy(c.Request.Context(), q.Source, q.Destination, q.Overwrite); err != nil {
		h.respondError(c, err)
		return
	}
	ok(c)
}

// CreateDirectory creates one directory level
func (h *Handlers) CreateDirectory(c *gin.Context) {
	var q uriQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, "Invalid request: "+err.Error())
		return
	}

	if err := h.fs.CreateDirectory(c.Request.Context(), q.URI); err != nil {
		h.respondError(c, err)
		return
	}
	ok(c)
}

// Delete removes a file or directory
func (h *Handlers) Delete(c *gin.Context) {
	var q struct {
		URI       string `form:"uri" binding:"required"`
		Recursive bool   `form:"recursive"`
	}
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, "Invalid request: "+err.Error())
		return
	}

	if err := h.fs.Delete(c.Request.Context(), q.URI, q.Recursive); err != nil {
		h.respondError(c, err)
		return
	}
	ok(c)
}

// ReadDirectory lists the children of a directory
func (h *Handlers) ReadDirectory(c *gin.Context) {
	var q uriQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, "Invalid request: "+err.Error())
		return
	}

	resp, err := h.fs.ReadDirectory(c.Request.Context(), q.URI)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Glob finds nodes below a directory matching a pattern
func (h *Handlers) Glob(c *gin.Context) {
	var q struct {
		URI     string `form:"uri" binding:"required"`
		Pattern string `form:"pattern" binding:"required"`
	}
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, "Invalid request: "+err.Error())
		return
	}

	resp, err := h.fs.Glob(c.Request.Context(), q.URI, q.Pattern)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ReadFile streams a file's bytes
func (h *Handlers) ReadFile(c *gin.Context) {
	var q uriQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, "Invalid request: "+err.Error())
		return
	}

	content, err := h.fs.ReadFile(c.Request.Context(), q.URI)
	if err != nil {
		h.respondError(c, err)
		return
	}
	defer content.Close()

	c.Header("Content-Type", content.MimeType)
	c.Header("X-File-Size", strconv.FormatInt(content.Size, 10))
	c.Status(http.StatusOK)

	if err := writeChunks(c, content.Content.Chunks()); err != nil || content.Content.Err() != nil {
		if err == nil {
			err = content.Content.Err()
		}
		// Headers are already out; all that is left is to cut the response.
		tracing.Logger(c.Request.Context(), h.logger).Warn("File stream interrupted",
			zap.String("uri", q.URI),
			zap.Error(err),
		)
		c.Abort()
	}
}

// Rename moves oldUri to newUri
func (h *Handlers) Rename(c *gin.Context) {
	var q struct {
		OldURI       string `form:"oldUri"`
		NewURI       string `form:"newUri"`
		LegacyOldURI string `form:"old_uri"`
		LegacyNewURI string `form:"new_uri"`
		Overwrite    bool   `form:"overwrite"`
	}
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, "Invalid request: "+err.Error())
		return
	}
	if q.OldURI == "" {
		q.OldURI = q.LegacyOldURI
	}
	if q.NewURI == "" {
		q.NewURI = q.LegacyNewURI
	}
	if q.OldURI == "" || q.NewURI == "" {
		badRequest(c, "Invalid request: oldUri and newUri are required")
		return
	}

	if err := h.fs.Rename(c.Request.Context(), q.OldURI, q.NewURI, q.Overwrite); err != nil {
		h.respondError(c, err)
		return
	}
	ok(c)
}

// Stat reports metadata for a node
func (h *Handlers) Stat(c *gin.Context) {
	var q uriQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, "Invalid request: "+err.Error())
		return
	}

	stat, err := h.fs.Stat(c.Request.Context(), q.URI)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stat)
}

// WriteFile writes the request body to a file
func (h *Handlers) WriteFile(c *gin.Context) {
	var q struct {
		URI       string `form:"uri" binding:"required"`
		Create    bool   `form:"create"`
		Overwrite bool   `form:"overwrite"`
	}
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, "Invalid request: "+err.Error())
		return
	}

	body, err := readTextBody(c)
	if err != nil {
		badRequest(c, "Invalid body: "+err.Error())
		return
	}

	if err := h.fs.WriteFile(c.Request.Context(), q.URI, body, q.Create, q.Overwrite); err != nil {
		h.respondError(c, err)
		return
	}
	ok(c)
}

// writeChunks copies chunks to the response, flushing after each.
func writeChunks(c *gin.Context, chunks <-chan []byte) error {
	for chunk := range chunks {
		if _, err := c.Writer.Write(chunk); err != nil {
			return err
		}
		c.Writer.Flush()
	}
	return nil
}
