package main

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
)

// respondError writes the JSON error body for err. Internal errors are
// logged and their details withheld from the client.
func respondError(c *gin.Context, logger *log.Logger, err error) {
	kind := kindOf(err)
	status := errorStatus(kind)
	message := err.Error()
	if kind == KindInternal {
		logger.Error("request failed", "method", c.Request.Method, "path", c.Request.URL.Path, "err", err)
		message = "An unexpected error occurred."
	}
	c.AbortWithStatusJSON(status, gin.H{"error": message, "statusCode": status})
}

func respondMessage(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"message": message})
}

// pathID reads an id route parameter; ids that could never exist are NotFound.
func pathID(c *gin.Context, name, entity string) (string, error) {
	id := c.Param(name)
	if !isValidID(id) {
		return "", notFound(entity + " not found.")
	}
	return id, nil
}

// optionalFormFile returns the uploaded file for field, or nil when the
// request carries none. A part with no filename and no content counts as absent.
func optionalFormFile(c *gin.Context, field string) (*multipart.FileHeader, error) {
	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, badRequest("Invalid multipart form.")
	}
	if fh.Filename == "" && fh.Size == 0 {
		return nil, nil
	}
	return fh, nil
}

const maxPageLimit = 500

// pageQuery reads ?limit= and ?offset=. Missing values mean no paging; the
// limit is capped at maxPageLimit.
func pageQuery(c *gin.Context) (Page, error) {
	var page Page
	for name, dst := range map[string]*int{"limit": &page.Limit, "offset": &page.Offset} {
		raw := c.Query(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return Page{}, badRequest("Query parameter " + name + " must be a non-negative integer.")
		}
		*dst = n
	}
	page.Limit = min(page.Limit, maxPageLimit)
	return page, nil
}
