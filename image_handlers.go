package main

import (
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/gin-gonic/gin"
)

// serveImage writes the image at path, resized to fit ?size= when given.
func (a *API) serveImage(c *gin.Context, path string) {
	size := coverSize(c)
	if size == 0 {
		c.File(path)
		return
	}

	f, err := os.Open(path)
	if err != nil {
		respondError(c, a.logger, notFound("Image not found."))
		return
	}
	defer f.Close()

	contentType := mime.TypeByExtension(filepath.Ext(path))
	a.resizeAndServeImage(c, f, contentType, size)
}

func (a *API) resizeAndServeImage(c *gin.Context, f *os.File, contentType string, size int) {
	img, err := imaging.Decode(f, imaging.AutoOrientation(true))
	if err != nil {
		a.logger.Warn("failed to decode image", "path", f.Name(), "err", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	resized := imaging.Fit(img, size, size, imaging.Lanczos)

	var format imaging.Format
	switch contentType {
	case "image/png":
		format = imaging.PNG
	case "image/gif":
		format = imaging.GIF
	default:
		format = imaging.JPEG
		contentType = "image/jpeg"
	}

	c.Header("Content-Type", contentType)
	c.Status(http.StatusOK)
	if err := imaging.Encode(c.Writer, resized, format); err != nil {
		a.logger.Warn("failed to encode resized image", "err", err)
	}
}
