// Package handlers provides HTTP request handlers for the presentation layer.
package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"unicode"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"github.com/rajcreationz/livesite/internal/application/services"
	"github.com/rajcreationz/livesite/internal/domain/entities/media"
	"github.com/rajcreationz/livesite/internal/domain/errs"
	imageproc "github.com/rajcreationz/livesite/internal/infrastructure/media"
)

// APIResponse is the envelope for every JSON write endpoint.
type APIResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Warning string `json:"warning,omitempty"`
	Error   string `json:"error,omitempty"`
}

func respondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// statusFor maps a service error onto an HTTP status and the message shown
// to the admin.
func statusFor(err error) (int, string) {
	var validation *errs.ValidationError
	var configuration *errs.ConfigurationError
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest, validationMessage(validation)
	case errors.Is(err, errs.ErrInvalidCredentials):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, errs.ErrRateLimited), errors.Is(err, services.ErrTokenBudget):
		return http.StatusTooManyRequests, err.Error()
	case errors.Is(err, errs.ErrNotFound):
		return http.StatusNotFound, "Not found"
	case errors.As(err, &configuration):
		return http.StatusServiceUnavailable, configuration.Error()
	case errors.Is(err, errs.ErrUnavailable):
		return http.StatusServiceUnavailable, "This feature is not configured on the server"
	case errs.IsRemote(err):
		return http.StatusBadGateway, "Could not reach the content store. Please try again"
	}
	return http.StatusInternalServerError, "Internal server error"
}

// validationMessage shows sentence-style messages as-is and prefixes terse
// ones with their field.
func validationMessage(v *errs.ValidationError) string {
	if r, _ := utf8.DecodeRuneInString(v.Message); unicode.IsUpper(r) {
		return v.Message
	}
	return v.Error()
}

// respondError writes the error envelope and logs anything that is not the
// caller's fault.
func respondError(c *gin.Context, logger *slog.Logger, op string, err error) {
	status, message := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", "operation", op, "status", status, "error", err.Error())
	} else {
		logger.Warn("Request rejected", "operation", op, "status", status, "error", err.Error())
	}
	c.JSON(status, APIResponse{Success: false, Error: message})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, APIResponse{Success: false, Error: message})
}

// clientKey identifies the caller for rate limiting.
func clientKey(c *gin.Context) string {
	return c.ClientIP()
}

// ImagePayload is the JSON form of an image upload: a data URL plus an
// optional original file name.
type ImagePayload struct {
	Data        string `json:"data"`
	FileName    string `json:"fileName"`
	Description string `json:"description"`
}

// readUpload accepts either a multipart "file" field or a JSON data URL body.
// The returned description is only set by callers that send one.
func readUpload(c *gin.Context, maxBytes int64) (media.Upload, string, error) {
	if fh, err := c.FormFile("file"); err == nil {
		if maxBytes > 0 && fh.Size > maxBytes {
			return media.Upload{}, "", errs.Invalid("file", "File is too large")
		}
		f, err := fh.Open()
		if err != nil {
			return media.Upload{}, "", errs.Invalid("file", "Could not read the uploaded file")
		}
		defer f.Close()
		data, err := io.ReadAll(f)
		if err != nil {
			return media.Upload{}, "", errs.Invalid("file", "Could not read the uploaded file")
		}
		upload := media.Upload{
			FileName:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		}
		imageproc.SniffContentType(&upload)
		return upload, c.PostForm("description"), nil
	}

	var payload ImagePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		return media.Upload{}, "", errs.Invalid("file", "Please choose an image to upload")
	}
	upload, err := imageproc.DecodeDataURL(payload.Data, "upload")
	if err != nil {
		return media.Upload{}, "", err
	}
	if payload.FileName != "" {
		upload.FileName = payload.FileName
	}
	return upload, payload.Description, nil
}
