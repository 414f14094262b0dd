// Package upload admits a single multipart file while the request body is streamed.
//
// The declared media type of the file part is checked before any of its bytes are
// read, and the part is read through a capped reader so an oversized body is cut off
// instead of buffered. Failures are recorded on the gin context as *apperr.Error and
// the chain is aborted; formatting the reply is left to the error responder.
package upload

import (
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"

	"birdfinder-server-go/src/configs"
	"birdfinder-server-go/src/core/apperr"
	"birdfinder-server-go/src/core/image"
	"birdfinder-server-go/src/core/utils"

	"github.com/gin-gonic/gin"
)

const (
	FileTooLargeMessage    = "File too large"
	UnexpectedFieldMessage = "Unexpected field"
	FieldTooLongMessage    = "Field value too long"
	TooManyPartsMessage    = "Too many parts"
)

const contextKey = "upload.image"

// Admitter streams multipart bodies according to UploadConfig
type Admitter struct {
	config    *configs.UploadConfig
	logger    *utils.TaggedLogger
	allowed   map[string]bool
	inspector *image.ImageInspector
}

// NewAdmitter builds the allow-list and, when inspect_payload is set, the content inspector.
func NewAdmitter(config *configs.UploadConfig, logger *utils.Logger) *Admitter {
	allowed := make(map[string]bool, len(config.AllowedTypes))
	for _, t := range config.AllowedTypes {
		allowed[strings.ToLower(strings.TrimSpace(t))] = true
	}

	a := &Admitter{
		config:  config,
		logger:  logger.WithTag("upload"),
		allowed: allowed,
	}
	if config.InspectPayload {
		a.inspector = image.NewImageInspector(config, logger)
	}
	return a
}

// Single admits at most one file in the configured field. A request that is not
// multipart/form-data passes through with no file attached.
func (a *Admitter) Single() gin.HandlerFunc {
	return func(c *gin.Context) {
		img, err := a.Admit(c.Request)
		if err != nil {
			fields := map[string]interface{}{
				"path":  c.Request.URL.Path,
				"error": err.Error(),
			}
			if apperr.IsValidation(err) {
				a.logger.Warn("upload rejected", fields)
			} else {
				a.logger.Error("upload failed", fields)
			}
			_ = c.Error(err)
			c.Abort()
			return
		}

		if img != nil {
			a.logger.Info("upload admitted", map[string]interface{}{
				"file_name":    img.FileName,
				"content_type": img.ContentType,
				"size":         img.Size,
			})
			c.Set(contextKey, img)
		}
		c.Next()
	}
}

// FromContext returns the file admitted by Single, if any.
func FromContext(c *gin.Context) (*image.UploadedImage, bool) {
	v, ok := c.Get(contextKey)
	if !ok {
		return nil, false
	}
	img, ok := v.(*image.UploadedImage)
	return img, ok
}

// Admit reads the whole multipart body of r and returns the admitted file, or nil
// when the body carried none.
func (a *Admitter) Admit(r *http.Request) (*image.UploadedImage, error) {
	reader, err := r.MultipartReader()
	if errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, malformed(err)
	}

	var admitted *image.UploadedImage
	parts := 0
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, malformed(err)
		}

		parts++
		if parts > a.config.MaxParts {
			part.Close()
			return nil, apperr.Validation(apperr.CodeMalformedBody, TooManyPartsMessage)
		}

		if !isFilePart(part) {
			err = a.skipField(part)
		} else {
			var img *image.UploadedImage
			img, err = a.admitFile(part, admitted != nil)
			if img != nil {
				admitted = img
			}
		}
		part.Close()
		if err != nil {
			return nil, err
		}
	}

	if admitted != nil && a.inspector != nil {
		result := a.inspector.Inspect(admitted, a.config.RejectMessage)
		if !result.IsValid {
			return nil, result.Error
		}
		a.logger.Debug("image inspected", map[string]interface{}{
			"format":    result.Format,
			"width":     result.Width,
			"height":    result.Height,
			"file_size": result.FileSize,
		})
	}
	return admitted, nil
}

// admitFile checks the part header, then reads at most max_file_size+1 bytes.
func (a *Admitter) admitFile(part *multipart.Part, haveFile bool) (*image.UploadedImage, error) {
	if part.FormName() != a.config.FieldName || haveFile {
		return nil, apperr.Validation(apperr.CodeUnexpectedField, UnexpectedFieldMessage)
	}

	contentType := mediaType(part.Header.Get("Content-Type"))
	if !a.allowed[contentType] {
		return nil, apperr.Validation(apperr.CodeUnsupportedType, a.config.RejectMessage)
	}

	data, ok, err := readCapped(part, a.config.MaxFileSize)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.Validation(apperr.CodeFileTooLarge, FileTooLargeMessage)
	}

	return &image.UploadedImage{
		Field:       part.FormName(),
		FileName:    part.FileName(),
		ContentType: contentType,
		Data:        data,
		Size:        int64(len(data)),
	}, nil
}

func (a *Admitter) skipField(part *multipart.Part) error {
	_, ok, err := readCapped(part, a.config.MaxFieldSize)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.Validation(apperr.CodeFieldTooLong, FieldTooLongMessage)
	}
	return nil
}

// readCapped reads r; ok is false when r holds more than limit bytes.
func readCapped(r io.Reader, limit int64) (data []byte, ok bool, err error) {
	data, err = io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, false, malformed(err)
	}
	if int64(len(data)) > limit {
		return nil, false, nil
	}
	return data, true, nil
}

// isFilePart reports whether Content-Disposition carries a filename parameter,
// including an empty one.
func isFilePart(part *multipart.Part) bool {
	_, params, err := mime.ParseMediaType(part.Header.Get("Content-Disposition"))
	if err != nil {
		return false
	}
	_, ok := params["filename"]
	return ok
}

// mediaType lower-cases the type and drops parameters; unparsable values become "".
func mediaType(header string) string {
	if header == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(header)
	if err != nil {
		return ""
	}
	return mt
}

// malformed reports a broken multipart stream with the parser's own message.
func malformed(err error) error {
	return &apperr.Error{
		Kind: apperr.KindInternal,
		Code: apperr.CodeMalformedBody,
		Err:  err,
	}
}
