package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sitecms/sitecms/internal/services"
	apperrors "github.com/sitecms/sitecms/pkg/errors"
)

// uploadSet keeps the multipart files opened for one request so they can be
// closed once the service call returns.
type uploadSet struct {
	files []multipart.File
}

func (u *uploadSet) Close() {
	for _, f := range u.files {
		_ = f.Close()
	}
	u.files = nil
}

func (u *uploadSet) open(header *multipart.FileHeader) (services.Upload, error) {
	file, err := header.Open()
	if err != nil {
		return services.Upload{}, apperrors.NewBadRequest("unable to read uploaded file")
	}
	u.files = append(u.files, file)
	return services.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	}, nil
}

// single returns the file posted under field, or nil when the request has none.
func (u *uploadSet) single(c *gin.Context, field string) (*services.Upload, error) {
	headers, err := formFiles(c, field)
	if err != nil || len(headers) == 0 {
		return nil, err
	}
	upload, err := u.open(headers[0])
	if err != nil {
		return nil, err
	}
	return &upload, nil
}

// all returns every file posted under field.
func (u *uploadSet) all(c *gin.Context, field string) ([]services.Upload, error) {
	headers, err := formFiles(c, field)
	if err != nil {
		return nil, err
	}
	uploads := make([]services.Upload, 0, len(headers))
	for _, header := range headers {
		upload, err := u.open(header)
		if err != nil {
			return nil, err
		}
		uploads = append(uploads, upload)
	}
	return uploads, nil
}

func formFiles(c *gin.Context, field string) ([]*multipart.FileHeader, error) {
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		return nil, nil
	}
	form, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, apperrors.ErrPayloadTooLarge
		}
		return nil, apperrors.NewBadRequest("invalid multipart form")
	}
	return form.File[field], nil
}
