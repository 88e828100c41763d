package handlers

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/vidtube/backend/internal/apierror"
	"github.com/vidtube/backend/internal/media"
)

const multipartMemory = 32 << 20

// isMultipart reports whether the request carries a multipart form.
func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && strings.HasPrefix(mediaType, "multipart/")
}

// parseMultipart bounds the body to maxBytes and parses the form. The returned
// cleanup removes any temporary files.
func parseMultipart(w http.ResponseWriter, r *http.Request, maxBytes int64) (func(), error) {
	if maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return func() {}, apierror.Wrap(apierror.KindInvalidArgument, "upload exceeds the size limit", err)
		}
		return func() {}, apierror.Wrap(apierror.KindInvalidArgument, "invalid multipart form", err)
	}
	return func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}, nil
}

// formFile returns the uploaded file for field. ok is false when the field is
// absent or empty.
func formFile(r *http.Request, field string) (upload media.Upload, ok bool, err error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return media.Upload{}, false, nil
	}
	if err != nil {
		return media.Upload{}, false, apierror.Wrap(apierror.KindInvalidArgument, "invalid "+field, err)
	}
	if header.Size == 0 {
		_ = file.Close()
		return media.Upload{}, false, nil
	}
	return media.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	}, true, nil
}

// requireFile is formFile for mandatory uploads.
func requireFile(r *http.Request, field string) (media.Upload, error) {
	upload, ok, err := formFile(r, field)
	if err != nil {
		return media.Upload{}, err
	}
	if !ok {
		return media.Upload{}, apierror.MissingField(field)
	}
	return upload, nil
}

func closeUploads(uploads ...media.Upload) {
	for _, upload := range uploads {
		if closer, ok := upload.Body.(io.Closer); ok {
			_ = closer.Close()
		}
	}
}
