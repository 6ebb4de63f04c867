package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/anonto42/blog-api/backend/pkg/storage"
	"github.com/gabriel-vasile/mimetype"
	"github.com/labstack/echo/v4"
)

// sniffLen is how many leading bytes are inspected to pick a content type.
const sniffLen = 3072

// UploadedFile describes a stored picture in upload responses.
type UploadedFile struct {
	Filename     string `json:"filename"`
	OriginalName string `json:"originalName"`
	Size         int64  `json:"size"`
	Mimetype     string `json:"mimetype"`
}

// PictureStore moves pictures between multipart requests, the blob store and
// streamed responses.
type PictureStore struct {
	blobs   storage.BlobStore
	maxSize int64
}

func NewPictureStore(blobs storage.BlobStore, maxSize int64) *PictureStore {
	return &PictureStore{blobs: blobs, maxSize: maxSize}
}

// formFile returns the single file sent under field.
func (p *PictureStore) formFile(c echo.Context, field string) (*multipart.FileHeader, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, echo.ErrStatusRequestEntityTooLarge) {
			return nil, err
		}
		return nil, echo.NewHTTPError(http.StatusBadRequest, field+" is required")
	}
	if fh.Size > p.maxSize {
		return nil, echo.NewHTTPError(http.StatusRequestEntityTooLarge, "File too large")
	}
	return fh, nil
}

// save stores the file under its content-addressed name.
func (p *PictureStore) save(c echo.Context, fh *multipart.FileHeader) (*UploadedFile, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, internalError(err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, p.maxSize+1))
	if err != nil {
		return nil, internalError(err)
	}
	if int64(len(data)) > p.maxSize {
		return nil, echo.NewHTTPError(http.StatusRequestEntityTooLarge, "File too large")
	}

	name := storage.ObjectName(data, fh.Filename)
	if err := p.blobs.Save(c.Request().Context(), name, bytes.NewReader(data)); err != nil {
		return nil, internalError(err)
	}
	return &UploadedFile{
		Filename:     name,
		OriginalName: fh.Filename,
		Size:         int64(len(data)),
		Mimetype:     mimetype.Detect(data).String(),
	}, nil
}

// send streams the named blob with a content type sniffed from its head.
// missing is the message used when the store has no such blob.
func (p *PictureStore) send(c echo.Context, name, missing string) error {
	rc, err := p.blobs.Open(c.Request().Context(), name)
	if errors.Is(err, storage.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, missing)
	}
	if err != nil {
		return internalError(err)
	}
	defer rc.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(rc, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return internalError(fmt.Errorf("read %s: %w", name, err))
	}
	head = head[:n]

	return c.Stream(http.StatusOK, mimetype.Detect(head).String(), io.MultiReader(bytes.NewReader(head), rc))
}
