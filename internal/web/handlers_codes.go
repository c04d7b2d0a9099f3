package web

import (
	"errors"
	"io"
	"math"
	"net/http"
	"strconv"

	"github.com/JonMunkholm/codeimport/internal/codes"
	"github.com/JonMunkholm/codeimport/internal/logging"
)

// oversizedFile stands in for an upload cut off by the body limit. Its size
// is above any configured maximum, so the checker reports the size error.
type oversizedFile struct{}

func (oversizedFile) Size() int64                  { return math.MaxInt64 }
func (oversizedFile) Open() (io.ReadCloser, error) { return nil, errors.New("upload exceeded body limit") }

// formFile parses a multipart upload and returns its "file" part. A body
// over the limit yields an oversizedFile rather than an error.
func (s *Server) formFile(w http.ResponseWriter, r *http.Request) (codes.File, string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBody)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return oversizedFile{}, "", nil
		}
		return nil, "", errors.Join(errNoFile, err)
	}

	fhs := r.MultipartForm.File["file"]
	if len(fhs) == 0 {
		return nil, "", errNoFile
	}
	header := fhs[0]
	return codes.FromMultipart(header), header.Filename, nil
}

// cleanupForm removes multipart temporary files.
func cleanupForm(r *http.Request) {
	if r.MultipartForm != nil {
		_ = r.MultipartForm.RemoveAll()
	}
}

// handleCheckFile validates an activation code file without storing it.
// 200 with the codes, or 422 with the localized error message.
func (s *Server) handleCheckFile(w http.ResponseWriter, r *http.Request) {
	defer cleanupForm(r)

	f, name, err := s.formFile(w, r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	tag := s.requestLanguage(r)
	rows, err := s.service.CheckFile(r.Context(), f, tag)

	var checkErr *codes.CheckError
	switch {
	case err == nil:
		logging.FromContext(r.Context()).Debug("activation code file accepted",
			"file_name", name,
			"codes", len(rows),
		)
		writeJSON(w, r, http.StatusOK, codes.NewResult(rows, nil))
	case errors.As(err, &checkErr):
		logging.FromContext(r.Context()).Info("activation code file rejected",
			"file_name", name,
			"kind", checkErr.Kind.String(),
			"lang", tag.String(),
		)
		writeJSON(w, r, http.StatusUnprocessableEntity, codes.NewResult(nil, err))
	default:
		respondError(w, r, err)
	}
}

// handleDownloadTemplate serves the CSV template linked from format errors.
func (s *Server) handleDownloadTemplate(w http.ResponseWriter, r *http.Request) {
	body := codes.Template()

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+codes.TemplateFileName+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		logging.FromContext(r.Context()).Warn("template write failed", "error", err)
	}
}

