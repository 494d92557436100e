package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/hyperjump/docproc/internal/models"
	"github.com/hyperjump/docproc/internal/pipeline"
	"github.com/hyperjump/docproc/internal/validate"
	"github.com/hyperjump/docproc/pkg/utils"
	"go.uber.org/zap"
)

const (
	uploadField     = "file"
	multipartMemory = 8 << 20
)

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if limit := s.config.MaxUploadBytes(); limit > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, limit)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.respondError(w, http.StatusBadRequest, "File too large")
			return
		}
		s.respondError(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		// A part named "file" without a filename is parsed as a plain value.
		if _, ok := r.MultipartForm.Value[uploadField]; ok {
			s.respondError(w, http.StatusBadRequest, "Invalid file type")
			return
		}
		s.respondError(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer file.Close()

	payload, err := io.ReadAll(file)
	if err != nil {
		s.logger.Error("read upload failed", zap.Error(err))
		s.respondError(w, http.StatusBadRequest, "No file provided")
		return
	}
	s.logger.Debug("upload received", zap.String("filename", header.Filename), zap.Int("bytes", len(payload)))

	result, err := s.pipeline.Process(r.Context(), payload, header.Filename)
	if err != nil {
		status, message := errorResponse(err)
		if status >= http.StatusInternalServerError {
			s.logger.Error("document processing failed", zap.String("filename", header.Filename), zap.Error(err))
		}
		s.respondError(w, status, message)
		return
	}
	s.logger.Debug("document processed",
		zap.String("filename", header.Filename),
		zap.Int("lines", len(result.Lines)),
		zap.String("preview", utils.Truncate(result.Text, 80)),
	)
	s.respondJSON(w, http.StatusOK, result)
}

// errorResponse maps a pipeline failure to a status code and client message.
func errorResponse(err error) (int, string) {
	detail := err.Error()
	var perr *pipeline.Error
	if errors.As(err, &perr) && perr.Err != nil {
		detail = perr.Err.Error()
	}
	switch {
	case errors.Is(err, pipeline.ErrInvalidInput):
		return http.StatusBadRequest, "Invalid file type"
	case errors.Is(err, pipeline.ErrStagingFailed):
		return http.StatusInternalServerError, "Staging failed: " + detail
	case errors.Is(err, pipeline.ErrExtractionFailed):
		return http.StatusInternalServerError, "OCR failed: " + detail
	default:
		return http.StatusInternalServerError, detail
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := models.Status{
		Engine:       s.engineName,
		AllowedTypes: validate.Allowed(),
		MaxUploadMB:  s.config.MaxUploadMB,
	}
	if s.staging != nil {
		files, size, err := s.staging.Usage()
		if err != nil {
			s.logger.Error("status: staging usage failed", zap.Error(err))
			s.respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		resp.Staging = models.StagingStatus{Naming: string(s.staging.Naming()), Files: files, Bytes: size}
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
