// Package statement serves the document pipeline over HTTP.
package statement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"

	"finstat/pkg/core/analysis"
	"finstat/pkg/core/extract"
	"finstat/pkg/core/normalize"
	"finstat/pkg/core/pipeline"
	"finstat/pkg/core/report"
	coreStatement "finstat/pkg/core/statement"

	"github.com/gin-gonic/gin"
)

// MaxBatchFiles bounds the number of documents in one batch request.
const MaxBatchFiles = 20

// multipartOverhead is the request body allowance beyond the documents.
const multipartOverhead = 1 << 20

// Handler holds dependencies for the statement endpoints.
type Handler struct {
	Pipeline *pipeline.Pipeline
	Log      *slog.Logger
}

// NewHandler creates a new statement handler.
func NewHandler(p *pipeline.Pipeline, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{Pipeline: p, Log: log}
}

// NewRouter builds the engine with middleware, the health check and the
// statement routes.
func NewRouter(h *Handler) *gin.Engine {
	router := gin.New()
	router.MaxMultipartMemory = h.Pipeline.MaxDocumentBytes()
	router.Use(RequestID(), Recovery(h.Log), Logging(h.Log))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "finstat"})
	})
	h.Register(router.Group("/api/statements"))
	return router
}

// Register mounts the endpoints on group.
func (h *Handler) Register(group gin.IRouter) {
	group.POST("/parse", h.Parse)
	group.POST("/analyze", h.Analyze)
	group.POST("/batch", h.Batch)
}

// AnalyzeResponse is the body of a successful analysis.
type AnalyzeResponse struct {
	Statement *coreStatement.ParsedStatement `json:"statement"`
	Result    *analysis.AnalysisResult       `json:"result"`
}

// Parse handles POST /parse with a multipart "file".
func (h *Handler) Parse(c *gin.Context) {
	h.limitBody(c, 1)
	fh, err := h.upload(c, "file", true)
	if err != nil {
		h.fail(c, err)
		return
	}
	f, err := h.open(fh)
	if err != nil {
		h.fail(c, err)
		return
	}
	defer f.Close()
	stmt, err := h.Pipeline.ParseReader(c.Request.Context(), f, hintOf(fh))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stmt)
}

// Analyze handles POST /analyze with a multipart "file" and an optional
// prior-year "previous". ?format=markdown or ?format=html returns the
// rendered report instead of JSON.
func (h *Handler) Analyze(c *gin.Context) {
	h.limitBody(c, 2)
	doc, err := h.document(c, "file", true)
	if err != nil {
		h.fail(c, err)
		return
	}
	prev, err := h.document(c, "previous", false)
	if err != nil {
		h.fail(c, err)
		return
	}
	doc.ID = c.PostForm("id")
	doc.Previous = prev

	stmt, res, err := h.Pipeline.Analyze(c.Request.Context(), *doc)
	if err != nil && res == nil {
		h.fail(c, err)
		return
	}
	if err != nil {
		h.Log.Warn("analysis not stored", "request_id", c.GetString(requestIDKey), "error", err)
	}

	switch c.Query("format") {
	case "markdown", "md":
		md, err := report.Markdown(stmt, res)
		if err != nil {
			h.fail(c, err)
			return
		}
		c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(md))
	case "html":
		md, err := report.Markdown(stmt, res)
		if err == nil {
			md, err = report.HTML(md)
		}
		if err != nil {
			h.fail(c, err)
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(md))
	default:
		c.JSON(http.StatusOK, AnalyzeResponse{Statement: stmt, Result: res})
	}
}

// Batch handles POST /batch with up to MaxBatchFiles multipart "files".
// Every file gets a result slot in upload order.
func (h *Handler) Batch(c *gin.Context) {
	h.limitBody(c, MaxBatchFiles)
	form, err := c.MultipartForm()
	if err != nil {
		h.fail(c, badRequest("multipart form required: %v", err))
		return
	}
	files := form.File["files"]
	if len(files) == 0 {
		h.fail(c, badRequest("no files uploaded"))
		return
	}
	if len(files) > MaxBatchFiles {
		h.fail(c, badRequest("at most %d files per batch", MaxBatchFiles))
		return
	}

	docs := make([]pipeline.Document, 0, len(files))
	for _, fh := range files {
		doc, err := h.read(c.Request.Context(), fh)
		if err != nil {
			doc = &pipeline.Document{Hint: hintOf(fh), Err: err}
		}
		doc.ID = fh.Filename
		docs = append(docs, *doc)
	}

	results := h.Pipeline.AnalyzeDocuments(c.Request.Context(), docs)
	c.JSON(http.StatusOK, gin.H{"results": results})
}

// =============================================================================
// HELPERS
// =============================================================================

// limitBody caps the request body at files documents plus form overhead.
func (h *Handler) limitBody(c *gin.Context, files int64) {
	limit := h.Pipeline.MaxDocumentBytes()*files + multipartOverhead
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
}

// upload returns the form file field. A missing optional field yields nil.
func (h *Handler) upload(c *gin.Context, field string, required bool) (*multipart.FileHeader, error) {
	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) && !required {
		return nil, nil
	}
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, err
		}
		return nil, badRequest("multipart field %q required", field)
	}
	return fh, nil
}

// document reads the uploaded form file field. A missing optional field
// yields nil.
func (h *Handler) document(c *gin.Context, field string, required bool) (*pipeline.Document, error) {
	fh, err := h.upload(c, field, required)
	if err != nil || fh == nil {
		return nil, err
	}
	return h.read(c.Request.Context(), fh)
}

// open rejects an upload whose declared size is over the ceiling before
// opening it.
func (h *Handler) open(fh *multipart.FileHeader) (multipart.File, error) {
	if fh.Size > h.Pipeline.MaxDocumentBytes() {
		return nil, &pipeline.DocumentTooLargeError{Size: fh.Size, Limit: h.Pipeline.MaxDocumentBytes()}
	}
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	return f, nil
}

func (h *Handler) read(ctx context.Context, fh *multipart.FileHeader) (*pipeline.Document, error) {
	f, err := h.open(fh)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := h.Pipeline.ReadDocument(ctx, f)
	if err != nil {
		return nil, err
	}
	return &pipeline.Document{Data: data, Hint: hintOf(fh)}, nil
}

func hintOf(fh *multipart.FileHeader) extract.Hint {
	return extract.Hint{Filename: fh.Filename, MIMEType: fh.Header.Get("Content-Type")}
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrorBody is the error object of every failed request.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps the error body.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

type requestError struct{ msg string }

func (e *requestError) Error() string { return e.msg }

func badRequest(format string, args ...any) error {
	return &requestError{msg: fmt.Sprintf(format, args...)}
}

// Status maps a pipeline error to its HTTP status and error code.
func Status(err error) (int, string) {
	var (
		reqErr      *requestError
		tooLarge    *pipeline.DocumentTooLargeError
		bodyLimit   *http.MaxBytesError
		unsupported *extract.UnsupportedFormatError
		extraction  *extract.ExtractionError
		validation  *coreStatement.ValidationError
		amount      *normalize.AmountParseError
		date        *normalize.DateParseError
	)
	switch {
	case errors.As(err, &reqErr):
		return http.StatusBadRequest, "bad_request"
	case errors.As(err, &tooLarge), errors.As(err, &bodyLimit):
		return http.StatusRequestEntityTooLarge, "document_too_large"
	case errors.As(err, &unsupported):
		return http.StatusUnsupportedMediaType, "unsupported_format"
	case errors.As(err, &extraction):
		return http.StatusUnprocessableEntity, "extraction_failed"
	case errors.As(err, &validation), errors.As(err, &amount), errors.As(err, &date):
		return http.StatusUnprocessableEntity, "invalid_statement"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "cancelled"
	}
	return http.StatusInternalServerError, "internal"
}

func (h *Handler) fail(c *gin.Context, err error) {
	status, code := Status(err)
	h.Log.Warn("request failed",
		"request_id", c.GetString(requestIDKey),
		"path", c.Request.URL.Path,
		"status", status,
		"error", err)
	writeError(c, status, code, err.Error())
}

func writeError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Error: ErrorBody{Code: code, Message: message}})
}
