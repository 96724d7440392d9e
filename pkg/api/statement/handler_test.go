package statement

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"finstat/pkg/core/pipeline"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type upload struct {
	field, name string
	data        []byte
}

func multipartRequest(t *testing.T, url string, files ...upload) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for _, f := range files {
		part, err := w.CreateFormFile(f.field, f.name)
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, url, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func statementCSV(period, revenue string) []byte {
	return []byte(strings.Join([]string{
		"会計期間," + period,
		"業種コード,3650",
		"資産合計,200000000",
		"純資産合計,80000000",
		"売上高," + revenue,
		"営業利益,10000000",
		"当期純利益,6000000",
		"営業活動によるキャッシュ・フロー,9000000",
		"投資活動によるキャッシュ・フロー,-4000000",
		"財務活動によるキャッシュ・フロー,-2000000",
	}, "\n") + "\n")
}

func newTestRouter(limit int64) *gin.Engine {
	cfg := pipeline.DefaultConfig()
	cfg.MaxDocumentBytes = limit
	return NewRouter(NewHandler(pipeline.New(cfg, nil), nil))
}

func serve(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorBody {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Error
}

func TestHealth(t *testing.T) {
	rec := serve(newTestRouter(0), httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestParse(t *testing.T) {
	req := multipartRequest(t, "/api/statements/parse",
		upload{"file", "fy2023.csv", statementCSV("2023/4/1～2024/3/31", "100000000")})
	rec := serve(newTestRouter(0), req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body, "balance_sheet")
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name   string
		limit  int64
		files  []upload
		status int
		code   string
	}{
		{
			name:   "missing file",
			status: http.StatusBadRequest,
			code:   "bad_request",
		},
		{
			name:   "unsupported format",
			files:  []upload{{"file", "blob.bin", []byte{0x00, 0x01, 0x02, 0x03}}},
			status: http.StatusUnsupportedMediaType,
			code:   "unsupported_format",
		},
		{
			name:   "over the ceiling",
			limit:  64,
			files:  []upload{{"file", "big.csv", statementCSV("2023/4/1～2024/3/31", "1")}},
			status: http.StatusRequestEntityTooLarge,
			code:   "document_too_large",
		},
		{
			name:   "broken pdf",
			files:  []upload{{"file", "report.pdf", []byte("%PDF-1.7\nnot really a pdf")}},
			status: http.StatusUnprocessableEntity,
			code:   "extraction_failed",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files := tt.files
			if files == nil {
				files = []upload{{"other", "x.csv", []byte("a,b")}}
			}
			rec := serve(newTestRouter(tt.limit), multipartRequest(t, "/api/statements/parse", files...))
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Equal(t, tt.code, decodeError(t, rec).Code)
		})
	}
}

func TestAnalyze(t *testing.T) {
	req := multipartRequest(t, "/api/statements/analyze",
		upload{"file", "fy2023.csv", statementCSV("2023/4/1～2024/3/31", "250000000")},
		upload{"previous", "fy2022.csv", statementCSV("2022/4/1～2023/3/31", "100000000")})
	rec := serve(newTestRouter(0), req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp AnalyzeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Result)
	require.NotNil(t, resp.Statement)
	assert.Equal(t, "3650", resp.Statement.Company.IndustryCode)
}

func TestAnalyze_Formats(t *testing.T) {
	for _, tc := range []struct {
		format, contentType, marker string
	}{
		{"markdown", "text/markdown", "# Financial analysis"},
		{"html", "text/html", "<h1"},
	} {
		t.Run(tc.format, func(t *testing.T) {
			req := multipartRequest(t, "/api/statements/analyze?format="+tc.format,
				upload{"file", "fy2023.csv", statementCSV("2023/4/1～2024/3/31", "100000000")})
			rec := serve(newTestRouter(0), req)

			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Contains(t, rec.Header().Get("Content-Type"), tc.contentType)
			assert.Contains(t, rec.Body.String(), tc.marker)
		})
	}
}

func TestBatch(t *testing.T) {
	req := multipartRequest(t, "/api/statements/batch",
		upload{"files", "good.csv", statementCSV("2023/4/1～2024/3/31", "100000000")},
		upload{"files", "bad.bin", []byte{0x00, 0x01}},
		upload{"files", "also-good.csv", statementCSV("2022/4/1～2023/3/31", "90000000")})
	rec := serve(newTestRouter(0), req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp struct {
		Results []struct {
			Index  int             `json:"index"`
			ID     string          `json:"id"`
			Result json.RawMessage `json:"result"`
			Error  string          `json:"error"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 3)

	assert.Equal(t, "good.csv", resp.Results[0].ID)
	assert.Empty(t, resp.Results[0].Error)
	assert.NotEmpty(t, resp.Results[0].Result)

	assert.Equal(t, "bad.bin", resp.Results[1].ID)
	assert.NotEmpty(t, resp.Results[1].Error)

	assert.Equal(t, 2, resp.Results[2].Index)
	assert.Empty(t, resp.Results[2].Error)
}

func TestBatch_OversizedFileFillsItsSlot(t *testing.T) {
	req := multipartRequest(t, "/api/statements/batch",
		upload{"files", "big.csv", statementCSV("2023/4/1～2024/3/31", "100000000")},
		upload{"files", "tiny.bin", []byte{0x00}})
	rec := serve(newTestRouter(64), req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "exceeds")
}

func TestBatch_NoFiles(t *testing.T) {
	rec := serve(newTestRouter(0), multipartRequest(t, "/api/statements/batch"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRecovery(t *testing.T) {
	router := newTestRouter(0)
	router.GET("/boom", func(*gin.Context) { panic("boom") })

	rec := serve(router, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal", decodeError(t, rec).Code)
}
