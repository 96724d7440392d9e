package config

import (
	"net/http"
	"net/url"
	"sort"

	appConfig "finstat/pkg/config"
	"finstat/pkg/core/benchmark"

	"github.com/gin-gonic/gin"
)

// Response is the effective configuration as served to clients.
type Response struct {
	MaxDocumentBytes int64              `json:"max_document_bytes"`
	DefaultUnit      string             `json:"default_unit"`
	TolerancePct     float64            `json:"tolerance_pct"`
	ToleranceAbs     float64            `json:"tolerance_abs"`
	RatioThreshold   float64            `json:"ratio_threshold"`
	GrowthThreshold  float64            `json:"growth_threshold"`
	Weights          map[string]float64 `json:"benchmark_weights,omitempty"`
	Workers          int                `json:"workers"`
	Database         string             `json:"database,omitempty"`
	Industries       []IndustryEntry    `json:"industries"`
}

// IndustryEntry names one benchmark industry.
type IndustryEntry struct {
	Code string `json:"code"`
	Name string `json:"name"`
	Year int    `json:"year"`
}

// Handler holds dependencies for config endpoints
type Handler struct {
	Config  appConfig.Config
	Catalog *benchmark.Catalog
}

// NewHandler creates a new config handler
func NewHandler(cfg appConfig.Config, catalog *benchmark.Catalog) *Handler {
	return &Handler{Config: cfg, Catalog: catalog}
}

// Register mounts GET /config and GET /industries on group.
func (h *Handler) Register(group gin.IRouter) {
	group.GET("/config", h.HandleConfig)
	group.GET("/industries", h.HandleIndustries)
}

func (h *Handler) HandleConfig(c *gin.Context) {
	// Add CORS headers for local dev
	c.Header("Access-Control-Allow-Origin", "*")

	cfg := h.Config
	c.JSON(http.StatusOK, Response{
		MaxDocumentBytes: cfg.MaxDocumentBytes,
		DefaultUnit:      string(cfg.DefaultUnit),
		TolerancePct:     cfg.Tolerance.Pct,
		ToleranceAbs:     cfg.Tolerance.Abs,
		RatioThreshold:   cfg.Thresholds.Ratio,
		GrowthThreshold:  cfg.Thresholds.Growth,
		Weights:          cfg.Weights,
		Workers:          cfg.Workers,
		Database:         maskURL(cfg.DatabaseURL),
		Industries:       h.industries(),
	})
}

func (h *Handler) HandleIndustries(c *gin.Context) {
	c.Header("Access-Control-Allow-Origin", "*")
	c.JSON(http.StatusOK, gin.H{"industries": h.industries()})
}

func (h *Handler) industries() []IndustryEntry {
	entries := []IndustryEntry{}
	if h.Catalog == nil {
		return entries
	}
	for _, d := range h.Catalog.All() {
		entries = append(entries, IndustryEntry{Code: d.Code, Name: d.Name, Year: d.Year})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Code < entries[j].Code })
	return entries
}

// maskURL hides credentials in a database URL.
func maskURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "(configured)"
	}
	if u.User != nil {
		u.User = url.User(u.User.Username())
	}
	return u.Redacted()
}
