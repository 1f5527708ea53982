// Package server exposes trial analysis over HTTP.
package server

import (
	"errors"
	"mime"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	cmj "github.com/lucasjlepore/cmj-analyzer"
	"github.com/lucasjlepore/cmj-analyzer/export"
	"github.com/lucasjlepore/cmj-analyzer/loader"
	"github.com/sirupsen/logrus"
)

// maxBodyBytes caps uploaded trials.
const maxBodyBytes = 32 << 20

// NewRouter builds the gin engine with health and analysis routes.
func NewRouter(cfg *Config, log logrus.FieldLogger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(log), cors.New(corsConfig(cfg.CORSOrigins)))

	h := &handler{analysis: cfg.Analysis, log: log}
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	v1 := r.Group("/api/v1")
	v1.POST("/analyze", h.analyze)
	return r
}

func corsConfig(origins []string) cors.Config {
	cc := cors.Config{
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		MaxAge:       12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cc.AllowAllOrigins = true
	} else {
		cc.AllowOrigins = origins
	}
	return cc
}

func requestLogger(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		entry := log.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
		})
		if c.Writer.Status() >= http.StatusInternalServerError {
			entry.Error("request failed")
			return
		}
		entry.Debug("request served")
	}
}

type handler struct {
	analysis cmj.Config
	log      logrus.FieldLogger
}

// analyze accepts a trial as JSON (default) or CSV (Content-Type text/csv).
// Query parameters filter_hz and sample_rate override the service defaults.
func (h *handler) analyze(c *gin.Context) {
	cfg := h.analysis
	if raw := c.Query("filter_hz"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "filter_hz must be a number"})
			return
		}
		cfg.FilterCutoffHz = v
	}
	opts := loader.Options{Format: loader.FormatJSON}
	if raw := c.Query("sample_rate"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "sample_rate must be a number"})
			return
		}
		opts.SampleRate = v
	}
	if mt, _, err := mime.ParseMediaType(c.GetHeader("Content-Type")); err == nil && mt == "text/csv" {
		opts.Format = loader.FormatCSV
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "read body: " + err.Error()})
		return
	}

	trial, err := loader.Parse("", body, opts)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	a, err := cmj.Analyze(trial, cfg)
	if err != nil {
		var inputErr *cmj.InputError
		if errors.As(err, &inputErr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": inputErr.Error(), "field": inputErr.Field})
			return
		}
		h.log.WithError(err).Error("analysis failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "analysis failed"})
		return
	}

	h.log.WithFields(logrus.Fields{
		"athlete_id": a.AthleteID,
		"samples":    a.SampleCount,
		"valid":      a.Validity.IsValid,
		"flags":      a.Validity.Flags,
	}).Info("trial analyzed")
	c.JSON(http.StatusOK, export.BuildPayload(a, trial))
}
