package server

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"holamundo/internal/domain"
	"holamundo/internal/export"
	"holamundo/internal/result"
	"holamundo/internal/service"
	"holamundo/internal/study"
)

// Generator runs the generation pipeline.
type Generator interface {
	Generate(ctx context.Context, req service.Request) (*service.Run, error)
}

// Feedbacker produces sentence and comprehension feedback.
type Feedbacker interface {
	study.SentenceFeedbacker
	study.ComprehensionFeedbacker
}

type Handler struct {
	gen          Generator
	fb           Feedbacker
	defaultLevel string
	testMode     bool
	logger       *zap.Logger
}

func NewHandler(gen Generator, fb Feedbacker, defaultLevel string, testMode bool, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{gen: gen, fb: fb, defaultLevel: defaultLevel, testMode: testMode, logger: logger}
}

// NewRouter wires the API routes.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), h.accessLog)
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })
	api := r.Group("/api")
	api.POST("/generate", h.Generate)
	api.POST("/feedback/sentence", h.SentenceFeedback)
	api.POST("/feedback/comprehension", h.ComprehensionFeedback)
	return r
}

type generateRequest struct {
	Input    string `json:"input"`
	Level    string `json:"level"`
	TestMode *bool  `json:"test_mode"`
	Format   string `json:"format"`
}

type generateResponse struct {
	Run       *service.Run `json:"run"`
	Malformed []string     `json:"malformed,omitempty"`
}

type sentenceRequest struct {
	Sentence   string `json:"sentence"`
	TargetWord string `json:"target_word"`
	Level      string `json:"level"`
	TestMode   *bool  `json:"test_mode"`
}

type comprehensionRequest struct {
	Question       string `json:"question"`
	StudentAnswer  string `json:"student_answer"`
	ExpectedAnswer string `json:"expected_answer"`
	Level          string `json:"level"`
	TestMode       *bool  `json:"test_mode"`
}

func (h *Handler) Generate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, http.StatusBadRequest, err)
		return
	}
	run, err := h.gen.Generate(c.Request.Context(), service.Request{
		Input:    req.Input,
		Level:    h.level(req.Level),
		TestMode: h.mode(req.TestMode),
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	entries := result.DecodeAll(run.Results)
	if req.Format == "markdown" {
		c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(export.Markdown(run, entries)))
		return
	}
	resp := generateResponse{Run: run}
	for _, e := range entries {
		if e.Err != nil {
			resp.Malformed = append(resp.Malformed, e.Name)
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) SentenceFeedback(c *gin.Context) {
	var req sentenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(req.Sentence) == "" || strings.TrimSpace(req.TargetWord) == "" {
		h.fail(c, http.StatusBadRequest, errors.New("sentence and target_word are required"))
		return
	}
	text, err := h.fb.SentenceFeedback(c.Request.Context(), req.Sentence, req.TargetWord, h.level(req.Level), h.mode(req.TestMode))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"feedback": text})
}

func (h *Handler) ComprehensionFeedback(c *gin.Context) {
	var req comprehensionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(req.Question) == "" || strings.TrimSpace(req.StudentAnswer) == "" {
		h.fail(c, http.StatusBadRequest, errors.New("question and student_answer are required"))
		return
	}
	text, err := h.fb.ComprehensionFeedback(c.Request.Context(), req.Question, req.StudentAnswer, req.ExpectedAnswer, h.level(req.Level), h.mode(req.TestMode))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"feedback": text})
}

func (h *Handler) level(l string) string {
	if l = strings.TrimSpace(l); l != "" {
		return l
	}
	return h.defaultLevel
}

func (h *Handler) mode(m *bool) bool {
	if m != nil {
		return *m
	}
	return h.testMode
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrEmptyInput):
		h.fail(c, http.StatusBadRequest, err)
	case errors.Is(err, domain.ErrSourceUnavailable), errors.Is(err, domain.ErrBackend):
		h.fail(c, http.StatusBadGateway, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		h.fail(c, http.StatusGatewayTimeout, err)
	default:
		h.fail(c, http.StatusInternalServerError, err)
	}
}

func (h *Handler) fail(c *gin.Context, status int, err error) {
	h.logger.Warn("request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Int("status", status),
		zap.Error(err))
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

func (h *Handler) accessLog(c *gin.Context) {
	c.Next()
	h.logger.Debug("request",
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Int("status", c.Writer.Status()))
}
