package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/agenthands/factcheck/internal/core"
	"github.com/agenthands/factcheck/internal/core/model"
	"github.com/agenthands/factcheck/internal/provider"
)

type Server struct {
	Evaluator *core.Evaluator
}

func NewServer(e *core.Evaluator) *Server {
	return &Server{Evaluator: e}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	r.POST("/evaluate", s.Evaluate)
	r.POST("/evaluate/pair", s.EvaluatePair)
	r.GET("/batches/:id/ranking", s.BatchRanking)
	r.DELETE("/batches/:id", s.DeleteBatch)
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		zap.L().Info("server: request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

func (s *Server) Evaluate(c *gin.Context) {
	var req core.BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	result, err := s.Evaluator.EvaluateBatch(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, core.ErrInvalidRequest) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		zap.L().Error("server: evaluate batch failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to evaluate batch"})
		return
	}

	c.JSON(http.StatusOK, result)
}

type PairRequest struct {
	Reference model.Paragraph `json:"reference"`
	Candidate model.Paragraph `json:"candidate"`
}

func (s *Server) EvaluatePair(c *gin.Context) {
	var req PairRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	rec, err := s.Evaluator.EvaluatePair(c.Request.Context(), req.Reference, req.Candidate)
	if err != nil {
		zap.L().Warn("server: evaluate pair failed", zap.Error(err))
		if errors.Is(err, provider.ErrUnavailable) {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to evaluate pair"})
		return
	}

	c.JSON(http.StatusOK, rec)
}

func (s *Server) BatchRanking(c *gin.Context) {
	if s.Evaluator.Driver == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Graph store not configured"})
		return
	}
	ranking, err := s.Evaluator.LoadRanking(c.Request.Context(), c.Param("id"))
	if err != nil {
		zap.L().Error("server: load ranking failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load ranking"})
		return
	}
	if len(ranking) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Batch not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"batch_id": c.Param("id"), "ranking": ranking})
}

func (s *Server) DeleteBatch(c *gin.Context) {
	if s.Evaluator.Driver == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Graph store not configured"})
		return
	}
	if err := s.Evaluator.DeleteBatch(c.Request.Context(), c.Param("id")); err != nil {
		zap.L().Error("server: delete batch failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete batch"})
		return
	}

	c.Status(http.StatusNoContent)
}
