package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/happyhackingspace/hmm"
	"github.com/happyhackingspace/hmm/internal/batch"
	"github.com/happyhackingspace/hmm/internal/storage"
)

// SequenceRequest is the body of POST /v1/forward and POST /v1/viterbi.
type SequenceRequest struct {
	Observations []string `json:"observations" binding:"required"`
}

// BatchRequest is the body of POST /v1/batch.
type BatchRequest struct {
	Op        string     `json:"op" binding:"required,oneof=forward viterbi"`
	Sequences [][]string `json:"sequences" binding:"required,min=1"`
}

// ForwardResponse is returned by POST /v1/forward. Likelihood is null when
// the model has a zero-sum row and the result is NaN.
type ForwardResponse struct {
	Likelihood *float64 `json:"likelihood"`
}

// ViterbiResponse is returned by POST /v1/viterbi. LogProb is null when the
// sequence cannot be produced by the model.
type ViterbiResponse struct {
	States  []string `json:"states"`
	LogProb *float64 `json:"log_prob"`
}

// BatchItem is one entry of a BatchResponse.
type BatchItem struct {
	Likelihood *float64 `json:"likelihood,omitempty"`
	States     []string `json:"states,omitempty"`
	LogProb    *float64 `json:"log_prob,omitempty"`
	Error      string   `json:"error,omitempty"`
	Code       string   `json:"code,omitempty"`
}

// BatchResponse is returned by POST /v1/batch, one item per input sequence.
type BatchResponse struct {
	Results []BatchItem `json:"results"`
}

// ErrorResponse is returned with every non-2xx status.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status string `json:"status"`
	States int    `json:"states"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok", States: s.model.NumStates()})
}

func (s *Server) handleModel(c *gin.Context) {
	body, err := json.Marshal(storage.FromModel(s.model))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
			Error: fmt.Sprintf("model tables cannot be encoded: %v", err),
			Code:  "MODEL_NOT_FINITE",
		})
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

func (s *Server) handleForward(c *gin.Context) {
	var req SequenceRequest
	if !s.bindSequence(c, &req) {
		return
	}
	start := time.Now()
	p, err := s.model.Forward(req.Observations)
	s.metrics.observe(string(batch.OpForward), len(req.Observations), time.Since(start).Seconds(), outcome(err))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, ForwardResponse{Likelihood: finite(p)})
}

func (s *Server) handleViterbi(c *gin.Context) {
	var req SequenceRequest
	if !s.bindSequence(c, &req) {
		return
	}
	start := time.Now()
	path, err := s.model.Decode(req.Observations)
	s.metrics.observe(string(batch.OpViterbi), len(req.Observations), time.Since(start).Seconds(), outcome(err))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, ViterbiResponse{States: path.States, LogProb: finite(path.LogProb)})
}

func (s *Server) handleBatch(c *gin.Context) {
	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "INVALID_REQUEST"})
		return
	}
	if len(req.Sequences) > s.cfg.MaxBatchSize {
		c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, ErrorResponse{
			Error: fmt.Sprintf("batch has %d sequences, limit is %d", len(req.Sequences), s.cfg.MaxBatchSize),
			Code:  "BATCH_TOO_LARGE",
		})
		return
	}
	for i, seq := range req.Sequences {
		if len(seq) > s.cfg.MaxSequenceLength {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, ErrorResponse{
				Error: fmt.Sprintf("sequence %d has %d observations, limit is %d", i, len(seq), s.cfg.MaxSequenceLength),
				Code:  "SEQUENCE_TOO_LONG",
			})
			return
		}
	}

	op := batch.Op(req.Op)
	start := time.Now()
	results, err := batch.Run(c.Request.Context(), s.model, req.Sequences, batch.Options{Op: op, Workers: s.cfg.Workers})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			c.Abort()
			return
		}
		abortWithError(c, err)
		return
	}
	elapsed := time.Since(start).Seconds() / float64(len(results))

	resp := BatchResponse{Results: make([]BatchItem, len(results))}
	for i, r := range results {
		s.metrics.observe(req.Op, len(req.Sequences[i]), elapsed, outcome(r.Err))
		if r.Err != nil {
			_, code := classify(r.Err)
			resp.Results[i] = BatchItem{Error: r.Err.Error(), Code: code}
			continue
		}
		switch op {
		case batch.OpForward:
			resp.Results[i] = BatchItem{Likelihood: finite(r.Likelihood)}
		case batch.OpViterbi:
			resp.Results[i] = BatchItem{States: r.Path.States, LogProb: finite(r.Path.LogProb)}
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) bindSequence(c *gin.Context, req *SequenceRequest) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "INVALID_REQUEST"})
		return false
	}
	if len(req.Observations) > s.cfg.MaxSequenceLength {
		c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, ErrorResponse{
			Error: fmt.Sprintf("sequence has %d observations, limit is %d", len(req.Observations), s.cfg.MaxSequenceLength),
			Code:  "SEQUENCE_TOO_LONG",
		})
		return false
	}
	return true
}

func abortWithError(c *gin.Context, err error) {
	status, code := classify(err)
	c.AbortWithStatusJSON(status, ErrorResponse{Error: err.Error(), Code: code})
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, hmm.ErrEmptyInput):
		return http.StatusBadRequest, "EMPTY_INPUT"
	case errors.Is(err, hmm.ErrUnknownSymbol):
		return http.StatusBadRequest, "UNKNOWN_SYMBOL"
	}
	return http.StatusInternalServerError, "INTERNAL"
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	_, code := classify(err)
	return strings.ToLower(code)
}

// finite returns nil for values JSON cannot carry.
func finite(v float64) *float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}
	return &v
}
