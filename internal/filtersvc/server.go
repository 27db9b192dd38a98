package filtersvc

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/flarebyte/textsafety/internal/metrics"
)

// DefaultThreshold applies when a request carries no threshold.
const DefaultThreshold = 0.5

// CheckRequest is the body of POST /api/check.
type CheckRequest struct {
	Text      *string  `json:"text"`
	Threshold *float64 `json:"threshold"`
}

// CheckResponse is the verdict for one text. RiskCategory is null when the
// text is safe.
type CheckResponse struct {
	IsSafe       bool               `json:"is_safe"`
	RiskCategory *string            `json:"risk_category"`
	RiskScore    float64            `json:"risk_score"`
	RiskDetails  map[string]float64 `json:"risk_details"`
}

// Server answers safety checks with a Classifier.
type Server struct {
	classifier Classifier
	threshold  float64
	log        *zap.Logger
	metrics    *metrics.Service
	registry   *prometheus.Registry
}

// Option customises a Server.
type Option func(*Server)

func WithThreshold(t float64) Option { return func(s *Server) { s.threshold = t } }

func WithLogger(l *zap.Logger) Option { return func(s *Server) { s.log = l } }

// WithRegistry exposes reg on /metrics and records service metrics on it.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(s *Server) { s.registry = reg }
}

func NewServer(c Classifier, opts ...Option) *Server {
	s := &Server{classifier: c, threshold: DefaultThreshold, log: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	if s.registry != nil {
		s.metrics = metrics.NewService(s.registry)
	}
	return s
}

// Router builds the gin engine with the service routes.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.accessLog())
	r.GET("/health", s.health)
	r.POST("/api/check", s.check)
	if s.registry != nil {
		r.GET("/metrics", gin.WrapH(metrics.Handler(s.registry)))
	}
	return r
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)))
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) check(c *gin.Context) {
	var req CheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "invalid request body: " + err.Error()})
		return
	}
	if req.Text == nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "text is required"})
		return
	}
	c.JSON(http.StatusOK, s.Check(c.Request.Context(), *req.Text, req.Threshold))
}

// Check classifies text and applies threshold, or the server default when
// nil. A classifier failure yields an unsafe model_error verdict.
func (s *Server) Check(ctx context.Context, text string, threshold *float64) CheckResponse {
	start := time.Now()
	risks, err := s.classifier.Classify(ctx, text)
	if s.metrics != nil {
		s.metrics.CheckSeconds.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		s.log.Error("classifier failed", zap.Error(err), zap.Bool("timeout", errors.Is(err, errScriptTimeout)))
		if s.metrics != nil {
			s.metrics.ClassifyError.Inc()
			s.metrics.Checks.WithLabelValues(CategoryModelError).Inc()
		}
		cat := CategoryModelError
		return CheckResponse{IsSafe: false, RiskCategory: &cat, RiskScore: 1.0, RiskDetails: map[string]float64{}}
	}

	t := s.threshold
	if threshold != nil {
		t = *threshold
	}
	v := EvaluateRisk(risks, t)
	resp := CheckResponse{IsSafe: v.IsSafe, RiskScore: v.Score, RiskDetails: risks}
	verdict := "safe"
	if !v.IsSafe {
		verdict = "unsafe"
		if v.Category != "" {
			cat := v.Category
			resp.RiskCategory = &cat
		}
	}
	if s.metrics != nil {
		s.metrics.Checks.WithLabelValues(verdict).Inc()
	}
	return resp
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.log.Info("filter service listening", zap.String("addr", addr), zap.Float64("threshold", s.threshold))

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
