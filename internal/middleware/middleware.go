package middleware

import (
	"net/http"
	"strconv"

	"github.com/voicedesk/orchestrator/internal/metrics"
	"github.com/voicedesk/orchestrator/pkg/logger_i"
)

type requestResponseStruct struct {
	writer     http.ResponseWriter
	req        *http.Request
	badRequest failureStruct
	logger     *logger_i.Logger
}

type failureStruct struct {
	isBadRequest bool
	httpCode     int
	errorMessage string
}

// Chain wraps every route with trace injection, bearer auth, per-IP rate
// limiting and request metrics. It is built once at the composition root
// so the rate limiter state is shared across routes.
type Chain struct {
	limiter *IPRateLimiter
	logger  *logger_i.Logger
}

func NewChain(limiter *IPRateLimiter) *Chain {
	return &Chain{
		limiter: limiter,
		logger:  logger_i.NewLogger("middleware"),
	}
}

func (c *Chain) Wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &metrics.HttpStatusRecorder{ResponseWriter: w, Status: 200}
		re := c.processRequest(requestResponseStruct{req: r, writer: rec})

		if re.badRequest.isBadRequest {
			c.handleBadRequest(re)
			return
		}
		next(rec, re.req)

		metrics.HttpRequestsTotal.WithLabelValues(r.URL.Path, strconv.Itoa(rec.Status)).Inc()
	}
}

func (c *Chain) processRequest(re requestResponseStruct) requestResponseStruct {
	re.logger = c.logger
	re = injectTrace(re)
	re = authenticate(re)
	if re.badRequest.isBadRequest {
		return re
	}
	re = c.rateLimit(re)
	return re
}
