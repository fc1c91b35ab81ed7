package rpc

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gorilla/mux"
	logging "github.com/inconshreveable/log15"
	"github.com/ulule/limiter"
	"github.com/ulule/limiter/drivers/middleware/stdlib"
	"github.com/ulule/limiter/drivers/store/memory"

	"boscoin.io/gasmanager/lib/common"
	"boscoin.io/gasmanager/lib/metrics"
)

func RecoverMiddleware(printStack bool) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if p := recover(); p != nil {
					err := panicError(p)
					WriteJSON(w, http.StatusInternalServerError, err)
					log.Error("recovered a panic", "error", err, "uri", r.RequestURI)
					if printStack {
						debug.PrintStack()
					}
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// RateLimitMiddleware limits every client address to `rate`, formatted like
// `100-S` or `1000-M`. An empty rate disables the limit.
func RateLimitMiddleware(rate string) (mux.MiddlewareFunc, error) {
	if len(rate) < 1 {
		return func(next http.Handler) http.Handler { return next }, nil
	}

	parsed, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		return nil, err
	}

	m := stdlib.NewMiddleware(limiter.New(memory.NewStore(), parsed))
	log.Debug("rate limit applied", "rate", rate, "limit", parsed.Limit, "period", parsed.Period)

	return m.Handler, nil
}

type responseLogWriter struct {
	w      http.ResponseWriter
	status int
	size   int
}

func (l *responseLogWriter) Header() http.Header {
	return l.w.Header()
}

func (l *responseLogWriter) Write(b []byte) (int, error) {
	if l.status == 0 {
		l.status = http.StatusOK
	}
	size, err := l.w.Write(b)
	l.size += size
	return size, err
}

func (l *responseLogWriter) WriteHeader(s int) {
	l.w.WriteHeader(s)
	l.status = s
}

func (l *responseLogWriter) Status() int {
	if l.status == 0 {
		return http.StatusOK
	}
	return l.status
}

func (l *responseLogWriter) Size() int {
	return l.size
}

func (l *responseLogWriter) Flush() {
	if f, ok := l.w.(http.Flusher); ok {
		f.Flush()
	}
}

var HeaderKeyFiltered = []string{
	"Content-Length",
	"Content-Type",
	"Accept",
	"Accept-Encoding",
	"User-Agent",
}

func inStrings(l []string, s string) bool {
	for _, i := range l {
		if i == s {
			return true
		}
	}
	return false
}

// AccessLogMiddleware logs every request and its response under one id and
// records the request metrics by route.
func AccessLogMiddleware(logger logging.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			begin := metrics.API.Begin()
			uid := common.GenerateUUID()

			uri := r.RequestURI
			if uri == "" {
				uri = r.URL.RequestURI()
			}

			endpoint := r.URL.Path
			if route := mux.CurrentRoute(r); route != nil {
				if tpl, err := route.GetPathTemplate(); err == nil {
					endpoint = tpl
				}
			}

			header := http.Header{}
			for key, value := range r.Header {
				if inStrings(HeaderKeyFiltered, key) {
					continue
				}
				header[key] = value
			}

			logger.Debug(
				"request",
				"content-length", r.ContentLength,
				"content-type", r.Header.Get("Content-Type"),
				"headers", header,
				"id", uid,
				"method", r.Method,
				"proto", r.Proto,
				"remote", r.RemoteAddr,
				"uri", uri,
				"user-agent", r.UserAgent(),
			)

			writer := &responseLogWriter{w: w}
			defer func() {
				metrics.API.ObserveRequest(begin, endpoint, r.Method, writer.Status())
			}()
			next.ServeHTTP(writer, r)

			logger.Debug(
				"response",
				"id", uid,
				"status", writer.Status(),
				"size", writer.Size(),
				"elapsed", time.Since(begin),
			)
		})
	}
}
