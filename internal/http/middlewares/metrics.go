package middlewares

import (
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/dropDatabas3/fleethub/internal/metrics"
)

// WithMetrics instrumenta requests HTTP. Sin metrics.Register previo es un no-op.
// El label path es el template de chi cuando existe; si no, el path con
// segmentos dinámicos colapsados.
func WithMetrics() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if metrics.HTTPRequestsTotal == nil {
				next.ServeHTTP(w, r)
				return
			}
			method := strings.ToUpper(r.Method)
			inflight := metrics.HTTPInflight.WithLabelValues(method)
			inflight.Inc()
			defer inflight.Dec()

			started := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			label := routePattern(r)
			if label == "" || label == "/*" {
				label = normalizePath(r.URL.Path)
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			metrics.HTTPRequestDuration.WithLabelValues(method, label).Observe(time.Since(started).Seconds())
			metrics.HTTPRequestsTotal.WithLabelValues(method, label, strconv.Itoa(status)).Inc()
		})
	}
}

var (
	uuidSegmentRE = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F-]{4}-[0-9a-fA-F-]{4,}$`)
	hexSegmentRE  = regexp.MustCompile(`^[0-9a-fA-F]{16,}$`)
)

// normalizePath colapsa uuids, hex largos y números a ":param".
func normalizePath(p string) string {
	p, _, _ = strings.Cut(p, "?")
	segs := strings.FieldsFunc(p, func(c rune) bool { return c == '/' })
	for i, seg := range segs {
		if dynamicSegment(seg) {
			segs[i] = ":param"
		}
	}
	return "/" + strings.Join(segs, "/")
}

func dynamicSegment(seg string) bool {
	if len(seg) > 48 || uuidSegmentRE.MatchString(seg) || hexSegmentRE.MatchString(seg) {
		return true
	}
	_, err := strconv.Atoi(seg)
	return err == nil
}
