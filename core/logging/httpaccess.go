package logging

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// NewHTTPAccessLogHandler creates a handler that will log a message after a
// request has been served.
func NewHTTPAccessLogHandler(logger Logger, level logrus.Level, message string) func(h http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			startTime := time.Now()
			rl := &responseLogger{
				ResponseWriter: w,
			}

			h.ServeHTTP(rl, r)

			status := rl.status
			if status == 0 {
				status = http.StatusOK
			}
			fields := logrus.Fields{
				"duration": time.Since(startTime).Seconds(),
				"ip":       r.RemoteAddr,
				"method":   r.Method,
				"size":     rl.size,
				"status":   status,
				"uri":      r.RequestURI,
			}
			if v := r.Referer(); v != "" {
				fields["referrer"] = v
			}
			if v := r.UserAgent(); v != "" {
				fields["user-agent"] = v
			}
			logger.WithFields(fields).Log(level, message)
		})
	}
}

type responseLogger struct {
	http.ResponseWriter
	status int
	size   int
}

func (l *responseLogger) Write(b []byte) (int, error) {
	size, err := l.ResponseWriter.Write(b)
	l.size += size
	return size, err
}

func (l *responseLogger) WriteHeader(s int) {
	l.ResponseWriter.WriteHeader(s)
	if l.status == 0 {
		l.status = s
	}
}
