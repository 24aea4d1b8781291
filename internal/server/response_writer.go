package server

import "github.com/gin-gonic/gin"

// responseWriter counts body bytes so the access log can report them
// without relying on gin's own size, which is -1 for bodiless responses.
type responseWriter struct {
	gin.ResponseWriter
	size int
}

func newResponseWriter(w gin.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.size += n
	return n, err
}

func (rw *responseWriter) WriteString(s string) (int, error) {
	n, err := rw.ResponseWriter.WriteString(s)
	rw.size += n
	return n, err
}

// Size returns the number of body bytes written
func (rw *responseWriter) Size() int {
	return rw.size
}
