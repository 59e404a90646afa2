// The recorder is influenced by the work done by goji and chi libraries.
// See their respective licenses for more information:
// https://github.com/zenazn/goji/blob/master/LICENSE
// https://github.com/go-chi/chi/blob/master/LICENSE

package httpmux

import (
	"net/http"
)

const notWritten = -1

// recorder records the status code and size of a response. Optional interfaces of the
// underlying writer are reachable with http.ResponseController through Unwrap.
type recorder struct {
	http.ResponseWriter
	size   int
	status int
}

// newRecorder returns w if it's already a recorder.
func newRecorder(w http.ResponseWriter) *recorder {
	if rec, ok := w.(*recorder); ok {
		return rec
	}
	return &recorder{ResponseWriter: w, size: notWritten, status: http.StatusOK}
}

func (r *recorder) Status() int {
	return r.status
}

func (r *recorder) Written() bool {
	return r.size != notWritten
}

func (r *recorder) Size() int {
	return max(r.size, 0)
}

func (r *recorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func (r *recorder) WriteHeader(code int) {
	if !r.Written() {
		r.size = 0
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *recorder) Write(buf []byte) (n int, err error) {
	if !r.Written() {
		r.size = 0
		r.ResponseWriter.WriteHeader(r.status)
	}
	n, err = r.ResponseWriter.Write(buf)
	r.size += n
	return
}

// Flush implements http.Flusher. It's a no-op if the underlying writer does not support it.
func (r *recorder) Flush() {
	if !r.Written() {
		r.size = 0
	}
	_ = http.NewResponseController(r.ResponseWriter).Flush()
}

var _ http.Flusher = (*recorder)(nil)
