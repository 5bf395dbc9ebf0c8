package transport

import "net/http"

// maxBodyBytes bounds a create-game/join-game/submit-move request body.
// None of the spec's payloads are large; this is generous headroom over
// the biggest Snake move JSON while still catching pathological input.
const maxBodyBytes = 1 << 20 // 1 MiB

// limitBody wraps r.Body in an http.MaxBytesReader so oversized bodies fail
// fast during decode rather than exhausting memory.
func limitBody(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		h(w, r)
	}
}
