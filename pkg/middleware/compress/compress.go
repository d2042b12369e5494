package compress

import (
	"net/http"

	"github.com/klauspost/compress/gzhttp"
)

// DefaultMinSize is the smallest response body that gets gzip encoded.
const DefaultMinSize = 1000

// Wrap returns h gzip-encoding responses of at least minSize bytes for
// clients that accept it.
func Wrap(h http.Handler, minSize int) (http.Handler, error) {
	if minSize <= 0 {
		minSize = DefaultMinSize
	}
	wrapper, err := gzhttp.NewWrapper(gzhttp.MinSize(minSize))
	if err != nil {
		return nil, err
	}
	return wrapper(h), nil
}
