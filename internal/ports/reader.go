package ports

import "context"

// CodeReader supplies raw decoded strings, one per physical scan. The
// engine does not care whether the source is a camera pipeline, an
// uploaded image decoder, or a simulated generator. Next returns io.EOF
// when the stream ends.
type CodeReader interface {
	Next(ctx context.Context) (string, error)
	Close() error
}
