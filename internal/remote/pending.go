package remote

import (
	"context"
	"os"
)

// Pending is the in-flight result of Client.Request. Exactly one of a temp
// file path or an error is delivered once the fetch completes.
type Pending struct {
	done chan struct{}
	path string
	err  error
}

func newPending() *Pending {
	return &Pending{done: make(chan struct{})}
}

func (p *Pending) resolve(path string, err error) {
	p.path, p.err = path, err
	close(p.done)
}

// Done is closed once the result is available.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the PDF has been written to its temp file or the fetch
// failed. The caller owns the returned file and must remove it.
//
// If ctx ends first, Wait returns ctx.Err() and the file, if one is
// eventually written, is removed in the background.
func (p *Pending) Wait(ctx context.Context) (string, error) {
	select {
	case <-p.done:
		return p.path, p.err
	case <-ctx.Done():
		go func() {
			<-p.done
			if p.path != "" {
				_ = os.Remove(p.path)
			}
		}()
		return "", ctx.Err()
	}
}
