package gdata

import (
	"net/http"
	"sync"

	"context"

	"github.com/GNOME/libgdata-sub004/pkg/auth"
	"github.com/GNOME/libgdata-sub004/pkg/errors"
)

// DownloadStream reads a media document from a service. The connection
// opens on the first Read (or header accessor), so constructing a
// stream is free. Cancel the stream through its context; in-flight
// reads return ErrCanceled.
type DownloadStream struct {
	service *Service
	domain  *auth.Domain
	ctx     context.Context
	uri     string

	openOnce sync.Once
	openErr  error
	resp     *http.Response

	closeOnce sync.Once
}

// DownloadStream starts a lazy download of the media document at uri.
func (s *Service) DownloadStream(ctx context.Context, domain *auth.Domain, uri string) *DownloadStream {
	return &DownloadStream{service: s, domain: domain, ctx: ctx, uri: uri}
}

func (d *DownloadStream) open() error {
	d.openOnce.Do(func() {
		resp, err := d.service.send(d.ctx, d.domain, &request{method: http.MethodGet, uri: d.uri})
		if err != nil {
			d.openErr = err
			return
		}
		if err := d.service.checkResponse(resp); err != nil {
			resp.Body.Close()
			d.openErr = err
			return
		}
		d.resp = resp
	})
	return d.openErr
}

// Read implements io.Reader.
func (d *DownloadStream) Read(p []byte) (int, error) {
	if err := d.ctx.Err(); err != nil {
		return 0, errors.WrapCanceled(err)
	}
	if err := d.open(); err != nil {
		return 0, err
	}
	n, err := d.resp.Body.Read(p)
	if err != nil && d.ctx.Err() != nil {
		err = errors.WrapCanceled(d.ctx.Err())
	}
	return n, err
}

// ContentType opens the stream if necessary and returns the media
// type the server declared.
func (d *DownloadStream) ContentType() (string, error) {
	if err := d.open(); err != nil {
		return "", err
	}
	return d.resp.Header.Get("Content-Type"), nil
}

// ContentLength opens the stream if necessary and returns the declared
// length, or -1 when unknown.
func (d *DownloadStream) ContentLength() (int64, error) {
	if err := d.open(); err != nil {
		return 0, err
	}
	return d.resp.ContentLength, nil
}

// URI returns the stream's source.
func (d *DownloadStream) URI() string { return d.uri }

// Close implements io.Closer; it is idempotent and safe to call on a
// never-opened stream.
func (d *DownloadStream) Close() error {
	var err error
	d.closeOnce.Do(func() {
		// Don't trigger a connection just to close it.
		d.openOnce.Do(func() { d.openErr = errors.ErrCanceled })
		if d.resp != nil {
			err = d.resp.Body.Close()
		}
	})
	return err
}
