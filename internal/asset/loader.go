package asset

import (
	"bytes"
	"context"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/stepview/internal/engine/scene"
	"github.com/Faultbox/stepview/internal/logger"
)

// Loader resolves, downloads and decodes assets.
type Loader struct {
	client *Client
	log    *zap.Logger
}

// NewLoader creates a loader fetching through client.
func NewLoader(client *Client) *Loader {
	return &Loader{client: client, log: logger.Named("loader")}
}

// Load fetches the rendered asset for id and decodes it. Progress samples are
// sent to progress, when non-nil, without blocking: samples the consumer has
// no room for are dropped. Load does not close progress.
//
// Failures wrap ErrInvalidID, ErrTransport or ErrDecode.
func (l *Loader) Load(ctx context.Context, id string, progress chan<- Progress) (*scene.Graph, error) {
	start := time.Now()
	log := l.log.With(zap.String("asset", id))

	loc, err := l.client.DownloadLocation(ctx, id)
	if err != nil {
		return nil, err
	}

	data, err := l.download(ctx, loc.URL, progress)
	if err != nil {
		return nil, err
	}
	log.Debug("downloaded", zap.Int("bytes", len(data)))

	g, err := DecodeBytes(data)
	if err != nil {
		return nil, err
	}
	log.Info("asset decoded",
		zap.Int("nodes", g.Len()),
		zap.Int("meshes", len(g.Meshes(g.Root()))),
		zap.Duration("elapsed", time.Since(start)))
	return g, nil
}

func (l *Loader) download(ctx context.Context, url string, progress chan<- Progress) ([]byte, error) {
	resp, err := l.client.get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer l.client.closeBody(resp)

	pr := &progressReader{r: resp.Body, ch: progress, state: Progress{Total: resp.ContentLength}}
	pr.send()

	var buf bytes.Buffer
	if resp.ContentLength > 0 {
		buf.Grow(int(resp.ContentLength))
	}
	if _, err := io.Copy(&buf, pr); err != nil {
		return nil, transportErr("reading asset body: %v", err)
	}
	return buf.Bytes(), nil
}
