package datasource

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	orberrors "github.com/matzehuels/orbit/pkg/errors"
	"github.com/matzehuels/orbit/pkg/hierarchy"
)

// reconnectDelay is the pause between websocket reconnect attempts.
const reconnectDelay = 2 * time.Second

// StreamSource keeps a websocket open to a snapshot stream and delivers
// every received tree to a callback. The connection reconnects after
// failures until the context is cancelled.
type StreamSource struct {
	url    string
	logger *log.Logger
	dialer *websocket.Dialer
}

// StreamOptions configures a StreamSource.
type StreamOptions struct {
	URL    string
	Logger *log.Logger
	Dialer *websocket.Dialer
}

// NewStreamSource builds a stream source for the given websocket URL.
func NewStreamSource(opts StreamOptions) (*StreamSource, error) {
	if opts.URL == "" {
		return nil, orberrors.New(orberrors.ErrCodeInvalidConfig, "stream URL required")
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Dialer == nil {
		opts.Dialer = websocket.DefaultDialer
	}
	return &StreamSource{url: opts.URL, logger: opts.Logger, dialer: opts.Dialer}, nil
}

// Run connects and delivers trees to onTree until ctx is cancelled. Decode
// failures skip the message; connection failures reconnect after a pause.
// Run returns nil on cancellation.
func (s *StreamSource) Run(ctx context.Context, onTree func(*hierarchy.Tree)) error {
	for {
		if err := s.runOnce(ctx, onTree); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			s.logger.Warn("stream disconnected", "url", s.url, "err", err)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(reconnectDelay):
		}
	}
}

func (s *StreamSource) runOnce(ctx context.Context, onTree func(*hierarchy.Tree)) error {
	conn, _, err := s.dialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return ClassifyFetchError(err)
	}
	defer conn.Close()
	s.logger.Info("stream connected", "url", s.url)

	// Unblock ReadMessage when the context dies.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return ClassifyFetchError(err)
		}
		t, err := hierarchy.UnmarshalTree(msg)
		if err != nil {
			s.logger.Warn("dropping undecodable snapshot", "err", err)
			continue
		}
		onTree(t)
	}
}
