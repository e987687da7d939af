package receiver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"

	"github.com/V4T54L/udp-logview/internal/adapter/metrics"
	"github.com/V4T54L/udp-logview/internal/adapter/parser"
	"github.com/V4T54L/udp-logview/internal/domain"
)

// DefaultReadBufferSize is the largest datagram payload read per message.
// Longer datagrams are truncated by the transport.
const DefaultReadBufferSize = 2048

// UDPReceiver reads one log record per datagram and hands parsed records to a
// queue. It is the only goroutine that touches the socket.
type UDPReceiver struct {
	conn    *net.UDPConn
	queue   domain.RecordQueue
	metrics *metrics.ViewerMetrics
	logger  *slog.Logger
	bufSize int
	decoder *encoding.Decoder
}

// NewUDPReceiver binds addr immediately. A bind failure is returned to the
// caller, which cannot serve anything without the endpoint.
func NewUDPReceiver(addr string, bufSize int, queue domain.RecordQueue, m *metrics.ViewerMetrics, logger *slog.Logger) (*UDPReceiver, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve listen address %s: %w", addr, err)
	}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to bind UDP %s: %w", addr, err)
	}
	if bufSize <= 0 {
		bufSize = DefaultReadBufferSize
	}

	return &UDPReceiver{
		conn:    conn,
		queue:   queue,
		metrics: m,
		logger:  logger.With("component", "udp_receiver"),
		bufSize: bufSize,
		decoder: unicode.UTF8.NewDecoder(),
	}, nil
}

// Addr returns the bound local address.
func (r *UDPReceiver) Addr() net.Addr {
	return r.conn.LocalAddr()
}

// Run reads datagrams until ctx is cancelled. Cancelling closes the socket,
// which unblocks the pending read.
func (r *UDPReceiver) Run(ctx context.Context) {
	stop := context.AfterFunc(ctx, func() {
		r.conn.Close()
	})
	defer stop()

	r.logger.Info("listening for log datagrams", "addr", r.Addr().String())

	buf := make([]byte, r.bufSize)
	for {
		n, src, err := r.conn.ReadFromUDP(buf)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				r.logger.Info("receiver stopped")
				return
			}
			r.countDatagram("read_error")
			r.logger.Warn("failed to read datagram", "error", err)
			continue
		}
		if r.metrics != nil {
			r.metrics.BytesTotal.Add(float64(n))
		}

		raw := r.decode(buf[:n])
		if raw == "" {
			r.countDatagram("empty")
			continue
		}

		rec := parser.Parse(raw)
		if !rec.WellFormed {
			if r.metrics != nil {
				r.metrics.MalformedTotal.Inc()
			}
			r.logger.Debug("accepted malformed record", "src", src.String(), "raw", raw)
		}
		r.queue.Push(rec)
		r.countDatagram("accepted")
	}
}

// Close releases the socket. Run returns once the pending read fails.
func (r *UDPReceiver) Close() error {
	return r.conn.Close()
}

// decode turns a payload into text, replacing invalid UTF-8 rather than
// failing, and strips the trailing line ending.
func (r *UDPReceiver) decode(payload []byte) string {
	text, err := r.decoder.Bytes(payload)
	if err != nil {
		text = []byte(strings.ToValidUTF8(string(payload), "\uFFFD"))
	}
	return strings.TrimRight(string(text), "\r\n")
}

func (r *UDPReceiver) countDatagram(status string) {
	if r.metrics == nil {
		return
	}
	r.metrics.DatagramsTotal.WithLabelValues(status).Inc()
	if status == "accepted" {
		r.metrics.QueueDepth.Set(float64(r.queue.Len()))
	}
}
