package antivirus

import (
	"bufio"
	"context"
	"encoding/binary"
	"fmt"
	"net"
	"strings"
	"time"
)

// clamd rejects INSTREAM chunks above StreamMaxLength; 64KiB stays well below
const chunkSize = 64 << 10

// ClamAVScanner streams files to a clamd daemon
type ClamAVScanner struct {
	address string // host:port or a unix socket path
	timeout time.Duration
}

var _ Scanner = (*ClamAVScanner)(nil)

// NewClamAVScanner creates a ClamAV scanner.
// address: TCP "localhost:3310" or Unix socket "/var/run/clamav/clamd.sock"
func NewClamAVScanner(address string, timeout time.Duration) *ClamAVScanner {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ClamAVScanner{address: address, timeout: timeout}
}

func (c *ClamAVScanner) Name() string {
	return "clamav"
}

func (c *ClamAVScanner) network() string {
	if strings.HasPrefix(c.address, "/") {
		return "unix"
	}
	return "tcp"
}

func (c *ClamAVScanner) dial(ctx context.Context, timeout time.Duration) (net.Conn, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, c.network(), c.address)
	if err != nil {
		return nil, err
	}
	deadline := time.Now().Add(timeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(deadline) {
		deadline = dl
	}
	_ = conn.SetDeadline(deadline)
	return conn, nil
}

// Available sends PING and expects PONG
func (c *ClamAVScanner) Available(ctx context.Context) bool {
	conn, err := c.dial(ctx, 5*time.Second)
	if err != nil {
		return false
	}
	defer conn.Close()

	if _, err := conn.Write([]byte("zPING\x00")); err != nil {
		return false
	}
	reply, err := bufio.NewReader(conn).ReadString(0)
	if err != nil {
		return false
	}
	return strings.TrimRight(reply, "\x00") == "PONG"
}

// Scan sends data with the zINSTREAM command
func (c *ClamAVScanner) Scan(ctx context.Context, filename string, data []byte) (ScanResult, error) {
	result := ScanResult{ScannerName: c.Name()}

	conn, err := c.dial(ctx, c.timeout)
	if err != nil {
		return result, fmt.Errorf("%w: connect to clamd: %v", ErrScanFailed, err)
	}
	defer conn.Close()

	w := bufio.NewWriter(conn)
	if _, err := w.WriteString("zINSTREAM\x00"); err != nil {
		return result, fmt.Errorf("%w: send command: %v", ErrScanFailed, err)
	}

	var size [4]byte
	for off := 0; off < len(data); off += chunkSize {
		end := min(off+chunkSize, len(data))
		binary.BigEndian.PutUint32(size[:], uint32(end-off))
		if _, err := w.Write(size[:]); err != nil {
			return result, fmt.Errorf("%w: send chunk: %v", ErrScanFailed, err)
		}
		if _, err := w.Write(data[off:end]); err != nil {
			return result, fmt.Errorf("%w: send chunk: %v", ErrScanFailed, err)
		}
	}
	// zero length chunk ends the stream
	binary.BigEndian.PutUint32(size[:], 0)
	if _, err := w.Write(size[:]); err != nil {
		return result, fmt.Errorf("%w: send end marker: %v", ErrScanFailed, err)
	}
	if err := w.Flush(); err != nil {
		return result, fmt.Errorf("%w: flush: %v", ErrScanFailed, err)
	}

	reply, err := bufio.NewReader(conn).ReadString(0)
	if err != nil && reply == "" {
		return result, fmt.Errorf("%w: read reply for %s: %v", ErrScanFailed, filename, err)
	}
	return parseReply(result, reply)
}

// parseReply interprets clamd replies:
//
//	stream: OK
//	stream: Eicar-Signature FOUND
//	stream: <message> ERROR
func parseReply(result ScanResult, reply string) (ScanResult, error) {
	reply = strings.TrimSpace(strings.TrimRight(reply, "\x00"))
	_, status, ok := strings.Cut(reply, ":")
	if !ok {
		return result, fmt.Errorf("%w: unexpected reply %q", ErrScanFailed, reply)
	}
	status = strings.TrimSpace(status)

	switch {
	case status == "OK":
		return result, nil
	case strings.HasSuffix(status, " FOUND"):
		result.Infected = true
		result.ThreatName = strings.TrimSuffix(status, " FOUND")
		return result, nil
	case strings.HasSuffix(status, " ERROR"):
		return result, fmt.Errorf("%w: %s", ErrScanFailed, strings.TrimSuffix(status, " ERROR"))
	default:
		return result, fmt.Errorf("%w: unexpected reply %q", ErrScanFailed, reply)
	}
}
