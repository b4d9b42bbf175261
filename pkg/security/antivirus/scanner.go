package antivirus

import (
	"context"
	"errors"
)

// ErrScanFailed wraps every failure to obtain a verdict
var ErrScanFailed = errors.New("antivirus: scan failed")

// ScanResult contains the result of a malware scan
type ScanResult struct {
	Infected    bool
	ThreatName  string
	ScannerName string
}

// Scanner is the interface for pluggable antivirus implementations.
// Callers reject the file when Scan returns an error.
type Scanner interface {
	Scan(ctx context.Context, filename string, data []byte) (ScanResult, error)
	Name() string
	Available(ctx context.Context) bool
}

// NoOpScanner reports every file clean. Used when no clamd is configured.
type NoOpScanner struct{}

var _ Scanner = (*NoOpScanner)(nil)

func NewNoOpScanner() *NoOpScanner {
	return &NoOpScanner{}
}

func (n *NoOpScanner) Scan(_ context.Context, _ string, _ []byte) (ScanResult, error) {
	return ScanResult{ScannerName: n.Name()}, nil
}

func (n *NoOpScanner) Name() string {
	return "noop"
}

func (n *NoOpScanner) Available(_ context.Context) bool {
	return true
}
