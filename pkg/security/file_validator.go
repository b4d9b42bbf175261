package security

import (
	"bytes"
	"errors"
	"net/http"
	"path/filepath"
	"strings"
)

var (
	ErrNoExtension    = errors.New("file has no extension")
	ErrNotPDF         = errors.New("only PDF files are supported")
	ErrContentSpoofed = errors.New("file content does not match extension")
)

// pdfMagic is the %PDF signature every PDF starts with
var pdfMagic = []byte("%PDF-")

// FileValidationResult contains the result of file validation
type FileValidationResult struct {
	Extension    string
	DetectedMIME string
}

// ValidatePDF runs three checks on an uploaded CV:
// 1. Extension must be .pdf
// 2. Content must start with the PDF magic bytes
// 3. Sniffed MIME type must be application/pdf
func ValidatePDF(filename string, data []byte) (FileValidationResult, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	result := FileValidationResult{Extension: ext}
	if ext == "" {
		return result, ErrNoExtension
	}
	if ext != ".pdf" {
		return result, ErrNotPDF
	}

	if !bytes.HasPrefix(data, pdfMagic) {
		return result, ErrContentSpoofed
	}

	result.DetectedMIME = http.DetectContentType(data)
	if result.DetectedMIME != "application/pdf" {
		return result, ErrContentSpoofed
	}
	return result, nil
}
