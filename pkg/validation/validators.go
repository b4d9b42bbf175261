package validation

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"go-jobmatch-backend/internal/domain"
)

var (
	// Letters, digits, spaces and common punctuation. No path separators.
	fileNameRegex = regexp.MustCompile(`^[\p{L}0-9 ._()\[\]-]+$`)
)

// RegisterValidators registers custom validators to the validator instance
func RegisterValidators(v *validator.Validate) {
	_ = v.RegisterValidation("match_label", MatchLabel)
	_ = v.RegisterValidation("no_emoji", NoEmoji)
	_ = v.RegisterValidation("pdf_filename", PDFFileName)
}

// New returns a validator with the custom rules registered
func New() *validator.Validate {
	v := validator.New()
	RegisterValidators(v)
	return v
}

// MatchLabel accepts only the fixed match quality vocabulary
func MatchLabel(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	for _, l := range domain.MatchLabels {
		if val == l {
			return true
		}
	}
	return false
}

// NoEmoji validates that a string does not contain emoji characters
func NoEmoji(fl validator.FieldLevel) bool {
	for _, r := range fl.Field().String() {
		if r > 0x1F000 {
			return false
		}
		if unicode.In(r, unicode.So, unicode.Sk) {
			return false
		}
	}
	return true
}

// PDFFileName accepts a plain file name ending in .pdf
func PDFFileName(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if val == "" || len(val) > 255 {
		return false
	}
	if !strings.EqualFold(filepath.Ext(val), ".pdf") {
		return false
	}
	return fileNameRegex.MatchString(val) && !strings.Contains(val, "..")
}
