package extract

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	appErr "github.com/voxdesk/voxdesk/internal/pkg/errors"
)

func extractPlainText(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: read %s: %v", appErr.ErrExtraction, path, err)
	}
	if utf8.Valid(raw) {
		return strings.TrimSpace(string(raw)), nil
	}
	// Latin-1 fallback: every byte maps 1:1 onto the same code point.
	runes := make([]rune, 0, len(raw))
	for _, b := range raw {
		runes = append(runes, rune(b))
	}
	return strings.TrimSpace(string(runes)), nil
}
