package extract

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	appErr "github.com/voxdesk/voxdesk/internal/pkg/errors"
)

func extractPDF(path string) (text string, err error) {
	// The pdf package panics on some malformed inputs; fold those into the
	// extraction error so one bad file cannot take down an upload batch.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("%w: pdf parse: %v", appErr.ErrExtraction, r)
		}
	}()

	file, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: open pdf: %v", appErr.ErrExtraction, err)
	}
	defer file.Close()

	var parts []string
	fonts := make(map[string]*pdf.Font)
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(fonts)
		if err != nil {
			return "", fmt.Errorf("%w: pdf page %d: %v", appErr.ErrExtraction, i, err)
		}
		pageText = strings.TrimSpace(pageText)
		if pageText != "" {
			parts = append(parts, pageText)
		}
	}
	return strings.Join(parts, "\n\n"), nil
}
