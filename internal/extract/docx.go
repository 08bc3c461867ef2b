package extract

import (
	"fmt"
	"strings"

	"github.com/unidoc/unioffice/document"

	appErr "github.com/voxdesk/voxdesk/internal/pkg/errors"
)

func extractDocx(path string) (string, error) {
	doc, err := document.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: open docx: %v", appErr.ErrExtraction, err)
	}
	defer doc.Close()

	var parts []string
	for _, para := range doc.Paragraphs() {
		text := paragraphText(para)
		if text != "" {
			parts = append(parts, text)
		}
	}
	for _, table := range doc.Tables() {
		for _, row := range table.Rows() {
			for _, cell := range row.Cells() {
				var cellParts []string
				for _, para := range cell.Paragraphs() {
					if text := paragraphText(para); text != "" {
						cellParts = append(cellParts, text)
					}
				}
				if len(cellParts) > 0 {
					parts = append(parts, strings.Join(cellParts, "\n"))
				}
			}
		}
	}
	return strings.Join(parts, "\n\n"), nil
}

func paragraphText(para document.Paragraph) string {
	var sb strings.Builder
	for _, run := range para.Runs() {
		sb.WriteString(run.Text())
	}
	return strings.TrimSpace(sb.String())
}
