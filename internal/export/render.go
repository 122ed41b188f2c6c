package export

import (
	"fmt"
	"io"
)

// ParseFormat validates a user-supplied format string.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatCSV, FormatExcel, FormatPDF:
		return Format(s), nil
	default:
		return "", fmt.Errorf("ParseFormat: unknown format %q", s)
	}
}

// ContentType returns the MIME type for a rendered report.
func (f Format) ContentType() string {
	switch f {
	case FormatExcel:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatPDF:
		return "application/pdf"
	default:
		return "text/csv"
	}
}

// Render writes the report in the requested format.
func Render(w io.Writer, format Format, r *Report) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, r)
	case FormatExcel:
		return WriteExcel(w, r)
	case FormatPDF:
		return WritePDF(w, r)
	default:
		return fmt.Errorf("Render: unknown format %q", format)
	}
}
