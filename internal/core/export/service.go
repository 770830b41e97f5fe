package export

import (
	"fmt"
	"io"
	"strings"
)

// Service picks an exporter by format
type Service struct {
	exporters map[Format]Exporter
}

// NewService creates a new export service
func NewService() *Service {
	return &Service{
		exporters: map[Format]Exporter{
			FormatExcel: NewExcelExporter(),
			FormatPDF:   NewPDFExporter(),
		},
	}
}

// ParseFormat maps a query value to a Format. Empty means xlsx.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "xlsx", "excel":
		return FormatExcel, nil
	case "pdf":
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("unsupported export format: %s", s)
	}
}

// Export writes stmt in the given format
func (s *Service) Export(stmt *Statement, format Format, writer io.Writer) error {
	exporter, ok := s.exporters[format]
	if !ok {
		return fmt.Errorf("unsupported export format: %s", format)
	}
	if err := exporter.Export(stmt, writer); err != nil {
		return fmt.Errorf("%s export failed: %w", format, err)
	}
	return nil
}

// GetContentType returns the content type for the given format
func (s *Service) GetContentType(format Format) string {
	if e, ok := s.exporters[format]; ok {
		return e.GetContentType()
	}
	return "application/octet-stream"
}

// GetFileExtension returns the file extension for the given format
func (s *Service) GetFileExtension(format Format) string {
	if e, ok := s.exporters[format]; ok {
		return e.GetFileExtension()
	}
	return ".bin"
}
