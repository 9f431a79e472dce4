package models

// FormatPDF is the only document format the analyzer accepts.
const FormatPDF = "pdf"

// Document is an uploaded resume held in memory for the duration of one request.
type Document struct {
	Data     []byte
	Format   string
	Filename string
}
