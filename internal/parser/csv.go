package parser

import (
	"bytes"
	"encoding/csv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/KaramelBytes/tabloom-cli/internal/table"
)

// sniffSize is the number of bytes inspected for delimiter detection.
const sniffSize = 4096

var candidateDelimiters = []rune{',', ';', '\t', '|', ':'}

type csvLoader struct{}

func (csvLoader) CanLoad(filename string) bool {
	ext := DataExt(filename)
	return ext == ".csv" || ext == ".tsv"
}

func (csvLoader) Load(path string, opt Options) (*table.Table, error) {
	raw, err := readAll(path)
	if err != nil {
		return nil, &FileLoadError{Path: path, Reason: "read failed", Err: err}
	}
	text, encoding := DecodeText(raw)
	opt.logger().Debug("csv decoded", "path", path, "encoding", encoding)

	delim := opt.Delimiter
	if delim == 0 {
		if DataExt(path) == ".tsv" {
			delim = '\t'
		} else {
			delim = SniffDelimiter(text)
		}
		opt.logger().Debug("delimiter detected", "path", path, "delimiter", string(delim))
	}

	r := csv.NewReader(strings.NewReader(text))
	r.Comma = delim
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, &FileLoadError{Path: path, Reason: "parse csv", Err: err}
	}
	if len(records) == 0 {
		return nil, &FileLoadError{Path: path, Reason: "no header row", Err: ErrEmptyFile}
	}
	return buildTable(path, records[0], records[1:], opt)
}

// DecodeText strips a UTF-8 byte order mark and falls back to Windows-1252 when the content is
// not valid UTF-8. The second result names the encoding used.
func DecodeText(raw []byte) (string, string) {
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))
	if utf8.Valid(raw) {
		return string(raw), "utf-8"
	}
	out, err := charmap.Windows1252.NewDecoder().Bytes(raw)
	if err != nil {
		return strings.ToValidUTF8(string(raw), "�"), "utf-8"
	}
	return string(out), "windows-1252"
}

// SniffDelimiter picks the candidate delimiter occurring most often in the first 4 KiB of text.
// Ties go to the earlier candidate in , ; tab | : order; comma when none occurs.
func SniffDelimiter(text string) rune {
	sample := text
	if len(sample) > sniffSize {
		sample = sample[:sniffSize]
	}
	best, bestN := ',', 0
	for _, d := range candidateDelimiters {
		if n := strings.Count(sample, string(d)); n > bestN {
			best, bestN = d, n
		}
	}
	return best
}
