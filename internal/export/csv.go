package export

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"

	"github.com/shinoburc/drivelog-export/internal/model"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Codec renders rows of formatted cells into delimited text and encodes
// it to bytes per the configured encoding.
type Codec struct {
	format model.FormatOptions
}

func NewCodec(format model.FormatOptions) *Codec {
	return &Codec{format: format}
}

// EncodeCell applies the quoting policy to one cell. Under minimal
// quoting a cell is wrapped only when it contains the delimiter, a double
// quote, or a line break; embedded quotes are doubled before wrapping.
func (c *Codec) EncodeCell(cell string) string {
	switch c.format.QuotePolicy {
	case model.QuoteAll:
		return `"` + strings.ReplaceAll(cell, `"`, `""`) + `"`
	case model.QuoteNone:
		return cell
	default:
		if strings.Contains(cell, string(c.format.Delimiter)) ||
			strings.Contains(cell, `"`) ||
			strings.ContainsAny(cell, "\r\n") {
			return `"` + strings.ReplaceAll(cell, `"`, `""`) + `"`
		}
		return cell
	}
}

// EncodeRow joins the encoded cells with the configured delimiter.
func (c *Codec) EncodeRow(cells []string) string {
	encoded := make([]string, len(cells))
	for i, cell := range cells {
		encoded[i] = c.EncodeCell(cell)
	}
	return strings.Join(encoded, string(c.format.Delimiter))
}

// GenerateCSV renders the header and data rows as one string. Rows join
// with the configured line ending; there is no trailing line ending.
func (c *Codec) GenerateCSV(header []string, rows [][]string) string {
	lines := make([]string, 0, len(rows)+1)
	if header != nil {
		lines = append(lines, c.EncodeRow(header))
	}
	for _, row := range rows {
		lines = append(lines, c.EncodeRow(row))
	}
	return strings.Join(lines, string(c.format.LineEnding))
}

// GenerateCSVBlob renders and byte-encodes the full output. UTF-8 with
// BOM prepends EF BB BF; Shift_JIS transcodes through x/text.
func (c *Codec) GenerateCSVBlob(header []string, rows [][]string) ([]byte, error) {
	return c.EncodeBytes(c.GenerateCSV(header, rows))
}

// EncodeBytes converts already-rendered CSV text to the target encoding.
func (c *Codec) EncodeBytes(text string) ([]byte, error) {
	switch c.format.Encoding {
	case model.EncodingUTF8:
		return []byte(text), nil
	case model.EncodingUTF8BOM:
		out := make([]byte, 0, len(utf8BOM)+len(text))
		out = append(out, utf8BOM...)
		return append(out, text...), nil
	case model.EncodingShiftJIS:
		encoded, _, err := transform.String(japanese.ShiftJIS.NewEncoder(), text)
		if err != nil {
			return nil, fmt.Errorf("shift_jis encoding failed: %w", err)
		}
		return []byte(encoded), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedEncoding, string(c.format.Encoding))
	}
}

// StreamProgress reports the position of one streamed chunk.
type StreamProgress struct {
	Current    int
	Total      int
	ChunkIndex int
	ChunkCount int
}

// GenerateCSVStream emits the header line first, then the data rows in
// chunks of chunkSize records, invoking fn once per emission. Chunks
// concatenated in order are byte-identical to GenerateCSV. A non-nil
// error from fn aborts the stream.
func (c *Codec) GenerateCSVStream(header []string, rows [][]string, chunkSize int, fn func(chunk string, progress StreamProgress) error) error {
	if chunkSize <= 0 {
		return fmt.Errorf("chunk size must be > 0, got %d", chunkSize)
	}

	total := len(rows)
	chunkCount := (total + chunkSize - 1) / chunkSize

	if header != nil {
		if err := fn(c.EncodeRow(header), StreamProgress{Total: total, ChunkCount: chunkCount}); err != nil {
			return err
		}
	}

	for i := 0; i < chunkCount; i++ {
		start := i * chunkSize
		end := start + chunkSize
		if end > total {
			end = total
		}
		lines := make([]string, 0, end-start)
		for _, row := range rows[start:end] {
			lines = append(lines, c.EncodeRow(row))
		}
		chunk := string(c.format.LineEnding) + strings.Join(lines, string(c.format.LineEnding))
		if header == nil && i == 0 {
			chunk = strings.Join(lines, string(c.format.LineEnding))
		}
		progress := StreamProgress{
			Current:    end,
			Total:      total,
			ChunkIndex: i + 1,
			ChunkCount: chunkCount,
		}
		if err := fn(chunk, progress); err != nil {
			return err
		}
	}
	return nil
}
