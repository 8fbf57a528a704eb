package services

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf16"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PDFTextExtractor extracts plain text from PDF files with pdfcpu.
type PDFTextExtractor struct{}

// ExtractText returns the text of every page concatenated in page order.
// It returns ErrNoText when the document parses but holds no text, and a
// wrapped error for any parse failure, including pdfcpu panics.
func (PDFTextExtractor) ExtractText(filePath string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("pdfcpu panicked while reading %s: %v", filePath, r)
		}
	}()

	f, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	ctx, err := api.ReadValidateAndOptimize(f, conf)
	if err != nil {
		return "", fmt.Errorf("failed to read PDF: %w", err)
	}

	var sb strings.Builder
	for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
		sb.WriteString(extractPageText(ctx, pageNr))
	}

	text = sb.String()
	if strings.TrimSpace(text) == "" {
		return "", ErrNoText
	}
	return text, nil
}

// extractPageText returns the text of one page followed by a newline, or "" if
// the page has no readable text.
func extractPageText(ctx *model.Context, pageNr int) string {
	r, err := pdfcpu.ExtractPageContent(ctx, pageNr)
	if err != nil || r == nil {
		return ""
	}
	data, err := io.ReadAll(r)
	if err != nil || len(data) == 0 {
		return ""
	}
	text := textFromContentStream(data)
	if text == "" {
		return ""
	}
	return text + "\n"
}

// operand is a content stream operand the text scanner cares about.
type operand struct {
	str   string
	num   float64
	isStr bool
	isNum bool
}

// textFromContentStream interprets the text showing and positioning operators
// of a page content stream.
func textFromContentStream(data []byte) string {
	var sb strings.Builder
	var ops []operand

	newline := func() {
		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
	}
	space := func() {
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
	}
	writeStrings := func(kern bool) {
		for _, op := range ops {
			switch {
			case op.isStr:
				sb.WriteString(op.str)
			case kern && op.isNum && op.num < -200:
				sb.WriteByte(' ')
			}
		}
	}

	for i := 0; i < len(data); {
		c := data[i]
		switch {
		case isPDFSpace(c):
			i++
		case c == '%':
			for i < len(data) && data[i] != '\n' && data[i] != '\r' {
				i++
			}
		case c == '(':
			s, next := readLiteralString(data, i)
			ops = append(ops, operand{str: s, isStr: true})
			i = next
		case c == '<' && i+1 < len(data) && data[i+1] == '<':
			i += 2
		case c == '>' && i+1 < len(data) && data[i+1] == '>':
			i += 2
		case c == '<':
			s, next := readHexString(data, i)
			ops = append(ops, operand{str: s, isStr: true})
			i = next
		case c == '[' || c == ']' || c == '{' || c == '}':
			i++
		case c == '/':
			i = skipToken(data, i+1)
		default:
			start := i
			i = skipToken(data, i)
			if i == start {
				i++
				continue
			}
			tok := string(data[start:i])
			if n, err := strconv.ParseFloat(tok, 64); err == nil {
				ops = append(ops, operand{num: n, isNum: true})
				continue
			}
			switch tok {
			case "Tj":
				writeStrings(false)
			case "TJ":
				writeStrings(true)
			case "'", "\"":
				newline()
				writeStrings(false)
			case "T*", "ET":
				newline()
			case "Td", "TD":
				if len(ops) >= 2 && ops[len(ops)-1].isNum && ops[len(ops)-1].num != 0 {
					newline()
				} else {
					space()
				}
			case "Tm":
				space()
			case "ID":
				i = skipInlineImage(data, i)
			}
			ops = ops[:0]
		}
	}
	return normalizeText(sb.String())
}

func isPDFSpace(c byte) bool {
	return c == ' ' || c == '\n' || c == '\r' || c == '\t' || c == '\f' || c == 0
}

func isPDFDelimiter(c byte) bool {
	return strings.IndexByte("()<>[]{}/%", c) >= 0
}

func skipToken(data []byte, i int) int {
	for i < len(data) && !isPDFSpace(data[i]) && !isPDFDelimiter(data[i]) {
		i++
	}
	return i
}

// skipInlineImage advances past inline image data that follows an ID operator.
func skipInlineImage(data []byte, i int) int {
	for j := i; j+1 < len(data); j++ {
		if data[j] == 'E' && data[j+1] == 'I' &&
			(j == 0 || isPDFSpace(data[j-1])) &&
			(j+2 >= len(data) || isPDFSpace(data[j+2])) {
			return j + 2
		}
	}
	return len(data)
}

// readLiteralString decodes a (...) string starting at data[i] == '('.
func readLiteralString(data []byte, i int) (string, int) {
	var buf []byte
	depth := 0
	for i < len(data) {
		c := data[i]
		switch {
		case c == '(':
			if depth > 0 {
				buf = append(buf, c)
			}
			depth++
			i++
		case c == ')':
			depth--
			i++
			if depth == 0 {
				return decodeTextBytes(buf), i
			}
			buf = append(buf, c)
		case c == '\\' && i+1 < len(data):
			i++
			switch e := data[i]; e {
			case 'n':
				buf = append(buf, '\n')
			case 'r':
				buf = append(buf, '\r')
			case 't':
				buf = append(buf, '\t')
			case 'b', 'f':
			case '\r', '\n':
				// Line continuation.
				if e == '\r' && i+1 < len(data) && data[i+1] == '\n' {
					i++
				}
			default:
				if e >= '0' && e <= '7' {
					val := 0
					for n := 0; n < 3 && i < len(data) && data[i] >= '0' && data[i] <= '7'; n++ {
						val = val*8 + int(data[i]-'0')
						i++
					}
					buf = append(buf, byte(val))
					continue
				}
				buf = append(buf, e)
			}
			i++
		default:
			buf = append(buf, c)
			i++
		}
	}
	return decodeTextBytes(buf), i
}

// readHexString decodes a <...> string starting at data[i] == '<'.
func readHexString(data []byte, i int) (string, int) {
	i++
	var digits []byte
	for i < len(data) && data[i] != '>' {
		if isHexDigit(data[i]) {
			digits = append(digits, data[i])
		}
		i++
	}
	if i < len(data) {
		i++
	}
	if len(digits)%2 == 1 {
		digits = append(digits, '0')
	}
	buf := make([]byte, 0, len(digits)/2)
	for j := 0; j < len(digits); j += 2 {
		v, _ := strconv.ParseUint(string(digits[j:j+2]), 16, 8)
		buf = append(buf, byte(v))
	}
	return decodeTextBytes(buf), i
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// decodeTextBytes treats strings with a UTF-16BE byte order mark as UTF-16 and
// everything else as a single-byte encoding.
func decodeTextBytes(b []byte) string {
	if len(b) >= 2 && b[0] == 0xFE && b[1] == 0xFF {
		units := make([]uint16, 0, (len(b)-2)/2)
		for j := 2; j+1 < len(b); j += 2 {
			units = append(units, uint16(b[j])<<8|uint16(b[j+1]))
		}
		return string(utf16.Decode(units))
	}
	runes := make([]rune, len(b))
	for j, c := range b {
		runes[j] = rune(c)
	}
	return string(runes)
}

// normalizeText drops unprintable runes, collapses horizontal whitespace and
// removes blank lines.
func normalizeText(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, line := range lines {
		var sb strings.Builder
		prevSpace := false
		for _, r := range line {
			switch {
			case unicode.IsSpace(r):
				if !prevSpace && sb.Len() > 0 {
					sb.WriteByte(' ')
				}
				prevSpace = true
			case unicode.IsPrint(r):
				sb.WriteRune(r)
				prevSpace = false
			}
		}
		if cleaned := strings.TrimSpace(sb.String()); cleaned != "" {
			out = append(out, cleaned)
		}
	}
	return strings.Join(out, "\n")
}
