package encoding

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	xencoding "golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Charsets NewUTF8Reader can decode.
const (
	UTF8        = "UTF-8"
	UTF16LE     = "UTF-16LE"
	UTF16BE     = "UTF-16BE"
	Windows1252 = "windows-1252"
	ISO8859_9   = "ISO-8859-9"
)

// sniffLen is how much of the input Detect gets to look at.
const sniffLen = 4096

var boms = []struct {
	prefix  []byte
	charset string
}{
	{[]byte{0xEF, 0xBB, 0xBF}, UTF8},
	{[]byte{0xFF, 0xFE}, UTF16LE},
	{[]byte{0xFE, 0xFF}, UTF16BE},
}

var decoders = map[string]xencoding.Encoding{
	UTF16LE:     unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM),
	UTF16BE:     unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM),
	Windows1252: charmap.Windows1252,
	ISO8859_9:   charmap.ISO8859_9,
}

// Detect guesses the charset of sample and the length of any byte order mark.
// A BOM wins, then valid UTF-8, then chardet; anything else is Windows-1252,
// the usual charset of spreadsheet exports.
func Detect(sample []byte) (charset string, bomLen int) {
	for _, b := range boms {
		if bytes.HasPrefix(sample, b.prefix) {
			return b.charset, len(b.prefix)
		}
	}

	if utf8.Valid(sample) {
		return UTF8, 0
	}

	result, err := chardet.NewTextDetector().DetectBest(sample)
	if err != nil {
		return Windows1252, 0
	}

	switch result.Charset {
	case "UTF-8":
		return UTF8, 0
	case "ISO-8859-9":
		return ISO8859_9, 0
	}

	return Windows1252, 0
}

// NewUTF8Reader returns r decoded to UTF-8 with any byte order mark removed.
func NewUTF8Reader(r io.Reader) (io.Reader, error) {
	br := bufio.NewReaderSize(r, sniffLen)

	sample, err := br.Peek(sniffLen)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, fmt.Errorf("peek: %w", err)
	}

	charset, bomLen := Detect(sample)

	if _, err := br.Discard(bomLen); err != nil {
		return nil, fmt.Errorf("discard bom: %w", err)
	}

	dec, ok := decoders[charset]
	if !ok {
		return br, nil
	}

	return transform.NewReader(br, dec.NewDecoder()), nil
}
