package extract

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/tovenaar/docsum/models"
)

// Destination groups whose payload is formatting data, not document text.
var rtfDestinations = map[string]bool{
	"fonttbl":    true,
	"colortbl":   true,
	"stylesheet": true,
	"info":       true,
	"pict":       true,
	"object":     true,
	"header":     true,
	"footer":     true,
	"headerl":    true,
	"headerr":    true,
	"footerl":    true,
	"footerr":    true,
	"themedata":  true,
	"generator":  true,
}

// Control words that stand in for characters.
var rtfSymbols = map[string]string{
	"par":       "\n",
	"line":      "\n",
	"sect":      "\n",
	"page":      "\n",
	"row":       "\n",
	"tab":       "\t",
	"cell":      "\t",
	"emdash":    "-",
	"endash":    "-",
	"emspace":   " ",
	"enspace":   " ",
	"qmspace":   " ",
	"bullet":    "*",
	"lquote":    "'",
	"rquote":    "'",
	"ldblquote": `"`,
	"rdblquote": `"`,
}

// RTF strips control words and destination groups from Rich Text Format
// documents, keeping only the document text. Hex and unicode escapes are
// decoded; everything else formatting-related is dropped.
type RTF struct{}

func (RTF) Name() string { return "rtf" }

func (RTF) Match(doc models.Document) bool { return doc.Ext() == ".rtf" }

func (RTF) Extract(doc models.Document) (string, error) {
	if !bytes.HasPrefix(doc.Content, []byte(`{\rtf`)) {
		return "", failf(KindCorruptInput, "rtf", "missing rtf header")
	}
	return strings.TrimSpace(stripRTF(doc.Content)), nil
}

func stripRTF(data []byte) string {
	var out strings.Builder
	depth := 0
	skipAt := -1 // group depth where skipping began, -1 when not skipping

	for i := 0; i < len(data); i++ {
		switch c := data[i]; c {
		case '{':
			depth++
		case '}':
			depth--
			if skipAt >= 0 && depth < skipAt {
				skipAt = -1
			}
		case '\\':
			i = rtfControl(data, i, depth, &skipAt, &out)
		case '\r', '\n':
			// raw newlines carry no meaning in RTF
		default:
			if skipAt < 0 {
				out.WriteByte(c)
			}
		}
	}
	return out.String()
}

// rtfControl consumes one control sequence starting at the backslash and
// returns the index of its last byte.
func rtfControl(data []byte, i, depth int, skipAt *int, out *strings.Builder) int {
	if i+1 >= len(data) {
		return i
	}

	switch next := data[i+1]; next {
	case '\\', '{', '}':
		if *skipAt < 0 {
			out.WriteByte(next)
		}
		return i + 1
	case '~':
		if *skipAt < 0 {
			out.WriteByte(' ')
		}
		return i + 1
	case '-', '_':
		if *skipAt < 0 {
			out.WriteByte('-')
		}
		return i + 1
	case '*':
		// \* marks the enclosing group as a destination
		if *skipAt < 0 {
			*skipAt = depth
		}
		return i + 1
	case '\'':
		if i+3 < len(data) {
			if v, err := strconv.ParseUint(string(data[i+2:i+4]), 16, 8); err == nil {
				if *skipAt < 0 {
					out.WriteRune(rune(v))
				}
				return i + 3
			}
		}
		return i + 1
	}

	// Control word: letters, optional signed numeric parameter, optional
	// single trailing space that belongs to the word.
	j := i + 1
	for j < len(data) && isASCIILetter(data[j]) {
		j++
	}
	if j == i+1 {
		return i
	}
	word := string(data[i+1 : j])

	param := ""
	k := j
	if k < len(data) && (data[k] == '-' || isASCIIDigit(data[k])) {
		k++
		for k < len(data) && isASCIIDigit(data[k]) {
			k++
		}
		param = string(data[j:k])
	}
	if k < len(data) && data[k] == ' ' {
		k++
	}

	switch {
	case word == "bin":
		// binary payload follows; never document text
		if n, err := strconv.Atoi(param); err == nil && n > 0 {
			k += n
			if k > len(data) {
				k = len(data)
			}
		}
	case word == "u":
		if *skipAt < 0 {
			if n, err := strconv.Atoi(param); err == nil {
				if n < 0 {
					n += 65536
				}
				out.WriteRune(rune(n))
			}
		}
		// the ANSI fallback character after \uN is a duplicate
		if k < len(data) && data[k] == '?' {
			k++
		}
	case *skipAt < 0 && rtfDestinations[word]:
		*skipAt = depth
	case *skipAt < 0:
		if sym, ok := rtfSymbols[word]; ok {
			out.WriteString(sym)
		}
	}

	return k - 1
}

func isASCIILetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isASCIIDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
