package palette

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// ParseError reports the first candidate line whose color token is not
// hexadecimal.
type ParseError struct {
	Line  int
	Token string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: invalid color %q: %v", e.Line, e.Token, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Parse reads a palette string. Every line whose first non-blank character
// is '#' holds a color: the word right after the '#' is read as a
// hexadecimal RGB value and anything following it is commentary. Other
// lines are skipped.
//
//	==== Nord Frost ====
//	#8FBCBB nord7
//	#88c0d0 (nord8)
//	#81A1C1
//	#5e81ac -- nord10
//
// Parsing stops at the first malformed color.
func Parse(r io.Reader) (Dynamic, error) {
	var pal Dynamic

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++

		rest, ok := strings.CutPrefix(strings.TrimSpace(scanner.Text()), "#")
		if !ok {
			continue
		}
		fields := strings.Fields(rest)
		if len(fields) == 0 {
			continue
		}

		hex, err := strconv.ParseUint(fields[0], 16, 32)
		if err != nil {
			return nil, &ParseError{Line: line, Token: fields[0], Err: err}
		}
		pal.AppendHex(uint32(hex))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("could not read palette: %w", err)
	}

	return pal, nil
}

func ParseString(s string) (Dynamic, error) {
	return Parse(strings.NewReader(s))
}

// Format writes p as a palette string, one "#rrggbb" line per entry.
func Format(w io.Writer, p Palette) error {
	for i := range p.Len() {
		e, _ := p.Lookup(i)
		col, _ := colorful.MakeColor(e)
		if _, err := fmt.Fprintln(w, col.Hex()); err != nil {
			return fmt.Errorf("could not write color %d/%d: %w", i, p.Len(), err)
		}
	}
	return nil
}
