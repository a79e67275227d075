// Package header parses and writes the ENVI "key = value" text header
// format. The core (package hyperband) never reads this format itself; it
// only consumes the parsed Record spec.md §6 names, treating the header
// file as an external collaborator the way the teacher treats a JPEG's
// marker segments — read, validate eagerly, fail loudly.
package header

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Record is the parsed, validated subset of an ENVI header spec.md §6
// requires: dims, interleave, byte order, data type, header offset, and
// file type.
type Record struct {
	Lines, Samples, Bands int
	Interleave             string // one of "bip", "bil", "bsq"
	ByteOrder              int    // 0 little-endian, 1 big-endian
	DataType               int    // ENVI numeric type code
	HeaderOffset           int64
	FileType               string
	Description            string
}

// ParseError reports a missing or malformed header field.
type ParseError struct {
	Field string
	Msg   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid header field %q: %s", e.Field, e.Msg)
}

var requiredIntFields = []string{"samples", "lines", "bands"}

// Parse reads an ENVI header from r. The first non-blank line must be the
// literal "ENVI" marker; every other line is a "key = value" pair, with
// "{...}" values (possibly spanning multiple lines) collapsed to one
// logical value, matching real ENVI header files' list-valued fields (e.g.
// "description = {...}", "band names = {...}").
func Parse(r io.Reader) (Record, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	fields := map[string]string{}
	first := true
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if first {
			first = false
			if !strings.EqualFold(line, "ENVI") {
				return Record{}, &ParseError{Field: "magic", Msg: "header must begin with ENVI"}
			}
			continue
		}
		key, value, ok := splitKV(line)
		if !ok {
			continue
		}
		if strings.Contains(value, "{") && !strings.Contains(value, "}") {
			value, ok = consumeBraceValue(sc, value)
			if !ok {
				return Record{}, &ParseError{Field: key, Msg: "unterminated { list value"}
			}
		}
		fields[key] = strings.TrimSpace(value)
	}
	if err := sc.Err(); err != nil {
		return Record{}, fmt.Errorf("reading header: %w", err)
	}

	for _, f := range requiredIntFields {
		if _, ok := fields[f]; !ok {
			return Record{}, &ParseError{Field: f, Msg: "required field missing"}
		}
	}

	rec := Record{Description: strings.Trim(fields["description"], "{} ")}
	var err error
	if rec.Samples, err = atoi(fields["samples"]); err != nil {
		return Record{}, &ParseError{Field: "samples", Msg: err.Error()}
	}
	if rec.Lines, err = atoi(fields["lines"]); err != nil {
		return Record{}, &ParseError{Field: "lines", Msg: err.Error()}
	}
	if rec.Bands, err = atoi(fields["bands"]); err != nil {
		return Record{}, &ParseError{Field: "bands", Msg: err.Error()}
	}

	rec.Interleave = strings.ToLower(strings.TrimSpace(fields["interleave"]))
	switch rec.Interleave {
	case "bip", "bil", "bsq":
	case "":
		return Record{}, &ParseError{Field: "interleave", Msg: "required field missing"}
	default:
		return Record{}, &ParseError{Field: "interleave", Msg: "unrecognized value " + rec.Interleave}
	}

	if v, ok := fields["byte order"]; ok {
		if rec.ByteOrder, err = atoi(v); err != nil {
			return Record{}, &ParseError{Field: "byte order", Msg: err.Error()}
		}
	}
	if v, ok := fields["data type"]; ok {
		if rec.DataType, err = atoi(v); err != nil {
			return Record{}, &ParseError{Field: "data type", Msg: err.Error()}
		}
	} else {
		return Record{}, &ParseError{Field: "data type", Msg: "required field missing"}
	}
	if v, ok := fields["header offset"]; ok {
		var n int
		if n, err = atoi(v); err != nil {
			return Record{}, &ParseError{Field: "header offset", Msg: err.Error()}
		}
		rec.HeaderOffset = int64(n)
	}
	rec.FileType = fields["file type"]

	return rec, nil
}

func splitKV(line string) (key, value string, ok bool) {
	idx := strings.Index(line, "=")
	if idx < 0 {
		return "", "", false
	}
	return strings.ToLower(strings.TrimSpace(line[:idx])), strings.TrimSpace(line[idx+1:]), true
}

func consumeBraceValue(sc *bufio.Scanner, first string) (string, bool) {
	var b strings.Builder
	b.WriteString(first)
	for sc.Scan() {
		b.WriteByte('\n')
		line := sc.Text()
		b.WriteString(line)
		if strings.Contains(line, "}") {
			return b.String(), true
		}
	}
	return "", false
}

func atoi(s string) (int, error) {
	s = strings.TrimSpace(s)
	return strconv.Atoi(s)
}

// Write emits rec as an ENVI header in the same key-ordering convention
// ENVI itself uses: magic line, description, then dimension/layout fields.
func Write(w io.Writer, rec Record) error {
	lines := []string{
		"ENVI",
		fmt.Sprintf("description = {%s}", rec.Description),
		fmt.Sprintf("samples = %d", rec.Samples),
		fmt.Sprintf("lines = %d", rec.Lines),
		fmt.Sprintf("bands = %d", rec.Bands),
		fmt.Sprintf("header offset = %d", rec.HeaderOffset),
		fmt.Sprintf("file type = %s", rec.FileType),
		fmt.Sprintf("data type = %d", rec.DataType),
		"interleave = " + rec.Interleave,
		fmt.Sprintf("byte order = %d", rec.ByteOrder),
	}
	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return err
		}
	}
	return nil
}
