package ingest

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

type arffKind int

const (
	arffNumeric arffKind = iota
	arffString
	arffDate
	arffNominal
)

type arffAttribute struct {
	name    string
	kind    arffKind
	nominal map[string]bool
}

// arffField is a single data token. Text stays as raw bytes until decoded.
type arffField struct {
	raw     []byte
	missing bool
}

// readARFF reads an ARFF document into a grid of strings, header first.
// Missing values ("?") become empty cells.
func readARFF(data []byte, fileName string) ([][]string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fail(fileName, "read arff", ErrEmpty, "file is empty")
	}

	var (
		attrs  []arffAttribute
		rows   [][]arffField
		inData bool
		lineNo int
	)

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), len(data)+1)
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 || line[0] == '%' {
			continue
		}

		if inData {
			if line[0] == '{' {
				return nil, fail(fileName, "read arff", ErrCorrupt, "line %d: sparse data is not supported", lineNo)
			}
			fields, err := splitARFFTokens(line)
			if err != nil {
				return nil, fail(fileName, "read arff", ErrCorrupt, "line %d: %v", lineNo, err)
			}
			if len(fields) != len(attrs) {
				return nil, fail(fileName, "read arff", ErrCorrupt,
					"line %d: %d values for %d attributes", lineNo, len(fields), len(attrs))
			}
			rows = append(rows, fields)
			continue
		}

		keyword, rest := splitKeyword(line)
		switch strings.ToLower(keyword) {
		case "@relation":
		case "@attribute":
			attr, err := parseAttribute(rest)
			if err != nil {
				if errors.Is(err, ErrDecode) {
					return nil, fail(fileName, "read arff", ErrDecode, "line %d: attribute name is not valid UTF-8", lineNo)
				}
				return nil, fail(fileName, "read arff", ErrCorrupt, "line %d: %v", lineNo, err)
			}
			attrs = append(attrs, attr)
		case "@data":
			inData = true
		default:
			return nil, fail(fileName, "read arff", ErrCorrupt, "line %d: unexpected %q", lineNo, keyword)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fail(fileName, "read arff", ErrCorrupt, "%v", err)
	}

	if len(attrs) == 0 {
		return nil, fail(fileName, "read arff", ErrEmpty, "no attributes declared")
	}
	if !inData {
		return nil, fail(fileName, "read arff", ErrCorrupt, "missing @data section")
	}

	grid := make([][]string, 0, len(rows)+1)
	header := make([]string, len(attrs))
	for i, a := range attrs {
		header[i] = a.name
	}
	grid = append(grid, header)

	for r, fields := range rows {
		out := make([]string, len(fields))
		for c, f := range fields {
			v, err := decodeARFFValue(attrs[c], f)
			if err != nil {
				return nil, fail(fileName, "read arff", err, "attribute %q, row %d", attrs[c].name, r+1)
			}
			out[c] = v
		}
		grid = append(grid, out)
	}
	return grid, nil
}

// decodeARFFValue turns a raw token into cell text. The returned error is
// one of the sentinels; the caller adds position.
func decodeARFFValue(attr arffAttribute, f arffField) (string, error) {
	if f.missing {
		return "", nil
	}
	if attr.kind == arffNumeric {
		s := string(f.raw)
		if _, err := strconv.ParseFloat(s, 64); err != nil {
			return "", ErrCorrupt
		}
		return s, nil
	}

	if !utf8.Valid(f.raw) {
		return "", ErrDecode
	}
	s := string(f.raw)
	if attr.kind == arffNominal && !attr.nominal[s] {
		return "", ErrCorrupt
	}
	return s, nil
}

func splitKeyword(line []byte) (string, []byte) {
	i := bytes.IndexAny(line, " \t")
	if i < 0 {
		return string(line), nil
	}
	return string(line[:i]), bytes.TrimSpace(line[i+1:])
}

func parseAttribute(rest []byte) (arffAttribute, error) {
	var attr arffAttribute
	if len(rest) == 0 {
		return attr, errors.New("attribute without a name")
	}

	var name []byte
	if rest[0] == '\'' || rest[0] == '"' {
		tok, n, err := readQuoted(rest)
		if err != nil {
			return attr, err
		}
		name, rest = tok, bytes.TrimSpace(rest[n:])
	} else {
		i := bytes.IndexAny(rest, " \t")
		if i < 0 {
			return attr, errors.New("attribute without a type")
		}
		name, rest = rest[:i], bytes.TrimSpace(rest[i+1:])
	}
	if !utf8.Valid(name) {
		return attr, ErrDecode
	}
	attr.name = string(name)

	if len(rest) == 0 {
		return attr, errors.New("attribute without a type")
	}
	if rest[0] == '{' {
		end := bytes.LastIndexByte(rest, '}')
		if end < 0 {
			return attr, errors.New("unterminated nominal specification")
		}
		values, err := splitARFFTokens(rest[1:end])
		if err != nil {
			return attr, err
		}
		attr.kind = arffNominal
		attr.nominal = make(map[string]bool, len(values))
		for _, v := range values {
			attr.nominal[string(v.raw)] = true
		}
		return attr, nil
	}

	typ, _ := splitKeyword(rest)
	switch strings.ToLower(typ) {
	case "numeric", "real", "integer":
		attr.kind = arffNumeric
	case "string":
		attr.kind = arffString
	case "date":
		attr.kind = arffDate
	case "relational":
		return attr, errors.New("relational attributes are not supported")
	default:
		return attr, fmt.Errorf("unknown attribute type %q", typ)
	}
	return attr, nil
}

// splitARFFTokens splits a comma separated list. Tokens may be single or
// double quoted with backslash escapes; an unquoted "?" is a missing value.
func splitARFFTokens(line []byte) ([]arffField, error) {
	var fields []arffField
	i := 0
	for {
		for i < len(line) && (line[i] == ' ' || line[i] == '\t') {
			i++
		}

		var f arffField
		if i < len(line) && (line[i] == '\'' || line[i] == '"') {
			tok, n, err := readQuoted(line[i:])
			if err != nil {
				return nil, err
			}
			f = arffField{raw: tok}
			i += n
			for i < len(line) && (line[i] == ' ' || line[i] == '\t') {
				i++
			}
		} else {
			start := i
			for i < len(line) && line[i] != ',' {
				i++
			}
			raw := bytes.TrimSpace(line[start:i])
			f = arffField{raw: raw, missing: len(raw) == 1 && raw[0] == '?'}
		}
		fields = append(fields, f)

		if i >= len(line) {
			return fields, nil
		}
		if line[i] != ',' {
			return nil, errors.New("unexpected character after quoted value")
		}
		i++
	}
}

// readQuoted reads a quoted token at the start of b and returns its unescaped
// bytes and the number of input bytes consumed.
func readQuoted(b []byte) ([]byte, int, error) {
	quote := b[0]
	var out []byte
	for i := 1; i < len(b); i++ {
		switch c := b[i]; {
		case c == '\\' && i+1 < len(b):
			i++
			switch b[i] {
			case 'n':
				out = append(out, '\n')
			case 't':
				out = append(out, '\t')
			case 'r':
				out = append(out, '\r')
			default:
				out = append(out, b[i])
			}
		case c == quote:
			return out, i + 1, nil
		default:
			out = append(out, c)
		}
	}
	return nil, 0, errors.New("unterminated quoted value")
}
