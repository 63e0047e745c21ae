package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"unicode/utf16"
	"unicode/utf8"
)

// Document is a parsed configuration file. Root holds one of nil, bool,
// json.Number, string, *Object or []any.
type Document struct {
	Root any
}

// Member is a single key/value pair of an Object.
type Member struct {
	Key   string
	Value any
}

// Object is a JSON object that remembers the order its keys were read in.
type Object struct {
	Members []Member
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (any, bool) {
	for _, m := range o.Members {
		if m.Key == key {
			return m.Value, true
		}
	}
	return nil, false
}

// Set replaces the value under key in place, or appends key as the last member.
// It scans Members, so building a wide object with Set is quadratic.
func (o *Object) Set(key string, value any) {
	for i := range o.Members {
		if o.Members[i].Key == key {
			o.Members[i].Value = value
			return
		}
	}
	o.Members = append(o.Members, Member{Key: key, Value: value})
}

// Len returns the number of members.
func (o *Object) Len() int { return len(o.Members) }

// Load reads path and parses it as a single JSON document.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &IOError{Op: "read", Path: path, Err: err}
	}
	return Parse(path, data)
}

// Parse decodes data into an ordered document. Numbers keep their literal
// text. path is only used for error reporting.
func Parse(path string, data []byte) (*Document, error) {
	// The decoder silently turns bad bytes into U+FFFD, which would rewrite
	// fields on output.
	if !utf8.Valid(data) {
		return nil, &ParseError{Path: path, Offset: firstInvalidUTF8(data), Err: errors.New("invalid UTF-8")}
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	root, err := decodeValue(dec)
	if err != nil {
		return nil, &ParseError{Path: path, Offset: dec.InputOffset(), Err: err}
	}
	if tok, err := dec.Token(); err != io.EOF {
		if err == nil {
			err = fmt.Errorf("unexpected trailing data %v", tok)
		}
		return nil, &ParseError{Path: path, Offset: dec.InputOffset(), Err: err}
	}
	if offset, ok := loneSurrogate(data); ok {
		return nil, &ParseError{Path: path, Offset: offset, Err: errors.New("unpaired UTF-16 surrogate escape")}
	}
	return &Document{Root: root}, nil
}

func firstInvalidUTF8(data []byte) int64 {
	for i := 0; i < len(data); {
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size == 1 {
			return int64(i)
		}
		i += size
	}
	return int64(len(data))
}

// loneSurrogate reports the offset of the first \uD800-\uDFFF escape inside a
// string that is not part of a high/low pair. data must already be valid JSON.
func loneSurrogate(data []byte) (int64, bool) {
	inString := false
	for i := 0; i < len(data); i++ {
		c := data[i]
		if !inString {
			if c == '"' {
				inString = true
			}
			continue
		}
		switch c {
		case '"':
			inString = false
		case '\\':
			if i+1 < len(data) && data[i+1] == 'u' && i+6 <= len(data) {
				r := hexRune(data[i+2 : i+6])
				switch {
				case utf16.IsSurrogate(r) && r < 0xDC00:
					if i+12 <= len(data) && data[i+6] == '\\' && data[i+7] == 'u' {
						if low := hexRune(data[i+8 : i+12]); low >= 0xDC00 && low <= 0xDFFF {
							i += 11
							continue
						}
					}
					return int64(i), true
				case utf16.IsSurrogate(r):
					return int64(i), true
				}
				i += 5
				continue
			}
			i++
		}
	}
	return 0, false
}

func hexRune(b []byte) rune {
	var r rune
	for _, c := range b {
		switch {
		case c >= '0' && c <= '9':
			r = r<<4 | rune(c-'0')
		case c >= 'a' && c <= 'f':
			r = r<<4 | rune(c-'a'+10)
		case c >= 'A' && c <= 'F':
			r = r<<4 | rune(c-'A'+10)
		default:
			return -1
		}
	}
	return r
}

func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}

	delim, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}

	switch delim {
	case '{':
		obj := &Object{}
		// Object.Set scans linearly; index keeps wide objects linear to decode.
		index := map[string]int{}
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, ok := keyTok.(string)
			if !ok {
				return nil, fmt.Errorf("object key %v is not a string", keyTok)
			}
			value, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			// A repeated key keeps its first position and its last value.
			if i, ok := index[key]; ok {
				obj.Members[i].Value = value
				continue
			}
			index[key] = len(obj.Members)
			obj.Members = append(obj.Members, Member{Key: key, Value: value})
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return obj, nil

	case '[':
		arr := []any{}
		for dec.More() {
			value, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			arr = append(arr, value)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return arr, nil
	}

	return nil, fmt.Errorf("unexpected delimiter %q", rune(delim))
}

// plain converts the ordered tree into the map/slice form used by generic
// JSON consumers. Key order is lost.
func plain(v any) any {
	switch t := v.(type) {
	case *Object:
		m := make(map[string]any, t.Len())
		for _, member := range t.Members {
			m[member.Key] = plain(member.Value)
		}
		return m
	case []any:
		out := make([]any, len(t))
		for i, elem := range t {
			out[i] = plain(elem)
		}
		return out
	default:
		return v
	}
}

// jsonType names the JSON type of a tree value for error messages.
func jsonType(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case json.Number:
		return "number"
	case string:
		return "string"
	case *Object:
		return "object"
	case []any:
		return "array"
	default:
		return fmt.Sprintf("%T", v)
	}
}
