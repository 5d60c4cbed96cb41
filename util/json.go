// util/json.go
// Copyright(c) 2022-2026 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

///////////////////////////////////////////////////////////////////////////
// JSON

// DuplicateJSONKey represents a duplicate key found in JSON.
type DuplicateJSONKey struct {
	Path string // JSON path to the duplicate (e.g., "EGKK")
	Key  string // The duplicate key name
}

// FindDuplicateJSONKeys scans JSON content and returns all duplicate keys
// found. encoding/json silently keeps the last value for a repeated key,
// which for catalog files means a SID's altitude can be overridden without
// anyone noticing.
func FindDuplicateJSONKeys(data []byte) []DuplicateJSONKey {
	dec := json.NewDecoder(bytes.NewReader(data))
	var duplicates []DuplicateJSONKey

	type level struct {
		object    bool
		seen      map[string]bool
		expectKey bool
		ownsPath  bool // a key was pushed onto path for this container
	}
	var stack []level
	var path []string

	// valueDone is called after any complete value; if the enclosing
	// container is an object, the value's key is popped.
	valueDone := func() {
		if len(stack) > 0 && stack[len(stack)-1].object {
			stack[len(stack)-1].expectKey = true
			if len(path) > 0 {
				path = path[:len(path)-1]
			}
		}
	}

	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}

		switch v := tok.(type) {
		case json.Delim:
			switch v {
			case '{', '[':
				owns := len(stack) > 0 && stack[len(stack)-1].object
				stack = append(stack, level{
					object:    v == '{',
					seen:      make(map[string]bool),
					expectKey: v == '{',
					ownsPath:  owns,
				})
			case '}', ']':
				owns := stack[len(stack)-1].ownsPath
				stack = stack[:len(stack)-1]
				if owns {
					valueDone()
				}
			}

		case string:
			if n := len(stack); n > 0 && stack[n-1].object && stack[n-1].expectKey {
				top := &stack[n-1]
				if top.seen[v] {
					duplicates = append(duplicates, DuplicateJSONKey{
						Path: strings.Join(path, "."),
						Key:  v,
					})
				}
				top.seen[v] = true
				top.expectKey = false
				path = append(path, v)
			} else {
				valueDone()
			}

		default:
			valueDone()
		}
	}

	return duplicates
}

func UnmarshalJSON[T any](r io.Reader, out *T) error {
	// Unfortunately we need the contents as an array of bytes so that we
	// can issue reasonable errors.
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	return UnmarshalJSONBytes(b, out)
}

// Unmarshal the bytes into the given type but go through some efforts to
// return useful error messages when the JSON is invalid...
func UnmarshalJSONBytes[T any](b []byte, out *T) error {
	err := json.Unmarshal(b, out)
	if err == nil {
		return nil
	}

	decodeOffset := func(offset int64) (line, char int) {
		line, char = 1, 1
		for i := 0; i < int(offset) && i < len(b); i++ {
			if b[i] == '\n' {
				line++
				char = 1
			} else {
				char++
			}
		}
		return
	}

	switch jerr := err.(type) {
	case *json.SyntaxError:
		line, char := decodeOffset(jerr.Offset)
		return fmt.Errorf("Error at line %d, character %d: %w", line, char, jerr)

	case *json.UnmarshalTypeError:
		line, char := decodeOffset(jerr.Offset)
		return fmt.Errorf("Error at line %d, character %d: %s value for %s.%s invalid for type %s",
			line, char, jerr.Value, jerr.Struct, jerr.Field, jerr.Type.String())

	default:
		return err
	}
}
