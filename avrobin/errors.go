/**
 * Copyright 2024 Confluent Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package avrobin

import (
	"errors"
	"fmt"
)

// Code classifies a decode failure.
type Code int

// Decode failure classes. Every failure aborts the current top-level
// decode attempt; Avro framing offers no sub-record resynchronization.
const (
	// CodeTruncated means the input ended before the value did.
	CodeTruncated Code = iota + 1
	// CodeMalformedVarint means a zig-zag varint never terminated or
	// exceeded the width of its target type.
	CodeMalformedVarint
	// CodeInvalidTag means an enum index, union branch index or boolean
	// byte was outside its valid range.
	CodeInvalidTag
	// CodeInvalidUTF8 means a string payload was not valid UTF-8.
	CodeInvalidUTF8
	// CodeSchemaResolution means a schema could not be resolved to a
	// decodable type tree.
	CodeSchemaResolution
	// CodeNotContainer means the input is not an object container file.
	CodeNotContainer
	// CodeCorruptSync means a block's trailing sync marker did not match
	// the file header's sync marker.
	CodeCorruptSync
	// CodeTrailingBlockData means a container block held bytes beyond
	// its declared record count.
	CodeTrailingBlockData
	// CodeUnsupportedCodec means the container names a compression codec
	// this build does not provide.
	CodeUnsupportedCodec
)

// String returns a human readable representation of a Code.
func (c Code) String() string {
	switch c {
	case CodeTruncated:
		return "truncated"
	case CodeMalformedVarint:
		return "malformed varint"
	case CodeInvalidTag:
		return "invalid tag"
	case CodeInvalidUTF8:
		return "invalid utf-8"
	case CodeSchemaResolution:
		return "schema resolution"
	case CodeNotContainer:
		return "not a container file"
	case CodeCorruptSync:
		return "corrupt sync marker"
	case CodeTrailingBlockData:
		return "trailing block data"
	case CodeUnsupportedCodec:
		return "unsupported codec"
	default:
		return fmt.Sprintf("unknown code %d", int(c))
	}
}

// Error is a decode failure with enough context to locate it: the byte
// offset into the input at which the failing read began and, when the
// failure happened under a schema-driven decode, the dotted path of
// record fields and map keys leading to it.
type Error struct {
	Code   Code
	Offset int
	Path   string
	Msg    string
	Err    error
}

// Error returns a human readable representation of an Error.
func (e *Error) Error() string {
	s := fmt.Sprintf("avro: %s at offset %d", e.Code, e.Offset)
	if e.Path != "" {
		s += " (at " + e.Path + ")"
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

// Unwrap returns the wrapped cause, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// CodeOf returns the Code carried by err, or 0 if err holds no *Error.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return 0
}
