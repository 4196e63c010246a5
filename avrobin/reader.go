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
	"encoding/binary"
	"fmt"
	"math"
	"unicode/utf8"
)

// Reader is a cursor over an in-memory Avro binary payload. Every read
// either advances the position by exactly the bytes consumed or fails,
// after which the position is unspecified and the decode attempt must
// be abandoned.
type Reader struct {
	buf []byte
	pos int
}

// NewReader creates a Reader over buf. The buffer is not copied.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Pos returns the current byte offset into the input.
func (r *Reader) Pos() int {
	return r.pos
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.buf) - r.pos
}

// ReadFixed consumes exactly n raw bytes. The returned slice is a copy
// and does not alias the input buffer.
func (r *Reader) ReadFixed(n int) ([]byte, error) {
	if n > r.Remaining() {
		return nil, &Error{
			Code:   CodeTruncated,
			Offset: r.pos,
			Msg:    fmt.Sprintf("need %d bytes, have %d", n, r.Remaining()),
		}
	}
	out := make([]byte, n)
	copy(out, r.buf[r.pos:])
	r.pos += n
	return out, nil
}

// ReadBool consumes one byte. Only 0x00 and 0x01 are accepted; any
// other value is rejected as corruption.
func (r *Reader) ReadBool() (bool, error) {
	if r.Remaining() < 1 {
		return false, &Error{Code: CodeTruncated, Offset: r.pos, Msg: "boolean"}
	}
	b := r.buf[r.pos]
	if b > 1 {
		return false, &Error{
			Code:   CodeInvalidTag,
			Offset: r.pos,
			Msg:    fmt.Sprintf("boolean byte 0x%02x is neither 0 nor 1", b),
		}
	}
	r.pos++
	return b == 1, nil
}

// readVarint decodes a zig-zag base-128 varint of up to 64 bits.
func (r *Reader) readVarint() (int64, error) {
	start := r.pos
	var x uint64
	var shift uint
	for {
		if r.pos >= len(r.buf) {
			r.pos = start
			return 0, &Error{Code: CodeTruncated, Offset: start, Msg: "varint runs past end of input"}
		}
		b := r.buf[r.pos]
		r.pos++
		if shift == 63 && b > 1 {
			// 10th byte: only the low bit may be set, and it must not continue.
			r.pos = start
			return 0, &Error{Code: CodeMalformedVarint, Offset: start, Msg: "varint exceeds 64 bits"}
		}
		x |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			break
		}
		shift += 7
	}
	return int64(x>>1) ^ -int64(x&1), nil
}

// ReadLong decodes a zig-zag varint long.
func (r *Reader) ReadLong() (int64, error) {
	return r.readVarint()
}

// ReadInt decodes a zig-zag varint int, rejecting values outside the
// 32-bit range.
func (r *Reader) ReadInt() (int32, error) {
	start := r.pos
	v, err := r.readVarint()
	if err != nil {
		return 0, err
	}
	if v < math.MinInt32 || v > math.MaxInt32 {
		r.pos = start
		return 0, &Error{Code: CodeMalformedVarint, Offset: start, Msg: fmt.Sprintf("value %d exceeds 32 bits", v)}
	}
	return int32(v), nil
}

// ReadFloat decodes 4 little-endian IEEE-754 bytes.
func (r *Reader) ReadFloat() (float32, error) {
	b, err := r.ReadFixed(4)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(b)), nil
}

// ReadDouble decodes 8 little-endian IEEE-754 bytes.
func (r *Reader) ReadDouble() (float64, error) {
	b, err := r.ReadFixed(8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(b)), nil
}

// ReadBytes decodes a long length prefix followed by that many raw bytes.
func (r *Reader) ReadBytes() ([]byte, error) {
	start := r.pos
	n, err := r.ReadLong()
	if err != nil {
		return nil, err
	}
	if n < 0 {
		r.pos = start
		return nil, &Error{Code: CodeMalformedVarint, Offset: start, Msg: fmt.Sprintf("negative bytes length %d", n)}
	}
	if n > int64(r.Remaining()) {
		return nil, &Error{
			Code:   CodeTruncated,
			Offset: r.pos,
			Msg:    fmt.Sprintf("bytes length %d exceeds %d remaining", n, r.Remaining()),
		}
	}
	return r.ReadFixed(int(n))
}

// ReadString decodes a bytes value and validates it as UTF-8.
func (r *Reader) ReadString() (string, error) {
	start := r.pos
	b, err := r.ReadBytes()
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", &Error{Code: CodeInvalidUTF8, Offset: start, Msg: "string payload is not valid utf-8"}
	}
	return string(b), nil
}
