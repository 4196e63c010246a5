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

// Package avrobin decodes raw Avro binary data against a parsed schema
// into a schema-agnostic value tree. Avro's binary layout is not
// self-describing: lengths, tags and field order all derive from the
// schema, so every decode is driven by an avro.Schema supplied by the
// caller (or recovered from a container file header by package ocf).
package avrobin

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/hamba/avro/v2"
)

// maxBlockCount bounds a single array/map block so a corrupted count
// cannot drive an unbounded allocation before the input runs dry.
const maxBlockCount = math.MaxInt32

// Decoder decodes Avro binary values from a Reader. A Decoder holds no
// state between values beyond the Reader position, so one Decoder may
// decode any number of consecutive values from the same buffer.
type Decoder struct {
	r    *Reader
	path []string
}

// NewDecoder creates a Decoder over r.
func NewDecoder(r *Reader) *Decoder {
	return &Decoder{r: r}
}

// Decode decodes one value of the given schema, advancing the Reader
// past exactly the bytes that value occupied. On failure the Reader
// position is unspecified and no partial value is returned.
func (d *Decoder) Decode(schema avro.Schema) (Value, error) {
	d.path = d.path[:0]
	v, err := d.decode(schema)
	if err != nil {
		return nil, d.locate(err)
	}
	return v, nil
}

// DecodeValue decodes a single value of the given schema from data.
// Trailing bytes beyond the value are not an error; callers that need
// exact consumption should use a Reader and check Remaining.
func DecodeValue(schema avro.Schema, data []byte) (Value, error) {
	return NewDecoder(NewReader(data)).Decode(schema)
}

func (d *Decoder) decode(schema avro.Schema) (Value, error) {
	switch schema.Type() {
	case avro.Null:
		return nil, nil
	case avro.Boolean:
		return d.r.ReadBool()
	case avro.Int:
		return d.r.ReadInt()
	case avro.Long:
		return d.r.ReadLong()
	case avro.Float:
		return d.r.ReadFloat()
	case avro.Double:
		return d.r.ReadDouble()
	case avro.Bytes:
		return d.r.ReadBytes()
	case avro.String:
		return d.r.ReadString()
	case avro.Fixed:
		return d.r.ReadFixed(schema.(*avro.FixedSchema).Size())
	case avro.Enum:
		return d.decodeEnum(schema.(*avro.EnumSchema))
	case avro.Array:
		return d.decodeArray(schema.(*avro.ArraySchema))
	case avro.Map:
		return d.decodeMap(schema.(*avro.MapSchema))
	case avro.Union:
		return d.decodeUnion(schema.(*avro.UnionSchema))
	case avro.Record, avro.Error:
		return d.decodeRecord(schema.(*avro.RecordSchema))
	case avro.Ref:
		return d.decode(schema.(*avro.RefSchema).Schema())
	default:
		return nil, &Error{
			Code:   CodeSchemaResolution,
			Offset: d.r.Pos(),
			Msg:    fmt.Sprintf("cannot decode schema type %q", schema.Type()),
		}
	}
}

func (d *Decoder) decodeEnum(schema *avro.EnumSchema) (Value, error) {
	start := d.r.Pos()
	idx, err := d.r.ReadInt()
	if err != nil {
		return nil, err
	}
	symbols := schema.Symbols()
	if idx < 0 || int(idx) >= len(symbols) {
		return nil, &Error{
			Code:   CodeInvalidTag,
			Offset: start,
			Msg:    fmt.Sprintf("enum %s index %d outside [0,%d)", schema.FullName(), idx, len(symbols)),
		}
	}
	return symbols[idx], nil
}

// decodeArray reads repeated item blocks until a zero count. A negative
// count is followed by a byte-size hint, which is discarded; the count's
// magnitude gives the number of items in the block.
func (d *Decoder) decodeArray(schema *avro.ArraySchema) (Value, error) {
	items := []Value{}
	for {
		n, err := d.blockCount()
		if err != nil {
			return nil, err
		}
		if n == 0 {
			return items, nil
		}
		for i := int64(0); i < n; i++ {
			v, err := d.decode(schema.Items())
			if err != nil {
				return nil, err
			}
			items = append(items, v)
		}
	}
}

// decodeMap reads blocks of string-keyed entries, same framing as array.
func (d *Decoder) decodeMap(schema *avro.MapSchema) (Value, error) {
	m := &Map{Entries: []MapEntry{}}
	for {
		n, err := d.blockCount()
		if err != nil {
			return nil, err
		}
		if n == 0 {
			return m, nil
		}
		for i := int64(0); i < n; i++ {
			key, err := d.r.ReadString()
			if err != nil {
				return nil, err
			}
			d.path = append(d.path, key)
			v, err := d.decode(schema.Values())
			if err != nil {
				return nil, err
			}
			d.path = d.path[:len(d.path)-1]
			m.Entries = append(m.Entries, MapEntry{Key: key, Value: v})
		}
	}
}

func (d *Decoder) blockCount() (int64, error) {
	start := d.r.Pos()
	n, err := d.r.ReadLong()
	if err != nil {
		return 0, err
	}
	if n < 0 {
		// Legacy size-hint form: the block's byte size precedes its items.
		if _, err := d.r.ReadLong(); err != nil {
			return 0, err
		}
		n = -n
	}
	if n > maxBlockCount {
		return 0, &Error{
			Code:   CodeMalformedVarint,
			Offset: start,
			Msg:    fmt.Sprintf("block count %d is not plausible", n),
		}
	}
	return n, nil
}

func (d *Decoder) decodeUnion(schema *avro.UnionSchema) (Value, error) {
	start := d.r.Pos()
	idx, err := d.r.ReadInt()
	if err != nil {
		return nil, err
	}
	branches := schema.Types()
	if idx < 0 || int(idx) >= len(branches) {
		return nil, &Error{
			Code:   CodeInvalidTag,
			Offset: start,
			Msg:    fmt.Sprintf("union branch %d outside [0,%d)", idx, len(branches)),
		}
	}
	v, err := d.decode(branches[idx])
	if err != nil {
		return nil, err
	}
	return &Union{Index: int(idx), Value: v}, nil
}

// decodeRecord reads each field in schema-declared order; field order
// is part of the wire format and comes only from the schema.
func (d *Decoder) decodeRecord(schema *avro.RecordSchema) (Value, error) {
	fields := schema.Fields()
	rec := &Record{
		Name:   schema.FullName(),
		Fields: make([]RecordField, 0, len(fields)),
	}
	for _, f := range fields {
		d.path = append(d.path, f.Name())
		v, err := d.decode(f.Type())
		if err != nil {
			return nil, err
		}
		d.path = d.path[:len(d.path)-1]
		rec.Fields = append(rec.Fields, RecordField{Name: f.Name(), Value: v})
	}
	return rec, nil
}

// locate stamps the current schema path onto a decode error that does
// not carry one yet.
func (d *Decoder) locate(err error) error {
	var de *Error
	if errors.As(err, &de) && de.Path == "" && len(d.path) > 0 {
		de.Path = strings.Join(d.path, ".")
	}
	return err
}
