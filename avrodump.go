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

// Package avrodump turns Avro-encoded bytes into JSON-representable
// value trees. Input is either an Avro Object Container File, which
// carries its own writer schema, or a raw concatenation of binary
// records decoded against a caller-supplied schema. All decoding is
// synchronous and in-memory; concurrent calls on independent inputs
// need no coordination.
package avrodump

import (
	"errors"

	"github.com/hamba/avro/v2"

	"github.com/confluentinc/avrodump/avrobin"
	"github.com/confluentinc/avrodump/ocf"
	"github.com/confluentinc/avrodump/plain"
)

// Decode decodes data into one normalized value per record. Input
// starting with the container magic is read as a container file and
// its embedded writer schema supersedes the schema argument, which may
// then be nil; otherwise data is decoded as a raw record stream
// against the given schema.
func Decode(schema avro.Schema, data []byte) ([]plain.Value, error) {
	if ocf.IsContainer(data) {
		return DecodeContainer(data)
	}
	return DecodeStream(schema, data)
}

// DecodeContainer decodes a complete object container file.
func DecodeContainer(data []byte) ([]plain.Value, error) {
	f, err := ocf.Read(data)
	if err != nil {
		return nil, err
	}
	out := make([]plain.Value, len(f.Records))
	for i, rec := range f.Records {
		out[i] = plain.FromDecoded(rec)
	}
	return out, nil
}

// DecodeStream decodes data as consecutive binary records under
// schema, from the start of the buffer until it is exhausted. A
// failure before the first record is surfaced; a failure after at
// least one successful record is treated as benign trailing padding
// and the records decoded so far are returned. Record payloads
// themselves remain strict.
func DecodeStream(schema avro.Schema, data []byte) ([]plain.Value, error) {
	if schema == nil {
		return nil, errors.New("avrodump: raw stream input requires a schema")
	}
	r := avrobin.NewReader(data)
	dec := avrobin.NewDecoder(r)
	out := []plain.Value{}
	for r.Remaining() > 0 {
		before := r.Pos()
		v, err := dec.Decode(schema)
		if err != nil {
			if len(out) > 0 {
				break
			}
			return nil, err
		}
		out = append(out, plain.FromDecoded(v))
		if r.Pos() == before {
			// Zero-width value: the remaining bytes can never be consumed.
			break
		}
	}
	return out, nil
}
