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

// Package ocf reads Avro Object Container Files: the self-describing
// file format that embeds its writer schema and compression codec and
// frames its data into sync-marked blocks. Block payloads are handed
// to package avrobin for schema-driven decoding against the embedded
// writer schema.
package ocf

import (
	"bytes"
	"fmt"

	"github.com/hamba/avro/v2"

	"github.com/confluentinc/avrodump/avrobin"
)

// Magic is the 4-byte prefix of every object container file.
var Magic = [4]byte{'O', 'b', 'j', 1}

const (
	schemaKey = "avro.schema"
	codecKey  = "avro.codec"

	syncSize = 16
)

// headerMetaSchema shapes the file header's metadata map.
var headerMetaSchema = avro.NewMapSchema(avro.NewPrimitiveSchema(avro.Bytes, nil))

// Header is the decoded container file header.
type Header struct {
	// Meta holds the raw metadata entries, including reserved keys.
	Meta map[string][]byte
	// Schema is the parsed writer schema from the avro.schema entry.
	Schema avro.Schema
	// Codec is the negotiated compression codec.
	Codec Codec
	// Sync is the 16-byte marker that must trail every data block.
	Sync [syncSize]byte
}

// File is a fully read container file: its header and every record
// from every block, in file order.
type File struct {
	Header  Header
	Records []avrobin.Value
}

// IsContainer reports whether buf begins with the container magic.
func IsContainer(buf []byte) bool {
	return len(buf) >= len(Magic) && bytes.Equal(buf[:len(Magic)], Magic[:])
}

// Read parses a complete object container file held in memory. The
// embedded writer schema drives all record decoding. Running out of
// input at a block boundary is a clean end of file; running out inside
// a block is corruption.
func Read(buf []byte) (*File, error) {
	r := avrobin.NewReader(buf)
	hdr, err := readHeader(r)
	if err != nil {
		return nil, err
	}
	f := &File{Header: *hdr, Records: []avrobin.Value{}}
	for r.Remaining() > 0 {
		recs, err := readBlock(r, hdr)
		if err != nil {
			return nil, err
		}
		f.Records = append(f.Records, recs...)
	}
	return f, nil
}

func readHeader(r *avrobin.Reader) (*Header, error) {
	m, err := r.ReadFixed(len(Magic))
	if err != nil || !bytes.Equal(m, Magic[:]) {
		return nil, &avrobin.Error{
			Code: avrobin.CodeNotContainer,
			Msg:  "missing Obj\\x01 magic",
		}
	}

	v, err := avrobin.NewDecoder(r).Decode(headerMetaSchema)
	if err != nil {
		return nil, fmt.Errorf("ocf: header metadata: %w", err)
	}
	hdr := &Header{Meta: map[string][]byte{}}
	for _, e := range v.(*avrobin.Map).Entries {
		hdr.Meta[e.Key] = e.Value.([]byte)
	}

	schemaJSON, ok := hdr.Meta[schemaKey]
	if !ok {
		return nil, &avrobin.Error{
			Code:   avrobin.CodeNotContainer,
			Offset: r.Pos(),
			Msg:    "header has no " + schemaKey + " entry",
		}
	}
	hdr.Schema, err = avro.Parse(string(schemaJSON))
	if err != nil {
		return nil, &avrobin.Error{
			Code: avrobin.CodeSchemaResolution,
			Msg:  "writer schema",
			Err:  err,
		}
	}

	hdr.Codec, err = CodecByName(string(hdr.Meta[codecKey]))
	if err != nil {
		return nil, err
	}

	sync, err := r.ReadFixed(syncSize)
	if err != nil {
		return nil, fmt.Errorf("ocf: sync marker: %w", err)
	}
	copy(hdr.Sync[:], sync)
	return hdr, nil
}

// readBlock reads one data block: record count, payload length, the
// (possibly compressed) payload, and the trailing sync marker. The
// decompressed payload must hold exactly the declared record count.
func readBlock(r *avrobin.Reader, hdr *Header) ([]avrobin.Value, error) {
	count, err := r.ReadLong()
	if err != nil {
		return nil, fmt.Errorf("ocf: block record count: %w", err)
	}
	size, err := r.ReadLong()
	if err != nil {
		return nil, fmt.Errorf("ocf: block byte length: %w", err)
	}
	if count < 0 || size < 0 {
		return nil, &avrobin.Error{
			Code:   avrobin.CodeMalformedVarint,
			Offset: r.Pos(),
			Msg:    fmt.Sprintf("negative block framing (count %d, size %d)", count, size),
		}
	}
	payload, err := r.ReadFixed(int(size))
	if err != nil {
		return nil, fmt.Errorf("ocf: block payload: %w", err)
	}

	syncAt := r.Pos()
	sync, err := r.ReadFixed(syncSize)
	if err != nil {
		return nil, fmt.Errorf("ocf: block sync marker: %w", err)
	}
	if !bytes.Equal(sync, hdr.Sync[:]) {
		return nil, &avrobin.Error{
			Code:   avrobin.CodeCorruptSync,
			Offset: syncAt,
			Msg:    fmt.Sprintf("got %x, header declares %x", sync, hdr.Sync),
		}
	}

	data, err := hdr.Codec.Decode(payload)
	if err != nil {
		return nil, fmt.Errorf("ocf: decompress block: %w", err)
	}

	br := avrobin.NewReader(data)
	dec := avrobin.NewDecoder(br)
	capHint := count
	if capHint > 4096 {
		// The declared count is untrusted until the records decode.
		capHint = 4096
	}
	recs := make([]avrobin.Value, 0, capHint)
	for i := int64(0); i < count; i++ {
		v, err := dec.Decode(hdr.Schema)
		if err != nil {
			return nil, fmt.Errorf("ocf: record %d of block: %w", i, err)
		}
		recs = append(recs, v)
	}
	if br.Remaining() != 0 {
		return nil, &avrobin.Error{
			Code:   avrobin.CodeTrailingBlockData,
			Offset: br.Pos(),
			Msg:    fmt.Sprintf("%d bytes after final record of block", br.Remaining()),
		}
	}
	return recs, nil
}
