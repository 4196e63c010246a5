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

package ocf

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"sync"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zstd"

	"github.com/confluentinc/avrodump/avrobin"
)

// Codec decompresses object container file block payloads.
type Codec interface {
	// Name returns the codec name as it appears in the avro.codec
	// metadata entry.
	Name() string
	// Decode returns the decompressed form of one block payload.
	Decode(block []byte) ([]byte, error)
}

var codecs = map[string]Codec{
	"null":      nullCodec{},
	"deflate":   deflateCodec{},
	"snappy":    snappyCodec{},
	"zstandard": zstdCodec{},
}

// CodecByName returns the codec registered under name. The empty name
// resolves to the null codec, matching a container file with no
// avro.codec entry.
func CodecByName(name string) (Codec, error) {
	if name == "" {
		name = "null"
	}
	c, ok := codecs[name]
	if !ok {
		return nil, &avrobin.Error{
			Code: avrobin.CodeUnsupportedCodec,
			Msg:  fmt.Sprintf("codec %q", name),
		}
	}
	return c, nil
}

type nullCodec struct{}

func (nullCodec) Name() string { return "null" }

func (nullCodec) Decode(block []byte) ([]byte, error) {
	return block, nil
}

type deflateCodec struct{}

func (deflateCodec) Name() string { return "deflate" }

func (deflateCodec) Decode(block []byte) ([]byte, error) {
	fr := flate.NewReader(bytes.NewReader(block))
	defer fr.Close()
	out, err := io.ReadAll(fr)
	if err != nil {
		return nil, fmt.Errorf("deflate: %w", err)
	}
	return out, nil
}

// snappyCodec handles Avro's snappy framing: the snappy block format
// followed by a 4-byte big-endian CRC-32 (IEEE) of the uncompressed
// bytes.
type snappyCodec struct{}

func (snappyCodec) Name() string { return "snappy" }

func (snappyCodec) Decode(block []byte) ([]byte, error) {
	if len(block) < 4 {
		return nil, fmt.Errorf("snappy: block of %d bytes has no checksum", len(block))
	}
	sum := binary.BigEndian.Uint32(block[len(block)-4:])
	out, err := snappy.Decode(nil, block[:len(block)-4])
	if err != nil {
		return nil, fmt.Errorf("snappy: %w", err)
	}
	if got := crc32.ChecksumIEEE(out); got != sum {
		return nil, fmt.Errorf("snappy: crc mismatch: got %08x, block declares %08x", got, sum)
	}
	return out, nil
}

type zstdCodec struct{}

var zstdDecoder = sync.OnceValues(func() (*zstd.Decoder, error) {
	return zstd.NewReader(nil)
})

func (zstdCodec) Name() string { return "zstandard" }

func (zstdCodec) Decode(block []byte) ([]byte, error) {
	dec, err := zstdDecoder()
	if err != nil {
		return nil, fmt.Errorf("zstandard: %w", err)
	}
	out, err := dec.DecodeAll(block, nil)
	if err != nil {
		return nil, fmt.Errorf("zstandard: %w", err)
	}
	return out, nil
}
