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
	"hash/crc32"
	"testing"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/confluentinc/avrodump/avrobin"
)

const pointSchema = `{"type":"record","name":"P","fields":[{"name":"a","type":"long"}]}`

var testSync = [16]byte{
	0xde, 0xad, 0xbe, 0xef, 0x00, 0x11, 0x22, 0x33,
	0x44, 0x55, 0x66, 0x77, 0x88, 0x99, 0xaa, 0xbb,
}

func appendLong(b []byte, v int64) []byte {
	u := uint64(v)<<1 ^ uint64(v>>63)
	for u >= 0x80 {
		b = append(b, byte(u)|0x80)
		u >>= 7
	}
	return append(b, byte(u))
}

func appendBytes(b []byte, p []byte) []byte {
	b = appendLong(b, int64(len(p)))
	return append(b, p...)
}

// pointRecords encodes the given long values as consecutive P records.
func pointRecords(values ...int64) []byte {
	var b []byte
	for _, v := range values {
		b = appendLong(b, v)
	}
	return b
}

func compress(t *testing.T, codec string, data []byte) []byte {
	t.Helper()
	switch codec {
	case "null", "":
		return data
	case "deflate":
		var buf bytes.Buffer
		fw, err := flate.NewWriter(&buf, flate.DefaultCompression)
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
		require.NoError(t, fw.Close())
		return buf.Bytes()
	case "snappy":
		out := snappy.Encode(nil, data)
		return binary.BigEndian.AppendUint32(out, crc32.ChecksumIEEE(data))
	case "zstandard":
		enc, err := zstd.NewWriter(nil)
		require.NoError(t, err)
		defer enc.Close()
		return enc.EncodeAll(data, nil)
	default:
		t.Fatalf("no test encoder for codec %q", codec)
		return nil
	}
}

type testBlock struct {
	count   int64
	payload []byte
}

// buildContainer writes a syntactically complete container file.
func buildContainer(t *testing.T, schemaJSON, codec string, blocks ...testBlock) []byte {
	t.Helper()
	out := append([]byte(nil), Magic[:]...)

	meta := map[string][]byte{schemaKey: []byte(schemaJSON)}
	if codec != "" {
		meta[codecKey] = []byte(codec)
	}
	out = appendLong(out, int64(len(meta)))
	// Deterministic order keeps fixtures stable.
	for _, key := range []string{schemaKey, codecKey} {
		if v, ok := meta[key]; ok {
			out = appendBytes(out, []byte(key))
			out = appendBytes(out, v)
		}
	}
	out = appendLong(out, 0)
	out = append(out, testSync[:]...)

	for _, blk := range blocks {
		compressed := compress(t, codec, blk.payload)
		out = appendLong(out, blk.count)
		out = appendLong(out, int64(len(compressed)))
		out = append(out, compressed...)
		out = append(out, testSync[:]...)
	}
	return out
}

func pointValues(f *File) []int64 {
	var out []int64
	for _, rec := range f.Records {
		out = append(out, rec.(*avrobin.Record).Fields[0].Value.(int64))
	}
	return out
}

func TestReadContainerTwoBlocks(t *testing.T) {
	file := buildContainer(t, pointSchema, "null",
		testBlock{count: 2, payload: pointRecords(1, 2)},
		testBlock{count: 3, payload: pointRecords(3, 4, 5)},
	)
	f, err := Read(file)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, pointValues(f))
	assert.Equal(t, "null", f.Header.Codec.Name())
	assert.Equal(t, testSync, f.Header.Sync)
	assert.Equal(t, []byte(pointSchema), f.Header.Meta[schemaKey])
}

func TestReadContainerNoCodecEntry(t *testing.T) {
	file := buildContainer(t, pointSchema, "",
		testBlock{count: 1, payload: pointRecords(7)},
	)
	f, err := Read(file)
	require.NoError(t, err)
	assert.Equal(t, "null", f.Header.Codec.Name())
	assert.Equal(t, []int64{7}, pointValues(f))
}

func TestReadContainerCompressedCodecs(t *testing.T) {
	for _, codec := range []string{"deflate", "snappy", "zstandard"} {
		file := buildContainer(t, pointSchema, codec,
			testBlock{count: 3, payload: pointRecords(10, 20, 30)},
		)
		f, err := Read(file)
		require.NoError(t, err, codec)
		assert.Equal(t, []int64{10, 20, 30}, pointValues(f), codec)
	}
}

func TestReadContainerEmpty(t *testing.T) {
	file := buildContainer(t, pointSchema, "null")
	f, err := Read(file)
	require.NoError(t, err)
	assert.Empty(t, f.Records)
}

func TestReadNotAContainer(t *testing.T) {
	for _, input := range [][]byte{nil, {}, {'O', 'b', 'j'}, {'O', 'b', 'j', 2}, []byte("plainly not avro")} {
		_, err := Read(input)
		require.Error(t, err)
		assert.Equal(t, avrobin.CodeNotContainer, avrobin.CodeOf(err))
	}
	assert.False(t, IsContainer([]byte("nope")))
	assert.True(t, IsContainer([]byte{'O', 'b', 'j', 1, 0xff}))
}

func TestReadMissingSchemaEntry(t *testing.T) {
	out := append([]byte(nil), Magic[:]...)
	out = appendLong(out, 0) // empty metadata map
	out = append(out, testSync[:]...)
	_, err := Read(out)
	require.Error(t, err)
	assert.Equal(t, avrobin.CodeNotContainer, avrobin.CodeOf(err))
}

func TestReadUnsupportedCodec(t *testing.T) {
	file := buildContainer(t, pointSchema, "lzo")
	_, err := Read(file)
	require.Error(t, err)
	assert.Equal(t, avrobin.CodeUnsupportedCodec, avrobin.CodeOf(err))
}

func TestReadCorruptSyncMarker(t *testing.T) {
	file := buildContainer(t, pointSchema, "null",
		testBlock{count: 1, payload: pointRecords(1)},
	)
	// Corrupting any byte of the block's trailing sync must be caught.
	for i := len(file) - syncSize; i < len(file); i++ {
		corrupted := append([]byte(nil), file...)
		corrupted[i] ^= 0x01
		_, err := Read(corrupted)
		require.Error(t, err, "byte %d", i)
		assert.Equal(t, avrobin.CodeCorruptSync, avrobin.CodeOf(err), "byte %d", i)
	}
}

func TestReadTrailingBlockData(t *testing.T) {
	payload := pointRecords(1, 2)
	payload = append(payload, 0x00) // stray byte after the final record
	file := buildContainer(t, pointSchema, "null",
		testBlock{count: 2, payload: payload},
	)
	_, err := Read(file)
	require.Error(t, err)
	assert.Equal(t, avrobin.CodeTrailingBlockData, avrobin.CodeOf(err))
}

func TestReadBlockCountMismatch(t *testing.T) {
	// Declares 3 records but carries 2: the third decode runs off the
	// end of the block payload.
	file := buildContainer(t, pointSchema, "null",
		testBlock{count: 3, payload: pointRecords(1, 2)},
	)
	_, err := Read(file)
	require.Error(t, err)
	assert.Equal(t, avrobin.CodeTruncated, avrobin.CodeOf(err))
}

func TestReadTruncatedMidBlock(t *testing.T) {
	file := buildContainer(t, pointSchema, "null",
		testBlock{count: 2, payload: pointRecords(1, 2)},
	)
	// Cut inside the block payload, after the length was declared.
	_, err := Read(file[:len(file)-syncSize-1])
	require.Error(t, err)
	assert.Equal(t, avrobin.CodeTruncated, avrobin.CodeOf(err))
}

func TestReadBadWriterSchema(t *testing.T) {
	file := buildContainer(t, `{"type":"record"}`, "null")
	_, err := Read(file)
	require.Error(t, err)
	assert.Equal(t, avrobin.CodeSchemaResolution, avrobin.CodeOf(err))
}
