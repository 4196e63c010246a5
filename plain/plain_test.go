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

package plain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/confluentinc/avrodump/avrobin"
)

func TestFromDecodedScalars(t *testing.T) {
	cases := []struct {
		in   avrobin.Value
		want Value
	}{
		{nil, nil},
		{true, true},
		{int32(7), int32(7)},
		{int64(-3), int64(-3)},
		{float32(1.5), float32(1.5)},
		{2.25, 2.25},
		{"text", "text"},
		{[]byte{0xde, 0xad}, "3q0="},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, FromDecoded(c.in))
	}
}

func TestFromDecodedUnionDropsTag(t *testing.T) {
	assert.Equal(t, "x", FromDecoded(&avrobin.Union{Index: 1, Value: "x"}))
	assert.Nil(t, FromDecoded(&avrobin.Union{Index: 0, Value: nil}))
}

func TestFromDecodedRecordKeepsFieldOrder(t *testing.T) {
	rec := &avrobin.Record{
		Name: "P",
		Fields: []avrobin.RecordField{
			{Name: "z", Value: int64(1)},
			{Name: "a", Value: int64(2)},
		},
	}
	got := FromDecoded(rec).(Object)
	require.Len(t, got, 2)
	assert.Equal(t, Member{Key: "z", Value: int64(1)}, got[0])
	assert.Equal(t, Member{Key: "a", Value: int64(2)}, got[1])

	out, err := json.Marshal(got)
	require.NoError(t, err)
	assert.Equal(t, `{"z":1,"a":2}`, string(out))
}

func TestFromDecodedNested(t *testing.T) {
	v := &avrobin.Record{
		Name: "Outer",
		Fields: []avrobin.RecordField{
			{Name: "items", Value: []avrobin.Value{int32(1), nil}},
			{Name: "meta", Value: &avrobin.Map{Entries: []avrobin.MapEntry{
				{Key: "k", Value: []byte{0x01}},
			}}},
			{Name: "choice", Value: &avrobin.Union{Index: 1, Value: "picked"}},
		},
	}
	got := FromDecoded(v).(Object)

	items, ok := got.Get("items")
	require.True(t, ok)
	assert.Equal(t, Array{int32(1), nil}, items)

	meta, ok := got.Get("meta")
	require.True(t, ok)
	assert.Equal(t, Object{{Key: "k", Value: "AQ=="}}, meta)

	choice, ok := got.Get("choice")
	require.True(t, ok)
	assert.Equal(t, "picked", choice)
}

func TestObjectMarshalEscapesKeys(t *testing.T) {
	out, err := json.Marshal(Object{{Key: `a"b`, Value: int64(1)}})
	require.NoError(t, err)
	assert.Equal(t, `{"a\"b":1}`, string(out))
}

func TestObjectGetMissing(t *testing.T) {
	_, ok := Object{}.Get("nope")
	assert.False(t, ok)
}

func TestFromDecodedRejectsForeignTypes(t *testing.T) {
	assert.Panics(t, func() { FromDecoded(uint16(1)) })
}
