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

// Package plain flattens decoded Avro values into a uniform,
// JSON-representable tree: objects and arrays, native scalars, and
// base64 text for binary data. Union branch tags are dropped in the
// process; callers that must distinguish, say, two numeric branches of
// the same union need the avrobin representation instead.
package plain

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/confluentinc/avrodump/avrobin"
)

// Value is a JSON-representable value: nil, bool, int32, int64,
// float32, float64, string, Array, or Object.
type Value any

// Array is an ordered sequence of normalized values.
type Array []Value

// Object is a string-keyed mapping that keeps its members in insertion
// order, so a record's declared field order survives JSON rendering.
type Object []Member

// Member is one Object entry.
type Member struct {
	Key   string
	Value Value
}

// MarshalJSON renders the object with members in order.
func (o Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, m := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(m.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := json.Marshal(m.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Get returns the value of the first member named key.
func (o Object) Get(key string) (Value, bool) {
	for _, m := range o {
		if m.Key == key {
			return m.Value, true
		}
	}
	return nil, false
}

// FromDecoded normalizes one decoded Avro value. It is total over the
// closed set of types avrobin produces: any decoded value normalizes
// without error.
func FromDecoded(v avrobin.Value) Value {
	switch t := v.(type) {
	case nil:
		return nil
	case bool, int32, int64, float32, float64, string:
		return t
	case []byte:
		return base64.StdEncoding.EncodeToString(t)
	case []avrobin.Value:
		arr := make(Array, len(t))
		for i, item := range t {
			arr[i] = FromDecoded(item)
		}
		return arr
	case *avrobin.Map:
		obj := make(Object, len(t.Entries))
		for i, e := range t.Entries {
			obj[i] = Member{Key: e.Key, Value: FromDecoded(e.Value)}
		}
		return obj
	case *avrobin.Record:
		obj := make(Object, len(t.Fields))
		for i, f := range t.Fields {
			obj[i] = Member{Key: f.Name, Value: FromDecoded(f.Value)}
		}
		return obj
	case *avrobin.Union:
		return FromDecoded(t.Value)
	default:
		panic(fmt.Sprintf("plain: %T is not a decoded avro value", v))
	}
}
