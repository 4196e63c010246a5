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

// Value is one decoded Avro datum. The concrete type is drawn from a
// closed set determined by the schema node that produced it:
//
//	null    nil
//	boolean bool
//	int     int32
//	long    int64
//	float   float32
//	double  float64
//	bytes   []byte
//	string  string
//	fixed   []byte
//	enum    string (the symbol name, not its index)
//	array   []Value
//	map     *Map
//	record  *Record
//	union   *Union
//
// Values are immutable once constructed.
type Value any

// Record is a decoded record: its fields in schema-declared order.
type Record struct {
	Name   string
	Fields []RecordField
}

// RecordField is one decoded record field.
type RecordField struct {
	Name  string
	Value Value
}

// Map is a decoded map. Entries keep the order in which they appeared
// on the wire.
type Map struct {
	Entries []MapEntry
}

// MapEntry is one decoded map entry.
type MapEntry struct {
	Key   string
	Value Value
}

// Union is a decoded union value together with the branch index that
// was selected on the wire. The index is needed to disambiguate, for
// example, two numeric branches.
type Union struct {
	Index int
	Value Value
}
