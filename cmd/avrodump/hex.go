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

package main

import (
	"encoding/hex"
	"errors"
)

// fromHex decodes a hex dump, ignoring ASCII whitespace between
// digits. It fails on any other byte, on an odd digit count, and on
// empty input, so raw binary payloads fall through untouched.
func fromHex(in []byte) ([]byte, error) {
	digits := make([]byte, 0, len(in))
	for _, b := range in {
		switch {
		case b == ' ' || b == '\t' || b == '\r' || b == '\n':
		case b >= '0' && b <= '9', b >= 'a' && b <= 'f', b >= 'A' && b <= 'F':
			digits = append(digits, b)
		default:
			return nil, errors.New("non-hex byte in input")
		}
	}
	if len(digits) == 0 {
		return nil, errors.New("empty input")
	}
	out := make([]byte, hex.DecodedLen(len(digits)))
	if _, err := hex.Decode(out, digits); err != nil {
		return nil, err
	}
	return out, nil
}
