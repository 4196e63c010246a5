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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromHex(t *testing.T) {
	out, err := fromHex([]byte("deadBEEF"))
	require.NoError(t, err)
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, out)
}

func TestFromHexIgnoresWhitespace(t *testing.T) {
	out, err := fromHex([]byte("de ad\nbe\tef\r\n"))
	require.NoError(t, err)
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, out)
}

func TestFromHexRejectsBinary(t *testing.T) {
	// A container file's magic is not hex, so real payloads fall through.
	_, err := fromHex([]byte{'O', 'b', 'j', 1})
	assert.Error(t, err)
}

func TestFromHexRejectsOddDigitCount(t *testing.T) {
	_, err := fromHex([]byte("abc"))
	assert.Error(t, err)
}

func TestFromHexRejectsEmpty(t *testing.T) {
	_, err := fromHex([]byte("  \n"))
	assert.Error(t, err)
}
