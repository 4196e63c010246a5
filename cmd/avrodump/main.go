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

// avrodump decodes Avro binary data (an object container file, a raw
// record stream, or a hex dump of either) and prints one JSON document
// per record.
//
//	avrodump -schema user.avsc payload.bin
//	avrodump data.avro
//	xxd -p payload.bin | avrodump -schema user.avsc
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/hamba/avro/v2"
	"github.com/rs/zerolog"

	"github.com/confluentinc/avrodump"
	"github.com/confluentinc/avrodump/avrobin"
)

func main() {
	schemaPath := flag.String("schema", "", "path to an Avro schema (.avsc); optional for container files")
	forceHex := flag.Bool("hex", false, "treat input as hex-dumped bytes (otherwise auto-detected)")
	pretty := flag.Bool("pretty", false, "indent JSON output")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	if !*verbose {
		log = log.Level(zerolog.InfoLevel)
	} else {
		log = log.Level(zerolog.DebugLevel)
	}

	if flag.NArg() > 1 {
		log.Fatal().Msg("at most one input file")
	}

	data, err := readInput(flag.Arg(0))
	if err != nil {
		log.Fatal().Err(err).Msg("read input")
	}

	if *forceHex {
		decoded, err := fromHex(data)
		if err != nil {
			log.Fatal().Err(err).Msg("input is not valid hex")
		}
		data = decoded
	} else if decoded, err := fromHex(data); err == nil {
		log.Debug().Int("bytes", len(decoded)).Msg("input looks hex-dumped, decoding it")
		data = decoded
	}

	var schema avro.Schema
	if *schemaPath != "" {
		text, err := os.ReadFile(*schemaPath)
		if err != nil {
			log.Fatal().Err(err).Msg("read schema")
		}
		schema, err = avro.Parse(string(text))
		if err != nil {
			log.Fatal().Err(err).Msg("parse schema")
		}
	}

	records, err := avrodump.Decode(schema, data)
	if err != nil {
		evt := log.Error().Err(err)
		var de *avrobin.Error
		if errors.As(err, &de) {
			evt = evt.Int("offset", de.Offset).Str("path", de.Path).Stringer("code", de.Code)
		}
		evt.Msg("decode failed")
		os.Exit(1)
	}
	log.Debug().Int("records", len(records)).Msg("decoded")

	enc := json.NewEncoder(os.Stdout)
	if *pretty {
		enc.SetIndent("", "  ")
	}
	for _, rec := range records {
		if err := enc.Encode(rec); err != nil {
			log.Fatal().Err(err).Msg("render record")
		}
	}
}

func readInput(path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(os.Stdin)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return b, nil
}
