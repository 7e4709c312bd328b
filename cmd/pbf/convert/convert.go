// Copyright 2025 the original author or authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package convert

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"m4o.io/pbf/v2"
	"m4o.io/pbf/v2/cmd/pbf/cli"
	"m4o.io/pbf/v2/errs"
)

func init() {
	cli.RootCmd.AddCommand(convertCmd)

	flags := convertCmd.Flags()
	flags.StringP("compression", "z", "zlib", "blob compression for the output: raw, zlib, lzma, lz4, or zstd")
}

var convertCmd = &cobra.Command{
	Use:   "convert <OSM input file> <OSM output file>",
	Short: "Rewrite an OSM file with a different blob compression",
	Long:  "Rewrite an OSM file, re-encoding every node, way, and relation with the chosen blob compression",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		name, err := cmd.Flags().GetString("compression")
		if err != nil {
			log.Fatal(err)
		}

		compression, err := compressionFor(name)
		if err != nil {
			log.Fatal(err)
		}

		f, err := os.Open(args[0])
		if err != nil {
			log.Fatal(fmt.Errorf("%w: %w", errs.Io, err))
		}

		in, err := cli.WrapInputFile(f)
		if err != nil {
			log.Fatal(fmt.Errorf("%w: %w", errs.Io, err))
		}

		out, err := os.Create(args[1])
		if err != nil {
			log.Fatal(fmt.Errorf("%w: %w", errs.Io, err))
		}

		if err := runConvert(in, out, compression); err != nil {
			log.Fatal(err)
		}

		if err := in.Close(); err != nil {
			log.Fatal(err)
		}

		if err := out.Close(); err != nil {
			log.Fatal(err)
		}
	},
}

func runConvert(in io.Reader, out *os.File, compression pbf.BlobCompression) error {
	r, err := pbf.NewReader(context.Background(), in)
	if err != nil {
		return fmt.Errorf("cannot read input: %w", err)
	}

	hdr := r.Header

	w, err := pbf.NewWriter(out,
		pbf.WithCompression(compression),
		pbf.WithRequiredFeatures(hdr.RequiredFeatures...),
		pbf.WithOptionalFeatures(hdr.OptionalFeatures...),
		pbf.WithWritingProgram("pbf convert"),
		pbf.WithSource(hdr.Source),
		pbf.WithOsmosisReplicationTimestamp(hdr.OsmosisReplicationTimestamp),
		pbf.WithOsmosisReplicationSequenceNumber(hdr.OsmosisReplicationSequenceNumber),
		pbf.WithOsmosisReplicationBaseURL(hdr.OsmosisReplicationBaseURL),
	)
	if err != nil {
		return fmt.Errorf("cannot write %s: %w", out.Name(), err)
	}

	if err := r.ForEach(w.Encode); err != nil {
		return fmt.Errorf("cannot convert: %w", err)
	}

	w.Close()

	return nil
}

func compressionFor(name string) (pbf.BlobCompression, error) {
	switch strings.ToLower(name) {
	case "raw":
		return pbf.RAW, nil
	case "zlib":
		return pbf.ZLIB, nil
	case "lzma":
		return pbf.LZMA, nil
	case "lz4":
		return pbf.LZ4, nil
	case "zstd":
		return pbf.ZSTD, nil
	default:
		return pbf.ZLIB, fmt.Errorf("unknown compression %q", name)
	}
}
