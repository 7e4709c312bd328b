// Copyright 2017-25 the original author or authors.
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

package pbf_test

import (
	"bytes"
	"context"
	"fmt"
	"log"

	pbf "m4o.io/pbf/v2"
	"m4o.io/pbf/v2/model"
)

func Example() {
	var file bytes.Buffer

	w, err := pbf.NewWriter(&file, pbf.WithWritingProgram("example"))
	if err != nil {
		log.Fatal(err)
	}

	if err := w.Encode(&model.Node{ID: 1, Lat: 51.5074, Lon: -0.1278}); err != nil {
		log.Fatal(err)
	}

	if err := w.Encode(&model.Way{ID: 2, NodeIDs: []model.ID{1}}); err != nil {
		log.Fatal(err)
	}

	w.Close()

	r, err := pbf.NewReader(context.Background(), bytes.NewReader(file.Bytes()))
	if err != nil {
		log.Fatal(err)
	}

	var nc, wc, rc uint64

	err = r.ForEach(func(e model.Entity) error {
		switch e.(type) {
		case *model.Node:
			// Process Node e.
			nc++
		case *model.Way:
			// Process Way e.
			wc++
		case *model.Relation:
			// Process Relation e.
			rc++
		}

		return nil
	})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Nodes: %d, Ways: %d, Relations: %d\n", nc, wc, rc)
	// Output:
	// Nodes: 1, Ways: 1, Relations: 0
}
