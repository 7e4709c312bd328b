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

package pbf

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"m4o.io/pbf/v2/errs"
	"m4o.io/pbf/v2/internal/decoder"
	"m4o.io/pbf/v2/internal/pb"
	"m4o.io/pbf/v2/model"
)

// blobFailure records where in the file a read or decode failed, so the
// driver can report the earliest failure rather than the first noticed.
type blobFailure struct {
	err    error
	offset int64
}

// readBlobs fans blobs out, round-robin, across n channels so that n
// independent decode goroutines can each work a disjoint slice of the
// file concurrently. Order across channels is not preserved; callers that
// reduce with an associative, commutative operator don't need it to be,
// but each blob still carries the file offset it came from so a failure
// can be attributed deterministically regardless of which worker hit it.
func readBlobs(ctx context.Context, r *Reader, n uint16) ([]chan decoder.OffsetBlob, *blobFailure, <-chan struct{}) {
	inputs := make([]chan decoder.OffsetBlob, n)
	for i := range inputs {
		inputs[i] = make(chan decoder.OffsetBlob, r.cfg.protoBatchSize)
	}

	// fail is written only by the producer goroutine; the driver must wait
	// for done before reading it.
	fail := &blobFailure{}
	done := make(chan struct{})

	go func() {
		defer close(done)
		defer func() {
			for _, input := range inputs {
				close(input)
			}
		}()

		var i uint16

		for ob, err := range decoder.GenerateOffsetBlobReader(ctx, r.rdr) {
			if err != nil {
				fail.err = err
				fail.offset = ob.Offset

				return
			}

			select {
			case <-ctx.Done():
				fail.err = fmt.Errorf("%w: %w", errs.Cancelled, ctx.Err())
				fail.offset = ob.Offset

				return
			case inputs[i] <- ob:
			}

			i = (i + 1) % n
		}
	}()

	return inputs, fail, done
}

// ParMapReduce decodes r's entities across r's configured number of
// CPUs, applies mapFn to each one, and combines the results with reduce.
// reduce must be associative and commutative: it is used both to fold
// every worker's entities into that worker's running total and to
// combine the per-worker totals into the final result.
func ParMapReduce[T any](
	ctx context.Context,
	r *Reader,
	mapFn func(model.Entity) T,
	identity T,
	reduce func(T, T) T,
) (T, error) {
	fold := func(acc T, v T) T { return reduce(acc, v) }

	return ParMapFoldReduce(ctx, r, mapFn, fold, identity, reduce)
}

// ParMapFoldReduce decodes r's entities across r's configured number of
// CPUs. Each entity is mapped to a T by mapFn, folded into that worker's
// running accumulator of type A by fold, and once every worker has
// drained its share of the file the per-worker accumulators are combined
// with reduce.
//
// If more than one worker hits a decode error, the error reported is the
// one whose failing blob has the lowest byte offset in the file, the same
// error ParMapFoldReduce would return were the file decoded sequentially
// by a single worker, not simply whichever worker happened to notice
// first.
func ParMapFoldReduce[T, A any](
	ctx context.Context,
	r *Reader,
	mapFn func(model.Entity) T,
	fold func(A, T) A,
	identity A,
	reduce func(A, A) A,
) (A, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	n := r.cfg.nCPU
	if n == 0 {
		n = 1
	}

	inputs, prodFail, prodDone := readBlobs(ctx, r, n)

	results := make([]A, n)
	failures := make([]blobFailure, n)

	var wg sync.WaitGroup

	wg.Add(int(n))

	for i := uint16(0); i < n; i++ {
		go func(i uint16) {
			defer wg.Done()

			acc := identity

			for ob := range inputs[i] {
				for res := range decoder.DecodeBatch([]*pb.Blob{ob.Blob}) {
					if res.Error != nil {
						failures[i].err = res.Error
						failures[i].offset = ob.Offset
						cancel()

						return
					}

					for _, e := range res.Value {
						acc = fold(acc, mapFn(e))
					}
				}
			}

			results[i] = acc
		}(i)
	}

	wg.Wait()

	// A worker that failed exits without draining its channel, which can
	// leave the producer parked on a send; cancelling unparks it, and the
	// join makes its failure record safe to read.
	cancel()
	<-prodDone

	if err := selectFailure(append(failures, *prodFail)); err != nil {
		return identity, err
	}

	acc := identity
	for _, partial := range results {
		acc = reduce(acc, partial)
	}

	return acc, nil
}

// selectFailure picks the failure with the lowest byte offset, preferring
// real decode errors over the Cancelled the producer reports after a
// sibling worker has already failed and torn the pipeline down.
func selectFailure(failures []blobFailure) error {
	var (
		first     blobFailure
		cancelled error
		have      bool
	)

	for _, f := range failures {
		if f.err == nil {
			continue
		}

		if errors.Is(f.err, errs.Cancelled) {
			if cancelled == nil {
				cancelled = f.err
			}

			continue
		}

		if !have || f.offset < first.offset {
			first = f
			have = true
		}
	}

	if have {
		return first.err
	}

	return cancelled
}
