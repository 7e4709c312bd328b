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
	"runtime"
)

const (
	// DefaultBufferSize is the default buffer size for protobuf un-marshaling.
	DefaultBufferSize = 1024 * 1024

	// DefaultBatchSize is the default batch size for unprocessed blobs.
	DefaultBatchSize = 16
)

// DefaultNCpu provides the default number of CPUs.
func DefaultNCpu() uint16 {
	cpus := uint16(runtime.GOMAXPROCS(-1))

	return max(cpus-1, 1)
}

// readerOptions provides optional configuration parameters for Reader construction.
type readerOptions struct {
	protoBufferSize int    // buffer size for protobuf un-marshaling
	protoBatchSize  int    // batch size for protobuf un-marshaling
	nCPU            uint16 // the number of CPUs to use for background processing
}

// ReaderOption configures how we set up the Reader.
type ReaderOption func(*readerOptions)

// WithProtoBufferSize records a buffer size for protobuf un-marshaling. No
// part of the Reader's decoding path reads this value.
func WithProtoBufferSize(s int) ReaderOption {
	return func(o *readerOptions) {
		o.protoBufferSize = s
	}
}

// WithProtoBatchSize lets you set how many blobs are batched for decoding
// and queued for each parallel worker.
func WithProtoBatchSize(s int) ReaderOption {
	return func(o *readerOptions) {
		o.protoBatchSize = s
	}
}

// WithNCpus lets you set the number of CPUs to use for background processing.
func WithNCpus(n uint16) ReaderOption {
	return func(o *readerOptions) {
		o.nCPU = n
	}
}

// defaultReaderConfig provides a default configuration for readers.
var defaultReaderConfig = readerOptions{
	protoBufferSize: DefaultBufferSize,
	protoBatchSize:  DefaultBatchSize,
	nCPU:            DefaultNCpu(),
}
