// Copyright 2025 Poiesic Systems
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


package storage

import (
	mus "github.com/mus-format/mus-go"
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/semdex/core"
)

// VectorMUS serializes embedding vectors as length-prefixed raw float32s.
var VectorMUS = ord.NewSliceSer[float32](raw.Float32)

// IDMUS serializes core.ID values as varints.
var IDMUS = idMUS{}

type idMUS struct{}

var _ mus.Serializer[core.ID] = idMUS{}

func (s idMUS) Marshal(id core.ID, bs []byte) int {
	return varint.Uint64.Marshal(uint64(id), bs)
}

func (s idMUS) Unmarshal(bs []byte) (core.ID, int, error) {
	v, n, err := varint.Uint64.Unmarshal(bs)
	return core.ID(v), n, err
}

func (s idMUS) Size(id core.ID) int {
	return varint.Uint64.Size(uint64(id))
}

func (s idMUS) Skip(bs []byte) (int, error) {
	return varint.Uint64.Skip(bs)
}

// EmbeddingRecordMUS serializes EmbeddingRecord values.
var EmbeddingRecordMUS = embeddingRecordMUS{}

type embeddingRecordMUS struct{}

var _ mus.Serializer[EmbeddingRecord] = embeddingRecordMUS{}

func (s embeddingRecordMUS) Marshal(v EmbeddingRecord, bs []byte) (n int) {
	n = IDMUS.Marshal(v.ChunkID, bs)
	n += ord.String.Marshal(v.Model, bs[n:])
	n += VectorMUS.Marshal(v.Vector, bs[n:])
	return n
}

func (s embeddingRecordMUS) Unmarshal(bs []byte) (v EmbeddingRecord, n int, err error) {
	v.ChunkID, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.Model, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Vector, n1, err = VectorMUS.Unmarshal(bs[n:])
	n += n1
	return
}

func (s embeddingRecordMUS) Size(v EmbeddingRecord) (size int) {
	size = IDMUS.Size(v.ChunkID)
	size += ord.String.Size(v.Model)
	size += VectorMUS.Size(v.Vector)
	return size
}

func (s embeddingRecordMUS) Skip(bs []byte) (n int, err error) {
	n, err = IDMUS.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = VectorMUS.Skip(bs[n:])
	n += n1
	return
}

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, IDMUS.Size(id))
	IDMUS.Marshal(id, buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	id, _, err := IDMUS.Unmarshal(data)
	return id, err
}

// MarshalEmbeddingRecord serializes an EmbeddingRecord to bytes.
func MarshalEmbeddingRecord(record *EmbeddingRecord) []byte {
	buf := make([]byte, EmbeddingRecordMUS.Size(*record))
	EmbeddingRecordMUS.Marshal(*record, buf)
	return buf
}

// UnmarshalEmbeddingRecord deserializes an EmbeddingRecord from bytes.
func UnmarshalEmbeddingRecord(data []byte) (*EmbeddingRecord, error) {
	record, _, err := EmbeddingRecordMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &record, nil
}
