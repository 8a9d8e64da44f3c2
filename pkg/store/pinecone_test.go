// Copyright 2025 Kadir Pekel
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

package store

import (
	"testing"

	"github.com/pinecone-io/go-pinecone/pinecone"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"
)

func TestNewPineconeProviderRequiresAPIKey(t *testing.T) {
	_, err := NewPineconeProvider(PineconeConfig{})
	require.Error(t, err)
}

func TestConvertPineconeResultsSkipsMatchesWithoutVector(t *testing.T) {
	results := convertPineconeResults([]*pinecone.ScoredVector{{Vector: nil}})
	require.Empty(t, results)
}

func TestConvertPineconeResultsExtractsIDScoreAndContent(t *testing.T) {
	meta, err := structpb.NewStruct(map[string]interface{}{"content": "hello world", "week": float64(3)})
	require.NoError(t, err)

	match := &pinecone.ScoredVector{
		Score: 0.92,
		Vector: &pinecone.Vector{
			Id:       "chunk-1",
			Values:   []float32{0.1, 0.2},
			Metadata: meta,
		},
	}
	results := convertPineconeResults([]*pinecone.ScoredVector{match})
	require.Len(t, results, 1)
	require.Equal(t, "chunk-1", results[0].ID)
	require.Equal(t, float32(0.92), results[0].Score)
	require.Equal(t, "hello world", results[0].Content)
	require.Equal(t, []float32{0.1, 0.2}, results[0].Vector)
	require.Equal(t, float64(3), results[0].Metadata["week"])
}
