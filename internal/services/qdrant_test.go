package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQdrantConfigFromURL(t *testing.T) {
	tests := []struct {
		url     string
		host    string
		port    int
		tls     bool
		wantErr bool
	}{
		{url: "http://localhost", host: "localhost", port: 6334},
		{url: "http://qdrant:7000", host: "qdrant", port: 7000},
		{url: "https://xyz.cloud.qdrant.io:6334", host: "xyz.cloud.qdrant.io", port: 6334, tls: true},
		{url: "qdrant:6334", wantErr: true},
		{url: "http://qdrant:port", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			cfg, err := qdrantConfigFromURL(tt.url, "key")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.host, cfg.Host)
			assert.Equal(t, tt.port, cfg.Port)
			assert.Equal(t, tt.tls, cfg.UseTLS)
			assert.Equal(t, "key", cfg.APIKey)
		})
	}
}

func TestRubricChunkPointIDIsStable(t *testing.T) {
	a := RubricChunk{DocID: "rubric", Index: 0}
	assert.Equal(t, a.PointID(), RubricChunk{DocID: "rubric", Index: 0, Text: "changed"}.PointID())
	assert.NotEqual(t, a.PointID(), RubricChunk{DocID: "rubric", Index: 1}.PointID())
	assert.NotEqual(t, a.PointID(), RubricChunk{DocID: "other", Index: 0}.PointID())
}

func TestChunkFilter(t *testing.T) {
	whole := chunkFilter("rubric", 0)
	require.Len(t, whole.Must, 1)
	assert.Equal(t, "doc_id", whole.Must[0].GetField().GetKey())
	assert.Equal(t, "rubric", whole.Must[0].GetField().GetMatch().GetKeyword())

	tail := chunkFilter("rubric", 4)
	require.Len(t, tail.Must, 2)
	rng := tail.Must[1].GetField().GetRange()
	require.NotNil(t, rng)
	assert.Equal(t, "chunk_index", tail.Must[1].GetField().GetKey())
	assert.Equal(t, 4.0, rng.GetGte())
}
