package history

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/deal-forensics/internal/embedcache"
	"github.com/sells-group/deal-forensics/internal/model"
)

func TestRankBySimilarity(t *testing.T) {
	cache, err := embedcache.New(filepath.Join(t.TempDir(), "vectors.json"))
	require.NoError(t, err)

	doc := "deal document text"
	require.NoError(t, cache.Set(doc, []float64{1, 0, 0}, nil))
	require.NoError(t, cache.Set("Far Deal", []float64{0, 1, 0}, nil))
	require.NoError(t, cache.Set("Near Deal", []float64{0.9, 0.1, 0}, nil))

	deals := []model.HistoricalDeal{
		{DealName: "Far Deal"},
		{DealName: "Uncached Deal"},
		{DealName: "Near Deal"},
	}

	ranked := RankBySimilarity(cache, doc, deals)
	require.Len(t, ranked, 3)
	assert.Equal(t, "Near Deal", ranked[0].DealName)
	assert.Equal(t, "Far Deal", ranked[1].DealName)
	assert.Equal(t, "Uncached Deal", ranked[2].DealName)
}

func TestRankBySimilarity_NoDocumentVector(t *testing.T) {
	cache, err := embedcache.New(filepath.Join(t.TempDir(), "vectors.json"))
	require.NoError(t, err)

	deals := []model.HistoricalDeal{
		{DealName: "First"},
		{DealName: "Second"},
	}
	ranked := RankBySimilarity(cache, "never embedded", deals)
	assert.Equal(t, deals, ranked)
}

func TestRankBySimilarity_NilCache(t *testing.T) {
	deals := []model.HistoricalDeal{{DealName: "Only"}}
	assert.Equal(t, deals, RankBySimilarity(nil, "doc", deals))
}

func TestCosine(t *testing.T) {
	assert.InDelta(t, 1.0, cosine([]float64{1, 2}, []float64{2, 4}), 1e-9)
	assert.InDelta(t, 0.0, cosine([]float64{1, 0}, []float64{0, 1}), 1e-9)
	assert.Equal(t, 0.0, cosine([]float64{1}, []float64{1, 2}))
	assert.Equal(t, 0.0, cosine([]float64{0, 0}, []float64{1, 2}))
}
