package history

import (
	"math"
	"sort"

	"github.com/sells-group/deal-forensics/internal/embedcache"
	"github.com/sells-group/deal-forensics/internal/model"
)

// RankBySimilarity reorders the historical corpus by cosine similarity
// between the document's cached embedding and each deal's cached embedding
// (keyed by deal name). Vectors are produced out of band; when the document
// or a deal has no cached vector, the affected entries keep their original
// relative order at the end of the slice. A nil cache is a no-op.
func RankBySimilarity(cache *embedcache.Cache, document string, deals []model.HistoricalDeal) []model.HistoricalDeal {
	if cache == nil || len(deals) < 2 {
		return deals
	}
	docVec, ok := cache.Get(document, nil)
	if !ok {
		return deals
	}

	type scored struct {
		deal model.HistoricalDeal
		sim  float64
		hit  bool
		idx  int
	}
	ranked := make([]scored, len(deals))
	for i, d := range deals {
		ranked[i] = scored{deal: d, idx: i}
		if vec, ok := cache.Get(d.DealName, nil); ok {
			ranked[i].sim = cosine(docVec, vec)
			ranked[i].hit = true
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].hit != ranked[j].hit {
			return ranked[i].hit
		}
		if !ranked[i].hit {
			return ranked[i].idx < ranked[j].idx
		}
		return ranked[i].sim > ranked[j].sim
	})

	out := make([]model.HistoricalDeal, len(ranked))
	for i, r := range ranked {
		out[i] = r.deal
	}
	return out
}

func cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
