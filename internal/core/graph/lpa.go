package graph

import (
	"sort"

	"github.com/agenthands/factcheck/internal/core/model"
)

// DefaultClusterIterations bounds label propagation.
const DefaultClusterIterations = 20

// Clusters groups paragraphs connected by Consistent edges using weighted
// label propagation. Each node starts with its own ID as label and adopts
// the label with the largest total edge weight among its neighbours; ties go
// to the lexicographically largest label. Singletons are dropped. Clusters
// and their members are sorted.
func (g *Graph) Clusters() [][]string {
	n := len(g.Nodes)
	if n == 0 {
		return nil
	}
	adj := make([][]neighbor, n)
	for _, e := range g.Edges {
		if e.Tag != model.EdgeConsistent {
			continue
		}
		adj[e.Source] = append(adj[e.Source], neighbor{e.Target, e.Weight})
		adj[e.Target] = append(adj[e.Target], neighbor{e.Source, e.Weight})
	}

	labels := make([]string, n)
	for i, node := range g.Nodes {
		labels[i] = node.ID
	}

	for iter := 0; iter < DefaultClusterIterations; iter++ {
		changed := 0
		for u := 0; u < n; u++ {
			if len(adj[u]) == 0 {
				continue
			}
			weights := make(map[string]float64)
			best := 0.0
			for _, nb := range adj[u] {
				l := labels[nb.node]
				weights[l] += nb.weight
				if weights[l] > best {
					best = weights[l]
				}
			}
			var candidates []string
			for l, w := range weights {
				if w == best {
					candidates = append(candidates, l)
				}
			}
			sort.Strings(candidates)
			label := candidates[len(candidates)-1]
			if labels[u] != label {
				labels[u] = label
				changed++
			}
		}
		if changed == 0 {
			break
		}
	}

	groups := make(map[string][]string)
	for i, l := range labels {
		groups[l] = append(groups[l], g.Nodes[i].ID)
	}
	var clusters [][]string
	for _, members := range groups {
		if len(members) < 2 {
			continue
		}
		sort.Strings(members)
		clusters = append(clusters, members)
	}
	sort.Slice(clusters, func(i, j int) bool { return clusters[i][0] < clusters[j][0] })
	return clusters
}
