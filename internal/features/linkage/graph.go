// Package linkage builds the holder "bubble map": an undirected graph
// over a token's largest holders, with an edge wherever two holders
// appear in each other's recent transaction counterparties. Graph
// density and the dominance of the most-connected wallet drive a
// cluster-risk score. Linkage is a proxy signal for coordinated
// wallets, not proof of common control.
package linkage

import (
	"context"
	"fmt"
	"sort"

	"phoenix-analyzer/internal/clients_api/helius"
	"phoenix-analyzer/internal/clients_api/solanarpc"
	"phoenix-analyzer/internal/features/format"
	logging "phoenix-analyzer/internal/infra/log"

	"go.uber.org/zap"
)

const (
	maxGraphNodes = 15
	graphTxLimit  = 120
	maxReasons    = 3
	maxEdgeSample = 8
)

// TxFetcher is the slice of the indexer client the graph needs.
type TxFetcher interface {
	HasKey() bool
	TransactionsForAddress(ctx context.Context, address string, limit int) ([]helius.Transaction, error)
}

type Edge struct {
	A string
	B string
}

type Risk struct {
	Score    int      `json:"score"`
	Label    string   `json:"label"`
	Reasons  []string `json:"reasons"`
	Edges    []string `json:"edges"`
	Density  float64  `json:"density"`
	HubRatio float64  `json:"hubRatio"`
}

// AssessClusters fetches counterparty sets for up to 15 holders and
// scores the resulting graph. Without an indexer key it returns the
// fixed neutral result; that state is distinct from a computed empty
// graph.
func AssessClusters(ctx context.Context, fetcher TxFetcher, holderList []solanarpc.HolderAccount) Risk {
	if fetcher == nil || !fetcher.HasKey() {
		return Risk{Score: 60, Label: "unknown", Reasons: []string{"No Helius key set"}}
	}

	nodes := graphNodes(holderList)
	if len(nodes) == 0 {
		return Risk{Score: 50, Label: "unknown", Reasons: []string{"No holder data available."}}
	}

	counterparties := make(map[string]map[string]struct{}, len(nodes))
	for _, addr := range nodes {
		txs, err := fetcher.TransactionsForAddress(ctx, addr, graphTxLimit)
		if err != nil {
			// Best effort per node: an unreachable address just has an
			// empty counterparty set.
			logging.LogWarn("Counterparty fetch failed",
				zap.String("address", addr), zap.Error(err))
			counterparties[addr] = map[string]struct{}{}
			continue
		}
		counterparties[addr] = helius.ExtractCounterparties(txs, addr)
	}

	edges, degrees := buildEdges(nodes, counterparties)
	density := graphDensity(len(nodes), len(edges))
	hubRatio := graphHubRatio(len(nodes), degrees)
	return scoreGraph(edges, density, hubRatio)
}

// graphNodes de-duplicates holder addresses, preserving insertion
// order, capped at maxGraphNodes.
func graphNodes(holderList []solanarpc.HolderAccount) []string {
	seen := make(map[string]struct{})
	var nodes []string
	for _, h := range holderList {
		if len(nodes) == maxGraphNodes {
			break
		}
		if h.Address == "" {
			continue
		}
		if _, dup := seen[h.Address]; dup {
			continue
		}
		seen[h.Address] = struct{}{}
		nodes = append(nodes, h.Address)
	}
	return nodes
}

// buildEdges symmetrizes the counterparty relation: an edge exists if
// either side saw the other, since indexers may report a transfer from
// only one perspective.
func buildEdges(nodes []string, counterparties map[string]map[string]struct{}) ([]Edge, map[string]int) {
	degrees := make(map[string]int, len(nodes))
	var edges []Edge
	for i := 0; i < len(nodes); i++ {
		for j := i + 1; j < len(nodes); j++ {
			a, b := nodes[i], nodes[j]
			_, abLinked := counterparties[a][b]
			_, baLinked := counterparties[b][a]
			if abLinked || baLinked {
				edges = append(edges, Edge{A: a, B: b})
				degrees[a]++
				degrees[b]++
			}
		}
	}
	return edges, degrees
}

func graphDensity(n, edgeCount int) float64 {
	if n <= 1 {
		return 0
	}
	return float64(edgeCount) / float64(n*(n-1)/2)
}

func graphHubRatio(n int, degrees map[string]int) float64 {
	if n <= 1 {
		return 0
	}
	maxDeg := 0
	for _, d := range degrees {
		if d > maxDeg {
			maxDeg = d
		}
	}
	return float64(maxDeg) / float64(n-1)
}

func scoreGraph(edges []Edge, density, hubRatio float64) Risk {
	score := 80
	var reasons []string

	switch {
	case density >= 0.5:
		score -= 25
		reasons = append(reasons, "Dense cluster among top holders (high linkage).")
	case density >= 0.25:
		score -= 12
		reasons = append(reasons, "Moderate linkage among top holders.")
	default:
		score += 8
		reasons = append(reasons, "Sparse linkage (healthy).")
	}

	switch {
	case hubRatio >= 0.6:
		score -= 20
		reasons = append(reasons, "Single hub wallet connects many holders.")
	case hubRatio >= 0.4:
		score -= 10
		reasons = append(reasons, "Some centralization (one wallet links several).")
	default:
		score += 5
		reasons = append(reasons, "No dominant hub detected.")
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	if len(reasons) > maxReasons {
		reasons = reasons[:maxReasons]
	}

	return Risk{
		Score:    score,
		Label:    clusterLabel(score),
		Reasons:  reasons,
		Edges:    renderEdges(edges),
		Density:  density,
		HubRatio: hubRatio,
	}
}

func clusterLabel(score int) string {
	switch {
	case score >= 80:
		return "low risk (clusters)"
	case score >= 60:
		return "medium risk (clusters)"
	default:
		return "high risk (clusters)"
	}
}

func renderEdges(edges []Edge) []string {
	// Order by the full address pair, then shorten, so the sample is
	// stable regardless of how the shortened forms compare.
	sorted := make([]Edge, len(edges))
	copy(sorted, edges)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].A != sorted[j].A {
			return sorted[i].A < sorted[j].A
		}
		return sorted[i].B < sorted[j].B
	})
	if len(sorted) > maxEdgeSample {
		sorted = sorted[:maxEdgeSample]
	}
	rendered := make([]string, 0, len(sorted))
	for _, e := range sorted {
		rendered = append(rendered, fmt.Sprintf("%s ↔ %s", format.ShortAddr(e.A), format.ShortAddr(e.B)))
	}
	return rendered
}
