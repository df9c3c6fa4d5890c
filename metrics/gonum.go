package metrics

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/graph/community"
	"gonum.org/v1/gonum/graph/network"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/graphsentry/riskgraph/graph"
)

// GonumProvider computes graph metrics with gonum's graph algorithms.
// Betweenness, PageRank, shortest paths, connected components, and the
// Louvain community partition come from gonum; eigenvector and Katz
// centrality (which gonum does not expose) use the standard power and
// attenuated-walk iterations, and bridges/articulation points use the
// lowlink DFS. Results are deterministic: node ordering is fixed by
// sorted user IDs and the community resolution uses a fixed seed.
type GonumProvider struct {
	// PageRankDamping is the PageRank damping factor. Defaults to 0.85.
	PageRankDamping float64

	// PageRankTol is the PageRank convergence tolerance. Defaults to 1e-6.
	PageRankTol float64

	// KatzAlpha is the Katz attenuation factor. Defaults to 0.1.
	KatzAlpha float64

	// Iterations bounds the eigenvector and Katz iterations. Defaults
	// to 100.
	Iterations int
}

// NewGonumProvider returns a provider with the default parameters.
func NewGonumProvider() *GonumProvider {
	return &GonumProvider{
		PageRankDamping: 0.85,
		PageRankTol:     1e-6,
		KatzAlpha:       0.1,
		Iterations:      100,
	}
}

// Compute implements Provider.
func (p *GonumProvider) Compute(ctx context.Context, snap *graph.Snapshot) (*Set, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	ids := snap.UserIDs()
	n := len(ids)
	set := &Set{
		Centrality:         make(map[string]Centrality, n),
		Communities:        make(map[string]string, n),
		ArticulationPoints: make(map[string]bool),
	}
	if n == 0 {
		return set, nil
	}

	index := make(map[string]int64, n)
	for i, id := range ids {
		index[id] = int64(i)
	}

	// Undirected simple graph: multiple connection types between a pair
	// collapse into one topological edge.
	ug := simple.NewUndirectedGraph()
	for i := range ids {
		ug.AddNode(simple.Node(int64(i)))
	}
	adj := make([][]int64, n)
	edgePairs := make(map[[2]int64]struct{})
	for _, c := range snap.Connections() {
		a, b := index[c.A], index[c.B]
		key := [2]int64{a, b}
		if _, seen := edgePairs[key]; seen {
			continue
		}
		edgePairs[key] = struct{}{}
		ug.SetEdge(simple.Edge{F: simple.Node(a), T: simple.Node(b)})
		adj[a] = append(adj[a], b)
		adj[b] = append(adj[b], a)
	}
	edges := len(edgePairs)

	degree := p.degree(adj, n)
	betweenness := p.betweenness(ug, n)
	eigen := p.powerIteration(adj, n, 0)
	katz := p.powerIteration(adj, n, p.katzAlpha())
	pagerank := p.pageRank(adj, n)

	allPaths := path.DijkstraAllPaths(ug)
	closeness := p.closeness(&allPaths, n)

	comps := topo.ConnectedComponents(ug)
	set.Stats = p.stats(&allPaths, adj, n, edges, len(comps))

	for i, id := range ids {
		set.Centrality[id] = Centrality{
			Degree:      degree[i],
			Betweenness: betweenness[i],
			Closeness:   closeness[i],
			Eigenvector: eigen[i],
			Katz:        katz[i],
			PageRank:    pagerank[i],
		}
	}

	p.communities(ug, ids, set)
	p.cutStructures(adj, ids, snap, set)

	return set, nil
}

func (p *GonumProvider) degree(adj [][]int64, n int) []float64 {
	out := make([]float64, n)
	if n < 2 {
		return out
	}
	for i := range adj {
		out[i] = float64(len(adj[i])) / float64(n-1)
	}
	return out
}

func (p *GonumProvider) betweenness(ug *simple.UndirectedGraph, n int) []float64 {
	out := make([]float64, n)
	if n < 3 {
		return out
	}
	raw := network.Betweenness(ug)
	norm := float64(n-1) * float64(n-2) / 2
	for id, v := range raw {
		out[id] = clamp01(v / norm)
	}
	return out
}

// powerIteration computes eigenvector centrality when alpha is zero and
// Katz centrality otherwise, normalized so the maximum is 1.
func (p *GonumProvider) powerIteration(adj [][]int64, n int, alpha float64) []float64 {
	x := make([]float64, n)
	next := make([]float64, n)
	for i := range x {
		x[i] = 1
	}
	iters := p.Iterations
	if iters <= 0 {
		iters = 100
	}
	for it := 0; it < iters; it++ {
		for i := range next {
			sum := 0.0
			for _, j := range adj[i] {
				sum += x[j]
			}
			if alpha > 0 {
				next[i] = alpha*sum + 1
			} else {
				next[i] = sum
			}
		}
		// Scale to unit max each round so the iteration cannot overflow.
		max := 0.0
		for _, v := range next {
			if v > max {
				max = v
			}
		}
		if max == 0 {
			return make([]float64, n)
		}
		for i := range next {
			x[i] = next[i] / max
		}
	}
	return x
}

func (p *GonumProvider) pageRank(adj [][]int64, n int) []float64 {
	dg := simple.NewDirectedGraph()
	for i := 0; i < n; i++ {
		dg.AddNode(simple.Node(int64(i)))
	}
	for i, neighbors := range adj {
		for _, j := range neighbors {
			dg.SetEdge(simple.Edge{F: simple.Node(int64(i)), T: simple.Node(j)})
		}
	}
	damp := p.PageRankDamping
	if damp == 0 {
		damp = 0.85
	}
	tol := p.PageRankTol
	if tol == 0 {
		tol = 1e-6
	}
	raw := network.PageRank(dg, damp, tol)

	out := make([]float64, n)
	max := 0.0
	for _, v := range raw {
		if v > max {
			max = v
		}
	}
	if max == 0 {
		return out
	}
	for id, v := range raw {
		out[id] = v / max
	}
	return out
}

// closeness uses the Wasserman-Faust formulation, which stays in [0,1]
// and is defined on disconnected graphs: ((r-1)/(n-1)) * ((r-1)/sum d),
// with r the size of the node's reachable set.
func (p *GonumProvider) closeness(allPaths *path.AllShortest, n int) []float64 {
	out := make([]float64, n)
	if n < 2 {
		return out
	}
	for i := 0; i < n; i++ {
		sum := 0.0
		reachable := 0
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			d := allPaths.Weight(int64(i), int64(j))
			if math.IsInf(d, 1) {
				continue
			}
			sum += d
			reachable++
		}
		if reachable == 0 || sum == 0 {
			continue
		}
		r := float64(reachable)
		out[i] = (r / float64(n-1)) * (r / sum)
	}
	return out
}

func (p *GonumProvider) stats(allPaths *path.AllShortest, adj [][]int64, n, edges, components int) GraphStats {
	stats := GraphStats{
		Nodes:         n,
		Edges:         edges,
		Components:    components,
		AvgClustering: averageClustering(adj),
	}
	if n > 1 {
		stats.Density = 2 * float64(edges) / (float64(n) * float64(n-1))
	}

	// Distance statistics are undefined on disconnected graphs and are
	// omitted rather than zeroed.
	if components != 1 {
		return stats
	}
	if n == 1 {
		zero := 0.0
		stats.Diameter, stats.Radius, stats.AvgPathLength = &zero, &zero, &zero
		return stats
	}

	diameter := 0.0
	radius := math.Inf(1)
	total := 0.0
	pairs := 0
	for i := 0; i < n; i++ {
		ecc := 0.0
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			d := allPaths.Weight(int64(i), int64(j))
			if d > ecc {
				ecc = d
			}
			if j > i {
				total += d
				pairs++
			}
		}
		if ecc > diameter {
			diameter = ecc
		}
		if ecc < radius {
			radius = ecc
		}
	}
	avg := total / float64(pairs)
	stats.Diameter, stats.Radius, stats.AvgPathLength = &diameter, &radius, &avg
	return stats
}

func (p *GonumProvider) communities(ug *simple.UndirectedGraph, ids []string, set *Set) {
	reduced := community.Modularize(ug, 1.0, rand.NewPCG(1, 1))
	groups := reduced.Communities()

	// Label communities by their smallest member ID so the partition
	// labels are stable across runs.
	type comm struct {
		smallest string
		members  []string
	}
	comms := make([]comm, 0, len(groups))
	for _, nodes := range groups {
		members := make([]string, 0, len(nodes))
		for _, node := range nodes {
			members = append(members, ids[node.ID()])
		}
		sort.Strings(members)
		comms = append(comms, comm{smallest: members[0], members: members})
	}
	sort.Slice(comms, func(i, j int) bool { return comms[i].smallest < comms[j].smallest })
	for i, c := range comms {
		label := fmt.Sprintf("c%d", i)
		for _, m := range c.members {
			set.Communities[m] = label
		}
	}
}

// cutStructures finds bridges and articulation points with the classic
// lowlink DFS.
func (p *GonumProvider) cutStructures(adj [][]int64, ids []string, snap *graph.Snapshot, set *Set) {
	n := len(adj)
	disc := make([]int, n)
	low := make([]int, n)
	for i := range disc {
		disc[i] = -1
	}
	timer := 0

	var bridges [][2]int64
	articulation := make(map[int64]bool)

	var dfs func(u, parent int64)
	dfs = func(u, parent int64) {
		disc[u] = timer
		low[u] = timer
		timer++
		children := 0
		for _, v := range adj[u] {
			if v == parent {
				continue
			}
			if disc[v] != -1 {
				if disc[v] < low[u] {
					low[u] = disc[v]
				}
				continue
			}
			children++
			dfs(v, u)
			if low[v] < low[u] {
				low[u] = low[v]
			}
			if low[v] > disc[u] {
				bridges = append(bridges, [2]int64{u, v})
			}
			if parent != -1 && low[v] >= disc[u] {
				articulation[u] = true
			}
		}
		if parent == -1 && children > 1 {
			articulation[u] = true
		}
	}

	for i := int64(0); i < int64(n); i++ {
		if disc[i] == -1 {
			dfs(i, -1)
		}
	}

	for _, b := range bridges {
		set.Bridges = append(set.Bridges, graph.MakeEdgeKey(ids[b[0]], ids[b[1]], ""))
	}
	sort.Slice(set.Bridges, func(i, j int) bool {
		if set.Bridges[i].A != set.Bridges[j].A {
			return set.Bridges[i].A < set.Bridges[j].A
		}
		return set.Bridges[i].B < set.Bridges[j].B
	})
	for u := range articulation {
		set.ArticulationPoints[ids[u]] = true
	}
}

func averageClustering(adj [][]int64) float64 {
	n := len(adj)
	if n == 0 {
		return 0
	}
	neighborSets := make([]map[int64]struct{}, n)
	for i, list := range adj {
		neighborSets[i] = make(map[int64]struct{}, len(list))
		for _, j := range list {
			neighborSets[i][j] = struct{}{}
		}
	}
	total := 0.0
	for _, list := range adj {
		k := len(list)
		if k < 2 {
			continue
		}
		links := 0
		for a := 0; a < k; a++ {
			for b := a + 1; b < k; b++ {
				if _, ok := neighborSets[list[a]][list[b]]; ok {
					links++
				}
			}
		}
		total += 2 * float64(links) / (float64(k) * float64(k-1))
	}
	return total / float64(n)
}

func (p *GonumProvider) katzAlpha() float64 {
	if p.KatzAlpha > 0 {
		return p.KatzAlpha
	}
	return 0.1
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
