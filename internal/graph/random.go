package graph

// DefaultSeed is the seed used by the benchmark plans when none is given.
const DefaultSeed uint64 = 12345

// lcg is a 64-bit linear congruential generator. Graph generation needs a
// fixed, portable sequence so benchmark inputs are identical across runs and
// machines.
type lcg struct {
	state uint64
}

func (r *lcg) next() uint64 {
	r.state = r.state*6364136223846793005 + 1442695040888963407
	return r.state >> 32
}

// intn returns a value in [0, n). The modulo stays in uint64 so the result
// is never negative when int is 32 bits wide.
func (r *lcg) intn(n int) int {
	return int(r.next() % uint64(n))
}

// RandomConnected generates a connected undirected graph (stored as mirrored
// directed edges) with the requested number of undirected edges.
//
// A random spanning tree is laid first so every node is reachable from every
// other; the remaining edges are drawn at random, skipping self-loops and
// duplicates. Weights fall in 1..maxWeight. The same seed yields the same graph.
func RandomConnected(nodes, edges int, maxWeight uint32, seed uint64) *Graph {
	g := New(nodes)
	if nodes == 0 {
		return g
	}
	if maxWeight == 0 {
		maxWeight = 1
	}

	rng := &lcg{state: seed}
	type pair struct{ a, b int }
	seen := make(map[pair]struct{}, edges)
	key := func(a, b int) pair {
		if a > b {
			a, b = b, a
		}
		return pair{a, b}
	}

	for i := 1; i < nodes; i++ {
		parent := rng.intn(i)
		weight := uint32(rng.next()%uint64(maxWeight)) + 1
		_ = g.AddBidirectionalEdge(NodeID(parent), NodeID(i), weight)
		seen[key(parent, i)] = struct{}{}
	}

	added := nodes - 1
	for attempts := 0; added < edges && attempts < edges*10; attempts++ {
		from := rng.intn(nodes)
		to := rng.intn(nodes)
		if from == to {
			continue
		}
		k := key(from, to)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		weight := uint32(rng.next()%uint64(maxWeight)) + 1
		_ = g.AddBidirectionalEdge(NodeID(from), NodeID(to), weight)
		added++
	}

	return g
}
