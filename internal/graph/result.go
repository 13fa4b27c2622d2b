package graph

// ShortestPathResult is the outcome of a shortest-path computation.
//
// When Reachable is false the distance is absent: Distance is 0 and Path is
// empty. When Reachable is true, Path starts at Source and ends at Target.
type ShortestPathResult struct {
	Source    NodeID   `json:"source"`
	Target    NodeID   `json:"target"`
	Distance  uint32   `json:"distance"`
	Reachable bool     `json:"reachable"`
	Path      []NodeID `json:"path"`
}

// Unreachable returns the result for a target with no known path.
func Unreachable(source, target NodeID) ShortestPathResult {
	return ShortestPathResult{Source: source, Target: target, Path: []NodeID{}}
}

// ReconstructPath builds the result for target from finished (or partially
// finished) state by walking predecessor links back to source.
//
// It never panics on inconsistent state: an out-of-range target is
// unreachable, and the walk stops after len(Distances) hops so a corrupted
// predecessor cycle cannot loop forever.
func ReconstructPath(state *DijkstraState, source, target NodeID) ShortestPathResult {
	n := len(state.Distances)
	if target < 0 || int(target) >= n || state.Distances[target] == Infinity {
		return Unreachable(source, target)
	}

	path := []NodeID{target}
	current := target
	for hops := 0; current != source && hops < n; hops++ {
		pred := state.Predecessors[current]
		if pred == NoNode {
			break
		}
		path = append(path, pred)
		current = pred
	}
	if current != source {
		path = append(path, source)
	}

	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}

	return ShortestPathResult{
		Source:    source,
		Target:    target,
		Distance:  state.Distances[target],
		Reachable: true,
		Path:      path,
	}
}
