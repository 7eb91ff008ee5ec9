package lock

// ChainNode is one hop of a work chain.
type ChainNode struct {
	UID int    `json:"uid"`
	Tag string `json:"tag,omitempty"`
}

// WorkChain attributes work through a causal chain of UIDs. The first node
// is the attribution UID.
type WorkChain struct {
	Nodes []ChainNode `json:"nodes"`
}

// AttributionUID returns the UID charged for the chain, or -1 for an empty chain.
func (c WorkChain) AttributionUID() int {
	if len(c.Nodes) == 0 {
		return -1
	}
	return c.Nodes[0].UID
}

func (c WorkChain) equal(o WorkChain) bool {
	if len(c.Nodes) != len(o.Nodes) {
		return false
	}
	for i := range c.Nodes {
		if c.Nodes[i] != o.Nodes[i] {
			return false
		}
	}
	return true
}

// WorkSource is an ordered set of attributed UIDs plus work chains.
type WorkSource struct {
	UIDs   []int       `json:"uids,omitempty"`
	Chains []WorkChain `json:"chains,omitempty"`
}

// NewWorkSource builds a work source from uids, dropping duplicates.
func NewWorkSource(uids ...int) WorkSource {
	var ws WorkSource
	for _, uid := range uids {
		ws.AddUID(uid)
	}
	return ws
}

func (ws WorkSource) IsEmpty() bool {
	return len(ws.UIDs) == 0 && len(ws.Chains) == 0
}

// Size counts uids and chains.
func (ws WorkSource) Size() int {
	return len(ws.UIDs) + len(ws.Chains)
}

// AddUID appends uid if not already present. It reports whether ws changed.
func (ws *WorkSource) AddUID(uid int) bool {
	for _, u := range ws.UIDs {
		if u == uid {
			return false
		}
	}
	ws.UIDs = append(ws.UIDs, uid)
	return true
}

// AddChain appends chain if an identical chain is not already present.
func (ws *WorkSource) AddChain(chain WorkChain) bool {
	for _, c := range ws.Chains {
		if c.equal(chain) {
			return false
		}
	}
	nodes := make([]ChainNode, len(chain.Nodes))
	copy(nodes, chain.Nodes)
	ws.Chains = append(ws.Chains, WorkChain{Nodes: nodes})
	return true
}

// Add merges other into ws, preserving order and chains.
func (ws *WorkSource) Add(other WorkSource) bool {
	changed := false
	for _, uid := range other.UIDs {
		if ws.AddUID(uid) {
			changed = true
		}
	}
	for _, c := range other.Chains {
		if ws.AddChain(c) {
			changed = true
		}
	}
	return changed
}

// Clone returns a deep copy.
func (ws WorkSource) Clone() WorkSource {
	var out WorkSource
	out.Add(ws)
	return out
}

// AttributedUIDs lists every uid plus the attribution uid of every chain,
// in order and with repeats preserved so callers can refcount.
func (ws WorkSource) AttributedUIDs() []int {
	out := make([]int, 0, ws.Size())
	out = append(out, ws.UIDs...)
	for _, c := range ws.Chains {
		if uid := c.AttributionUID(); uid >= 0 {
			out = append(out, uid)
		}
	}
	return out
}

// Equal compares two work sources ignoring order.
func (ws WorkSource) Equal(o WorkSource) bool {
	if len(ws.UIDs) != len(o.UIDs) || len(ws.Chains) != len(o.Chains) {
		return false
	}
	for _, uid := range ws.UIDs {
		found := false
		for _, u := range o.UIDs {
			if u == uid {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	for _, c := range ws.Chains {
		found := false
		for _, oc := range o.Chains {
			if c.equal(oc) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
