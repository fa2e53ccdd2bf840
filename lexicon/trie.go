package lexicon

type trieNode struct {
	children map[rune]*trieNode
	dist     *Distribution
	depth    int
}

func newTrieNode(depth int) *trieNode {
	return &trieNode{depth: depth}
}

func (node *trieNode) child(r rune, create bool) *trieNode {
	if next, ok := node.children[r]; ok {
		return next
	}
	if !create {
		return nil
	}
	if node.children == nil {
		node.children = make(map[rune]*trieNode)
	}
	next := newTrieNode(node.depth + 1)
	node.children[r] = next
	return next
}

func (node *trieNode) add(tag string, weight float64) {
	if node.dist == nil {
		node.dist = NewDistribution()
	}
	node.dist.Add(tag, weight)
}

// Trie is a character trie whose nodes own their children. Nodes keep only their depth, no parent links.
type Trie struct {
	root  *trieNode
	nodes int
}

func NewTrie() *Trie {
	return &Trie{root: newTrieNode(0), nodes: 1}
}

func (trie *Trie) walkCreate(key []rune) *trieNode {
	node := trie.root
	for _, r := range key {
		next := node.child(r, false)
		if next == nil {
			next = node.child(r, true)
			trie.nodes++
		}
		node = next
	}
	return node
}

// Insert accumulates weight for tag at the node reached by key.
func (trie *Trie) Insert(key string, tag string, weight float64) {
	trie.walkCreate([]rune(key)).add(tag, weight)
}

func (trie *Trie) find(key []rune) *trieNode {
	node := trie.root
	for _, r := range key {
		if node = node.child(r, false); node == nil {
			return nil
		}
	}
	return node
}

// Lookup returns the distribution stored for key, or an empty distribution when there is none.
func (trie *Trie) Lookup(key string) *Distribution {
	node := trie.find([]rune(key))
	if node == nil || node.dist == nil {
		return NewDistribution()
	}
	return node.dist
}

// Path returns the nodes visited while following key from the root, root included.
// The walk stops early at the first missing child or after limit characters when limit is positive.
func (trie *Trie) path(key []rune, limit int) []*trieNode {
	nodes := []*trieNode{trie.root}
	node := trie.root
	for i, r := range key {
		if limit > 0 && i >= limit {
			break
		}
		if node = node.child(r, false); node == nil {
			break
		}
		nodes = append(nodes, node)
	}
	return nodes
}

func (trie *Trie) Size() int {
	return trie.nodes
}
