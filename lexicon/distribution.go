package lexicon

// Entry is one tag weight of a distribution.
type Entry struct {
	Tag    string
	Weight float64
}

// Distribution maps tags to weights and iterates in first-insertion order.
type Distribution struct {
	entries []Entry
	index   map[string]int
	total   float64
}

func NewDistribution() *Distribution {
	return &Distribution{index: make(map[string]int)}
}

func (d *Distribution) Add(tag string, weight float64) {
	if d.index == nil {
		d.index = make(map[string]int)
	}
	if i, ok := d.index[tag]; ok {
		d.entries[i].Weight += weight
	} else {
		d.index[tag] = len(d.entries)
		d.entries = append(d.entries, Entry{Tag: tag, Weight: weight})
	}
	d.total += weight
}

func (d *Distribution) Weight(tag string) float64 {
	if d == nil {
		return 0
	}
	if i, ok := d.index[tag]; ok {
		return d.entries[i].Weight
	}
	return 0
}

func (d *Distribution) Has(tag string) bool {
	if d == nil {
		return false
	}
	_, ok := d.index[tag]
	return ok
}

// Entries returns the entries in insertion order. The slice must not be modified.
func (d *Distribution) Entries() []Entry {
	if d == nil {
		return nil
	}
	return d.entries
}

func (d *Distribution) Total() float64 {
	if d == nil {
		return 0
	}
	return d.total
}

func (d *Distribution) Len() int {
	if d == nil {
		return 0
	}
	return len(d.entries)
}

func (d *Distribution) Empty() bool {
	return d.Len() == 0
}

// Normalized returns a copy whose weights sum to one. An empty or zero-mass distribution is returned as an empty copy.
func (d *Distribution) Normalized() *Distribution {
	res := NewDistribution()
	if d.Total() <= 0 {
		return res
	}
	for _, e := range d.Entries() {
		res.Add(e.Tag, e.Weight/d.total)
	}
	return res
}
