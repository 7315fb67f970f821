package validate

import (
	"context"

	"cfgprobe/internal/grammar"
)

// cancelCheckInterval is how many chart columns are processed between
// context checks.
const cancelCheckInterval = 256

type item struct {
	prod   int
	dot    int
	origin int
}

type column struct {
	items []item
	seen  map[item]struct{}
}

func (c *column) add(it item) {
	if _, ok := c.seen[it]; ok {
		return
	}
	c.seen[it] = struct{}{}
	c.items = append(c.items, it)
}

// recognizer is a scannerless Earley chart over byte offsets. Terminals are
// matched directly against the text after skipping ignored terminals, and
// nullable nonterminals are advanced at prediction time (Aycock-Horspool).
type recognizer struct {
	g     *grammar.Grammar
	text  string
	chart []*column
}

func newRecognizer(g *grammar.Grammar, text string) *recognizer {
	return &recognizer{g: g, text: text, chart: make([]*column, len(text)+1)}
}

func (r *recognizer) column(pos int) *column {
	c := r.chart[pos]
	if c == nil {
		c = &column{seen: map[item]struct{}{}}
		r.chart[pos] = c
	}
	return c
}

func (r *recognizer) run(ctx context.Context) Outcome {
	start := r.g.Start()
	for _, p := range r.g.Alternatives(start) {
		r.column(0).add(item{prod: p})
	}

	furthest := 0
	for pos := 0; pos < len(r.chart); pos++ {
		if pos%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return rejected("validation interrupted: %v", err)
			}
		}
		col := r.chart[pos]
		if col == nil {
			continue
		}
		furthest = pos
		r.process(pos, col)
	}

	for pos, col := range r.chart {
		if col == nil || !r.completesStart(col) {
			continue
		}
		for _, end := range r.g.SkipIgnored(r.text, pos) {
			if end == len(r.text) {
				return accepted()
			}
		}
	}
	if len(r.text) == 0 {
		return rejected("empty input")
	}
	return rejected("no derivation; input recognised up to byte %d of %d", furthest, len(r.text))
}

func (r *recognizer) process(pos int, col *column) {
	var positions []int
	ends := map[*grammar.Terminal][]int{}

	for k := 0; k < len(col.items); k++ {
		it := col.items[k]
		prod := r.g.Production(it.prod)

		if it.dot == len(prod.Body) {
			r.complete(pos, col, it, prod.Head)
			continue
		}

		sym := prod.Body[it.dot]
		next := item{prod: it.prod, dot: it.dot + 1, origin: it.origin}
		if !sym.Terminal {
			for _, p := range r.g.Alternatives(sym.Name) {
				col.add(item{prod: p, origin: pos})
			}
			if r.g.Nullable(sym.Name) {
				col.add(next)
			}
			continue
		}

		term, ok := r.g.Terminal(sym.Name)
		if !ok {
			continue
		}
		matched, cached := ends[term]
		if !cached {
			if positions == nil {
				positions = r.g.SkipIgnored(r.text, pos)
			}
			for _, p := range positions {
				if end := term.Match(r.text, p); end > pos {
					matched = append(matched, end)
				}
			}
			ends[term] = matched
		}
		for _, end := range matched {
			r.column(end).add(next)
		}
	}
}

func (r *recognizer) complete(pos int, col *column, done item, head string) {
	origin := r.chart[done.origin]
	for k := 0; k < len(origin.items); k++ {
		waiting := origin.items[k]
		prod := r.g.Production(waiting.prod)
		if waiting.dot >= len(prod.Body) {
			continue
		}
		sym := prod.Body[waiting.dot]
		if sym.Terminal || sym.Name != head {
			continue
		}
		col.add(item{prod: waiting.prod, dot: waiting.dot + 1, origin: waiting.origin})
	}
}

func (r *recognizer) completesStart(col *column) bool {
	start := r.g.Start()
	for _, it := range col.items {
		if it.origin != 0 {
			continue
		}
		prod := r.g.Production(it.prod)
		if prod.Head == start && it.dot == len(prod.Body) {
			return true
		}
	}
	return false
}
