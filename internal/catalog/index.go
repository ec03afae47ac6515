package catalog

// Index is the flattened, id-unique view over the reference categories.
//
// Repeated ids collapse to one canonical item: it keeps the position where the
// id was first seen and the data from where it was last seen. Category entries
// are rewritten to point at the canonical item. An Index is never mutated after
// construction and is safe for concurrent reads.
type Index struct {
	categories []Category
	items      []Item
	byID       map[int]int
}

func NewIndex(categories []Category) *Index {
	idx := &Index{byID: make(map[int]int)}

	for _, c := range categories {
		for _, item := range c.Items {
			if pos, ok := idx.byID[item.ID]; ok {
				idx.items[pos] = item
				continue
			}
			idx.byID[item.ID] = len(idx.items)
			idx.items = append(idx.items, item)
		}
	}

	idx.categories = make([]Category, 0, len(categories))
	for _, c := range categories {
		resolved := Category{Title: c.Title, Items: make([]Item, 0, len(c.Items))}
		for _, item := range c.Items {
			resolved.Items = append(resolved.Items, idx.items[idx.byID[item.ID]])
		}
		idx.categories = append(idx.categories, resolved)
	}

	return idx
}

// Len returns the number of unique items.
func (x *Index) Len() int {
	return len(x.items)
}

// Items returns the unique items in canonical order.
func (x *Index) Items() []Item {
	out := make([]Item, len(x.items))
	copy(out, x.items)
	return out
}

// Categories returns the reference categories with canonical items.
func (x *Index) Categories() []Category {
	out := make([]Category, len(x.categories))
	for i, c := range x.categories {
		out[i] = Category{Title: c.Title, Items: append([]Item(nil), c.Items...)}
	}
	return out
}

// Category returns the reference category with the given title.
func (x *Index) Category(title string) (Category, bool) {
	for _, c := range x.categories {
		if c.Title == title {
			return Category{Title: c.Title, Items: append([]Item(nil), c.Items...)}, true
		}
	}
	return Category{}, false
}

func (x *Index) Lookup(id int) (Item, bool) {
	pos, ok := x.byID[id]
	if !ok {
		return Item{}, false
	}
	return x.items[pos], true
}

// Filter returns the items accepted by keep, in canonical order.
func (x *Index) Filter(keep func(Item) bool) []Item {
	var out []Item
	for _, item := range x.items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}

// Similar returns up to limit other items sharing a genre with id.
func (x *Index) Similar(id, limit int) []Item {
	target, ok := x.Lookup(id)
	if !ok {
		return nil
	}

	var out []Item
	for _, item := range x.items {
		if len(out) == limit {
			break
		}
		if item.ID != id && item.SharesGenre(target) {
			out = append(out, item)
		}
	}
	return out
}
