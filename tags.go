package orrery

// FilterOp selects how a Filter combines its tags.
type FilterOp uint8

const (
	// FilterInclusive matches objects holding any of the tags.
	FilterInclusive FilterOp = iota
	// FilterExclusive seeds with the first tag's matches and narrows by each
	// following tag, so only objects holding every tag remain.
	FilterExclusive
)

// Filter is a tag query for World.FilterBy.
type Filter struct {
	Op   FilterOp
	Tags []string
}

// TagRegistry maps tag strings to the IDs currently holding them. An ID
// appears at most once per tag, and a tag whose last ID is removed is deleted.
type TagRegistry struct {
	byTag map[string][]ID
}

// NewTagRegistry creates an empty registry.
func NewTagRegistry() *TagRegistry {
	return &TagRegistry{byTag: make(map[string][]ID, 32)}
}

// Add registers id under tag. Registering an existing pair is a no-op.
func (r *TagRegistry) Add(tag string, id ID) {
	ids := r.byTag[tag]
	for _, existing := range ids {
		if existing == id {
			return
		}
	}
	r.byTag[tag] = append(ids, id)
}

// Remove unregisters id from tag. Unknown pairs are ignored.
func (r *TagRegistry) Remove(tag string, id ID) {
	ids, ok := r.byTag[tag]
	if !ok {
		return
	}
	for i, existing := range ids {
		if existing == id {
			copy(ids[i:], ids[i+1:])
			ids = ids[:len(ids)-1]
			break
		}
	}
	if len(ids) == 0 {
		delete(r.byTag, tag)
		return
	}
	r.byTag[tag] = ids
}

// IDs returns the IDs registered under tag in registration order. Unknown
// tags yield nil. The returned slice MUST NOT be mutated.
func (r *TagRegistry) IDs(tag string) []ID {
	return r.byTag[tag]
}

// Has reports whether id is registered under tag.
func (r *TagRegistry) Has(tag string, id ID) bool {
	for _, existing := range r.byTag[tag] {
		if existing == id {
			return true
		}
	}
	return false
}

// Len returns the number of tags with at least one ID.
func (r *TagRegistry) Len() int {
	return len(r.byTag)
}

// Resolve evaluates f and returns matching IDs. Inclusive results keep the
// order of first appearance across tags; exclusive results keep the order of
// the first tag's list. Tags with no matches contribute nothing.
func (r *TagRegistry) Resolve(f Filter) []ID {
	if len(f.Tags) == 0 {
		return nil
	}
	switch f.Op {
	case FilterExclusive:
		result := append([]ID(nil), r.byTag[f.Tags[0]]...)
		for _, tag := range f.Tags[1:] {
			if len(result) == 0 {
				break
			}
			kept := result[:0]
			for _, id := range result {
				if r.Has(tag, id) {
					kept = append(kept, id)
				}
			}
			result = kept
		}
		return result
	default:
		if len(f.Tags) == 1 {
			return append([]ID(nil), r.byTag[f.Tags[0]]...)
		}
		seen := make(map[ID]struct{})
		var result []ID
		for _, tag := range f.Tags {
			for _, id := range r.byTag[tag] {
				if _, dup := seen[id]; dup {
					continue
				}
				seen[id] = struct{}{}
				result = append(result, id)
			}
		}
		return result
	}
}
