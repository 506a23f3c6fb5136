package store

// collection keeps records by id in insertion order.
type collection[T any] struct {
	items map[string]T
	order []string
}

func newCollection[T any]() *collection[T] {
	return &collection[T]{items: make(map[string]T)}
}

func (c *collection[T]) get(id string) (T, bool) {
	v, ok := c.items[id]
	return v, ok
}

func (c *collection[T]) set(id string, v T) (prev T, existed bool) {
	prev, existed = c.items[id]
	if !existed {
		c.order = append(c.order, id)
	}
	c.items[id] = v
	return prev, existed
}

func (c *collection[T]) remove(id string) (prev T, idx int, ok bool) {
	prev, ok = c.items[id]
	if !ok {
		return prev, -1, false
	}
	delete(c.items, id)
	for i, candidate := range c.order {
		if candidate == id {
			idx = i
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return prev, idx, true
}

// restore puts a removed record back at its former position.
func (c *collection[T]) restore(id string, v T, idx int) {
	c.items[id] = v
	if idx < 0 || idx > len(c.order) {
		c.order = append(c.order, id)
		return
	}
	c.order = append(c.order, "")
	copy(c.order[idx+1:], c.order[idx:])
	c.order[idx] = id
}

func (c *collection[T]) list(keep func(T) bool) []T {
	res := make([]T, 0, len(c.order))
	for _, id := range c.order {
		v := c.items[id]
		if keep == nil || keep(v) {
			res = append(res, v)
		}
	}
	return res
}

func (c *collection[T]) len() int { return len(c.items) }

func put[T any](tx *Tx, c *collection[T], id string, v T) {
	prev, existed := c.set(id, v)
	tx.onRollback(func() {
		if existed {
			c.set(id, prev)
			return
		}
		c.remove(id)
	})
}

func del[T any](tx *Tx, c *collection[T], id string) (T, bool) {
	prev, idx, ok := c.remove(id)
	if ok {
		tx.onRollback(func() { c.restore(id, prev, idx) })
	}
	return prev, ok
}
