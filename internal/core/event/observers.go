package event

// Handle identifies one registration in an Observers list.
type Handle uint64

type observer[T any] struct {
	handle Handle
	fn     func(T)
}

// Observers is an ordered list of callbacks for one notification kind.
// The zero value is ready to use. Accessed only from the tick goroutine; no locks.
type Observers[T any] struct {
	next Handle
	subs []observer[T]
}

// Add registers fn and returns a handle for Remove. Delivery follows registration order.
func (o *Observers[T]) Add(fn func(T)) Handle {
	o.next++
	o.subs = append(o.subs, observer[T]{handle: o.next, fn: fn})
	return o.next
}

// Remove drops the registration for h. Returns false if h is not registered.
func (o *Observers[T]) Remove(h Handle) bool {
	for i, s := range o.subs {
		if s.handle == h {
			o.subs = append(o.subs[:i], o.subs[i+1:]...)
			return true
		}
	}
	return false
}

// Notify calls every registered callback with v.
// Iterates a snapshot so callbacks may add or remove registrations.
func (o *Observers[T]) Notify(v T) {
	if len(o.subs) == 0 {
		return
	}
	snapshot := make([]observer[T], len(o.subs))
	copy(snapshot, o.subs)
	for _, s := range snapshot {
		s.fn(v)
	}
}

func (o *Observers[T]) Len() int { return len(o.subs) }
