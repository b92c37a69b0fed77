package orrery

// HandleKind names the structural operation a Handle tracks.
type HandleKind uint8

const (
	// HandleAdd tracks an Add, AddTo or AddToObject.
	HandleAdd HandleKind = iota
	// HandleRemove tracks a Remove or RemoveObject.
	HandleRemove
	// HandleMove tracks a Move.
	HandleMove
)

func (k HandleKind) String() string {
	switch k {
	case HandleAdd:
		return "add"
	case HandleRemove:
		return "remove"
	case HandleMove:
		return "move"
	default:
		return "unknown"
	}
}

// Handle tracks a queued add, remove, or move. It resolves synchronously when
// the World commits, or is rejected when the Loop stops first. Callers must
// not assume the operation has taken effect before Done reports true.
type Handle struct {
	kind      HandleKind
	obj       Object
	id        ID
	done      bool
	err       error
	callbacks []func(*Handle)
}

func newHandle(kind HandleKind, obj Object) *Handle {
	return &Handle{kind: kind, obj: obj}
}

// Kind returns the tracked operation.
func (h *Handle) Kind() HandleKind { return h.kind }

// Object returns the object the operation applies to.
func (h *Handle) Object() Object { return h.obj }

// ID returns the object's ID after a successful add or move. After a remove
// it returns the ID the object held.
func (h *Handle) ID() ID { return h.id }

// Done reports whether the operation was committed or rejected.
func (h *Handle) Done() bool { return h.done }

// Err returns the rejection reason, or nil if the operation committed or is
// still pending.
func (h *Handle) Err() error { return h.err }

// OnResolve registers fn to run when the handle resolves. If it already has,
// fn runs immediately.
func (h *Handle) OnResolve(fn func(*Handle)) {
	if h.done {
		fn(h)
		return
	}
	h.callbacks = append(h.callbacks, fn)
}

func (h *Handle) resolve(id ID, err error) {
	if h.done {
		return
	}
	h.done = true
	h.id = id
	h.err = err
	callbacks := h.callbacks
	h.callbacks = nil
	for _, fn := range callbacks {
		fn(h)
	}
}
