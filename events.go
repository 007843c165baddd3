package gfx

// EventKind identifies a queued platform event.
type EventKind uint8

const (
	EventExit   EventKind = iota // the user or a script asked to quit
	EventResize                  // the back buffer changed size
)

// Event is a platform event delivered through an EventQueue.
type Event struct {
	Kind          EventKind
	Width, Height int
}

// EventQueue collects window events between frames. The runner feeds it
// from Ebitengine; tests and scripts inject events directly.
type EventQueue struct {
	queue         []Event
	exit          bool
	width, height int
}

// NewEventQueue returns a queue reporting the given initial size.
func NewEventQueue(width, height int) *EventQueue {
	return &EventQueue{width: width, height: height}
}

// RequestExit queues an exit request. It is consumed on the next
// ProcessEvents call.
func (q *EventQueue) RequestExit() {
	q.queue = append(q.queue, Event{Kind: EventExit})
}

// InjectResize queues a resize to width x height. Sizes equal to the last
// queued size are dropped.
func (q *EventQueue) InjectResize(width, height int) {
	lw, lh := q.width, q.height
	for i := len(q.queue) - 1; i >= 0; i-- {
		if q.queue[i].Kind == EventResize {
			lw, lh = q.queue[i].Width, q.queue[i].Height
			break
		}
	}
	if width == lw && height == lh {
		return
	}
	q.queue = append(q.queue, Event{Kind: EventResize, Width: width, Height: height})
}

// Pending returns the number of events not yet processed.
func (q *EventQueue) Pending() int { return len(q.queue) }

// ProcessEvents drains the queue and reports whether an exit has been
// requested. Once true it stays true.
func (q *EventQueue) ProcessEvents() bool {
	for _, e := range q.queue {
		switch e.Kind {
		case EventExit:
			q.exit = true
		case EventResize:
			q.width, q.height = e.Width, e.Height
		}
	}
	q.queue = q.queue[:0]
	return q.exit
}

// Size returns the back buffer size as of the last ProcessEvents call.
func (q *EventQueue) Size() (width, height int) { return q.width, q.height }
