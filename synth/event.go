package synth

// Vec3d is a bare 3D position carried by CollisionEvent. Clatter never
// performs vector algebra on it (no cross/dot/normalize is needed
// anywhere in the synthesis path) — it is opaque payload forwarded to
// callbacks as the collision/scrape centroid.
type Vec3d struct {
	X, Y, Z float64
}

// CollisionKind distinguishes the three event kinds spec §3 describes.
type CollisionKind int

const (
	CollisionNone CollisionKind = iota
	CollisionImpact
	CollisionScrape
)

func (k CollisionKind) String() string {
	switch k {
	case CollisionImpact:
		return "impact"
	case CollisionScrape:
		return "scrape"
	default:
		return "none"
	}
}

// CollisionEvent is an immutable value describing one physics collision
// between two objects (spec §3).
type CollisionEvent struct {
	Primary   *ObjectData
	Secondary *ObjectData
	Kind      CollisionKind
	Speed     float64
	Position  Vec3d
}

// ObjectPairKey is the ordered (min(id), max(id)) canonical pair key
// spec §3/§4.6 dispatches on.
type ObjectPairKey struct {
	A, B uint32
}

// CanonicalPairKey builds the canonical key for two object IDs.
func CanonicalPairKey(idA, idB uint32) ObjectPairKey {
	if idA > idB {
		idA, idB = idB, idA
	}
	return ObjectPairKey{A: idA, B: idB}
}

// Canonicalize reorders e so Primary.ID <= Secondary.ID, matching
// AudioGenerator.add_collision's swap rule (spec §4.6), and returns the
// pair key for the (now-ordered) event.
func (e CollisionEvent) Canonicalize() (CollisionEvent, ObjectPairKey) {
	if e.Primary != nil && e.Secondary != nil && e.Primary.ID > e.Secondary.ID {
		e.Primary, e.Secondary = e.Secondary, e.Primary
	}
	var a, b uint32
	if e.Primary != nil {
		a = e.Primary.ID
	}
	if e.Secondary != nil {
		b = e.Secondary.ID
	}
	return e, CanonicalPairKey(a, b)
}

// EventKind distinguishes the four callback shapes a Generator emits.
type EventKind int

const (
	EventImpact EventKind = iota
	EventScrapeStart
	EventScrapeOngoing
	EventScrapeEnd
)

func (k EventKind) String() string {
	switch k {
	case EventImpact:
		return "impact"
	case EventScrapeStart:
		return "scrape_start"
	case EventScrapeOngoing:
		return "scrape_ongoing"
	case EventScrapeEnd:
		return "scrape_end"
	default:
		return "unknown"
	}
}

// Event is the single sum-type a Generator emits through its sink,
// replacing four independent on_impact/on_scrape_* handler slots (spec
// §9 Design Notes).
type Event struct {
	Kind          EventKind
	Pair          ObjectPairKey
	AudioSourceID uint32
	Position      Vec3d
	Samples       []float32
}

// EventSink receives Events as a Generator's Update/End calls produce
// them. Implementations must not retain Samples past the call — a
// Generator reuses its internal buffers.
type EventSink func(Event)
