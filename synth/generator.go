package synth

import (
	"fmt"
	"runtime"
	"sort"
	"sync"

	"github.com/audiomodal/clatter/config"
	"github.com/audiomodal/clatter/rng"
)

// Stats reports cumulative Generator activity, a supplemented feature
// (spec §6 "generator.Stats()") useful for CLI summaries and tests.
type Stats struct {
	RegisteredObjects int
	ActiveScrapePairs int
	ImpactsRendered   int
	ImpactsRejected   int
	ScrapeChunksSent  int
	Ticks             int
}

// Generator is the AudioGenerator dispatcher of spec §4.6: it owns the
// object registry, the per-pair synthesis state, and turns queued
// CollisionEvents into rendered Events in deterministic order,
// regardless of how many workers render them concurrently.
type Generator struct {
	cfg config.SynthesisConfig

	impactSynth *ImpactSynth
	scrapeSynth *ScrapeSynth

	mu sync.Mutex

	objects map[uint32]*ObjectData

	impactStates map[ObjectPairKey]*pairImpactState
	scrapeStates map[ObjectPairKey]*pairScrapeState
	scrapeActive map[ObjectPairKey]bool

	pending map[ObjectPairKey][]CollisionEvent

	sourceIDs     map[ObjectPairKey]uint32
	freeSourceIDs []uint32
	nextSourceID  uint32

	baseSeed int64
	tick     int64

	stats Stats
}

// NewGenerator builds a Generator bound to cfg, seeded with baseSeed for
// its internal per-tick, per-pair RNGs (spec §5/§9).
func NewGenerator(cfg config.SynthesisConfig, baseSeed int64) *Generator {
	return &Generator{
		cfg:          cfg,
		impactSynth:  NewImpactSynth(cfg),
		scrapeSynth:  NewScrapeSynth(cfg),
		objects:      make(map[uint32]*ObjectData),
		impactStates: make(map[ObjectPairKey]*pairImpactState),
		scrapeStates: make(map[ObjectPairKey]*pairScrapeState),
		scrapeActive: make(map[ObjectPairKey]bool),
		pending:      make(map[ObjectPairKey][]CollisionEvent),
		sourceIDs:    make(map[ObjectPairKey]uint32),
		baseSeed:     baseSeed,
	}
}

// RegisterObject adds or replaces obj in the generator's registry,
// keyed by obj.ID, so future collisions naming that ID resolve to it.
func (g *Generator) RegisterObject(obj *ObjectData) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.objects[obj.ID] = obj
}

// Object looks up a registered object by ID.
func (g *Generator) Object(id uint32) (*ObjectData, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	o, ok := g.objects[id]
	return o, ok
}

// AddCollision canonicalizes e and enqueues it for the next Update
// call, per spec §4.6's add_collision.
func (g *Generator) AddCollision(e CollisionEvent) {
	canon, pair := e.Canonicalize()
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pending[pair] = append(g.pending[pair], canon)
}

func (g *Generator) allocSourceID() uint32 {
	if n := len(g.freeSourceIDs); n > 0 {
		id := g.freeSourceIDs[n-1]
		g.freeSourceIDs = g.freeSourceIDs[:n-1]
		return id
	}
	g.nextSourceID++
	return g.nextSourceID
}

func (g *Generator) releaseSourceID(id uint32) {
	g.freeSourceIDs = append(g.freeSourceIDs, id)
}

// pairWorkerID maps a pair to a stable worker slot, independent of
// goroutine scheduling order, so (base_seed, worker_id, tick) always
// reseeds the same pair's render identically run to run (spec §5/§9:
// "partition by pair hash... seed each worker's RNG from (base_seed,
// worker_id, tick_counter)").
func pairWorkerID(pair ObjectPairKey, workers int) int {
	if workers <= 1 {
		return 0
	}
	h := uint64(pair.A)*2654435761 ^ uint64(pair.B)*40503
	return int(h % uint64(workers))
}

type pairJob struct {
	pair   ObjectPairKey
	events []CollisionEvent
}

type pairResult struct {
	pair ObjectPairKey

	impactFired    bool
	impactSamples  []float32
	impactRejected bool
	impactPosition Vec3d

	scrapeFired    bool
	scrapeStarting bool
	scrapeSamples  []float32
	scrapePosition Vec3d
}

// Update drains every collision queued since the last call, renders one
// dominant event per pair (spec §4.6: "pick max-speed impact else
// latest scrape per pair"), and fires sink in the fixed order: impacts
// in ascending canonical-pair order, then scrape starts, then scrape
// ongoings, then scrape ends for pairs whose contact lapsed this tick.
func (g *Generator) Update(sink EventSink) error {
	g.mu.Lock()
	g.tick++
	tick := g.tick
	pending := g.pending
	g.pending = make(map[ObjectPairKey][]CollisionEvent)
	g.stats.Ticks++
	g.mu.Unlock()

	pairs := make([]ObjectPairKey, 0, len(pending))
	for p := range pending {
		pairs = append(pairs, p)
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].A != pairs[j].A {
			return pairs[i].A < pairs[j].A
		}
		return pairs[i].B < pairs[j].B
	})

	workers := g.cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers < 1 {
		workers = 1
	}
	if workers > len(pairs) {
		workers = len(pairs)
	}
	if workers < 1 {
		workers = 1
	}

	jobs := make([]pairJob, len(pairs))
	for i, p := range pairs {
		jobs[i] = pairJob{pair: p, events: pending[p]}
	}
	results := make([]pairResult, len(jobs))
	errs := make([]error, len(jobs))

	var wg sync.WaitGroup
	lanes := make([][]int, workers)
	for i, job := range jobs {
		w := pairWorkerID(job.pair, workers)
		lanes[w] = append(lanes[w], i)
	}
	for w := 0; w < workers; w++ {
		indices := lanes[w]
		if len(indices) == 0 {
			continue
		}
		wg.Add(1)
		go func(workerID int, indices []int) {
			defer wg.Done()
			r := rng.NewFromWorker(g.baseSeed, workerID, tick)
			for _, idx := range indices {
				res, err := g.renderPair(jobs[idx], r)
				results[idx] = res
				errs[idx] = err
			}
		}(w, indices)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}

	g.mu.Lock()
	touchedScrape := make(map[ObjectPairKey]bool, len(jobs))
	for i := range jobs {
		if results[i].scrapeFired {
			touchedScrape[jobs[i].pair] = true
		}
	}
	var lapsed []ObjectPairKey
	for p, active := range g.scrapeActive {
		if active && !touchedScrape[p] {
			lapsed = append(lapsed, p)
		}
	}
	sort.Slice(lapsed, func(i, j int) bool {
		if lapsed[i].A != lapsed[j].A {
			return lapsed[i].A < lapsed[j].A
		}
		return lapsed[i].B < lapsed[j].B
	})
	lapsedBuffers := make([]*Buffer, len(lapsed))
	for i, p := range lapsed {
		state := g.scrapeStates[p]
		buf := NewBuffer(0)
		if state != nil {
			g.scrapeSynth.End(state, buf)
		}
		lapsedBuffers[i] = buf
		g.scrapeActive[p] = false
	}
	g.mu.Unlock()

	for i := range jobs {
		if results[i].impactFired {
			g.stats.ImpactsRendered++
		}
		if results[i].impactRejected {
			g.stats.ImpactsRejected++
		}
		if results[i].scrapeFired {
			g.stats.ScrapeChunksSent++
		}
	}

	for i := range jobs {
		if !results[i].impactFired {
			continue
		}
		id := g.pairSourceID(jobs[i].pair, true)
		sink(Event{Kind: EventImpact, Pair: jobs[i].pair, AudioSourceID: id, Position: results[i].impactPosition, Samples: results[i].impactSamples})
		g.releasePairSourceID(jobs[i].pair, id)
	}
	for i := range jobs {
		if results[i].scrapeFired && results[i].scrapeStarting {
			id := g.pairSourceID(jobs[i].pair, false)
			sink(Event{Kind: EventScrapeStart, Pair: jobs[i].pair, AudioSourceID: id, Position: results[i].scrapePosition, Samples: results[i].scrapeSamples})
		}
	}
	for i := range jobs {
		if results[i].scrapeFired && !results[i].scrapeStarting {
			id := g.pairSourceID(jobs[i].pair, false)
			sink(Event{Kind: EventScrapeOngoing, Pair: jobs[i].pair, AudioSourceID: id, Position: results[i].scrapePosition, Samples: results[i].scrapeSamples})
		}
	}
	for i, p := range lapsed {
		id := g.pairSourceID(p, false)
		sink(Event{Kind: EventScrapeEnd, Pair: p, AudioSourceID: id, Samples: lapsedBuffers[i].Samples()})
		g.releasePairSourceID(p, id)
	}

	return nil
}

func (g *Generator) pairSourceID(pair ObjectPairKey, oneShot bool) uint32 {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !oneShot {
		if id, ok := g.sourceIDs[pair]; ok {
			return id
		}
		id := g.allocSourceID()
		g.sourceIDs[pair] = id
		return id
	}
	return g.allocSourceID()
}

// releasePairSourceID frees id back to the pool. For a pair holding a
// persistent (scrape) source ID, this also drops the pair->ID mapping,
// so the caller must only call it once that pair's scrape contact has
// actually ended.
func (g *Generator) releasePairSourceID(pair ObjectPairKey, id uint32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.sourceIDs[pair] == id {
		delete(g.sourceIDs, pair)
	}
	g.releaseSourceID(id)
}

// renderPair picks the dominant event for one pair this tick and
// renders it. It touches no shared Generator state beyond its own
// per-pair synthesis state maps, guarded by the caller's worker
// partitioning rather than a lock, since distinct pairs never alias.
func (g *Generator) renderPair(job pairJob, r rng.Source) (pairResult, error) {
	result := pairResult{pair: job.pair}

	var bestImpact *CollisionEvent
	var latestScrape *CollisionEvent
	var scrapeCentroid Vec3d
	scrapeCount := 0
	for i := range job.events {
		ev := &job.events[i]
		switch ev.Kind {
		case CollisionImpact:
			if bestImpact == nil || ev.Speed > bestImpact.Speed {
				bestImpact = ev
			}
		case CollisionScrape:
			latestScrape = ev
			scrapeCentroid.X += ev.Position.X
			scrapeCentroid.Y += ev.Position.Y
			scrapeCentroid.Z += ev.Position.Z
			scrapeCount++
		}
	}

	if bestImpact != nil {
		if bestImpact.Primary == nil || bestImpact.Secondary == nil {
			return result, fmt.Errorf("synth: impact event for pair %v missing an object", job.pair)
		}
		state := g.impactState(job.pair)
		out := NewBuffer(0)
		nowS := float64(g.currentTick()) * tickDurationSeconds
		if g.impactSynth.GetAudio(state, bestImpact.Primary, bestImpact.Secondary, bestImpact.Speed, nowS, r, out) {
			samples := make([]float32, out.Len())
			copy(samples, out.Samples())
			result.impactFired = true
			result.impactSamples = samples
			result.impactPosition = bestImpact.Position
		} else {
			result.impactRejected = true
		}
	}

	if latestScrape != nil {
		if latestScrape.Primary == nil || latestScrape.Secondary == nil {
			return result, fmt.Errorf("synth: scrape event for pair %v missing an object", job.pair)
		}
		g.mu.Lock()
		wasActive := g.scrapeActive[job.pair]
		g.scrapeActive[job.pair] = true
		g.mu.Unlock()

		state := g.scrapeState(job.pair)
		out := NewBuffer(0)
		if err := g.scrapeSynth.GetAudio(state, latestScrape.Primary, latestScrape.Secondary, latestScrape.Speed, r, out); err != nil {
			return result, err
		}
		samples := make([]float32, out.Len())
		copy(samples, out.Samples())

		result.scrapeFired = true
		result.scrapeStarting = !wasActive
		result.scrapeSamples = samples
		if scrapeCount > 0 {
			result.scrapePosition = Vec3d{
				X: scrapeCentroid.X / float64(scrapeCount),
				Y: scrapeCentroid.Y / float64(scrapeCount),
				Z: scrapeCentroid.Z / float64(scrapeCount),
			}
		}
	}

	return result, nil
}

// tickDurationSeconds is the assumed physics-tick period used to derive
// a monotonic simulated clock for impact gating (spec §4.4's dt needs a
// clock; see ImpactSynth.GetAudio's doc comment).
const tickDurationSeconds = 1.0 / 60.0

func (g *Generator) currentTick() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.tick
}

func (g *Generator) impactState(pair ObjectPairKey) *pairImpactState {
	g.mu.Lock()
	defer g.mu.Unlock()
	s, ok := g.impactStates[pair]
	if !ok {
		s = newPairImpactState()
		g.impactStates[pair] = s
	}
	return s
}

func (g *Generator) scrapeState(pair ObjectPairKey) *pairScrapeState {
	g.mu.Lock()
	defer g.mu.Unlock()
	s, ok := g.scrapeStates[pair]
	if !ok {
		s = newPairScrapeState()
		g.scrapeStates[pair] = s
	}
	return s
}

// End flushes every still-active scrape pair's convolution tail,
// emitting a final EventScrapeEnd for each, in ascending canonical-pair
// order. Call this once at the end of a simulation run.
func (g *Generator) End(sink EventSink) {
	g.mu.Lock()
	var active []ObjectPairKey
	for p, on := range g.scrapeActive {
		if on {
			active = append(active, p)
		}
	}
	sort.Slice(active, func(i, j int) bool {
		if active[i].A != active[j].A {
			return active[i].A < active[j].A
		}
		return active[i].B < active[j].B
	})
	g.mu.Unlock()

	for _, p := range active {
		state := g.scrapeState(p)
		out := NewBuffer(0)
		g.scrapeSynth.End(state, out)
		samples := make([]float32, out.Len())
		copy(samples, out.Samples())

		id := g.pairSourceID(p, false)
		sink(Event{Kind: EventScrapeEnd, Pair: p, AudioSourceID: id, Samples: samples})
		g.releasePairSourceID(p, id)

		g.mu.Lock()
		g.scrapeActive[p] = false
		g.mu.Unlock()
	}
}

// Stats reports cumulative activity for diagnostics/CLI summaries.
func (g *Generator) Stats() Stats {
	g.mu.Lock()
	defer g.mu.Unlock()
	s := g.stats
	s.RegisteredObjects = len(g.objects)
	active := 0
	for _, on := range g.scrapeActive {
		if on {
			active++
		}
	}
	s.ActiveScrapePairs = active
	return s
}
