package synth

import (
	"testing"

	"github.com/audiomodal/clatter/catalogue"
	"github.com/audiomodal/clatter/config"
	"github.com/audiomodal/clatter/material"
)

func newGeneratorTestObjects(t *testing.T) (*ObjectData, *ObjectData, *ObjectData) {
	t.Helper()
	glass := material.NewImpactMaterial(material.Glass, 2)
	stone := material.NewImpactMaterial(material.Stone, 2)
	metal := material.NewImpactMaterial(material.Metal, 2)
	for _, m := range []material.ImpactMaterial{glass, stone, metal} {
		if err := catalogue.LoadImpact(m); err != nil {
			t.Fatalf("LoadImpact(%s): %v", m, err)
		}
	}

	a := NewObjectData(1, glass, 0.8, 0.4, 0.3)
	b := NewObjectData(2, stone, 0.8, 0.4, 0.3)
	c := NewObjectData(3, metal, 0.8, 0.4, 0.3)
	for _, o := range []*ObjectData{a, b, c} {
		if err := catalogue.LoadScrape(o.ResolvedScrapeMaterial()); err != nil {
			t.Fatalf("LoadScrape: %v", err)
		}
	}
	return a, b, c
}

func TestGeneratorCanonicalizesPairsRegardlessOfOrder(t *testing.T) {
	a, b, _ := newGeneratorTestObjects(t)
	g := NewGenerator(config.DefaultConfig(), 1)
	g.RegisterObject(a)
	g.RegisterObject(b)

	g.AddCollision(CollisionEvent{Primary: b, Secondary: a, Kind: CollisionImpact, Speed: 1.0})

	var events []Event
	if err := g.Update(func(e Event) { events = append(events, e) }); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected exactly 1 event, got %d", len(events))
	}
	if events[0].Pair != (ObjectPairKey{A: 1, B: 2}) {
		t.Fatalf("expected canonical pair {1,2}, got %+v", events[0].Pair)
	}
}

func TestGeneratorPicksMaxSpeedImpactPerPair(t *testing.T) {
	a, b, _ := newGeneratorTestObjects(t)
	g := NewGenerator(config.DefaultConfig(), 2)
	g.RegisterObject(a)
	g.RegisterObject(b)

	g.AddCollision(CollisionEvent{Primary: a, Secondary: b, Kind: CollisionImpact, Speed: 0.2})
	g.AddCollision(CollisionEvent{Primary: a, Secondary: b, Kind: CollisionImpact, Speed: 3.0})
	g.AddCollision(CollisionEvent{Primary: a, Secondary: b, Kind: CollisionImpact, Speed: 1.0})

	var events []Event
	if err := g.Update(func(e Event) { events = append(events, e) }); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected a single rendered impact per pair per tick, got %d", len(events))
	}
}

func TestGeneratorEventOrderingIsImpactsThenScrapeStartsThenOngoingsThenEnds(t *testing.T) {
	a, b, c := newGeneratorTestObjects(t)
	g := NewGenerator(config.DefaultConfig(), 3)
	g.RegisterObject(a)
	g.RegisterObject(b)
	g.RegisterObject(c)

	g.AddCollision(CollisionEvent{Primary: b, Secondary: c, Kind: CollisionScrape, Speed: 0.5})
	var first []Event
	if err := g.Update(func(e Event) { first = append(first, e) }); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if len(first) != 1 || first[0].Kind != EventScrapeStart {
		t.Fatalf("expected a single scrape-start event, got %+v", first)
	}

	g.AddCollision(CollisionEvent{Primary: a, Secondary: b, Kind: CollisionImpact, Speed: 1.0})
	g.AddCollision(CollisionEvent{Primary: b, Secondary: c, Kind: CollisionScrape, Speed: 0.6})

	var second []Event
	if err := g.Update(func(e Event) { second = append(second, e) }); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if len(second) != 2 {
		t.Fatalf("expected impact + scrape-ongoing, got %d events", len(second))
	}
	if second[0].Kind != EventImpact {
		t.Fatalf("expected impact event first, got %v", second[0].Kind)
	}
	if second[1].Kind != EventScrapeOngoing {
		t.Fatalf("expected scrape-ongoing event second, got %v", second[1].Kind)
	}

	var third []Event
	if err := g.Update(func(e Event) { third = append(third, e) }); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if len(third) != 1 || third[0].Kind != EventScrapeEnd {
		t.Fatalf("expected scrape to end once contact isn't renewed, got %+v", third)
	}
}

func TestGeneratorEndFlushesActiveScrapes(t *testing.T) {
	a, b, _ := newGeneratorTestObjects(t)
	g := NewGenerator(config.DefaultConfig(), 4)
	g.RegisterObject(a)
	g.RegisterObject(b)

	g.AddCollision(CollisionEvent{Primary: a, Secondary: b, Kind: CollisionScrape, Speed: 0.4})
	if err := g.Update(func(Event) {}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	var ended []Event
	g.End(func(e Event) { ended = append(ended, e) })
	if len(ended) != 1 || ended[0].Kind != EventScrapeEnd {
		t.Fatalf("expected End to flush the active scrape pair, got %+v", ended)
	}

	stats := g.Stats()
	if stats.ActiveScrapePairs != 0 {
		t.Fatalf("expected no active scrape pairs after End, got %d", stats.ActiveScrapePairs)
	}
}

func TestGeneratorStatsCountsImpactsAndRejections(t *testing.T) {
	a, b, _ := newGeneratorTestObjects(t)
	g := NewGenerator(config.DefaultConfig(), 5)
	g.RegisterObject(a)
	g.RegisterObject(b)

	g.AddCollision(CollisionEvent{Primary: a, Secondary: b, Kind: CollisionImpact, Speed: 1.0})
	if err := g.Update(func(Event) {}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	g.AddCollision(CollisionEvent{Primary: a, Secondary: b, Kind: CollisionImpact, Speed: -1.0})
	if err := g.Update(func(Event) {}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	stats := g.Stats()
	if stats.ImpactsRendered != 1 {
		t.Fatalf("expected 1 rendered impact, got %d", stats.ImpactsRendered)
	}
	if stats.ImpactsRejected != 1 {
		t.Fatalf("expected 1 rejected impact, got %d", stats.ImpactsRejected)
	}
	if stats.RegisteredObjects != 2 {
		t.Fatalf("expected 2 registered objects, got %d", stats.RegisteredObjects)
	}
}
