package decoder

import (
	"github.com/frederic-klein/gemspec/internal/event"
)

// entry is one key of a mapping and the events of its value.
type entry struct {
	key   string
	value []event.Event
}

func scalarEvents(v string) []event.Event {
	return []event.Event{event.Scal(v)}
}

func quotedEvents(v string) []event.Event {
	return []event.Event{event.Quoted(v)}
}

func seqEvents(items ...string) []event.Event {
	evs := []event.Event{event.SeqStart()}
	for _, it := range items {
		evs = append(evs, event.Quoted(it))
	}
	return append(evs, event.SeqEnd())
}

func versionEvents(v string) []event.Event {
	return []event.Event{
		event.MapStart(event.Ruby("Gem::Version")),
		event.Scal("version"), event.Quoted(v),
		event.MapEnd(),
	}
}

// requirementEvents builds a Gem::Requirement from operator/version pairs.
func requirementEvents(pairs ...string) []event.Event {
	evs := []event.Event{
		event.MapStart(event.Ruby("Gem::Requirement")),
		event.Scal("requirements"),
		event.SeqStart(),
	}
	for i := 0; i+1 < len(pairs); i += 2 {
		evs = append(evs, event.SeqStart(), event.Quoted(pairs[i]))
		evs = append(evs, versionEvents(pairs[i+1])...)
		evs = append(evs, event.SeqEnd())
	}
	return append(evs, event.SeqEnd(), event.MapEnd())
}

func mappingEvents(tag string, entries []entry) []event.Event {
	evs := []event.Event{event.MapStart(tag)}
	for _, e := range entries {
		evs = append(evs, event.Scal(e.key))
		evs = append(evs, e.value...)
	}
	return append(evs, event.MapEnd())
}

func dependencyEvents(name, typ string, pairs ...string) []event.Event {
	return mappingEvents(event.Ruby("Gem::Dependency"), []entry{
		{"name", scalarEvents(name)},
		{"requirement", requirementEvents(pairs...)},
		{"type", scalarEvents(typ)},
		{"prerelease", scalarEvents("false")},
		{"version_requirements", requirementEvents(pairs...)},
	})
}

func dependenciesEvents(deps ...[]event.Event) []event.Event {
	evs := []event.Event{event.SeqStart()}
	for _, d := range deps {
		evs = append(evs, d...)
	}
	return append(evs, event.SeqEnd())
}

// minimalEntries returns the mandatory fields of a rake specification.
func minimalEntries() []entry {
	return []entry{
		{"name", scalarEvents("rake")},
		{"version", versionEvents("13.0.6")},
		{"platform", scalarEvents("ruby")},
		{"dependencies", dependenciesEvents()},
		{"rubygems_version", quotedEvents("3.4.10")},
		{"specification_version", scalarEvents("4")},
		{"summary", scalarEvents("x")},
		{"require_paths", seqEvents("lib")},
		{"homepage", scalarEvents("h")},
		{"licenses", seqEvents("MIT")},
		{"files", seqEvents()},
		{"authors", seqEvents("a")},
	}
}

func without(entries []entry, key string) []entry {
	var out []entry
	for _, e := range entries {
		if e.key != key {
			out = append(out, e)
		}
	}
	return out
}

func with(entries []entry, key string, value []event.Event) []entry {
	out := without(entries, key)
	return append(out, entry{key, value})
}

// document frames a specification mapping as a complete single-document
// stream.
func document(entries []entry) []event.Event {
	evs := []event.Event{{Kind: event.StreamStart}, {Kind: event.DocumentStart}}
	evs = append(evs, mappingEvents(event.Ruby("Gem::Specification"), entries)...)
	return append(evs, event.Event{Kind: event.DocumentEnd}, event.Event{Kind: event.StreamEnd})
}

// cursorAfterStart returns a cursor over a tagged mapping body, with the
// opening MappingStart already consumed.
func cursorAfterStart(evs []event.Event) *event.Cursor {
	c := event.NewCursor(event.NewSliceSource(evs...))
	if _, err := c.Next(); err != nil {
		panic(err)
	}
	return c
}
