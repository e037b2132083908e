package world

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
)

type ItemStatus string

const (
	ItemPending   ItemStatus = "pending"
	ItemActive    ItemStatus = "active"
	ItemCompleted ItemStatus = "completed"
	ItemMissed    ItemStatus = "missed"
	ItemCancelled ItemStatus = "cancelled"
)

type CalendarItem struct {
	ID        string     `json:"id"`
	WorldID   string     `json:"world_id"`
	Owner     string     `json:"owner"`
	Title     string     `json:"title"`
	StartTick int64      `json:"start_tick"`
	EndTick   int64      `json:"end_tick"`
	Kind      string     `json:"kind"`
	Status    ItemStatus `json:"status"`
	// EveryTicks > 0 reschedules a new pending occurrence after the item
	// reaches a terminal status.
	EveryTicks int64 `json:"every_ticks,omitempty"`
	// RemindersSent counts consumed lead-time thresholds so an item whose
	// start falls exactly on a boundary fires once and only once.
	RemindersSent int       `json:"reminders_sent"`
	Version       int64     `json:"version"`
}

// PointEvent items have no duration; they miss when the start tick passes.
func (it CalendarItem) PointEvent() bool {
	return it.EndTick <= it.StartTick
}

// Calendar owns the item state machine: pending -> active on start,
// active/pending -> missed when the window closes without completion,
// completed and cancelled only via explicit external signals.
type Calendar struct {
	Items []CalendarItem
}

// ReminderLeads are the tick distances before an item's start at which one
// reminder each is emitted, sorted descending.
func normalizeLeads(leads []int64) []int64 {
	out := make([]int64, 0, len(leads))
	for _, l := range leads {
		if l >= 0 {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] > out[j] })
	return out
}

// Tick runs one calendar transition pass for the given world tick and
// returns the emitted events: all reminders first, then all misses, each in
// item order. Items are mutated in place.
func (c *Calendar) Tick(worldID string, tick int64, leads []int64) []Event {
	leads = normalizeLeads(leads)
	reminders := make([]Event, 0)
	missed := make([]Event, 0)

	sort.Slice(c.Items, func(i, j int) bool { return c.Items[i].ID < c.Items[j].ID })

	for i := range c.Items {
		it := &c.Items[i]
		if it.Status == ItemCompleted || it.Status == ItemCancelled || it.Status == ItemMissed {
			continue
		}

		if it.Status == ItemPending {
			for n := it.RemindersSent; n < len(leads); n++ {
				lead := leads[n]
				// Fire when the remaining distance reaches the threshold,
				// boundary inclusive. Consuming the index makes a re-check
				// (catch-up replay included) unable to double-fire.
				if it.StartTick-tick > lead {
					break
				}
				if tick >= it.StartTick {
					break
				}
				it.RemindersSent = n + 1
				reminders = append(reminders, calendarEvent(worldID, tick, EventCalendarReminder, *it))
			}
		}

		if it.Status == ItemPending && tick >= it.StartTick {
			it.Status = ItemActive
		}

		deadline := it.EndTick
		if it.PointEvent() {
			deadline = it.StartTick
		}
		if tick > deadline && (it.Status == ItemPending || it.Status == ItemActive) {
			it.Status = ItemMissed
			missed = append(missed, calendarEvent(worldID, tick, EventCalendarMissed, *it))
			c.reschedule(*it)
		}
	}

	return append(reminders, missed...)
}

// Complete records an explicit external completion signal.
func (c *Calendar) Complete(itemID string) bool {
	return c.finish(itemID, ItemCompleted)
}

func (c *Calendar) Cancel(itemID string) bool {
	return c.finish(itemID, ItemCancelled)
}

func (c *Calendar) finish(itemID string, status ItemStatus) bool {
	for i := range c.Items {
		it := &c.Items[i]
		if it.ID != itemID {
			continue
		}
		if it.Status != ItemPending && it.Status != ItemActive {
			return false
		}
		it.Status = status
		c.reschedule(*it)
		return true
	}
	return false
}

func (c *Calendar) reschedule(done CalendarItem) {
	if done.EveryTicks <= 0 {
		return
	}
	next := done
	next.StartTick += done.EveryTicks
	next.EndTick += done.EveryTicks
	next.Status = ItemPending
	next.RemindersSent = 0
	next.Version = 0
	next.ID = deterministicID(done.WorldID, fmt.Sprintf("cal:%s:%d", done.ID, next.StartTick))
	c.Items = append(c.Items, next)
}

func calendarEvent(worldID string, tick int64, kind EventKind, it CalendarItem) Event {
	valence := 0.0
	magnitude := 0.2
	if kind == EventCalendarMissed {
		valence = -0.4
		magnitude = 0.45
	}
	return Event{
		ID:      deterministicID(worldID, fmt.Sprintf("%s:%d:%s:%d", kind, tick, it.ID, it.RemindersSent)),
		WorldID: worldID,
		Tick:    tick,
		Kind:    kind,
		Source:  it.Owner,
		Target:  it.Owner,
		Payload: EventPayload{
			Magnitude:   magnitude,
			Valence:     valence,
			Novelty:     0.1,
			ItemID:      it.ID,
			Topic:       it.Kind,
			Description: it.Title,
		},
	}
}

// deterministicID derives a stable UUID from the world id and a local key so
// two replays of the same tick mint identical event ids.
func deterministicID(worldID, key string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(worldID+"/"+key)).String()
}
