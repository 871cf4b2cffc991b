package workflow

import (
	"slices"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/google/uuid"

	"optilab/internal/entities"
	"optilab/pkg/constants"
	"optilab/pkg/types"
)

// Clock - источник "сейчас". В тестах подменяется фиксированным временем.
type Clock func() time.Time

// Stamp выдает серверную метку записи: не раньше последнего изменения сущности.
// Точность - микросекунды, как у timestamptz.
func Stamp(now time.Time, lastUpdate time.Time) time.Time {
	now = now.Truncate(time.Microsecond)
	if now.Before(lastUpdate) {
		return lastUpdate
	}
	return now
}

func newEntry(entityID string, kind constants.EventType, actor types.Actor, ts time.Time) entities.HistoryEntry {
	return entities.HistoryEntry{
		ID:        uuid.New(),
		EntityID:  entityID,
		EventType: kind,
		ActorID:   actor.ID,
		ActorName: actor.DisplayName(),
		CreatedAt: ts,
	}
}

func StatusChanged(entityID, from, to string, actor types.Actor, ts time.Time) entities.HistoryEntry {
	e := newEntry(entityID, constants.EventStatusChange, actor, ts)
	if from != "" {
		e.OldValue = null.StringFrom(from)
	}
	e.NewValue = null.StringFrom(to)
	return e
}

func PriorityChanged(entityID string, from, to constants.Priority, message null.String, actor types.Actor, ts time.Time) entities.HistoryEntry {
	e := newEntry(entityID, constants.EventPriorityChange, actor, ts)
	e.OldValue = null.StringFrom(string(from))
	e.NewValue = null.StringFrom(string(to))
	e.Message = message
	return e
}

func DescriptionEdited(entityID, from, to string, actor types.Actor, ts time.Time) entities.HistoryEntry {
	e := newEntry(entityID, constants.EventDescriptionChange, actor, ts)
	e.OldValue = null.StringFrom(from)
	e.NewValue = null.StringFrom(to)
	return e
}

func BranchTransferred(entityID, fromBranch, toBranch, toBranchName string, actor types.Actor, ts time.Time) entities.HistoryEntry {
	e := newEntry(entityID, constants.EventBranchTransfer, actor, ts)
	e.OldValue = null.StringFrom(fromBranch)
	e.NewValue = null.StringFrom(toBranch)
	e.Message = null.StringFrom(toBranchName)
	return e
}

func NoteAdded(entityID, notes string, actor types.Actor, ts time.Time) entities.HistoryEntry {
	e := newEntry(entityID, constants.EventNote, actor, ts)
	e.Notes = null.StringFrom(notes)
	return e
}

// SortAsc - журнал по возрастанию времени (для длительностей).
// Порядок вставки не гарантирован при конкурентной записи, поэтому сортируем всегда.
func SortAsc(entries []entities.HistoryEntry) []entities.HistoryEntry {
	out := slices.Clone(entries)
	slices.SortStableFunc(out, func(a, b entities.HistoryEntry) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return out
}

// SortDesc - журнал для отображения, свежие записи сверху.
func SortDesc(entries []entities.HistoryEntry) []entities.HistoryEntry {
	out := SortAsc(entries)
	slices.Reverse(out)
	return out
}
