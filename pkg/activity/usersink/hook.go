// Package usersink forwards navigation activity to a go-users ActivitySink.
package usersink

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/goliatone/go-navigator/pkg/activity"
	usertypes "github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
)

// Hook adapts activity events to a go-users ActivitySink.
type Hook struct {
	Sink usertypes.ActivitySink
	// Verbs limits forwarding to the listed verbs. Empty forwards everything.
	Verbs []string
}

// Notify maps the event into an ActivityRecord and forwards it to the sink.
func (h Hook) Notify(ctx context.Context, event activity.Event) error {
	if h.Sink == nil {
		return nil
	}

	normalized := activity.NormalizeEvent(event)
	if !normalized.Valid() || (len(h.Verbs) > 0 && !slices.Contains(h.Verbs, normalized.Verb)) {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	record := usertypes.ActivityRecord{
		ActorID:    parseUUID(normalized.ActorID),
		UserID:     parseUUID(normalized.UserID),
		TenantID:   parseUUID(normalized.TenantID),
		Verb:       normalized.Verb,
		ObjectType: normalized.ObjectType,
		ObjectID:   normalized.ObjectID,
		Channel:    normalized.Channel,
		Data:       normalized.Metadata,
		OccurredAt: normalized.OccurredAt,
	}
	if record.OccurredAt.IsZero() {
		record.OccurredAt = time.Now()
	}
	if normalized.Route != "" {
		record.Data = withDefault(record.Data, "route", normalized.Route)
	}
	if normalized.Source != "" {
		record.Data = withDefault(record.Data, "source", normalized.Source)
	}
	if record.ActorID == uuid.Nil && normalized.ActorID != "" {
		record.Data = withDefault(record.Data, "actor", normalized.ActorID)
	}
	return h.Sink.Log(ctx, record)
}

func parseUUID(input string) uuid.UUID {
	id, err := uuid.Parse(strings.TrimSpace(input))
	if err != nil {
		return uuid.Nil
	}
	return id
}

// withDefault sets key unless data already carries it.
func withDefault(data map[string]any, key string, value any) map[string]any {
	if data == nil {
		data = map[string]any{}
	}
	if _, ok := data[key]; !ok {
		data[key] = value
	}
	return data
}
