package state

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Envelope is the serialized form durable stores keep per Ref.
type Envelope[T any] struct {
	Snapshot T    `json:"snapshot"`
	Meta     Meta `json:"meta"`
	Version  int  `json:"version"`
}

// EncodeEnvelope checks meta.ETag against current (nil when nothing is
// stored), stamps fresh metadata and returns the encoded envelope with the
// saved meta.
func EncodeEnvelope[T any](current *Envelope[T], snapshot T, meta Meta) ([]byte, Meta, error) {
	version := 0
	if current != nil {
		if meta.ETag != "" && meta.ETag != current.Meta.ETag {
			return nil, cloneMeta(current.Meta), fmt.Errorf("%w: expected %q, got %q", ErrETagMismatch, meta.ETag, current.Meta.ETag)
		}
		version = current.Version
	}
	version++

	saved := cloneMeta(meta)
	saved.SnapshotID = uuid.NewString()
	saved.ETag = fmt.Sprintf("v%d", version)
	if saved.UpdatedAt.IsZero() {
		saved.UpdatedAt = time.Now().UTC()
	}
	data, err := json.Marshal(Envelope[T]{Snapshot: snapshot, Meta: saved, Version: version})
	if err != nil {
		return nil, Meta{}, fmt.Errorf("state: encode snapshot: %w", err)
	}
	return data, cloneMeta(saved), nil
}

// DecodeEnvelope parses data written by EncodeEnvelope.
func DecodeEnvelope[T any](data []byte) (Envelope[T], error) {
	var envelope Envelope[T]
	if err := json.Unmarshal(data, &envelope); err != nil {
		return Envelope[T]{}, fmt.Errorf("state: decode snapshot: %w", err)
	}
	return envelope, nil
}
