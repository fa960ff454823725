package repository

import (
	"context"
	"io"
	"time"
)

// Ref is an opaque reference to one item in the content repository.
// The pipeline never interprets its contents beyond equality and ordering.
type Ref string

// String returns the raw reference string.
func (r Ref) String() string { return string(r) }

// Well-known property keys. The repository stores every property as a
// string; dates use RFC 3339 so that lexical comparison matches temporal
// ordering, integers use base-10 text.
const (
	PropName        = "name"
	PropTitle       = "title"
	PropDescription = "description"
	PropMimetype    = "mimetype"
	PropCreator     = "creator"
	PropAuthor      = "author"
	PropCreated     = "created"
	PropModified    = "modified"

	PropState           = "curator:state"
	PropBusinessRef     = "curator:businessRef"
	PropRetentionYears  = "curator:retentionYears"
	PropValidityMonths  = "curator:validityMonths"
	PropDocType         = "curator:docType"
	PropRegion          = "curator:region"
	PropProcess         = "curator:process"
	PropOrigin          = "curator:origin"
	PropConfidentiality = "curator:confidentiality"
	PropKeywords        = "curator:keywords"
	PropValidated       = "curator:dateValidation"
	PropApplication     = "curator:dateApplication"
)

// FlagProcessed is the durable idempotency mark attached to items the
// pipeline has already handled. It is set after a successful unit of work
// and never cleared by this pipeline.
const FlagProcessed = "curator:processed"

// TimeFormat is the wire format for date-valued properties.
const TimeFormat = time.RFC3339

// FormatTime renders a time for storage in a date-valued property.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeFormat)
}

// ParseTime parses a date-valued property. The zero time is returned for
// an empty value.
func ParseTime(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	return time.Parse(TimeFormat, v)
}

// Port is the interface to the external content repository. Implementations
// must return results for Search in deterministic ascending Ref order so
// that skip-based pagination is stable across calls.
//
// All methods honor context cancellation where the backend supports it.
type Port interface {
	// Search returns at most limit item references matching the query,
	// starting at the given skip offset. An empty slice means the scan is
	// exhausted.
	Search(ctx context.Context, q Query, skip, limit int) ([]Ref, error)

	// Exists reports whether the item is present in the repository.
	Exists(ctx context.Context, ref Ref) (bool, error)

	// Create registers a new item with the given properties.
	Create(ctx context.Context, ref Ref, props map[string]string) error

	// GetProperty returns the named property, or "" when the property is
	// unset. A missing item yields a NotFoundError.
	GetProperty(ctx context.Context, ref Ref, key string) (string, error)

	// SetProperty writes one property value.
	SetProperty(ctx context.Context, ref Ref, key, value string) error

	// Properties returns the full property bag of an item.
	Properties(ctx context.Context, ref Ref) (map[string]string, error)

	// HasFlag reports whether the named flag is set on the item.
	HasFlag(ctx context.Context, ref Ref, flag string) (bool, error)

	// SetFlag durably sets the named flag on the item. Setting an already
	// set flag is a no-op.
	SetFlag(ctx context.Context, ref Ref, flag string) error

	// OpenContent opens the binary content stream of an item and returns
	// it together with the stored mimetype. Items without content yield a
	// NotFoundError.
	OpenContent(ctx context.Context, ref Ref) (io.ReadCloser, string, error)

	// PutContent replaces the binary content of an item.
	PutContent(ctx context.Context, ref Ref, mimetype string, r io.Reader) error

	// Delete removes the item, its properties, flags and content.
	Delete(ctx context.Context, ref Ref) error

	// Close releases backend resources.
	Close() error
}
