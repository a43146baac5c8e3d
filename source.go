package wcx

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/pthm/wcx/lib/cloud"
)

// Source is where Import finds a record. It is one of RecordSource,
// URLSource, JSONSource or NameSource.
type Source interface {
	source()
}

// RecordSource is a record value used as-is.
type RecordSource struct{ Record *Record }

// URLSource is a document fetched with a plain GET.
type URLSource struct{ URL string }

// JSONSource is JSON text encoding a record.
type JSONSource struct{ Text string }

// NameSource is a record loaded by name from the configured store.
type NameSource struct{ Name string }

func (RecordSource) source() {}
func (URLSource) source()    {}
func (JSONSource) source()   {}
func (NameSource) source()   {}

var schemePrefix = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.-]*://`)

// ClassifySource picks the source variant for a string: a URL scheme
// prefix means URLSource, a leading "{" means JSONSource and anything else
// is a NameSource.
func ClassifySource(s string) Source {
	switch {
	case schemePrefix.MatchString(s):
		return URLSource{URL: s}
	case strings.HasPrefix(strings.TrimSpace(s), "{"):
		return JSONSource{Text: s}
	default:
		return NameSource{Name: s}
	}
}

// ParseRecord decodes a JSON record with defaults filled. It accepts a
// bare record or the document produced by a FormatJSON export, in which
// case the record is taken from "data".
func ParseRecord(data []byte) (*Record, error) {
	if inner, ok := documentData(data); ok {
		data = inner
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		if errors.Is(err, ErrInvalidRecord) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	applyDefaults(&rec)
	return &rec, nil
}

// documentData returns the record held by a JSON document artifact. A
// document has type "json", an object under "data" and no top-level name.
func documentData(data []byte) ([]byte, bool) {
	var doc struct {
		Type string          `json:"type"`
		Name *string         `json:"name"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, false
	}
	if doc.Type != "json" || doc.Name != nil {
		return nil, false
	}
	inner := bytes.TrimSpace(doc.Data)
	if len(inner) == 0 || inner[0] != '{' {
		return nil, false
	}
	return inner, true
}

// Resolve turns a source into a record. Name sources need an APIEndpoint;
// without one Resolve fails with ErrConfiguration before any request.
func (b *Builder) Resolve(ctx context.Context, src Source) (*Record, error) {
	switch s := src.(type) {
	case RecordSource:
		if s.Record == nil {
			return nil, fmt.Errorf("%w: nil record", ErrInvalidRecord)
		}
		rec := s.Record.Clone()
		applyDefaults(rec)
		return rec, nil

	case *RecordSource:
		return b.Resolve(ctx, *s)

	case JSONSource:
		return ParseRecord([]byte(s.Text))

	case URLSource:
		b.logger.Debug("fetching component", "url", s.URL)
		data, err := b.fetcher().Fetch(ctx, s.URL)
		if err != nil {
			return nil, transportError(err)
		}
		return ParseRecord(data)

	case NameSource:
		c, err := b.cloudClient()
		if err != nil {
			return nil, err
		}
		b.logger.Debug("loading component", "name", s.Name, "endpoint", c.Endpoint())
		data, err := c.Load(ctx, s.Name)
		if err != nil {
			return nil, transportError(err)
		}
		return ParseRecord(data)

	case nil:
		return nil, fmt.Errorf("%w: nil source", ErrInvalidRecord)

	default:
		return nil, fmt.Errorf("%w: unsupported source %T", ErrInvalidRecord, src)
	}
}

// transportError converts a cloud client failure into a TransportError.
func transportError(err error) error {
	var cerr *cloud.Error
	if errors.As(err, &cerr) {
		return &TransportError{Method: cerr.Method, URL: cerr.URL, Status: cerr.Status, Err: cerr.Err}
	}
	return &TransportError{Err: err}
}
