package wcx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Format selects an export artifact.
type Format string

const (
	// FormatScript is a self-registering JavaScript file.
	FormatScript Format = "script"
	// FormatJSON is a Document envelope around the record.
	FormatJSON Format = "json"
	// FormatCloud saves the record to the configured store.
	FormatCloud Format = "cloud"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatScript, FormatJSON, FormatCloud:
		return f, nil
	}
	return "", fmt.Errorf("%w: unknown export format %q", ErrConfiguration, s)
}

// ExportOptions controls Export.
type ExportOptions struct {
	Format Format
}

// Document is the JSON export envelope.
type Document struct {
	Type  string  `json:"type"`
	Data  *Record `json:"data"`
	Usage string  `json:"usage"`
}

// Artifact is the output of an export. Exactly one of Script, Document or
// Response is set, matching Format.
type Artifact struct {
	Format Format
	// Record is the export-stamped record the artifact was built from.
	Record   *Record
	Script   string
	Document *Document
	// Response is the store's acknowledgement body for FormatCloud.
	Response []byte
}

// Bytes returns the artifact content.
func (a *Artifact) Bytes() ([]byte, error) {
	switch a.Format {
	case FormatScript:
		return []byte(a.Script), nil
	case FormatJSON:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		if err := enc.Encode(a.Document); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatCloud:
		return a.Response, nil
	}
	return nil, fmt.Errorf("%w: unknown export format %q", ErrConfiguration, a.Format)
}

// ContentType returns the MIME type of Bytes.
func (a *Artifact) ContentType() string {
	if a.Format == FormatScript {
		return "application/javascript; charset=utf-8"
	}
	return "application/json"
}

// Export builds an artifact for a stored component. Cloud exports fail
// with ErrConfiguration before any request when no endpoint is set.
func (b *Builder) Export(ctx context.Context, name string, opts ExportOptions) (*Artifact, error) {
	format := opts.Format
	if format == "" {
		format = FormatScript
	}
	if _, err := ParseFormat(string(format)); err != nil {
		return nil, err
	}
	if format == FormatCloud && b.config.APIEndpoint == "" {
		return nil, fmt.Errorf("%w: cloud export requires apiEndpoint", ErrConfiguration)
	}

	stored, ok := b.store.Get(name)
	if !ok {
		return nil, &NotFoundError{Name: name}
	}
	rec := Stamp(stored, format, b.now())

	art := &Artifact{Format: format, Record: rec}
	switch format {
	case FormatScript:
		script, err := GenerateScript(rec)
		if err != nil {
			return nil, err
		}
		art.Script = script

	case FormatJSON:
		art.Document = GenerateDocument(rec)

	case FormatCloud:
		c, err := b.cloudClient()
		if err != nil {
			return nil, err
		}
		body, err := json.Marshal(rec)
		if err != nil {
			return nil, fmt.Errorf("wcx: encode record: %w", err)
		}
		resp, err := c.Save(ctx, body)
		if err != nil {
			return nil, transportError(err)
		}
		b.logger.Info("component saved", "name", name, "endpoint", c.Endpoint())
		art.Response = resp
	}
	return art, nil
}

// Stamp returns a copy of rec carrying export metadata.
func Stamp(rec *Record, format Format, at time.Time) *Record {
	out := rec.Clone()
	out.ExportedAt = &at
	out.ExportOptions = map[string]any{"format": string(format)}
	return out
}

// GenerateDocument wraps rec in the JSON export envelope.
func GenerateDocument(rec *Record) *Document {
	return &Document{Type: "json", Data: rec, Usage: Usage(rec)}
}
