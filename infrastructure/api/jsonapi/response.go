// Package jsonapi shapes commit attempts and API errors as JSON:API
// documents for the control server.
package jsonapi

import (
	"time"

	json "github.com/goccy/go-json"
)

// Document is the body of every control server response: one attempt, a
// page of attempt history, or the errors that stopped a request.
type Document struct {
	Data   any     `json:"data,omitempty"`
	Meta   *Meta   `json:"meta,omitempty"`
	Errors []Error `json:"errors,omitempty"`
}

// Meta carries document-level counts.
type Meta map[string]any

// Resource wraps one record, keyed by type and id.
type Resource struct {
	Type       string `json:"type"`
	ID         string `json:"id"`
	Attributes any    `json:"attributes"`
}

// Error describes why a request failed. Status is the HTTP status code as a
// string.
type Error struct {
	ID     string `json:"id,omitempty"`
	Status string `json:"status,omitempty"`
	Code   string `json:"code,omitempty"`
	Title  string `json:"title,omitempty"`
	Detail string `json:"detail,omitempty"`
}

// NewResource wraps attrs as a resource of the given type.
func NewResource(resourceType, id string, attrs any) *Resource {
	return &Resource{Type: resourceType, ID: id, Attributes: attrs}
}

// NewSingleResponse returns a document holding one resource, as sent after a
// manual commit.
func NewSingleResponse(resource *Resource) *Document {
	return &Document{Data: resource}
}

// NewListResponse returns a document holding a history page with its size in
// meta.count. An empty page is encoded as [] so clients can range over it.
func NewListResponse(resources []*Resource) *Document {
	if resources == nil {
		resources = []*Resource{}
	}
	return &Document{
		Data: resources,
		Meta: &Meta{"count": len(resources)},
	}
}

// NewErrorResponse returns a document carrying only errors.
func NewErrorResponse(errors ...Error) *Document {
	return &Document{Errors: errors}
}

// NewError builds an Error from an HTTP status, a short title and the
// underlying error text.
func NewError(status, title, detail string) Error {
	return Error{Status: status, Title: title, Detail: detail}
}

// DateTime encodes attempt timestamps as RFC 3339 in UTC. A zero time is
// encoded as null.
type DateTime time.Time

// MarshalJSON implements json.Marshaler.
func (dt DateTime) MarshalJSON() ([]byte, error) {
	t := time.Time(dt)
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339))
}
