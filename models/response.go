package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
)

// ScrapeResponse is what the scraping service returns. Nothing about its
// shape is enforced: every field is optional and defaulted at render time.
//
//	error:   {error}
//	article: {title, content}
//	product: {title, price, description}
//	listing: {items: [{title, url, image, price, snippet}]}
type ScrapeResponse struct {
	Error       Text          `json:"error"`
	Title       Text          `json:"title"`
	Content     Text          `json:"content"`
	Price       Text          `json:"price"`
	Description Text          `json:"description"`
	Items       []ListingItem `json:"items"`
}

// ListingItem is one entry of a listing response.
type ListingItem struct {
	Title   Text `json:"title"`
	URL     Text `json:"url"`
	Image   Text `json:"image"`
	Price   Text `json:"price"`
	Snippet Text `json:"snippet"`
}

// ErrNullItem is returned when a listing holds a null entry.
var ErrNullItem = errors.New("listing item is null")

// UnmarshalJSON implements json.Unmarshaler. A null entry is an error, so a
// listing with holes is treated like any other undecodable reply.
func (it *ListingItem) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		return ErrNullItem
	}
	type plain ListingItem
	return json.Unmarshal(b, (*plain)(it))
}

// Text is a loosely typed JSON scalar. Strings decode as-is, numbers keep
// their literal form, true becomes "true". null, false, 0 and "" decode to the
// empty Text, so a Text is truthy exactly when it is non-empty.
type Text string

// UnmarshalJSON implements json.Unmarshaler.
func (t *Text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		*t = ""
		return nil
	}

	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = Text(s)
	case 'n', 'f':
		*t = ""
	case 't':
		*t = "true"
	case '{', '[':
		*t = Text(b)
	default:
		f, err := strconv.ParseFloat(string(b), 64)
		if err != nil {
			return err
		}
		if f == 0 {
			*t = ""
		} else {
			*t = Text(b)
		}
	}
	return nil
}

// Truthy reports whether the value is present and non-empty.
func (t Text) Truthy() bool { return t != "" }

// Or returns t, or fallback when t is empty.
func (t Text) Or(fallback string) string {
	if t == "" {
		return fallback
	}
	return string(t)
}

func (t Text) String() string { return string(t) }

// ViewState is the rendered state of a session's page, as served to the
// browser template and the JSON API.
type ViewState struct {
	// SelectedType is the current selection; empty until the user picks one.
	SelectedType string `json:"selected_type"`

	// Status is the status label text ("Selected page type: ...").
	Status string `json:"status"`

	// URL is the last value of the URL input.
	URL string `json:"url"`

	// ResultVisible reports whether the result container has been shown.
	ResultVisible bool `json:"result_visible"`

	// Pending is set while a submission for the page is still running.
	Pending bool `json:"pending"`

	Title string `json:"title"`

	// Content is plain text; ContentHTML is set instead when the content
	// element holds generated markup (listings).
	Content     string `json:"content,omitempty"`
	ContentHTML string `json:"content_html,omitempty"`

	// Alerts and ConsoleErrors are delivered once and then cleared.
	Alerts        []string `json:"alerts,omitempty"`
	ConsoleErrors []string `json:"console_errors,omitempty"`
}

// ViewResponse is the response for the JSON view endpoints.
type ViewResponse struct {
	Success bool         `json:"success"`
	Outcome string       `json:"outcome,omitempty"`
	View    *ViewState   `json:"view,omitempty"`
	Error   *ErrorDetail `json:"error,omitempty"`
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status   string `json:"status"`
	Uptime   string `json:"uptime"`
	Sessions int    `json:"sessions"`
	Service  string `json:"service"`
	Version  string `json:"version"`
}
