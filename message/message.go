// Package message models a received protocol message: message-level headers,
// a content with its own headers and body, a status code and a reason phrase.
//
// Steps of a pipeline read and replace a Message's Content; FromResponse adapts
// a *http.Response.
package message

import (
	"errors"
	"net/http"
	"net/textproto"
	"strings"
)

// ErrNoContent is returned when a message has no content.
var ErrNoContent = errors.New("message: no content")

// Message is a received response. Content may be replaced by steps (e.g. decompression).
type Message struct {
	StatusCode   int
	ReasonPhrase string
	Header       http.Header
	Content      *Content
}

// contentHeaders are the header names that belong to the content rather than the message.
var contentHeaders = map[string]struct{}{
	"Allow":               {},
	"Content-Disposition": {},
	"Content-Encoding":    {},
	"Content-Language":    {},
	"Content-Length":      {},
	"Content-Location":    {},
	"Content-Md5":         {},
	"Content-Range":       {},
	"Content-Type":        {},
	"Expires":             {},
	"Last-Modified":       {},
}

// IsContentHeader reports whether name is a content-level header.
func IsContentHeader(name string) bool {
	_, ok := contentHeaders[textproto.CanonicalMIMEHeaderKey(name)]
	return ok
}

// FromResponse adapts resp into a Message. Content-level headers are moved into
// Content.Header; the response body becomes the content body. The caller keeps
// ownership of resp but must not read resp.Body afterwards.
func FromResponse(resp *http.Response) *Message {
	msg := &Message{
		StatusCode:   resp.StatusCode,
		ReasonPhrase: reasonPhrase(resp),
		Header:       make(http.Header),
	}
	contentHeader := make(http.Header)
	for k, v := range resp.Header {
		if IsContentHeader(k) {
			contentHeader[textproto.CanonicalMIMEHeaderKey(k)] = append([]string(nil), v...)
		} else {
			msg.Header[k] = append([]string(nil), v...)
		}
	}
	body := resp.Body
	if body == nil {
		body = http.NoBody
	}
	msg.Content = NewContent(body, contentHeader)
	return msg
}

// reasonPhrase strips the status code from resp.Status ("200 OK" -> "OK").
func reasonPhrase(resp *http.Response) string {
	status := resp.Status
	if i := strings.IndexByte(status, ' '); i >= 0 {
		return strings.TrimSpace(status[i+1:])
	}
	if status == "" {
		return http.StatusText(resp.StatusCode)
	}
	return ""
}

// LookupHeader returns the values of name, looking first in the message headers
// and then in the content headers.
func (m *Message) LookupHeader(name string) ([]string, bool) {
	if v, ok := lookup(m.Header, name); ok {
		return v, true
	}
	if m.Content != nil {
		return lookup(m.Content.Header, name)
	}
	return nil, false
}

func lookup(h http.Header, name string) ([]string, bool) {
	if h == nil {
		return nil, false
	}
	v, ok := h[textproto.CanonicalMIMEHeaderKey(name)]
	if !ok {
		v, ok = h[name]
	}
	return v, ok
}

// ReplaceContent installs c as the message content and closes the previous one.
func (m *Message) ReplaceContent(c *Content) error {
	old := m.Content
	m.Content = c
	if old != nil && old != c {
		return old.Close()
	}
	return nil
}

// Close releases the message content.
func (m *Message) Close() error {
	if m.Content == nil {
		return nil
	}
	return m.Content.Close()
}
