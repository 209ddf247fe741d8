package mediatype

import "strings"

// Well-known media types. MediaType values are immutable, so sharing these is safe.
var (
	Javascript = New("application", "javascript")
	JSON       = New("application", "json")
	XML        = New("application", "xml")
	Zip        = New("application", "zip")
	PDF        = New("application", "pdf")
	Binary     = New("application", "octet-stream")
	Mpeg       = New("audio", "mpeg")
	Vorbis     = New("audio", "vorbis")
	CSS        = New("text", "css")
	HTML       = New("text", "html")
	Text       = New("text", "plain")
	TextXML    = New("text", "xml")
	PNG        = New("image", "png")
	JPEG       = New("image", "jpeg")
	GIF        = New("image", "gif")
)

var wellKnown = map[string]MediaType{
	"javascript": Javascript,
	"json":       JSON,
	"xml":        XML,
	"zip":        Zip,
	"pdf":        PDF,
	"binary":     Binary,
	"mpeg":       Mpeg,
	"vorbis":     Vorbis,
	"css":        CSS,
	"html":       HTML,
	"text":       Text,
	"text-xml":   TextXML,
	"png":        PNG,
	"jpeg":       JPEG,
	"gif":        GIF,
}

// Lookup returns the well-known media type registered under a short name such
// as "json" or "html". Names are case-insensitive.
func Lookup(name string) (MediaType, bool) {
	m, ok := wellKnown[strings.ToLower(name)]
	return m, ok
}
