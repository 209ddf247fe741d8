package codec

import (
	"encoding/json"
	"errors"

	"github.com/beevik/etree"
)

// ErrNoRoot is returned by ParseXML for input without a root element.
var ErrNoRoot = errors.New("codec: xml document has no root element")

// DecodeJSON unmarshals data into v.
func DecodeJSON(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// ParseXML parses data into a document tree.
func ParseXML(data []byte) (*etree.Document, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, err
	}
	if doc.Root() == nil {
		return nil, ErrNoRoot
	}
	return doc, nil
}
