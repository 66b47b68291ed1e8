package sbom

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/secure-systems-lab/go-securesystemslib/cjson"
)

// Unmarshal decodes the neutral JSON encoding of a Document. Unknown fields
// and trailing data are rejected as ParseErrors.
func Unmarshal(data []byte) (*Document, error) {
	const op = "sbom.Unmarshal"
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, E(KindParse, op, nil, "empty input")
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	doc := &Document{}
	if err := dec.Decode(doc); err != nil {
		return nil, E(KindParse, op, err, "input is not a valid document encoding")
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, E(KindParse, op, err, "unexpected data after document")
	}
	doc.normalize()
	return doc, nil
}

// Marshal encodes a Document as canonical JSON: object keys sorted, no
// insignificant whitespace. Equal documents always encode to equal bytes.
func Marshal(doc *Document) ([]byte, error) {
	out, err := cjson.EncodeCanonical(doc)
	if err != nil {
		return nil, E(KindValidation, "sbom.Marshal", err, "document cannot be encoded")
	}
	return escapeControl(out), nil
}

// escapeControl rewrites the control characters cjson leaves raw inside
// strings as JSON escapes. Canonical output has no whitespace between
// tokens, so every such byte belongs to a string.
func escapeControl(data []byte) []byte {
	if !bytes.ContainsFunc(data, func(r rune) bool { return r < 0x20 }) {
		return data
	}
	var buf bytes.Buffer
	buf.Grow(len(data) + 16)
	for _, b := range data {
		switch {
		case b == '\n':
			buf.WriteString(`\n`)
		case b == '\r':
			buf.WriteString(`\r`)
		case b == '\t':
			buf.WriteString(`\t`)
		case b < 0x20:
			fmt.Fprintf(&buf, `\u%04x`, b)
		default:
			buf.WriteByte(b)
		}
	}
	return buf.Bytes()
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	data, err := json.Marshal(d)
	if err != nil {
		// Every field of Document is plain data, so this cannot fail.
		panic(err)
	}
	c := &Document{}
	if err := json.Unmarshal(data, c); err != nil {
		panic(err)
	}
	c.normalize()
	return c
}

func (d *Document) normalize() {
	d.ensure()
	for _, n := range d.NodeList.Nodes {
		if n == nil {
			continue
		}
		if n.Type == "" {
			n.Type = NodeTypePackage
		}
		for algo, v := range n.Hashes {
			n.Hashes[algo] = strings.ToLower(v)
		}
	}
}
