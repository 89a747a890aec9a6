// Package keyrepo implements the repository and XML key manager: durable
// storage of key and revocation elements, and the logic to create new
// keys, read the whole ring back, and record revocations.
package keyrepo

import (
	"bytes"
	"encoding/xml"
	"time"

	"github.com/allisson/dataprotect/internal/dataprotect/apperrors"
)

// keyElementXML is the `<key>` element of the key-ring XML schema. The
// Descriptor field is written verbatim (it already holds a serialized
// `<descriptor>` element, or whatever element the XMLEncryptor substituted
// for it); on unmarshal it accumulates every child of `<key>` and must be
// narrowed back down with descriptorSubtree.
type keyElementXML struct {
	XMLName        xml.Name `xml:"key"`
	ID             string   `xml:"id,attr"`
	Version        int      `xml:"version,attr"`
	CreationDate   string   `xml:"creationDate"`
	ActivationDate string   `xml:"activationDate"`
	ExpirationDate string   `xml:"expirationDate"`
	Descriptor     []byte   `xml:",innerxml"`
	Revoked        bool     `xml:"revoked,omitempty"`
}

// revocationTargetXML is the `<key id="GUID"/>` child of a revocation
// element; id is "*" for the mass form.
type revocationTargetXML struct {
	ID string `xml:"id,attr"`
}

// revocationElementXML is the `<revocation>` element of the key-ring XML
// schema.
type revocationElementXML struct {
	XMLName        xml.Name            `xml:"revocation"`
	Version        int                 `xml:"version,attr"`
	RevocationDate string              `xml:"revocationDate"`
	Key            revocationTargetXML `xml:"key"`
	Reason         string              `xml:"reason,omitempty"`
}

const xmlTimeLayout = time.RFC3339Nano

func formatTime(t time.Time) string { return t.UTC().Format(xmlTimeLayout) }

func parseTime(s string) (time.Time, error) { return time.Parse(xmlTimeLayout, s) }

// descriptorSubtree extracts the stored descriptor sub-element out of a key
// element's raw inner XML: the first child that is not one of the key's own
// metadata elements.
func descriptorSubtree(inner []byte) ([]byte, error) {
	dec := xml.NewDecoder(bytes.NewReader(inner))
	for {
		start := dec.InputOffset()
		tok, err := dec.Token()
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrRepository, "keyrepo: key element has no descriptor")
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch se.Name.Local {
		case "creationDate", "activationDate", "expirationDate", "revoked":
			if err := dec.Skip(); err != nil {
				return nil, apperrors.Wrap(apperrors.ErrRepository, "keyrepo: malformed key element")
			}
			continue
		}
		if err := dec.Skip(); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrRepository, "keyrepo: malformed key element")
		}
		return inner[start:dec.InputOffset()], nil
	}
}
