package descriptor

import "encoding/xml"

// Deserializer type identifiers, persisted in the `deserializerType`
// attribute of the `<descriptor>` element. These are treated
// as opaque tag strings dispatched through registry.go's closed map, never
// resolved via reflection on an actual Go type name, so renaming the backing
// Go types never breaks on-disk compatibility.
const (
	CBCDeserializerTypeFQN = "dataprotect.descriptor.CBCAuthenticatedEncryptorDescriptorDeserializer"
	GCMDeserializerTypeFQN = "dataprotect.descriptor.GCMAuthenticatedEncryptorDescriptorDeserializer"
)

// requiresEncryptionAttr is the value of the `requires-encryption` attribute
// this module puts on any sub-tree carrying sensitive material. The key
// manager does not inspect it: it passes every serialized descriptor through
// its XMLEncryptor before persisting.
const requiresEncryptionAttr = "true"

// cbcDescriptorXML is the wire shape of a CBC-then-HMAC descriptor, matching
// the `<descriptor>` element's schema.
type cbcDescriptorXML struct {
	XMLName          xml.Name     `xml:"descriptor"`
	DeserializerType string       `xml:"deserializerType,attr"`
	Encryption       algAttrXML   `xml:"encryption"`
	Validation       algAttrXML   `xml:"validation"`
	MasterKey        masterKeyXML `xml:"masterKey"`
}

// gcmDescriptorXML is the wire shape of a GCM descriptor: same schema minus
// the validation algorithm, since GCM authenticates without a separate MAC.
type gcmDescriptorXML struct {
	XMLName          xml.Name     `xml:"descriptor"`
	DeserializerType string       `xml:"deserializerType,attr"`
	Encryption       algAttrXML   `xml:"encryption"`
	MasterKey        masterKeyXML `xml:"masterKey"`
}

type algAttrXML struct {
	Algorithm string `xml:"algorithm,attr"`
}

// masterKeyXML carries the base64 master secret. RequiresEncryption marks
// this sub-tree for IXmlEncryptor substitution.
type masterKeyXML struct {
	RequiresEncryption string `xml:"requires-encryption,attr"`
	Value              string `xml:"value"`
}
