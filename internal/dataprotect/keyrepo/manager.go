package keyrepo

import (
	"context"
	"encoding/xml"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/dataprotect/internal/dataprotect/apperrors"
	"github.com/allisson/dataprotect/internal/dataprotect/cipherset"
	"github.com/allisson/dataprotect/internal/dataprotect/descriptor"
	"github.com/allisson/dataprotect/internal/dataprotect/keyring"
	"github.com/allisson/dataprotect/internal/dataprotect/secret"
	"github.com/allisson/dataprotect/internal/dataprotect/xmlenc"
)

const masterSecretLen = 64 // bytes; 512 bits, the minimum this module's ciphers require.

// Manager is the XML key manager: it creates new keys, reads
// the whole ring back from a Repository (deferring descriptor
// deserialization until first use), and records revocations.
type Manager struct {
	repo      Repository
	encryptor xmlenc.XMLEncryptor
	decryptor xmlenc.XMLDecryptor
	registry  *descriptor.Registry
	encAlg    cipherset.EncryptionAlgorithm
	macAlg    cipherset.ValidationAlgorithm
}

// NewManager builds a Manager. encAlg/macAlg select the descriptor variant
// new keys are created with; macAlg is ignored for GCM encryption
// algorithms.
func NewManager(
	repo Repository,
	encryptor xmlenc.XMLEncryptor,
	decryptor xmlenc.XMLDecryptor,
	registry *descriptor.Registry,
	encAlg cipherset.EncryptionAlgorithm,
	macAlg cipherset.ValidationAlgorithm,
) *Manager {
	return &Manager{
		repo:      repo,
		encryptor: encryptor,
		decryptor: decryptor,
		registry:  registry,
		encAlg:    encAlg,
		macAlg:    macAlg,
	}
}

func (m *Manager) newDescriptor() (descriptor.Descriptor, error) {
	master, err := secret.FromRandom(masterSecretLen)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCryptographic, "keyrepo: failed to generate master secret")
	}

	switch m.encAlg {
	case cipherset.AES128GCM, cipherset.AES192GCM, cipherset.AES256GCM:
		return &descriptor.GCMDescriptor{EncryptionAlgorithm: m.encAlg, MasterKey: master}, nil
	default:
		return &descriptor.CBCDescriptor{EncryptionAlgorithm: m.encAlg, ValidationAlgorithm: m.macAlg, MasterKey: master}, nil
	}
}

// CreateKey allocates a new key with the given activation/expiration
// window, a fresh descriptor, and persists it. It returns a
// keyring.Key whose descriptor deserialization is deferred.
func (m *Manager) CreateKey(ctx context.Context, activatedAt, expiresAt time.Time) (*keyring.Key, error) {
	id := uuid.New()
	createdAt := time.Now().UTC()

	desc, err := m.newDescriptor()
	if err != nil {
		return nil, err
	}

	descriptorXML, err := desc.Serialize()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrConfiguration, "keyrepo: failed to serialize descriptor")
	}

	stored, _, err := m.encryptor.Encrypt(ctx, descriptorXML)
	if err != nil {
		return nil, err
	}

	wire := keyElementXML{
		ID:             id.String(),
		Version:        1,
		CreationDate:   formatTime(createdAt),
		ActivationDate: formatTime(activatedAt),
		ExpirationDate: formatTime(expiresAt),
		Descriptor:     stored,
	}
	xmlBytes, err := xml.Marshal(wire)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrConfiguration, "keyrepo: failed to marshal key element")
	}

	if err := m.repo.StoreElement(ctx, Element{Bytes: xmlBytes}, id.String()); err != nil {
		return nil, err
	}

	thunk := func() (descriptor.Descriptor, error) {
		plaintext, err := m.decryptor.Decrypt(context.Background(), stored)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrConfiguration, "keyrepo: failed to decrypt descriptor")
		}
		return m.registry.Deserialize(plaintext)
	}

	return keyring.NewKey(id, createdAt, activatedAt, expiresAt, false, thunk), nil
}

// RevokeKey writes a revocation element naming keyID.
func (m *Manager) RevokeKey(ctx context.Context, keyID uuid.UUID, reason string) error {
	wire := revocationElementXML{
		Version:        1,
		RevocationDate: formatTime(time.Now()),
		Key:            revocationTargetXML{ID: keyID.String()},
		Reason:         reason,
	}
	return m.storeRevocation(ctx, wire, "revocation-"+keyID.String())
}

// RevokeAll writes a mass-revocation element: every key created on or
// before cutoff is considered revoked.
func (m *Manager) RevokeAll(ctx context.Context, cutoff time.Time, reason string) error {
	wire := revocationElementXML{
		Version:        1,
		RevocationDate: formatTime(cutoff),
		Key:            revocationTargetXML{ID: "*"},
		Reason:         reason,
	}
	return m.storeRevocation(ctx, wire, "revocation-all")
}

func (m *Manager) storeRevocation(ctx context.Context, wire revocationElementXML, friendlyName string) error {
	xmlBytes, err := xml.Marshal(wire)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrConfiguration, "keyrepo: failed to marshal revocation element")
	}
	return m.repo.StoreElement(ctx, Element{Bytes: xmlBytes}, friendlyName+"-"+time.Now().UTC().Format("20060102T150405.000000000"))
}

// ReadAll performs a full repository scan and materializes every key,
// applying revoked flags (self-revoked marker, per-key revocation element,
// or mass-revocation cutoff).
func (m *Manager) ReadAll(ctx context.Context) ([]*keyring.Key, error) {
	elements, err := m.repo.GetAllElements(ctx)
	if err != nil {
		return nil, err
	}

	var keyWires []keyElementXML
	var revokedIDs = map[string]bool{}
	var massCutoffs []time.Time

	for _, el := range elements {
		var probe struct {
			XMLName xml.Name
		}
		if err := xml.Unmarshal(el.Bytes, &probe); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrRepository, "keyrepo: malformed repository element")
		}

		switch probe.XMLName.Local {
		case "key":
			var kw keyElementXML
			if err := xml.Unmarshal(el.Bytes, &kw); err != nil {
				return nil, apperrors.Wrap(apperrors.ErrRepository, "keyrepo: malformed key element")
			}
			keyWires = append(keyWires, kw)
		case "revocation":
			var rw revocationElementXML
			if err := xml.Unmarshal(el.Bytes, &rw); err != nil {
				return nil, apperrors.Wrap(apperrors.ErrRepository, "keyrepo: malformed revocation element")
			}
			if rw.Key.ID == "*" {
				cutoff, err := parseTime(rw.RevocationDate)
				if err != nil {
					return nil, apperrors.Wrap(apperrors.ErrRepository, "keyrepo: malformed revocation date")
				}
				massCutoffs = append(massCutoffs, cutoff)
			} else {
				revokedIDs[rw.Key.ID] = true
			}
		}
	}

	keys := make([]*keyring.Key, 0, len(keyWires))
	for _, kw := range keyWires {
		id, err := uuid.Parse(kw.ID)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrRepository, "keyrepo: malformed key id")
		}
		createdAt, err := parseTime(kw.CreationDate)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrRepository, "keyrepo: malformed creation date")
		}
		activatedAt, err := parseTime(kw.ActivationDate)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrRepository, "keyrepo: malformed activation date")
		}
		expiresAt, err := parseTime(kw.ExpirationDate)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrRepository, "keyrepo: malformed expiration date")
		}

		revoked := kw.Revoked || revokedIDs[kw.ID]
		for _, cutoff := range massCutoffs {
			if !createdAt.After(cutoff) {
				revoked = true
				break
			}
		}

		descriptorXML, err := descriptorSubtree(kw.Descriptor)
		if err != nil {
			return nil, err
		}
		thunk := func() (descriptor.Descriptor, error) {
			plaintext, err := m.decryptor.Decrypt(context.Background(), descriptorXML)
			if err != nil {
				return nil, apperrors.Wrap(apperrors.ErrConfiguration, "keyrepo: failed to decrypt descriptor")
			}
			return m.registry.Deserialize(plaintext)
		}

		keys = append(keys, keyring.NewKey(id, createdAt, activatedAt, expiresAt, revoked, thunk))
	}

	return keys, nil
}
