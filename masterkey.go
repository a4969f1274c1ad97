package secureshare

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/secureshare/client-go/internal/crypto"
	"github.com/secureshare/client-go/internal/securestore"
)

// masterKeyRecord is the persisted verification record. It holds only
// the salt and a hash of the derived key, never the key or passphrase.
type masterKeyRecord struct {
	Salt       string `json:"salt"` // base64
	Hash       string `json:"hash"` // hex SHA-256 of the derived key
	Iterations int    `json:"iterations"`
}

// SetMasterPassphrase enrolls the app-unlock passphrase. A fresh random
// salt is generated and a verification hash of the derived key is
// persisted; enrolling again replaces any previous passphrase.
func (c *Client) SetMasterPassphrase(passphrase string) error {
	if err := c.checkClosed(); err != nil {
		return err
	}
	if passphrase == "" {
		return fmt.Errorf("%w: empty passphrase", ErrKeyDerivation)
	}

	salt, err := crypto.ReadRandom(crypto.SaltSize)
	if err != nil {
		return err
	}

	key, err := crypto.DeriveMasterKey([]byte(passphrase), salt, crypto.MasterKeyIterations, crypto.MasterKeySize)
	if err != nil {
		return err
	}
	defer crypto.Zero(key)

	record := masterKeyRecord{
		Salt:       crypto.ToBase64(salt),
		Hash:       crypto.MasterKeyHash(key),
		Iterations: crypto.MasterKeyIterations,
	}
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return c.store.Set(securestore.MasterKeyHashKey, data)
}

// VerifyMasterPassphrase checks a passphrase against the enrolled
// verification record. Returns ErrMasterKeyNotSet when no passphrase has
// been enrolled.
func (c *Client) VerifyMasterPassphrase(passphrase string) (bool, error) {
	if err := c.checkClosed(); err != nil {
		return false, err
	}

	data, err := c.store.Get(securestore.MasterKeyHashKey)
	if errors.Is(err, securestore.ErrNotFound) {
		return false, ErrMasterKeyNotSet
	}
	if err != nil {
		return false, err
	}

	var record masterKeyRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return false, fmt.Errorf("parse master key record: %w", err)
	}

	salt, err := crypto.FromBase64(record.Salt)
	if err != nil {
		return false, fmt.Errorf("parse master key record: %w", err)
	}

	key, err := crypto.DeriveMasterKey([]byte(passphrase), salt, record.Iterations, crypto.MasterKeySize)
	if err != nil {
		return false, err
	}
	defer crypto.Zero(key)

	match := subtle.ConstantTimeCompare([]byte(crypto.MasterKeyHash(key)), []byte(record.Hash)) == 1
	return match, nil
}

// ClearMasterPassphrase removes the enrolled passphrase record.
func (c *Client) ClearMasterPassphrase() error {
	if err := c.checkClosed(); err != nil {
		return err
	}
	return c.store.Delete(securestore.MasterKeyHashKey)
}
