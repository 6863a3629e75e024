// Package crypto seals wallet secrets with a password: scrypt derives an AES-256 key and
// AES-GCM encrypts the payload.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/scrypt"
)

const (
	ScryptN = 32768 // 2^15
	ScryptR = 8
	ScryptP = 1
	KeyLen  = 32 // AES-256 key length

	// Version of the sealed payload format.
	Version = 2
)

// kinds of secret a vault can hold
const (
	KindMnemonic   = "mnemonic"
	KindPrivateKey = "private_key"
)

// ErrWrongPassword is returned when a vault cannot be opened with the given password.
var ErrWrongPassword = errors.New("wrong password or corrupted vault")

// Vault is the sealed form stored on disk.
type Vault struct {
	Salt  []byte `json:"salt"`
	Nonce []byte `json:"nonce"`
	Data  []byte `json:"data"`
}

// VaultData is the plaintext payload of a vault. Symbol and Address describe a private key
// and are empty for a mnemonic.
type VaultData struct {
	Kind    string `json:"kind"`
	Symbol  string `json:"symbol,omitempty"`
	Address string `json:"address,omitempty"`
	Secret  string `json:"secret"`
	Version int    `json:"version"`
}

// NewVault seals data with password.
func NewVault(data VaultData, password string) (*Vault, error) {
	if data.Secret == "" {
		return nil, fmt.Errorf("nothing to seal")
	}
	data.Version = Version

	salt := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	key, err := deriveKey(password, salt)
	if err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}
	defer clearBytes(key)

	plaintext, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize vault data: %w", err)
	}
	defer clearBytes(plaintext)

	aesGCM, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, aesGCM.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	return &Vault{
		Salt:  salt,
		Nonce: nonce,
		Data:  aesGCM.Seal(nil, nonce, plaintext, nil),
	}, nil
}

// Decrypt opens the vault.
func (v *Vault) Decrypt(password string) (*VaultData, error) {
	key, err := deriveKey(password, v.Salt)
	if err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}
	defer clearBytes(key)

	aesGCM, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(v.Nonce) != aesGCM.NonceSize() {
		return nil, ErrWrongPassword
	}
	plaintext, err := aesGCM.Open(nil, v.Nonce, v.Data, nil)
	if err != nil {
		return nil, ErrWrongPassword
	}
	defer clearBytes(plaintext)

	var data VaultData
	if err := json.Unmarshal(plaintext, &data); err != nil {
		return nil, fmt.Errorf("failed to deserialize vault data: %w", err)
	}
	return &data, nil
}

// ValidatePassword reports whether password opens the vault.
func (v *Vault) ValidatePassword(password string) bool {
	_, err := v.Decrypt(password)
	return err == nil
}

func deriveKey(password string, salt []byte) ([]byte, error) {
	key, err := scrypt.Key([]byte(password), salt, ScryptN, ScryptR, ScryptP, KeyLen)
	if err != nil {
		return nil, fmt.Errorf("scrypt key derivation failed: %w", err)
	}
	return key, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return aesGCM, nil
}

func clearBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
