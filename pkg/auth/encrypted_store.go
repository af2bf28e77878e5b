package auth

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/crypto/pbkdf2"
)

const (
	saltSize        = 32
	keySize         = 32
	kdfIterations   = 100000
	tokenFileFormat = 1
)

// PassphraseEnv overrides the generated passphrase of EncryptedFileStore.
const PassphraseEnv = "IGAUTH_PASSPHRASE"

// EncryptedFileStore keeps token records in one AES-GCM sealed file. The key
// is derived with PBKDF2 from IGAUTH_PASSPHRASE, or from a random passphrase
// kept next to the file.
type EncryptedFileStore struct {
	path       string
	passphrase []byte
	mu         sync.RWMutex
}

// tokenFile is the on-disk envelope. Sealed holds nonce||ciphertext of the
// JSON encoded records; []byte fields marshal as base64.
type tokenFile struct {
	Version  int       `json:"version"`
	Salt     []byte    `json:"salt"`
	Sealed   []byte    `json:"sealed"`
	Modified time.Time `json:"modified"`
}

// vault is the decrypted content of a token file.
type vault struct {
	salt    []byte
	records map[string]TokenRecord
}

// NewEncryptedFileStore creates an encrypted file store at filePath
func NewEncryptedFileStore(filePath string) (*EncryptedFileStore, error) {
	if dir := filepath.Dir(filePath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	passphrase, err := resolvePassphrase(filepath.Join(filepath.Dir(filePath), ".passphrase"))
	if err != nil {
		return nil, fmt.Errorf("failed to get passphrase: %w", err)
	}

	return &EncryptedFileStore{path: filePath, passphrase: passphrase}, nil
}

// Save writes rec under its key, replacing any previous record.
func (e *EncryptedFileStore) Save(rec *TokenRecord) error {
	if rec == nil || rec.Key() == "" {
		return ErrInvalidCredentials
	}
	return e.update(func(v *vault) error {
		v.records[rec.Key()] = *rec
		return nil
	})
}

// Load reads the record stored under key
func (e *EncryptedFileStore) Load(key string) (*TokenRecord, error) {
	if key == "" {
		return nil, ErrInvalidCredentials
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	v, err := e.open()
	if err != nil {
		return nil, err
	}
	rec, ok := v.records[key]
	if !ok {
		return nil, ErrCredentialsNotFound
	}
	return &rec, nil
}

// List returns all stored records
func (e *EncryptedFileStore) List() ([]*TokenRecord, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	v, err := e.open()
	if err != nil {
		return nil, err
	}
	records := make([]*TokenRecord, 0, len(v.records))
	for _, rec := range v.records {
		rec := rec
		records = append(records, &rec)
	}
	return records, nil
}

// Delete removes the record stored under key. The file is removed together
// with its last record.
func (e *EncryptedFileStore) Delete(key string) error {
	if key == "" {
		return ErrInvalidCredentials
	}
	return e.update(func(v *vault) error {
		if _, ok := v.records[key]; !ok {
			return ErrCredentialsNotFound
		}
		delete(v.records, key)
		return nil
	})
}

// Exists reports whether a record is stored under key
func (e *EncryptedFileStore) Exists(key string) bool {
	_, err := e.Load(key)
	return err == nil
}

// update runs fn on the decrypted vault and writes the result back.
func (e *EncryptedFileStore) update(fn func(*vault) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	v, err := e.open()
	if err != nil {
		return err
	}
	if err := fn(v); err != nil {
		return err
	}
	if len(v.records) == 0 {
		if err := os.Remove(e.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
		return nil
	}
	return e.write(v)
}

// open reads and decrypts the file. A missing file is an empty vault.
func (e *EncryptedFileStore) open() (*vault, error) {
	v := &vault{records: make(map[string]TokenRecord)}

	content, err := os.ReadFile(e.path)
	if errors.Is(err, os.ErrNotExist) {
		return v, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	var f tokenFile
	if err := json.Unmarshal(content, &f); err != nil {
		return nil, fmt.Errorf("failed to parse token file: %w", err)
	}
	if f.Version != tokenFileFormat {
		return nil, fmt.Errorf("unsupported token file version %d", f.Version)
	}

	gcm, err := e.cipherFor(f.Salt)
	if err != nil {
		return nil, err
	}
	if len(f.Sealed) < gcm.NonceSize() {
		return nil, errors.New("token file is truncated")
	}
	nonce, sealed := f.Sealed[:gcm.NonceSize()], f.Sealed[gcm.NonceSize():]
	plain, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt token file: %w", err)
	}

	if err := json.Unmarshal(plain, &v.records); err != nil {
		return nil, fmt.Errorf("failed to parse records: %w", err)
	}
	if v.records == nil {
		v.records = make(map[string]TokenRecord)
	}
	v.salt = f.Salt
	return v, nil
}

// write seals v and atomically replaces the file.
func (e *EncryptedFileStore) write(v *vault) error {
	if len(v.salt) == 0 {
		v.salt = make([]byte, saltSize)
		if _, err := io.ReadFull(rand.Reader, v.salt); err != nil {
			return fmt.Errorf("failed to generate salt: %w", err)
		}
	}

	plain, err := json.Marshal(v.records)
	if err != nil {
		return fmt.Errorf("failed to marshal records: %w", err)
	}

	gcm, err := e.cipherFor(v.salt)
	if err != nil {
		return err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return fmt.Errorf("failed to generate nonce: %w", err)
	}

	content, err := json.MarshalIndent(tokenFile{
		Version:  tokenFileFormat,
		Salt:     v.salt,
		Sealed:   gcm.Seal(nonce, nonce, plain, nil),
		Modified: time.Now().UTC(),
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal token file: %w", err)
	}

	tmp := e.path + ".tmp"
	if err := os.WriteFile(tmp, content, 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return os.Rename(tmp, e.path)
}

func (e *EncryptedFileStore) cipherFor(salt []byte) (cipher.AEAD, error) {
	key := pbkdf2.Key(e.passphrase, salt, kdfIterations, keySize, sha256.New)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// resolvePassphrase returns IGAUTH_PASSPHRASE when set. Otherwise it reads
// the passphrase file, creating it with random content on first use.
func resolvePassphrase(file string) ([]byte, error) {
	if pass := os.Getenv(PassphraseEnv); pass != "" {
		return []byte(pass), nil
	}

	if content, err := os.ReadFile(file); err == nil && len(content) > 0 {
		return content, nil
	}

	pass := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, pass); err != nil {
		return nil, fmt.Errorf("failed to generate passphrase: %w", err)
	}
	encoded := []byte(fmt.Sprintf("%x", pass))
	if err := os.WriteFile(file, encoded, 0600); err != nil {
		return nil, fmt.Errorf("failed to save passphrase: %w", err)
	}
	return encoded, nil
}
