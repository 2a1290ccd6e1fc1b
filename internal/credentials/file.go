package credentials

import (
	"encoding/json"
	"errors"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/kweron/dbscope/internal/errs"
)

// connectionsFile is the on-disk shape of the saved-connections file.
// Connection settings (including passwords) are encrypted as one JSON
// payload per connection; only the display name stays readable.
type connectionsFile struct {
	Version     int               `yaml:"version"`
	Connections []fileEntry       `yaml:"connections"`
}

type fileEntry struct {
	Name      string        `yaml:"name"`
	Encrypted EncryptedBlob `yaml:"encrypted"`
}

const fileVersion = 1

// SaveFile writes all credentials from the store to path, each encrypted
// with the given password. The file is written with owner-only permissions.
func SaveFile(path, password string, store *Store) error {
	file := connectionsFile{Version: fileVersion}

	for _, c := range store.List() {
		payload, err := json.Marshal(c)
		if err != nil {
			return errs.Wrap(errs.ErrKindUnknown, "failed to encode connection", err)
		}
		blob, err := Encrypt(payload, password)
		if err != nil {
			return err
		}
		file.Connections = append(file.Connections, fileEntry{
			Name:      c.Name,
			Encrypted: *blob,
		})
	}

	out, err := yaml.Marshal(&file)
	if err != nil {
		return errs.Wrap(errs.ErrKindUnknown, "failed to encode connections file", err)
	}
	if err := os.WriteFile(path, out, 0o600); err != nil {
		return errs.Wrap(errs.ErrKindUnknown, "failed to write connections file", err)
	}
	return nil
}

// LoadFile reads the connections file at path, decrypts every entry with
// the password, and adds the connections to the store. A missing file is a
// not-found error so first-run callers can treat it as an empty store.
func LoadFile(path, password string, store *Store) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return errs.Wrap(errs.ErrKindNotFound, "connections file does not exist", err)
		}
		return errs.Wrap(errs.ErrKindUnknown, "failed to read connections file", err)
	}

	var file connectionsFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return errs.Wrap(errs.ErrKindInvalidInput, "malformed connections file", err)
	}

	for _, entry := range file.Connections {
		payload, err := Decrypt(&entry.Encrypted, password)
		if err != nil {
			return err
		}
		var c Credentials
		if err := json.Unmarshal(payload, &c); err != nil {
			return errs.Wrap(errs.ErrKindInvalidInput, "malformed connection entry", err)
		}
		if err := store.Add(c); err != nil {
			return err
		}
	}
	return nil
}
