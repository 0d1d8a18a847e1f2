package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/BinitGoswami/my-placement/internal/model"
)

// File names inside the state directory.
const (
	SessionFile = "session.toml"
	AccountFile = "account.toml"
)

// accountFlags is the separately cached account state. It outlives a
// reload of the session record so frozen status needs no extra round trip.
type accountFlags struct {
	Frozen bool `toml:"frozen"`
}

// FilePersister stores the session as TOML in a private state directory.
type FilePersister struct {
	dir string
}

// NewFilePersister returns a persister rooted at dir, creating it if needed.
func NewFilePersister(dir string) (*FilePersister, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating state dir: %w", err)
	}
	return &FilePersister{dir: dir}, nil
}

// Dir returns the state directory.
func (p *FilePersister) Dir() string { return p.dir }

// Load reads the session record and the cached account flags.
func (p *FilePersister) Load() (*model.Session, error) {
	var sess model.Session
	if _, err := toml.DecodeFile(filepath.Join(p.dir, SessionFile), &sess); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("decoding %s: %w", SessionFile, err)
	}

	var flags accountFlags
	if _, err := toml.DecodeFile(filepath.Join(p.dir, AccountFile), &flags); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("decoding %s: %w", AccountFile, err)
	}
	sess.Flags.Frozen = flags.Frozen
	return &sess, nil
}

// Save writes the session record and the account flags.
func (p *FilePersister) Save(s *model.Session) error {
	if err := p.write(SessionFile, s); err != nil {
		return err
	}
	return p.write(AccountFile, accountFlags{Frozen: s.Flags.Frozen})
}

// Remove deletes both files. Missing files are not an error.
func (p *FilePersister) Remove() error {
	var errs []error
	for _, name := range []string{SessionFile, AccountFile} {
		if err := os.Remove(filepath.Join(p.dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// write encodes v to a temp file and renames it into place, so readers in
// other processes never observe a half-written file.
func (p *FilePersister) write(name string, v any) error {
	tmp, err := os.CreateTemp(p.dir, "."+name+".*")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", name, err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod %s: %w", name, err)
	}
	if err := toml.NewEncoder(tmp).Encode(v); err != nil {
		tmp.Close()
		return fmt.Errorf("encoding %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(p.dir, name)); err != nil {
		return fmt.Errorf("replacing %s: %w", name, err)
	}
	return nil
}
