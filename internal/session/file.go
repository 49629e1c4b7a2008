package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// FileStore grava um JSON por plataforma em Dir (<dir>/<platform>.json).
type FileStore struct {
	Dir string
	now func() time.Time
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{Dir: dir, now: time.Now}
}

func (s *FileStore) path(platform string) string {
	return filepath.Join(s.Dir, platform+".json")
}

func (s *FileStore) Load(_ context.Context, platform string) (*State, error) {
	data, err := os.ReadFile(s.path(platform))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("lendo sessão %s: %w", platform, err)
	}
	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("sessão %s corrompida: %w", platform, err)
	}
	if len(st.Cookies) == 0 {
		return nil, ErrNoSession
	}
	return &st, nil
}

// Save escreve num arquivo temporário e renomeia, para nunca deixar um JSON pela metade.
func (s *FileStore) Save(_ context.Context, platform string, cookies []Cookie) error {
	if err := os.MkdirAll(s.Dir, 0o700); err != nil {
		return fmt.Errorf("criando diretório de sessões %s: %w", s.Dir, err)
	}
	data, err := json.MarshalIndent(State{Platform: platform, SavedAt: s.now().UTC(), Cookies: cookies}, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.Dir, platform+".*.tmp")
	if err != nil {
		return fmt.Errorf("salvando sessão %s: %w", platform, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("salvando sessão %s: %w", platform, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path(platform))
}

func (s *FileStore) Clear(_ context.Context, platform string) error {
	err := os.Remove(s.path(platform))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
