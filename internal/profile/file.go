package profile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

// modesFile is the on-disk layout of the YAML store. Modes stay as raw
// nodes until read so one hand-edited record cannot break the others.
type modesFile struct {
	Bluetooth struct {
		Address string `yaml:"address"`
	} `yaml:"bluetooth"`
	Modes map[string]yaml.Node `yaml:"modes"`
}

// FileStore keeps modes in a single YAML file. The file is re-read on
// every operation so hand edits are picked up; a mutex serialises
// read-modify-write cycles within the process and writes go through a
// temporary file and rename.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore returns a store backed by path. The file is created on the
// first write.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) load() (modesFile, error) {
	var doc modesFile
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return doc, nil
	}
	if err != nil {
		return doc, fmt.Errorf("reading modes file: %w", err)
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return doc, fmt.Errorf("parsing modes file %s: %w", s.path, err)
	}
	return doc, nil
}

func (s *FileStore) save(doc modesFile) error {
	if doc.Bluetooth.Address == "" {
		doc.Bluetooth.Address = UnsetAddress
	}
	data, err := yaml.Marshal(&doc)
	if err != nil {
		return fmt.Errorf("encoding modes file: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating modes dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".modes-*.yaml")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing modes file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing modes file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replacing modes file: %w", err)
	}
	return nil
}

func (s *FileStore) List(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(doc.Modes))
	for name := range doc.Modes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (s *FileStore) Get(_ context.Context, name string) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return Record{}, err
	}
	node, ok := doc.Modes[name]
	if !ok {
		return Record{}, fmt.Errorf("%w: %s", ErrProfileNotFound, name)
	}
	var rec Record
	if err := node.Decode(&rec); err != nil {
		return Record{}, fmt.Errorf("%w: %s: %v", ErrInvalidProfile, name, err)
	}
	return rec, nil
}

func (s *FileStore) Put(_ context.Context, name string, rec Record) error {
	if err := validName(name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	var node yaml.Node
	if err := node.Encode(rec); err != nil {
		return fmt.Errorf("encoding mode %s: %w", name, err)
	}
	if doc.Modes == nil {
		doc.Modes = make(map[string]yaml.Node)
	}
	doc.Modes[name] = node
	return s.save(doc)
}

func (s *FileStore) Address(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return "", err
	}
	return normalizeAddress(doc.Bluetooth.Address), nil
}

func (s *FileStore) SetAddress(_ context.Context, address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	doc.Bluetooth.Address = address
	return s.save(doc)
}

func (s *FileStore) Close() error { return nil }
