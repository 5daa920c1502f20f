package partnership

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"
)

// Loader reads partnership structures from TOML definition files.
type Loader struct {
	log zerolog.Logger
}

// NewLoader creates a new partnership loader.
func NewLoader(log zerolog.Logger) *Loader {
	return &Loader{
		log: log.With().Str("component", "partnership_loader").Logger(),
	}
}

// LoadFromFile loads and validates a partnership structure from a TOML file.
func (l *Loader) LoadFromFile(path string) (*Structure, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("partnership file not found: %s", path)
	}

	var structure Structure
	if _, err := toml.DecodeFile(path, &structure); err != nil {
		return nil, fmt.Errorf("failed to parse partnership TOML: %w", err)
	}

	if err := structure.Validate(); err != nil {
		return nil, fmt.Errorf("invalid partnership %q: %w", structure.Name, err)
	}

	l.log.Info().
		Str("name", structure.Name).
		Str("method", string(structure.Method)).
		Int("partners", len(structure.Partners)).
		Msg("Partnership loaded")

	return &structure, nil
}

// LoadFromString loads and validates a partnership structure from a TOML
// string. Used when structures are stored in the database.
func (l *Loader) LoadFromString(tomlString string) (*Structure, error) {
	var structure Structure
	if _, err := toml.Decode(tomlString, &structure); err != nil {
		return nil, fmt.Errorf("failed to parse partnership TOML: %w", err)
	}

	if err := structure.Validate(); err != nil {
		return nil, fmt.Errorf("invalid partnership %q: %w", structure.Name, err)
	}

	return &structure, nil
}

// LoadDirectory loads every .toml definition in a directory, sorted by
// filename for deterministic ordering.
func (l *Loader) LoadDirectory(dir string) ([]*Structure, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read partnership directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".toml") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	structures := make([]*Structure, 0, len(names))
	for _, name := range names {
		structure, err := l.LoadFromFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", name, err)
		}
		structures = append(structures, structure)
	}

	l.log.Info().Int("count", len(structures)).Str("dir", dir).Msg("Partnership definitions loaded")
	return structures, nil
}

// ToString encodes a partnership structure as TOML for storage.
func (l *Loader) ToString(structure *Structure) (string, error) {
	var builder strings.Builder
	if err := toml.NewEncoder(&builder).Encode(structure); err != nil {
		return "", fmt.Errorf("failed to encode partnership to TOML: %w", err)
	}
	return builder.String(), nil
}
