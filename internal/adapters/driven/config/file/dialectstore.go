package file

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/scenetext/internal/codec"
	"github.com/custodia-labs/scenetext/internal/core/domain"
	"github.com/custodia-labs/scenetext/internal/core/ports/driven"
)

const (
	dialectCacheExpiration = 30 * time.Minute
	dialectCacheCleanup    = time.Hour
)

// Ensure DialectStore implements the interface.
var _ driven.DialectStore = (*DialectStore)(nil)

// dialectFile is the on-disk layout of a dialect. Byte values and table
// codes are hex strings so tables can be pasted from reverse-engineering notes.
type dialectFile struct {
	Name          string            `toml:"name"`
	Signatures    []string          `toml:"signatures"`
	VoicePatterns []string          `toml:"voice_patterns"`
	Opcodes       map[string]string `toml:"opcodes"`
	Params        []paramFile       `toml:"params"`
	Buttons       map[string]string `toml:"buttons"`
	Table         map[string]string `toml:"table"`
	Legacy        map[string]string `toml:"legacy"`
}

type paramFile struct {
	Name   string            `toml:"name"`
	Opcode string            `toml:"opcode"`
	Width  int               `toml:"width"`
	Values map[string]string `toml:"values"`
}

type cachedDialect struct {
	modTime time.Time
	dialect domain.Dialect
}

// DialectStore reads dialect files and caches them per path until the file changes.
type DialectStore struct {
	cache *cache.Cache
}

// NewDialectStore creates a dialect store with an empty cache.
func NewDialectStore() *DialectStore {
	return &DialectStore{cache: cache.New(dialectCacheExpiration, dialectCacheCleanup)}
}

// Dialect loads the dialect at path.
// Returns domain.ErrNotFound if the file does not exist.
func (s *DialectStore) Dialect(path string) (domain.Dialect, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return domain.Dialect{}, err
	}
	info, err := os.Stat(abs)
	if errors.Is(err, os.ErrNotExist) {
		return domain.Dialect{}, fmt.Errorf("%w: dialect %s", domain.ErrNotFound, path)
	}
	if err != nil {
		return domain.Dialect{}, err
	}

	if v, ok := s.cache.Get(abs); ok {
		if c := v.(cachedDialect); c.modTime.Equal(info.ModTime()) {
			return c.dialect, nil
		}
	}

	raw, err := os.ReadFile(abs)
	if err != nil {
		return domain.Dialect{}, err
	}
	d, err := ParseDialect(raw)
	if err != nil {
		return domain.Dialect{}, fmt.Errorf("dialect %s: %w", path, err)
	}
	s.cache.Set(abs, cachedDialect{modTime: info.ModTime(), dialect: d}, cache.DefaultExpiration)
	return d, nil
}

// ParseDialect decodes dialect TOML. Missing sections fall back to the
// built-in story dialect.
func ParseDialect(raw []byte) (domain.Dialect, error) {
	var f dialectFile
	if err := toml.Unmarshal(raw, &f); err != nil {
		return domain.Dialect{}, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	d := codec.TalesDialect()
	if f.Name != "" {
		d.Name = f.Name
	}
	if len(f.Signatures) > 0 {
		d.Signatures = nil
		for _, s := range f.Signatures {
			b, err := codec.ParseSignature(s)
			if err != nil {
				return domain.Dialect{}, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
			}
			d.Signatures = append(d.Signatures, b)
		}
	}
	if len(f.VoicePatterns) > 0 {
		d.VoicePatterns = f.VoicePatterns
	}

	for name, hex := range f.Opcodes {
		b, err := parseByte(hex)
		if err != nil {
			return domain.Dialect{}, fmt.Errorf("opcode %s: %w", name, err)
		}
		d.Opcodes[name] = b
	}

	if len(f.Params) > 0 {
		d.Params = nil
		for _, p := range f.Params {
			op, err := parseByte(p.Opcode)
			if err != nil {
				return domain.Dialect{}, fmt.Errorf("param %s: %w", p.Name, err)
			}
			tag := domain.ParamTag{Name: p.Name, Opcode: op, Width: p.Width, Values: make(map[uint64]string, len(p.Values))}
			for k, v := range p.Values {
				n, err := strconv.ParseUint(k, 16, 64)
				if err != nil {
					return domain.Dialect{}, fmt.Errorf("%w: param %s value %q", domain.ErrInvalidInput, p.Name, k)
				}
				tag.Values[n] = v
			}
			d.Params = append(d.Params, tag)
		}
	}

	var err error
	if d.Buttons, err = byteMap(f.Buttons); err != nil {
		return domain.Dialect{}, fmt.Errorf("buttons: %w", err)
	}
	if d.Legacy, err = byteMap(f.Legacy); err != nil {
		return domain.Dialect{}, fmt.Errorf("legacy: %w", err)
	}
	d.Table = make(map[uint16]string, len(f.Table))
	for k, v := range f.Table {
		n, err := strconv.ParseUint(k, 16, 16)
		if err != nil {
			return domain.Dialect{}, fmt.Errorf("%w: table code %q", domain.ErrInvalidInput, k)
		}
		d.Table[uint16(n)] = v
	}
	return d, nil
}

func parseByte(s string) (byte, error) {
	n, err := strconv.ParseUint(trimHexPrefix(s), 16, 8)
	if err != nil {
		return 0, fmt.Errorf("%w: byte %q", domain.ErrInvalidInput, s)
	}
	return byte(n), nil
}

func byteMap(m map[string]string) (map[byte]string, error) {
	out := make(map[byte]string, len(m))
	for k, v := range m {
		b, err := parseByte(k)
		if err != nil {
			return nil, err
		}
		out[b] = v
	}
	return out, nil
}

func trimHexPrefix(s string) string {
	if len(s) > 2 && (s[:2] == "0x" || s[:2] == "0X") {
		return s[2:]
	}
	return s
}
