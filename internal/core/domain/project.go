package domain

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Strategy names for fixed-layout files.
const (
	StrategyPool = "pool"
	StrategySlot = "slot"
)

// Project is the typed project configuration.
type Project struct {
	// Root is the directory containing the project file. Relative paths resolve against it.
	Root string `toml:"-"`

	Name   string        `toml:"name"`
	Paths  ProjectPaths  `toml:"paths"`
	Image  ImageConfig   `toml:"image"`
	Story  StoryConfig   `toml:"story"`
	Menu   MenuConfig    `toml:"menu"`
	Tools  ToolsConfig   `toml:"tools"`
	Insert InsertOptions `toml:"insert"`
}

// ProjectPaths lists the working directories of a project.
type ProjectPaths struct {
	OriginalFiles   string `toml:"original_files"`
	ExtractedFiles  string `toml:"extracted_files"`
	TranslatedFiles string `toml:"translated_files"`
	FinalFiles      string `toml:"final_files"`
	GameBuilds      string `toml:"game_builds"`
	Dialect         string `toml:"dialect"`
	State           string `toml:"state_dir"`
}

// ImageConfig names the disk image and the regions the composer expects.
type ImageConfig struct {
	Path string `toml:"path"`
}

// StoryConfig locates the archive holding the dialogue scripts.
type StoryConfig struct {
	// Archive is the detail stream, relative to the original files.
	Archive string `toml:"archive"`

	// HeaderExt is the extension of the sibling header file.
	HeaderExt string `toml:"header_ext"`

	// ScriptExt selects which extracted entries are dialogue scripts.
	ScriptExt string `toml:"script_ext"`
}

// MenuConfig lists fixed-layout files patched through pointer tables.
type MenuConfig struct {
	MemoryBase uint32     `toml:"memory_base"`
	Files      []MenuFile `toml:"files"`
}

// MenuFile describes one fixed-layout binary.
type MenuFile struct {
	Name          string         `toml:"name"`
	Path          string         `toml:"path"`
	Strategy      string         `toml:"strategy"`
	MemoryBase    uint32         `toml:"memory_base"`
	Align         bool           `toml:"align"`
	Compressed    bool           `toml:"compressed"`
	PointerTables []PointerTable `toml:"pointer_tables"`
	SplitPointers []SplitPointer `toml:"split_pointers"`
	Pools         [][]int        `toml:"pools"`
}

// PointerTable is a run of 32-bit absolute pointers [Start, End) every Stride bytes.
type PointerTable struct {
	Start  int `toml:"start"`
	End    int `toml:"end"`
	Stride int `toml:"stride"`
}

// SplitPointer is a pair of instruction words holding the halves of one address.
type SplitPointer struct {
	Hi int `toml:"hi"`
	Lo int `toml:"lo"`
}

// ToolsConfig names the external collaborator executables.
type ToolsConfig struct {
	LZSS              string  `toml:"lzss"`
	BLZ               string  `toml:"blz"`
	NDSTool           string  `toml:"ndstool"`
	LaunchesPerSecond float64 `toml:"launches_per_second"`
	Workers           int     `toml:"workers"`
}

// InsertOptions are project-level insertion defaults.
type InsertOptions struct {
	Statuses []string `toml:"statuses"`
	Backup   bool     `toml:"backup"`
}

// DefaultProject returns a Project with the conventional directory layout.
func DefaultProject() Project {
	return Project{
		Paths: ProjectPaths{
			OriginalFiles:   "0_original",
			ExtractedFiles:  "1_extracted",
			TranslatedFiles: "2_translated",
			FinalFiles:      "3_patched",
			GameBuilds:      "4_builds",
			Dialect:         "dialect.toml",
			State:           ".scenetext",
		},
		Story: StoryConfig{
			HeaderExt: ".b",
			ScriptExt: ".tss",
		},
		Tools: ToolsConfig{
			LZSS:              "lzss",
			BLZ:               "blz",
			NDSTool:           "ndstool",
			LaunchesPerSecond: 8,
			Workers:           4,
		},
		Insert: InsertOptions{Backup: true},
	}
}

// Resolve joins a project-relative path with the project root.
func (p *Project) Resolve(rel string) string {
	if rel == "" || filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(p.Root, rel)
}

// InsertionSet builds the insertion set from the project defaults plus extra stages.
func (p *Project) InsertionSet(extra ...Status) (InsertionSet, error) {
	stages := append([]Status(nil), extra...)
	for _, s := range p.Insert.Statuses {
		st, err := ParseStatus(s)
		if err != nil {
			return InsertionSet{}, err
		}
		stages = append(stages, st)
	}
	return NewInsertionSet(stages...), nil
}

// Validate checks the fields every command relies on.
func (p *Project) Validate() error {
	if p.Paths.Dialect == "" {
		return fmt.Errorf("%w: paths.dialect is required", ErrInvalidInput)
	}
	paths := make(map[string]bool)
	names := make(map[string]bool)
	for _, f := range p.Menu.Files {
		if f.Path == "" {
			return fmt.Errorf("%w: menu file %q has no path", ErrInvalidInput, f.Name)
		}
		if paths[filepath.Clean(f.Path)] {
			return fmt.Errorf("%w: menu file path %q is listed twice", ErrInvalidInput, f.Path)
		}
		paths[filepath.Clean(f.Path)] = true
		if names[f.DocName()] {
			return fmt.Errorf("%w: menu file name %q is listed twice", ErrInvalidInput, f.DocName())
		}
		names[f.DocName()] = true
		switch f.Strategy {
		case StrategyPool, StrategySlot, "":
		default:
			return fmt.Errorf("%w: menu file %q has unknown strategy %q", ErrInvalidInput, f.Name, f.Strategy)
		}
		for _, pool := range f.Pools {
			if len(pool) != 2 || pool[1] < 0 {
				return fmt.Errorf("%w: menu file %q has malformed pool %v", ErrInvalidInput, f.Name, pool)
			}
		}
	}
	return nil
}

// PoolList converts the configured [start, size] pairs.
func (f *MenuFile) PoolList() []Pool {
	pools := make([]Pool, 0, len(f.Pools))
	for _, p := range f.Pools {
		if len(p) == 2 {
			pools = append(pools, Pool{Start: p[0], Capacity: p[1]})
		}
	}
	return pools
}

// DocName is the document stem: Name, or the file name without extension.
func (f *MenuFile) DocName() string {
	if f.Name != "" {
		return f.Name
	}
	base := filepath.Base(f.Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Base returns the file's memory base, falling back to the shared one.
func (f *MenuFile) Base(shared uint32) uint32 {
	if f.MemoryBase != 0 {
		return f.MemoryBase
	}
	return shared
}
