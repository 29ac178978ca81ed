package fps4

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/scenetext/internal/core/domain"
)

// Magic identifies an FPS4 header.
const Magic = "FPS4"

const (
	// headerSize and recordStride are the layout written by Build.
	headerSize   = 0x1C
	recordStride = 0x2C
	recordFixed  = 12
	nameBlock    = 32

	// minHeader covers magic, count, header size, body offset and stride.
	minHeader = 18
)

// layoutConstants follow the stride field in every header Build writes.
var layoutConstants = []byte{0x0F, 0x00, 0x01, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}

// Archive is a parsed container.
type Archive struct {
	HeaderPath string
	DetailPath string

	// BodyOffset is added to every record offset when slicing the detail stream.
	BodyOffset int
	Stride     int
	Entries    []domain.ArchiveEntry
}

// Parse reads an archive from its header and detail files.
// An empty detailPath means the body follows the header in the same file.
func Parse(headerPath, detailPath string) (*Archive, error) {
	if detailPath == "" {
		detailPath = headerPath
	}
	header, err := os.ReadFile(headerPath)
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	detail := header
	if detailPath != headerPath {
		if detail, err = os.ReadFile(detailPath); err != nil {
			return nil, fmt.Errorf("read detail: %w", err)
		}
	}
	a, err := ParseBytes(header, detail)
	if err != nil {
		var fe *domain.FormatError
		if errors.As(err, &fe) {
			fe.Path = headerPath
		}
		return nil, err
	}
	a.HeaderPath = headerPath
	a.DetailPath = detailPath
	return a, nil
}

// ParseBytes parses an in-memory archive. A nil detail means header.
func ParseBytes(header, detail []byte) (*Archive, error) {
	if detail == nil {
		detail = header
	}
	if len(header) < minHeader {
		return nil, &domain.FormatError{Offset: 0, Reason: "truncated header"}
	}
	if string(header[:4]) != Magic {
		return nil, &domain.FormatError{Offset: 0, Reason: fmt.Sprintf("bad magic %q", header[:4])}
	}
	count := int(binary.LittleEndian.Uint32(header[4:]))
	hsize := int(binary.LittleEndian.Uint32(header[8:]))
	body := int(binary.LittleEndian.Uint32(header[12:]))
	stride := int(binary.LittleEndian.Uint16(header[16:]))

	if count < 1 {
		return nil, &domain.FormatError{Offset: 4, Reason: "missing sentinel record"}
	}
	if stride < recordFixed {
		return nil, &domain.FormatError{Offset: 16, Reason: fmt.Sprintf("record stride %d too small", stride)}
	}
	if body < 0 || body > len(detail) {
		return nil, &domain.FormatError{Offset: 12, Reason: "body offset outside detail stream"}
	}

	a := &Archive{BodyOffset: body, Stride: stride}
	seen := make(map[string]bool)
	for i := 0; i < count-1; i++ {
		rec := hsize + i*stride
		if rec < 0 || rec+stride > len(header) {
			return nil, &domain.FormatError{Offset: rec, Reason: "truncated record table"}
		}
		off := int(binary.LittleEndian.Uint32(header[rec:]))
		size := int(binary.LittleEndian.Uint32(header[rec+4:]))
		name := strings.TrimRight(string(header[rec+recordFixed:rec+stride]), "\x00")
		if i := strings.IndexByte(name, 0); i >= 0 {
			name = name[:i]
		}

		start := body + off
		if start < 0 || size < 0 || start+size > len(detail) {
			return nil, &domain.FormatError{Offset: rec, Reason: fmt.Sprintf("entry %q outside detail stream", name)}
		}
		if seen[name] {
			return nil, &domain.FormatError{Offset: rec, Reason: fmt.Sprintf("duplicate entry %q", name)}
		}
		seen[name] = true

		data := make([]byte, size)
		copy(data, detail[start:start+size])
		a.Entries = append(a.Entries, domain.ArchiveEntry{
			Name:        name,
			Data:        data,
			Size:        size,
			Compression: Sniff(data),
		})
	}
	return a, nil
}

// Sniff guesses the compression of entry content from its first byte.
func Sniff(data []byte) domain.CompressionKind {
	if len(data) == 0 {
		return domain.CompressionNone
	}
	switch data[0] {
	case 0x10:
		return domain.CompressionLZ10
	case 0x11:
		return domain.CompressionLZ11
	default:
		return domain.CompressionNone
	}
}

// FindSibling returns the file next to path that shares its base name and
// has extension ext. It returns domain.ErrNotFound if there is none.
func FindSibling(path, ext string) (string, error) {
	dir := filepath.Dir(path)
	base := stem(filepath.Base(path))
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("list %s: %w", dir, err)
	}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || name == filepath.Base(path) {
			continue
		}
		if strings.HasSuffix(name, ext) && stem(name) == base {
			return filepath.Join(dir, name), nil
		}
	}
	return "", fmt.Errorf("%w: no %s file next to %s", domain.ErrNotFound, ext, path)
}

// stem is the name up to its first dot.
func stem(name string) string {
	if i := strings.IndexByte(name, '.'); i >= 0 {
		return name[:i]
	}
	return name
}

// Entry returns the entry with the given name.
func (a *Archive) Entry(name string) (*domain.ArchiveEntry, bool) {
	for i := range a.Entries {
		if a.Entries[i].Name == name {
			return &a.Entries[i], true
		}
	}
	return nil, false
}

// Build serialises entries into a header and a detail stream.
func Build(entries []domain.ArchiveEntry) (header, detail []byte, err error) {
	seen := make(map[string]bool, len(entries))
	var h, d bytes.Buffer

	h.WriteString(Magic)
	writeU32(&h, uint32(len(entries)+1))
	writeU32(&h, headerSize)
	writeU32(&h, 0)
	writeU16(&h, recordStride)
	h.Write(layoutConstants)

	offset := 0
	for _, e := range entries {
		if len(e.Name) >= nameBlock {
			return nil, nil, &domain.FormatError{Reason: fmt.Sprintf("entry name %q longer than %d bytes", e.Name, nameBlock-1)}
		}
		if e.Name == "" || seen[e.Name] {
			return nil, nil, &domain.FormatError{Reason: fmt.Sprintf("duplicate or empty entry name %q", e.Name)}
		}
		seen[e.Name] = true

		size := len(e.Data)
		reserved := 0
		if size >= 8 {
			reserved = size - 8
		}
		writeU32(&h, uint32(offset))
		writeU32(&h, uint32(size))
		writeU32(&h, uint32(reserved))
		h.WriteString(e.Name)
		h.Write(make([]byte, nameBlock-len(e.Name)%nameBlock))

		d.Write(e.Data)
		offset += size
	}

	writeU32(&h, uint32(offset))
	h.Write(make([]byte, recordFixed))
	return h.Bytes(), d.Bytes(), nil
}

func writeU32(b *bytes.Buffer, v uint32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	b.Write(tmp[:])
}

func writeU16(b *bytes.Buffer, v uint16) {
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], v)
	b.Write(tmp[:])
}
