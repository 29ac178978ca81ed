package tss

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/custodia-labs/scenetext/internal/core/domain"
)

const (
	baseOffset = 0x0C
	recordSize = 16
	siteSize   = 2
)

// StringsBase reads the strings base from the script header.
func StringsBase(blob []byte) (int, error) {
	if len(blob) < baseOffset+4 {
		return 0, &domain.FormatError{Offset: 0, Reason: "truncated script header"}
	}
	base := int(binary.LittleEndian.Uint32(blob[baseOffset:]))
	if base > len(blob) {
		return 0, &domain.FormatError{Offset: baseOffset, Reason: fmt.Sprintf("strings base 0x%X beyond end of file", base)}
	}
	return base, nil
}

// Scan finds every dialogue record. Signatures are searched in order and
// each one left to right; struct ids follow that order starting at 1.
// Text fields of the returned nodes are left empty.
func Scan(blob []byte, signatures [][]byte) ([]domain.StructNode, error) {
	base, err := StringsBase(blob)
	if err != nil {
		return nil, err
	}

	var nodes []domain.StructNode
	for _, sig := range signatures {
		if len(sig) == 0 {
			continue
		}
		for from := 0; ; {
			i := bytes.Index(blob[from:], sig)
			if i < 0 {
				break
			}
			site := from + i + len(sig)
			from = site

			node, err := readRecord(blob, base, site)
			if err != nil {
				return nil, err
			}
			node.ID = len(nodes) + 1
			nodes = append(nodes, node)
		}
	}
	return nodes, nil
}

func readRecord(blob []byte, base, site int) (domain.StructNode, error) {
	if site+siteSize > len(blob) {
		return domain.StructNode{}, &domain.FormatError{Offset: site, Reason: "pointer site past end of file"}
	}
	rec := base + int(binary.LittleEndian.Uint16(blob[site:]))
	if rec+recordSize > len(blob) {
		return domain.StructNode{}, &domain.FormatError{Offset: site, Reason: fmt.Sprintf("record 0x%X out of bounds", rec)}
	}

	node := domain.StructNode{
		PointerOffset:        site,
		RecordOffset:         rec,
		Unknown1:             binary.LittleEndian.Uint32(blob[rec:]),
		Unknown2:             binary.LittleEndian.Uint32(blob[rec+4:]),
		SpeakerPointerOffset: rec + 8,
		SpeakerOffset:        base + int(binary.LittleEndian.Uint32(blob[rec+8:])),
		TextOffset:           base + int(binary.LittleEndian.Uint32(blob[rec+12:])),
	}
	if node.SpeakerOffset >= len(blob) {
		return node, &domain.FormatError{Offset: rec + 8, Reason: fmt.Sprintf("speaker 0x%X out of bounds", node.SpeakerOffset)}
	}
	if node.TextOffset >= len(blob) {
		return node, &domain.FormatError{Offset: rec + 12, Reason: fmt.Sprintf("text 0x%X out of bounds", node.TextOffset)}
	}
	return node, nil
}
