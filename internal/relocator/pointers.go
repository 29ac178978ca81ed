package relocator

import (
	"encoding/binary"
	"fmt"

	"github.com/custodia-labs/scenetext/internal/core/domain"
)

// SplitHiLo splits addr into the halves loaded by a hi/lo instruction pair.
// The low half is sign-extended when added, so hi is rounded up when bit 15
// of addr is set.
func SplitHiLo(addr uint32) (hi, lo uint16) {
	hi = uint16(addr >> 16)
	if addr&0x8000 != 0 {
		hi++
	}
	return hi, uint16(addr & 0xFFFF)
}

// JoinHiLo is the inverse of SplitHiLo.
func JoinHiLo(hi, lo uint16) uint32 {
	return uint32(hi)<<16 + uint32(int32(int16(lo)))
}

// PatchSite writes addr into a pointer site.
func PatchSite(buf []byte, site domain.PointerSite, addr uint32) error {
	switch site.Kind {
	case domain.SiteAbsolute32:
		if err := check(buf, site.Offset, 4); err != nil {
			return err
		}
		binary.LittleEndian.PutUint32(buf[site.Offset:], addr)
	case domain.SiteHiLo:
		if err := check(buf, site.Offset, 4); err != nil {
			return err
		}
		if err := check(buf, site.LoOffset, 4); err != nil {
			return err
		}
		hi, lo := SplitHiLo(addr)
		// only the low halfword of each little-endian word holds the immediate
		binary.LittleEndian.PutUint16(buf[site.Offset:], hi)
		binary.LittleEndian.PutUint16(buf[site.LoOffset:], lo)
	case domain.SiteRelative16:
		if addr > 0xFFFF {
			return fmt.Errorf("%w: 0x%X at site 0x%X exceeds 16 bits", domain.ErrPointerRange, addr, site.Offset)
		}
		if err := check(buf, site.Offset, 2); err != nil {
			return err
		}
		binary.LittleEndian.PutUint16(buf[site.Offset:], uint16(addr))
	default:
		return fmt.Errorf("%w: unknown pointer site kind %d", domain.ErrInvalidInput, site.Kind)
	}
	return nil
}

// ReadSite reads the address stored at a pointer site.
func ReadSite(buf []byte, site domain.PointerSite) (uint32, error) {
	switch site.Kind {
	case domain.SiteAbsolute32:
		if err := check(buf, site.Offset, 4); err != nil {
			return 0, err
		}
		return binary.LittleEndian.Uint32(buf[site.Offset:]), nil
	case domain.SiteHiLo:
		if err := check(buf, site.Offset, 4); err != nil {
			return 0, err
		}
		if err := check(buf, site.LoOffset, 4); err != nil {
			return 0, err
		}
		return JoinHiLo(binary.LittleEndian.Uint16(buf[site.Offset:]), binary.LittleEndian.Uint16(buf[site.LoOffset:])), nil
	case domain.SiteRelative16:
		if err := check(buf, site.Offset, 2); err != nil {
			return 0, err
		}
		return uint32(binary.LittleEndian.Uint16(buf[site.Offset:])), nil
	default:
		return 0, fmt.Errorf("%w: unknown pointer site kind %d", domain.ErrInvalidInput, site.Kind)
	}
}

func check(buf []byte, off, n int) error {
	if off < 0 || off+n > len(buf) {
		return &domain.FormatError{Offset: off, Reason: "pointer site out of bounds"}
	}
	return nil
}
