// Package mmu maps the 16-bit Z80 address space onto host-owned memory.
//
// The space is split into 256 pages of 256 bytes, indexed by address bits
// 15..8. Each slot is either empty or holds a borrowed view of exactly one
// page of host memory tagged with what the CPU may do with it. The table
// never copies or frees the memory; the host keeps it alive while attached.
package mmu

import (
	"errors"
	"fmt"
)

const (
	PageSize  = 256 // bytes per page
	PageCount = 256 // pages in the address space

	// OpenBus is what a read returns when nothing answers it: an empty
	// slot or a write-only page.
	OpenBus uint8 = 0xFF
)

// Access is the capability tag of an attached page.
type Access uint8

const (
	Unmapped Access = iota
	ReadOnly
	WriteOnly
	ReadWrite
)

func (a Access) String() string {
	switch a {
	case Unmapped:
		return "unmapped"
	case ReadOnly:
		return "ro"
	case WriteOnly:
		return "wo"
	case ReadWrite:
		return "rw"
	}
	return fmt.Sprintf("Access(%d)", uint8(a))
}

// CanRead reports whether the CPU may read through a page with this tag.
func (a Access) CanRead() bool { return a == ReadOnly || a == ReadWrite }

// CanWrite reports whether the CPU may write through a page with this tag.
func (a Access) CanWrite() bool { return a == WriteOnly || a == ReadWrite }

var (
	ErrPageIndex = errors.New("mmu: page index out of range")
	ErrPageSize  = errors.New("mmu: page must be exactly 256 bytes")
	ErrAccess    = errors.New("mmu: invalid access tag")
)

// page is one slot of the table. A nil mem means the slot is empty.
type page struct {
	access Access
	mem    *[PageSize]byte
}

// PageTable is the direct-indexed page map. The zero value has every slot empty.
type PageTable struct {
	pages [PageCount]page
}

// Attach maps mem at page index with the given access. An existing mapping
// at index is replaced.
func (t *PageTable) Attach(index int, access Access, mem []byte) error {
	if index < 0 || index >= PageCount {
		return fmt.Errorf("attach page %d: %w", index, ErrPageIndex)
	}
	if access != ReadOnly && access != WriteOnly && access != ReadWrite {
		return fmt.Errorf("attach page %d as %s: %w", index, access, ErrAccess)
	}
	if len(mem) != PageSize {
		return fmt.Errorf("attach page %d with %d bytes: %w", index, len(mem), ErrPageSize)
	}
	t.pages[index] = page{access: access, mem: (*[PageSize]byte)(mem)}
	return nil
}

// Detach empties the slot at index. Detaching an empty slot is not an error.
func (t *PageTable) Detach(index int) error {
	if index < 0 || index >= PageCount {
		return fmt.Errorf("detach page %d: %w", index, ErrPageIndex)
	}
	t.pages[index] = page{}
	return nil
}

// Mapping returns the access tag of the slot at index, Unmapped if empty
// or out of range.
func (t *PageTable) Mapping(index int) Access {
	if index < 0 || index >= PageCount {
		return Unmapped
	}
	return t.pages[index].access
}

// Read returns the byte at addr, or OpenBus if its page is empty or not readable.
func (t *PageTable) Read(addr uint16) uint8 {
	p := &t.pages[addr>>8]
	if p.mem == nil || !p.access.CanRead() {
		return OpenBus
	}
	return p.mem[addr&0xFF]
}

// Write stores v at addr. Writes to empty or read-only pages are dropped.
func (t *PageTable) Write(addr uint16, v uint8) {
	p := &t.pages[addr>>8]
	if p.mem == nil || !p.access.CanWrite() {
		return
	}
	p.mem[addr&0xFF] = v
}
