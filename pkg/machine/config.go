package machine

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"github.com/oisee/fe2z80/pkg/mmu"
)

var (
	ErrRange   = errors.New("machine: invalid page range")
	ErrOverlap = errors.New("machine: page mapped twice")
	ErrImage   = errors.New("machine: image does not fit mapped memory")
)

// PageRange is an inclusive range of page indices.
type PageRange struct {
	First, Last int
}

func (r PageRange) String() string {
	if r.First == r.Last {
		return fmt.Sprintf("0x%02x", r.First)
	}
	return fmt.Sprintf("0x%02x-0x%02x", r.First, r.Last)
}

// ParsePageRange parses "0x40-0x7f", "64-127" or a single page "0x10".
func ParsePageRange(s string) (PageRange, error) {
	lo, hi, found := strings.Cut(strings.TrimSpace(s), "-")
	first, err := parsePage(lo)
	if err != nil {
		return PageRange{}, fmt.Errorf("%q: %w", s, err)
	}
	last := first
	if found {
		if last, err = parsePage(hi); err != nil {
			return PageRange{}, fmt.Errorf("%q: %w", s, err)
		}
	}
	if last < first {
		return PageRange{}, fmt.Errorf("%q: end before start: %w", s, ErrRange)
	}
	return PageRange{first, last}, nil
}

func parsePage(s string) (int, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 0, 16)
	if err != nil {
		return 0, ErrRange
	}
	if v >= mmu.PageCount {
		return 0, ErrRange
	}
	return int(v), nil
}

// PageRanges is a list of ranges usable as a repeatable, comma-separated flag.
type PageRanges []PageRange

var _ pflag.Value = (*PageRanges)(nil)

func (p *PageRanges) String() string {
	parts := make([]string, len(*p))
	for i, r := range *p {
		parts[i] = r.String()
	}
	return strings.Join(parts, ",")
}

func (p *PageRanges) Set(s string) error {
	for _, part := range strings.Split(s, ",") {
		r, err := ParsePageRange(part)
		if err != nil {
			return err
		}
		*p = append(*p, r)
	}
	return nil
}

func (p *PageRanges) Type() string { return "pages" }

// Contains reports whether page lies in any of the ranges.
func (p PageRanges) Contains(page int) bool {
	for _, r := range p {
		if page >= r.First && page <= r.Last {
			return true
		}
	}
	return false
}

// StimulusKind selects the input pin a Stimulus drives.
type StimulusKind uint8

const (
	Int StimulusKind = iota
	NMI
	Wait
	BusReq
	Reset
)

var stimulusNames = [...]string{"int", "nmi", "wait", "busreq", "reset"}

func (k StimulusKind) String() string {
	if int(k) < len(stimulusNames) {
		return stimulusNames[k]
	}
	return fmt.Sprintf("StimulusKind(%d)", uint8(k))
}

// Stimulus asserts an input pin from clock edge At for Edges edges. An INT
// with Edges == 0 is held until the CPU acknowledges it.
type Stimulus struct {
	Kind  StimulusKind
	At    uint64
	Edges uint64
}

// Config describes the host side of a machine.
type Config struct {
	ROM PageRanges
	RAM PageRanges // every page is RAM when ROM and RAM are both empty

	Image  []byte
	Origin uint16 // load address of Image and initial PC

	// ConsolePort is the low byte of the output port whose writes go to
	// the console writer; negative disables the console.
	ConsolePort int

	MaxTStates uint64 // 0 means no limit
	Stimuli    []Stimulus
	IntVector  uint8 // byte placed on the data bus during INT acknowledge
}

// DefaultConfig maps every page as RAM with no console.
func DefaultConfig() Config {
	return Config{ConsolePort: -1, IntVector: 0xFF}
}

// validate checks the page layout and that the image lands on mapped pages.
func (c *Config) validate() error {
	for p := 0; p < mmu.PageCount; p++ {
		if c.ROM.Contains(p) && c.RAM.Contains(p) {
			return fmt.Errorf("page 0x%02x: %w", p, ErrOverlap)
		}
	}
	end := int(c.Origin) + len(c.Image)
	if end > 0x10000 {
		return fmt.Errorf("%d bytes at 0x%04x: %w", len(c.Image), c.Origin, ErrImage)
	}
	if len(c.ROM) == 0 && len(c.RAM) == 0 {
		return nil
	}
	for a := int(c.Origin); a < end; a += mmu.PageSize - a%mmu.PageSize {
		p := a / mmu.PageSize
		if !c.ROM.Contains(p) && !c.RAM.Contains(p) {
			return fmt.Errorf("page 0x%02x is unmapped: %w", p, ErrImage)
		}
	}
	return nil
}

// access returns the mapping for page p under this layout.
func (c *Config) access(p int) mmu.Access {
	switch {
	case c.ROM.Contains(p):
		return mmu.ReadOnly
	case c.RAM.Contains(p):
		return mmu.ReadWrite
	case len(c.RAM) == 0 && len(c.ROM) == 0:
		return mmu.ReadWrite
	}
	return mmu.Unmapped
}
