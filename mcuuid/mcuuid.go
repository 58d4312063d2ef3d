// Package mcuuid converts uuid values to and from the encodings world
// data stores them with.
//
// Modern saves store a uuid as a TAG_Int_Array of four big-endian
// quarters. Saves written before 1.16 store two TAG_Long halves under
// "<name>Most" and "<name>Least" keys.
package mcuuid

import (
	"encoding/binary"
	"fmt"

	"github.com/gofrs/uuid"
	"golang.org/x/xerrors"

	"github.com/ch-iv/nbt2dict/nbt"
)

// UUID is a 16-byte value.
type UUID uuid.UUID

func (g UUID) Parts() (a, b, c, d int32) {
	a = int32(binary.BigEndian.Uint32(g[0:4]))
	b = int32(binary.BigEndian.Uint32(g[4:8]))
	c = int32(binary.BigEndian.Uint32(g[8:12]))
	d = int32(binary.BigEndian.Uint32(g[12:16]))
	return
}

func (g UUID) Halves() (most, least int64) {
	most = int64(binary.BigEndian.Uint64(g[0:8]))
	least = int64(binary.BigEndian.Uint64(g[8:16]))
	return
}

func FromParts(a, b, c, d int32) (g UUID) {
	binary.BigEndian.PutUint32(g[0:4], uint32(a))
	binary.BigEndian.PutUint32(g[4:8], uint32(b))
	binary.BigEndian.PutUint32(g[8:12], uint32(c))
	binary.BigEndian.PutUint32(g[12:16], uint32(d))
	return
}

func FromHalves(most, least int64) (g UUID) {
	binary.BigEndian.PutUint64(g[0:8], uint64(most))
	binary.BigEndian.PutUint64(g[8:16], uint64(least))
	return
}

// IntArray returns the modern int array encoding of g.
func (g UUID) IntArray() nbt.IntArray {
	a, b, c, d := g.Parts()
	return nbt.IntArray{a, b, c, d}
}

// FromIntArray decodes the modern int array encoding.
func FromIntArray(arr nbt.IntArray) (UUID, error) {
	if len(arr) != 4 {
		return UUID{}, xerrors.Errorf("mcuuid: int array has %d elements, want 4", len(arr))
	}
	return FromParts(arr[0], arr[1], arr[2], arr[3]), nil
}

func (g UUID) String() string {
	return uuid.UUID(g).String()
}

func ParseString(s string) (UUID, error) {
	u, err := uuid.FromString(s)
	if err != nil {
		return UUID{}, xerrors.Errorf("mcuuid: %w", err)
	}
	return UUID(u), nil
}

func (g UUID) MarshalText() ([]byte, error) {
	return []byte(g.String()), nil
}

func (g *UUID) UnmarshalText(data []byte) (err error) {
	if *g, err = ParseString(string(data)); err != nil {
		return err
	}

	return nil
}

// Lookup finds the uuid stored under name in c. It tries the modern int
// array form first and the legacy long pair second.
func Lookup(c nbt.Compound, name string) (UUID, bool) {
	if v, ok := c.Get(name); ok {
		if arr, ok := v.(nbt.IntArray); ok {
			if g, err := FromIntArray(arr); err == nil {
				return g, true
			}
		}
	}

	most, ok := c.Get(name + "Most")
	if !ok {
		return UUID{}, false
	}
	least, ok := c.Get(name + "Least")
	if !ok {
		return UUID{}, false
	}

	m, okMost := most.(nbt.Long)
	l, okLeast := least.(nbt.Long)
	if !okMost || !okLeast {
		return UUID{}, false
	}
	return FromHalves(int64(m), int64(l)), true
}

func New() UUID {
	u, err := uuid.NewV4()
	if err != nil {
		panic(fmt.Sprintf("failed to generate uuid: %+v", err))
	}

	return UUID(u)
}
