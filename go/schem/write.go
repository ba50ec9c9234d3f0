package schem

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"
	"sort"

	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
)

// SpongeVersion is the schematic format version Write produces.
const SpongeVersion = 2

// FromBlocks builds a schematic from block names given in (y, z, x) order.
// Palette indices are assigned in first-seen order.
func FromBlocks(width, height, length int, blocks []string) (*Schematic, error) {
	if len(blocks) != width*height*length {
		return nil, errors.Errorf("got %d blocks for a %dx%dx%d grid", len(blocks), width, height, length)
	}
	s := &Schematic{
		Version: SpongeVersion,
		Width:   width,
		Height:  height,
		Length:  length,
		Palette: map[int]string{},
		Blocks:  make([]int, len(blocks)),
	}
	ids := map[string]int{}
	for i, name := range blocks {
		id, ok := ids[name]
		if !ok {
			id = len(ids)
			ids[name] = id
			s.Palette[id] = name
		}
		s.Blocks[i] = id
	}
	return s, nil
}

type nbtWriter struct {
	bytes.Buffer
}

func (w *nbtWriter) name(ty NbtType, name string) {
	w.WriteByte(byte(ty))
	binary.Write(w, binary.BigEndian, uint16(len(name)))
	w.WriteString(name)
}

func (w *nbtWriter) putShort(name string, v int) {
	w.name(TagShort, name)
	binary.Write(w, binary.BigEndian, uint16(v))
}

func (w *nbtWriter) putInt(name string, v int) {
	w.name(TagInt, name)
	binary.Write(w, binary.BigEndian, int32(v))
}

func (w *nbtWriter) putByteArray(name string, v []byte) {
	w.name(TagByteArray, name)
	binary.Write(w, binary.BigEndian, int32(len(v)))
	w.Write(v)
}

func (w *nbtWriter) end() {
	w.WriteByte(byte(TagEnd))
}

// Encode returns the uncompressed v2 NBT encoding of s.
func (s *Schematic) Encode() []byte {
	var w nbtWriter
	w.name(TagCompound, "Schematic")
	w.putInt("Version", SpongeVersion)
	if s.DataVersion > 0 {
		w.putInt("DataVersion", s.DataVersion)
	}
	w.putShort("Width", s.Width)
	w.putShort("Height", s.Height)
	w.putShort("Length", s.Length)

	idxs := make([]int, 0, len(s.Palette))
	for idx := range s.Palette {
		idxs = append(idxs, idx)
	}
	sort.Ints(idxs)
	w.putInt("PaletteMax", len(idxs))
	w.name(TagCompound, "Palette")
	for _, idx := range idxs {
		w.putInt(s.Palette[idx], idx)
	}
	w.end()

	w.putByteArray("BlockData", encodeBlockData(s.Blocks))
	w.end()
	return w.Bytes()
}

// WriteTo writes s as a gzip-compressed schematic.
func (s *Schematic) WriteTo(out io.Writer) (int64, error) {
	cw := &countingWriter{w: out}
	zw := gzip.NewWriter(cw)
	if _, err := zw.Write(s.Encode()); err != nil {
		return cw.n, err
	}
	err := zw.Close()
	return cw.n, err
}

// Save writes s to path, replacing any existing file.
func (s *Schematic) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := s.WriteTo(f); err != nil {
		f.Close()
		return errors.Wrapf(err, "writing %s", path)
	}
	return f.Close()
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
