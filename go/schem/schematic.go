// Package schem reads and writes Sponge schematic (.schem) files.
package schem

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"

	"github.com/wotr-tools/blockweights/go/weights"
)

// UnknownBlock stands in for block indices that have no palette entry.
const UnknownBlock = "unknown"

// Schematic is a decoded Sponge schematic. Blocks holds palette indices in
// (y, z, x) order: index = x + z*Width + y*Width*Length.
type Schematic struct {
	Version     int
	DataVersion int
	Width       int
	Height      int
	Length      int
	// Palette maps palette index to block name with properties stripped.
	Palette map[int]string
	Blocks  []int
	// Skipped records palette entries that could not be interpreted.
	Skipped []error
}

func (s *Schematic) Dims() (width, height, length int) { return s.Width, s.Height, s.Length }

func (s *Schematic) BlockAt(i int) string {
	if name, ok := s.Palette[s.Blocks[i]]; ok {
		return name
	}
	return UnknownBlock
}

// StripProperties drops a trailing "[k=v,...]" block state suffix.
func StripProperties(name string) string {
	if i := strings.IndexByte(name, '['); i >= 0 {
		return name[:i]
	}
	return name
}

// Load opens and decodes the schematic at path. The file is closed before
// Load returns.
func Load(path string) (*Schematic, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	s, err := Read(f)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	return s, nil
}

// Read decodes a schematic from r. Gzip compression is detected from the
// stream magic; uncompressed NBT is accepted as-is.
func Read(r io.Reader) (*Schematic, error) {
	br := bufio.NewReader(r)
	var src io.Reader = br
	if magic, err := br.Peek(2); err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, errors.Wrap(err, "gzip")
		}
		defer zr.Close()
		src = zr
	}
	buf, err := io.ReadAll(src)
	if err != nil {
		return nil, err
	}
	return Parse(buf)
}

func tagInt(ty NbtType, value []byte) (int, bool) {
	switch ty {
	case TagByte:
		return int(int8(value[0])), true
	case TagShort:
		// Sponge stores dimensions as unsigned shorts
		return int(binary.BigEndian.Uint16(value)), true
	case TagInt:
		return int(int32(binary.BigEndian.Uint32(value))), true
	}
	return 0, false
}

// Parse decodes uncompressed schematic NBT. Both the v2 layout (Palette and
// BlockData at the top level) and the v3 layout (Schematic.Blocks.Palette and
// Schematic.Blocks.Data) are understood.
func Parse(buf []byte) (*Schematic, error) {
	s := &Schematic{Palette: map[int]string{}}
	var dims [3]bool
	var data []byte
	haveData := false

	err := NbtWalk(buf, func(path []string, idxes []int, ty NbtType, value []byte) {
		if len(path) > 0 && path[0] == "Schematic" {
			path = path[1:]
		}
		if len(path) == 0 {
			return
		}
		switch {
		case len(path) == 1:
			v, ok := tagInt(ty, value)
			if !ok {
				if path[0] == "BlockData" && ty == TagByteArray {
					data, haveData = value, true
				}
				return
			}
			switch path[0] {
			case "Width":
				s.Width, dims[0] = v, true
			case "Height":
				s.Height, dims[1] = v, true
			case "Length":
				s.Length, dims[2] = v, true
			case "Version":
				s.Version = v
			case "DataVersion":
				s.DataVersion = v
			}
		case len(path) == 2 && path[0] == "Palette",
			len(path) == 3 && path[0] == "Blocks" && path[1] == "Palette":
			name := path[len(path)-1]
			if ty != TagInt {
				s.Skipped = append(s.Skipped, &weights.MalformedInputError{
					Source: "palette",
					Record: name,
					Err:    errors.Errorf("palette value has tag type %d, want int", ty),
				})
				return
			}
			idx, _ := tagInt(ty, value)
			s.Palette[idx] = StripProperties(name)
		case len(path) == 2 && path[0] == "Blocks" && path[1] == "Data" && ty == TagByteArray:
			data, haveData = value, true
		}
	})
	if err != nil {
		return nil, errors.Wrap(err, "nbt")
	}

	for i, name := range []string{"Width", "Height", "Length"} {
		if !dims[i] {
			return nil, errors.Errorf("schematic has no %s", name)
		}
	}
	if !haveData {
		return nil, errors.New("schematic has no block data")
	}
	s.Blocks, err = decodeBlockData(data)
	if err != nil {
		return nil, err
	}
	if want := s.Width * s.Height * s.Length; len(s.Blocks) != want {
		return nil, errors.Errorf("block data has %d entries, want %dx%dx%d=%d",
			len(s.Blocks), s.Width, s.Height, s.Length, want)
	}
	return s, nil
}

// block data is a run of unsigned LEB128 varints
func decodeBlockData(data []byte) ([]int, error) {
	ret := make([]int, 0, len(data))
	for i := 0; i < len(data); {
		v, n := binary.Uvarint(data[i:])
		if n <= 0 {
			return nil, errors.Errorf("bad varint in block data at byte %d", i)
		}
		ret = append(ret, int(v))
		i += n
	}
	return ret, nil
}

func encodeBlockData(blocks []int) []byte {
	var buf bytes.Buffer
	var tmp [binary.MaxVarintLen64]byte
	for _, b := range blocks {
		n := binary.PutUvarint(tmp[:], uint64(b))
		buf.Write(tmp[:n])
	}
	return buf.Bytes()
}
