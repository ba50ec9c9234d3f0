package artifacts

import (
	"encoding/binary"

	lz4 "github.com/DataDog/golz4-2"
	"github.com/pkg/errors"
)

// sample blob encodings, stored in the first byte
const (
	encVarint = 1
	encDelta  = 2
)

func compress(buf []byte) ([]byte, error) {
	comp := make([]byte, lz4.CompressBoundHdr(buf)+1)
	n, err := lz4.CompressHCHdr(comp[1:], buf)
	if err != nil {
		return nil, errors.Wrap(err, "lz4")
	}
	return comp[:n+1], nil
}

// packRun encodes palette ids as varints or delta varints, whichever
// compresses smaller.
func packRun(run []int) ([]byte, error) {
	if len(run) == 0 {
		return []byte{encVarint}, nil
	}
	buf := make([]byte, len(run)*binary.MaxVarintLen64)

	off := 0
	for _, x := range run {
		off += binary.PutVarint(buf[off:], int64(x))
	}
	best, err := compress(buf[:off])
	if err != nil {
		return nil, err
	}
	best[0] = encVarint

	off = 0
	last := 0
	for _, x := range run {
		x, last = x-last, x
		off += binary.PutVarint(buf[off:], int64(x))
	}
	enc, err := compress(buf[:off])
	if err != nil {
		return nil, err
	}
	enc[0] = encDelta
	if len(enc) < len(best) {
		best = enc
	}
	return best, nil
}

func unpackRun(comp []byte) ([]int, error) {
	if len(comp) < 1 {
		return nil, errors.New("empty sample blob")
	}
	if len(comp) == 1 {
		return []int{}, nil
	}
	buf, err := lz4.UncompressAllocHdr(nil, comp[1:])
	if err != nil {
		return nil, errors.Wrap(err, "lz4")
	}
	ret := []int{}
	last := 0
	for i := 0; i < len(buf); {
		val, n := binary.Varint(buf[i:])
		if n <= 0 {
			return nil, errors.Errorf("bad varint at offset %d", i)
		}
		i += n
		switch comp[0] {
		case encVarint:
			ret = append(ret, int(val))
		case encDelta:
			last += int(val)
			ret = append(ret, last)
		default:
			return nil, errors.Errorf("unknown sample encoding %d", comp[0])
		}
	}
	return ret, nil
}
