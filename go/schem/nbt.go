package schem

import (
	"encoding/binary"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

type NbtType int

const (
	TagEnd NbtType = iota
	TagByte
	TagShort
	TagInt
	TagLong
	TagFloat
	TagDouble
	TagByteArray
	TagString
	TagList
	TagCompound
	TagIntArray
	TagLongArray
)

var ErrTruncated = errors.New("nbt: truncated input")

// scalar payload sizes, indexed by tag type
var scalarSize = [...]int{TagByte: 1, TagShort: 2, TagInt: 4, TagLong: 8, TagFloat: 4, TagDouble: 8}

// element sizes of the array tags
var arrayElemSize = map[NbtType]int{TagByteArray: 1, TagIntArray: 4, TagLongArray: 8}

type nbtList struct {
	depth  int
	ty     NbtType
	length int
	idx    int
}

// NbtWalk is a stream-oriented zero-copy nbt parser. The callback receives the
// tag path below the root compound; path and value alias internal buffers and
// must be copied if retained. Lists of scalars are delivered in one call with
// a negated element type.
func NbtWalk(buf []byte, cb func(path []string, idxes []int, ty NbtType, value []byte)) error {
	path := []string{}
	idxes := []int{}
	listStack := []nbtList{}
	depth := 0

	take := func(o, n int) ([]byte, error) {
		if n < 0 || o+n > len(buf) {
			return nil, errors.Wrapf(ErrTruncated, "need %d bytes at offset %d", n, o)
		}
		return buf[o : o+n], nil
	}

	var ty NbtType
	for o := 0; o < len(buf); {
		if len(listStack) > 0 && listStack[len(listStack)-1].depth == depth {
			lt := &listStack[len(listStack)-1]
			lt.idx++
			if lt.idx > lt.length {
				listStack = listStack[:len(listStack)-1]
				depth--
				idxes = idxes[:len(listStack)]
				continue
			}
			ty = lt.ty
			path = append(path[:depth], strconv.Itoa(lt.idx-1))
			idxes = append(idxes[:len(listStack)-1], lt.idx-1)
		} else {
			ty = NbtType(buf[o])
			if ty == TagEnd {
				o++
				depth--
				if depth < 0 {
					return errors.Errorf("unexpected end tag at offset %d", o-1)
				}
				continue
			}
			hdr, err := take(o+1, 2)
			if err != nil {
				return err
			}
			tagLen := int(binary.BigEndian.Uint16(hdr))
			tag, err := take(o+3, tagLen)
			if err != nil {
				return err
			}
			path = append(path[:depth], string(tag))
			o += 3 + tagLen
		}
		jpath := strings.Join(path[1:], ".")

		switch {
		case ty == TagCompound:
			cb(path[1:], idxes, ty, nil)
			depth++
		case ty >= TagByte && ty <= TagDouble:
			v, err := take(o, scalarSize[ty])
			if err != nil {
				return err
			}
			cb(path[1:], idxes, ty, v)
			o += len(v)
		case ty == TagString:
			hdr, err := take(o, 2)
			if err != nil {
				return err
			}
			v, err := take(o+2, int(binary.BigEndian.Uint16(hdr)))
			if err != nil {
				return err
			}
			cb(path[1:], idxes, ty, v)
			o += 2 + len(v)
		case arrayElemSize[ty] > 0:
			hdr, err := take(o, 4)
			if err != nil {
				return err
			}
			n := int(int32(binary.BigEndian.Uint32(hdr)))
			v, err := take(o+4, n*arrayElemSize[ty])
			if err != nil {
				return errors.Wrapf(err, "array %s", jpath)
			}
			cb(path[1:], idxes, ty, v)
			o += 4 + len(v)
		case ty == TagList:
			hdr, err := take(o, 5)
			if err != nil {
				return err
			}
			lty := NbtType(hdr[0])
			n := int(int32(binary.BigEndian.Uint32(hdr[1:])))
			o += 5
			if n < 0 {
				return errors.Errorf("negative list length %d at %s", n, jpath)
			}
			switch {
			case lty >= TagByte && lty <= TagDouble:
				v, err := take(o, n*scalarSize[lty])
				if err != nil {
					return errors.Wrapf(err, "list %s", jpath)
				}
				cb(path[1:], idxes, -lty, v)
				o += len(v)
			case lty == TagString:
				start := o
				for i := 0; i < n; i++ {
					sh, err := take(o, 2)
					if err != nil {
						return errors.Wrapf(err, "list %s", jpath)
					}
					o += int(binary.BigEndian.Uint16(sh)) + 2
				}
				if o > len(buf) {
					return errors.Wrapf(ErrTruncated, "list %s", jpath)
				}
				cb(path[1:], idxes, -lty, buf[start:o])
			case lty == TagCompound || lty == TagList || arrayElemSize[lty] > 0:
				if n > 0 {
					depth++
					listStack = append(listStack, nbtList{depth: depth, ty: lty, length: n})
				}
			case n > 0:
				// empty lists are written with element type TagEnd
				return errors.Errorf("unhandled TAG_List type: %d at %s (len %d)", lty, jpath, n)
			}
		default:
			return errors.Errorf("unhandled nbt tag type: %d at %s", ty, jpath)
		}
	}
	if depth > 0 || len(listStack) > 0 {
		return errors.Wrap(ErrTruncated, "unterminated compound")
	}
	return nil
}
