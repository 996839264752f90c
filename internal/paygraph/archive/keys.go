package archive

import (
	"bytes"
	"encoding/binary"
	"errors"
)

// "med:" + len(stream) u16 + stream + seq be64
// seq is big endian so one stream's records iterate in emit order
const prefixMedian = "med:"

var errBadKey = errors.New("archive: malformed key")

func keyStreamPrefix(stream string) []byte {
	k := make([]byte, 0, len(prefixMedian)+2+len(stream)+8)
	k = append(k, prefixMedian...)
	k = binary.BigEndian.AppendUint16(k, uint16(len(stream)))
	k = append(k, stream...)
	return k
}

func keyMedian(stream string, seq uint64) []byte {
	return binary.BigEndian.AppendUint64(keyStreamPrefix(stream), seq)
}

func parseKeyMedian(k []byte) (stream string, seq uint64, err error) {
	if !bytes.HasPrefix(k, []byte(prefixMedian)) {
		return "", 0, errBadKey
	}
	k = k[len(prefixMedian):]
	if len(k) < 2 {
		return "", 0, errBadKey
	}
	n := int(binary.BigEndian.Uint16(k))
	k = k[2:]
	if len(k) != n+8 {
		return "", 0, errBadKey
	}
	return string(k[:n]), binary.BigEndian.Uint64(k[n:]), nil
}
