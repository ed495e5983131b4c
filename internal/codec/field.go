package codec

import (
	"encoding/binary"
	"fmt"
	"sort"
	"time"

	"ciphera/internal/protoerr"
)

const fieldHeaderSize = 8 // 4 bytes id + 4 bytes length

type field struct {
	id    uint32
	value []byte
}

// builder accumulates fields for one record and serializes them in
// ascending field-id order, regardless of insertion order.
type builder struct {
	fields []field
}

func (b *builder) put(id uint32, value []byte) {
	b.fields = append(b.fields, field{id: id, value: value})
}

func (b *builder) putUint32(id uint32, v uint32) {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, v)
	b.put(id, buf)
}

func (b *builder) putDate(id uint32, t time.Time) {
	b.put(id, []byte(t.UTC().Format(time.RFC3339Nano)))
}

func (b *builder) putRecord(id uint32, rec []byte) {
	b.put(id, rec)
}

// encode serializes the accumulated fields, prepending the Base version
// field (id 0, default 1).
func (b *builder) encode() []byte {
	b.putUint32(0, 1)

	fields := make([]field, len(b.fields))
	copy(fields, b.fields)
	sort.Slice(fields, func(i, j int) bool { return fields[i].id < fields[j].id })

	out := make([]byte, 0, len(fields)*fieldHeaderSize)
	hdr := make([]byte, fieldHeaderSize)
	for _, f := range fields {
		binary.LittleEndian.PutUint32(hdr[0:4], f.id)
		binary.LittleEndian.PutUint32(hdr[4:8], uint32(len(f.value)))
		out = append(out, hdr...)
		out = append(out, f.value...)
	}
	return out
}

// parseFields splits a raw record into a field-id -> value map. Field id 0
// (version) is retained like any other field; callers that care about it
// read it explicitly.
func parseFields(data []byte) (map[uint32][]byte, error) {
	fields := make(map[uint32][]byte)
	for len(data) > 0 {
		if len(data) < fieldHeaderSize {
			return nil, fmt.Errorf("%w: truncated field header", protoerr.ErrMalformedMessage)
		}
		id := binary.LittleEndian.Uint32(data[0:4])
		length := binary.LittleEndian.Uint32(data[4:8])
		data = data[fieldHeaderSize:]
		if uint64(length) > uint64(len(data)) {
			return nil, fmt.Errorf("%w: field %d declares length %d, only %d bytes remain", protoerr.ErrMalformedMessage, id, length, len(data))
		}
		fields[id] = data[:length:length]
		data = data[length:]
	}
	return fields, nil
}

func requireField(fields map[uint32][]byte, id uint32, name string) ([]byte, error) {
	v, ok := fields[id]
	if !ok {
		return nil, fmt.Errorf("%w: missing required field %q (id=%d)", protoerr.ErrMalformedMessage, name, id)
	}
	return v, nil
}

func requireFixed(fields map[uint32][]byte, id uint32, name string, size int) ([]byte, error) {
	v, err := requireField(fields, id, name)
	if err != nil {
		return nil, err
	}
	if len(v) != size {
		return nil, fmt.Errorf("%w: field %q (id=%d) has length %d, want %d", protoerr.ErrMalformedMessage, name, id, len(v), size)
	}
	return v, nil
}

func requireUint32(fields map[uint32][]byte, id uint32, name string) (uint32, error) {
	v, err := requireFixed(fields, id, name, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(v), nil
}

func decodeUint32(name string, id uint32, v []byte) (uint32, error) {
	if len(v) != 4 {
		return 0, fmt.Errorf("%w: field %q (id=%d) has length %d, want 4", protoerr.ErrMalformedMessage, name, id, len(v))
	}
	return binary.LittleEndian.Uint32(v), nil
}

func requireDate(fields map[uint32][]byte, id uint32, name string) (time.Time, error) {
	v, err := requireField(fields, id, name)
	if err != nil {
		return time.Time{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, string(v))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: field %q (id=%d) is not a valid ISO-8601 date: %v", protoerr.ErrMalformedMessage, name, id, err)
	}
	return t.UTC(), nil
}
