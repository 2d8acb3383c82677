package storage

import (
	"fmt"
	"sort"
	"time"

	"github.com/geosift/geosift/core"
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// Catalog entries are serialized with the MUS format, composed by hand from
// the primitive serializers: varint for integers and lengths, raw for vector
// elements, ord for strings. Field order is fixed; changing it breaks stored
// databases.

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, varint.Uint64.Size(uint64(id)))
	varint.Uint64.Marshal(uint64(id), buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	v, _, err := varint.Uint64.Unmarshal(data)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrSerializationFailed, err)
	}
	return core.ID(v), nil
}

// MarshalCatalogEntry serializes a CatalogEntry to bytes.
func MarshalCatalogEntry(entry *core.CatalogEntry) []byte {
	buf := make([]byte, sizeCatalogEntry(entry))
	n := varint.Uint64.Marshal(uint64(entry.Id), buf)
	n += ord.String.Marshal(entry.Name, buf[n:])

	n += varint.Int.Marshal(len(entry.Attrs), buf[n:])
	for _, key := range sortedKeys(entry.Attrs) {
		n += ord.String.Marshal(key, buf[n:])
		n += ord.String.Marshal(entry.Attrs[key], buf[n:])
	}

	n += varint.Int.Marshal(len(entry.Vector), buf[n:])
	for _, v := range entry.Vector {
		n += raw.Float32.Marshal(v, buf[n:])
	}

	n += varint.Int64.Marshal(entry.InsertedAt.UnixMicro(), buf[n:])
	varint.Int64.Marshal(entry.UpdatedAt.UnixMicro(), buf[n:])
	return buf
}

// UnmarshalCatalogEntry deserializes a CatalogEntry from bytes.
func UnmarshalCatalogEntry(data []byte) (entry *core.CatalogEntry, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("%w: %v", ErrSerializationFailed, err)
		}
	}()

	entry = &core.CatalogEntry{}
	id, n, err := varint.Uint64.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	entry.Id = core.ID(id)

	name, m, err := ord.String.Unmarshal(data[n:])
	if err != nil {
		return nil, err
	}
	entry.Name = name
	n += m

	attrCount, m, err := varint.Int.Unmarshal(data[n:])
	if err != nil {
		return nil, err
	}
	n += m
	if attrCount > 0 {
		entry.Attrs = make(map[string]string, attrCount)
	}
	for i := 0; i < attrCount; i++ {
		key, m, err := ord.String.Unmarshal(data[n:])
		if err != nil {
			return nil, err
		}
		n += m
		value, m, err := ord.String.Unmarshal(data[n:])
		if err != nil {
			return nil, err
		}
		n += m
		entry.Attrs[key] = value
	}

	vectorLen, m, err := varint.Int.Unmarshal(data[n:])
	if err != nil {
		return nil, err
	}
	n += m
	if vectorLen > 0 {
		entry.Vector = make([]float32, vectorLen)
	}
	for i := 0; i < vectorLen; i++ {
		v, m, err := raw.Float32.Unmarshal(data[n:])
		if err != nil {
			return nil, err
		}
		n += m
		entry.Vector[i] = v
	}

	insertedAt, m, err := varint.Int64.Unmarshal(data[n:])
	if err != nil {
		return nil, err
	}
	n += m
	updatedAt, _, err := varint.Int64.Unmarshal(data[n:])
	if err != nil {
		return nil, err
	}
	entry.InsertedAt = time.UnixMicro(insertedAt).UTC()
	entry.UpdatedAt = time.UnixMicro(updatedAt).UTC()

	return entry, nil
}

func sizeCatalogEntry(entry *core.CatalogEntry) int {
	size := varint.Uint64.Size(uint64(entry.Id))
	size += ord.String.Size(entry.Name)

	size += varint.Int.Size(len(entry.Attrs))
	for key, value := range entry.Attrs {
		size += ord.String.Size(key)
		size += ord.String.Size(value)
	}

	size += varint.Int.Size(len(entry.Vector))
	for _, v := range entry.Vector {
		size += raw.Float32.Size(v)
	}

	size += varint.Int64.Size(entry.InsertedAt.UnixMicro())
	size += varint.Int64.Size(entry.UpdatedAt.UnixMicro())
	return size
}

func sortedKeys(attrs map[string]string) []string {
	keys := make([]string, 0, len(attrs))
	for key := range attrs {
		keys = append(keys, key)
	}
	// Deterministic attribute order keeps serialization stable for
	// identical entries.
	sort.Strings(keys)
	return keys
}
