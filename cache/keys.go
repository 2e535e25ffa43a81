package cache

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/padocode/go-tenant-repository/docstore"
)

// KeySeparator delimits cache key segments.
const KeySeparator = "::"

// Operation-kind segments. Keeping query and document keys in distinct
// namespaces means a document id can never alias a query digest.
const (
	segmentQuery    = "q"
	segmentDocument = "d"
)

// KeyBuilder derives cache keys from tenant, collection and query shape.
// Implementations must be deterministic: identical inputs always map to the
// same key, and keys for different tenants must never collide.
type KeyBuilder interface {
	CollectionKey(tenantID, collection string, q docstore.Query) string
	DocumentKey(tenantID, collection, id string) string
	CollectionPrefix(tenantID, collection string) string
}

// defaultKeyBuilder hashes the normalized constraint list with xxhash64 and
// keeps tenant and collection as plaintext segments, so prefix invalidation
// stays a cheap scan and tenant separation is structural rather than
// probabilistic.
type defaultKeyBuilder struct{}

// NewKeyBuilder returns the default key builder.
func NewKeyBuilder() KeyBuilder {
	return defaultKeyBuilder{}
}

// CollectionKey implements KeyBuilder.
func (b defaultKeyBuilder) CollectionKey(tenantID, collection string, q docstore.Query) string {
	return strings.Join([]string{
		sanitizeSegment(tenantID),
		sanitizeSegment(collection),
		segmentQuery,
		digestQuery(q),
	}, KeySeparator)
}

// DocumentKey implements KeyBuilder.
func (b defaultKeyBuilder) DocumentKey(tenantID, collection, id string) string {
	return strings.Join([]string{
		sanitizeSegment(tenantID),
		sanitizeSegment(collection),
		segmentDocument,
		sanitizeSegment(id),
	}, KeySeparator)
}

// CollectionPrefix implements KeyBuilder. Every key for the tenant+collection
// pair starts with this prefix, which is what write-path invalidation scans
// for.
func (b defaultKeyBuilder) CollectionPrefix(tenantID, collection string) string {
	return sanitizeSegment(tenantID) + KeySeparator + sanitizeSegment(collection) + KeySeparator
}

// Key joins sanitized segments into a cache key. Consumers building keys
// outside the KeyBuilder (memoized aggregates, derived values) go through
// this so caller-supplied segments cannot splice themselves into another
// key's shape.
func Key(segments ...string) string {
	parts := make([]string, len(segments))
	for i, s := range segments {
		parts[i] = sanitizeSegment(s)
	}
	return strings.Join(parts, KeySeparator)
}

// digestQuery reduces a query's constraints to a stable 64-bit digest.
// Filters are serialized individually and sorted so that logically identical
// queries built in different constraint orders normalize to the same key.
// Sort order and limit are position-sensitive and serialized in sequence.
func digestQuery(q docstore.Query) string {
	filters := make([]string, len(q.Filters))
	for i, f := range q.Filters {
		filters[i] = f.Field + "|" + string(f.Op) + "|" + serializeValue(f.Value)
	}
	sort.Strings(filters)

	var sb strings.Builder
	sb.WriteString("f:")
	sb.WriteString(strings.Join(filters, ","))
	sb.WriteString(";o:")
	for i, o := range q.Orders {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(o.Field)
		if o.Desc {
			sb.WriteString("|desc")
		} else {
			sb.WriteString("|asc")
		}
	}
	fmt.Fprintf(&sb, ";l:%d", q.Limit)

	return fmt.Sprintf("%016x", xxhash.Sum64String(sb.String()))
}

// serializeValue renders a filter value deterministically. Basic types use
// their string representation, timestamps are pinned to UTC nanoseconds,
// slices serialize element-wise (membership filters), maps sort their keys,
// and anything else falls back to JSON so serialization never fails loudly
// in the read path.
func serializeValue(v any) string {
	if v == nil {
		return "nil"
	}
	if t, ok := v.(time.Time); ok {
		return "time:" + t.UTC().Format(time.RFC3339Nano)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr:
		if rv.IsNil() {
			return "nil"
		}
		return serializeValue(rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return "slice:nil"
		}
		parts := make([]string, rv.Len())
		for i := range parts {
			parts[i] = serializeValue(rv.Index(i).Interface())
		}
		return fmt.Sprintf("slice[%d]:{%s}", len(parts), strings.Join(parts, ","))
	case reflect.Map:
		if rv.IsNil() {
			return "map:nil"
		}
		keys := rv.MapKeys()
		pairs := make([]string, len(keys))
		for i, k := range keys {
			pairs[i] = serializeValue(k.Interface()) + "=" + serializeValue(rv.MapIndex(k).Interface())
		}
		sort.Strings(pairs)
		return fmt.Sprintf("map[%d]:{%s}", len(pairs), strings.Join(pairs, ","))
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64,
		reflect.String:
		return fmt.Sprintf("%v", v)
	}

	data, err := json.Marshal(v)
	if err != nil {
		return "fallback:" + reflect.TypeOf(v).String()
	}
	return "json:" + string(data)
}
