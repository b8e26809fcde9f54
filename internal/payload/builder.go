package payload

import (
	"strconv"
	"strings"
)

// Builder limits and defaults.
const (
	// MaxDepthCeiling is the compile-time limit on nested object depth.
	// Per-depth bookkeeping is a fixed-size array, so the ceiling bounds the
	// builder's memory footprint regardless of construction parameters.
	MaxDepthCeiling = 6

	// DefaultMaxDepth is the nesting limit used when the caller has no opinion.
	DefaultMaxDepth = 4

	// DefaultReserve is the initial buffer capacity in bytes.
	// Sized for a typical single-sensor discovery config payload.
	DefaultReserve = 256

	// DefaultFloatDecimals is the fixed-point precision used by AddFloat.
	DefaultFloatDecimals = 2
)

// Builder incrementally constructs one JSON object in a single growable
// buffer.
//
// All field appends write directly into the buffer with no intermediate
// values. At any point the buffer plus depth+1 closing braces forms
// syntactically valid JSON object text, which is what Generate returns.
//
// A Builder additionally supports one cached "device" sub-object per session:
// after BeginDevice/EndDevice the buffer position following the device's
// closing brace is checkpointed, and NextSensor truncates back to it so many
// sensor payloads can share one serialised device description.
//
// Thread Safety:
//   - A Builder is NOT safe for concurrent use. It owns its buffer exclusively
//     and assumes a single caller, matching its single-sequence construction
//     model.
type Builder struct {
	buf      []byte
	depth    int
	maxDepth int

	// first tracks, per depth, whether a field has been written at that level
	// since it was opened. Decides comma emission.
	first [MaxDepthCeiling + 1]bool

	// deviceSet and deviceEnd form the device checkpoint: once EndDevice runs,
	// deviceEnd is the buffer length immediately after the device object's
	// closing brace and the checkpoint is immutable until Clear.
	deviceSet bool
	deviceEnd int
}

// New creates a Builder with the given initial buffer capacity and nesting
// limit.
//
// A non-positive reserveBytes falls back to DefaultReserve. maxDepth is
// clamped to [0, MaxDepthCeiling]; DefaultMaxDepth is the conventional value.
func New(reserveBytes, maxDepth int) *Builder {
	if reserveBytes <= 0 {
		reserveBytes = DefaultReserve
	}
	if maxDepth > MaxDepthCeiling {
		maxDepth = MaxDepthCeiling
	}
	if maxDepth < 0 {
		maxDepth = 0
	}

	b := &Builder{
		buf:      make([]byte, 0, reserveBytes),
		maxDepth: maxDepth,
	}
	b.reset()
	return b
}

// Clear resets the Builder to its just-constructed state, dropping the device
// checkpoint. Idempotent; the buffer's capacity is retained.
func (b *Builder) Clear() {
	b.reset()
}

// reset restores initial state without touching buffer capacity.
func (b *Builder) reset() {
	b.buf = append(b.buf[:0], '{')
	b.depth = 0
	for i := range b.first {
		b.first[i] = true
	}
	b.deviceSet = false
	b.deviceEnd = 0
}

// AddString appends a string field. The value is quoted and escaped.
func (b *Builder) AddString(key, value string) *Builder {
	b.beginField(key)
	b.buf = append(b.buf, '"')
	b.buf = escapeAppend(b.buf, value)
	b.buf = append(b.buf, '"')
	return b
}

// AddInt appends an integer field as unquoted decimal text.
func (b *Builder) AddInt(key string, value int64) *Builder {
	b.beginField(key)
	b.buf = strconv.AppendInt(b.buf, value, 10)
	return b
}

// AddFloat appends a floating-point field as unquoted fixed-point text with
// DefaultFloatDecimals decimal places.
func (b *Builder) AddFloat(key string, value float64) *Builder {
	return b.AddFloatPrec(key, value, DefaultFloatDecimals)
}

// AddFloatPrec appends a floating-point field as unquoted fixed-point text
// with the given number of decimal places. Negative precision is treated as 0.
func (b *Builder) AddFloatPrec(key string, value float64, decimals int) *Builder {
	if decimals < 0 {
		decimals = 0
	}
	b.beginField(key)
	b.buf = strconv.AppendFloat(b.buf, value, 'f', decimals, 64)
	return b
}

// AddBool appends a boolean field as the unquoted literal true or false.
func (b *Builder) AddBool(key string, value bool) *Builder {
	b.beginField(key)
	if value {
		b.buf = append(b.buf, "true"...)
	} else {
		b.buf = append(b.buf, "false"...)
	}
	return b
}

// BeginObject opens a nested object under the given key.
//
// At the configured depth limit this is a silent no-op that leaves the buffer
// untouched. It is a soft cap, not an error. The caller must track its own nesting:
// a later EndObject is not corrected for a dropped BeginObject.
func (b *Builder) BeginObject(key string) *Builder {
	if b.depth >= b.maxDepth {
		return b
	}
	b.beginField(key)
	b.buf = append(b.buf, '{')
	b.depth++
	b.first[b.depth] = true
	return b
}

// EndObject closes the current nested object. Closing the root is a silent
// no-op. Matching against the corresponding BeginObject is not validated.
func (b *Builder) EndObject() *Builder {
	if b.depth == 0 {
		return b
	}
	b.buf = append(b.buf, '}')
	b.depth--
	return b
}

// BeginDevice opens the shared "device" sub-object. Once a device block has
// been finalised with EndDevice it is immutable for the session, and further
// BeginDevice calls are silent no-ops.
func (b *Builder) BeginDevice() *Builder {
	if b.deviceSet {
		return b
	}
	return b.BeginObject("device")
}

// EndDevice closes the device sub-object and checkpoints the buffer.
//
// After this call the device block is retained verbatim across NextSensor
// truncations: the checkpoint records the buffer length just past the device's
// closing brace, and the root level is marked non-first since the device entry
// now occupies its first slot. A second EndDevice is a silent no-op.
func (b *Builder) EndDevice() *Builder {
	if b.deviceSet {
		return b
	}
	b.EndObject()
	b.deviceSet = true
	b.deviceEnd = len(b.buf)
	b.first[0] = false
	return b
}

// NextSensor discards every field appended since the device checkpoint,
// keeping the device block, so the next sensor's fields can be appended to a
// fresh suffix. Without a finalised device block this is a silent no-op.
func (b *Builder) NextSensor() {
	if !b.deviceSet {
		return
	}
	b.buf = b.buf[:b.deviceEnd]
	b.depth = 0
	// Root already holds the device entry.
	b.first[0] = false
}

// Generate returns the document as closed JSON object text: a copy of the
// buffer with one closing brace for the current level and every enclosing
// level down to the root.
//
// Generate does not mutate the Builder and is safe to call repeatedly,
// including mid-construction (the result is syntactically closed even if
// semantically incomplete).
func (b *Builder) Generate() string {
	out := make([]byte, len(b.buf), len(b.buf)+b.depth+1)
	copy(out, b.buf)
	for d := 0; d <= b.depth; d++ {
		out = append(out, '}')
	}
	return string(out)
}

// GetString extracts the value of a top-level string field from the generated
// document. The second return value reports whether the key was found with a
// string value.
//
// This is a best-effort textual scan, not a parser: it does not track nesting,
// so a globally non-unique key may match inside a nested object first, and a
// closing quote is recognised as any quote not immediately preceded by a
// backslash, so a value whose text ends in an escaped backslash scans
// past its real terminator. Callers should rely on it only for keys they
// control.
func (b *Builder) GetString(key string) (string, bool) {
	doc := b.Generate()
	needle := `"` + key + `"`

	pos := strings.Index(doc, needle)
	if pos < 0 {
		return "", false
	}

	rel := strings.IndexByte(doc[pos+len(needle):], ':')
	if rel < 0 {
		return "", false
	}
	pos += len(needle) + rel + 1

	for pos < len(doc) && isSpace(doc[pos]) {
		pos++
	}
	if pos >= len(doc) || doc[pos] != '"' {
		return "", false
	}
	pos++

	end := pos
	for end < len(doc) && (doc[end] != '"' || doc[end-1] == '\\') {
		end++
	}
	if end >= len(doc) {
		return "", false
	}

	return unescape(doc[pos:end]), true
}

// escapeAppend appends s to dst applying JSON escaping for the quote,
// backslash, and the five standard control characters. Nothing else is
// transformed.
func escapeAppend(dst []byte, s string) []byte {
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '"':
			dst = append(dst, '\\', '"')
		case '\\':
			dst = append(dst, '\\', '\\')
		case '\b':
			dst = append(dst, '\\', 'b')
		case '\f':
			dst = append(dst, '\\', 'f')
		case '\n':
			dst = append(dst, '\\', 'n')
		case '\r':
			dst = append(dst, '\\', 'r')
		case '\t':
			dst = append(dst, '\\', 't')
		default:
			dst = append(dst, c)
		}
	}
	return dst
}

// unescape reverses escapeAppend. Unrecognised escape sequences are copied
// through verbatim; the builder only ever emits the seven it understands.
func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}

	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 >= len(s) {
			out = append(out, c)
			continue
		}
		i++
		switch s[i] {
		case '"':
			out = append(out, '"')
		case '\\':
			out = append(out, '\\')
		case 'b':
			out = append(out, '\b')
		case 'f':
			out = append(out, '\f')
		case 'n':
			out = append(out, '\n')
		case 'r':
			out = append(out, '\r')
		case 't':
			out = append(out, '\t')
		default:
			out = append(out, '\\', s[i])
		}
	}
	return string(out)
}

// isSpace reports whether c is ASCII whitespace, matching the characters the
// lookup scan skips between the colon and the opening quote.
func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

// beginField emits the separator and quoted key for the next field at the
// current depth: a comma unless this is the first field at the level, then the
// escaped key and a colon. Value formatting is left to the caller so every
// field kind shares one key-emission path.
func (b *Builder) beginField(key string) {
	if !b.first[b.depth] {
		b.buf = append(b.buf, ',')
	} else {
		b.first[b.depth] = false
	}
	b.buf = append(b.buf, '"')
	b.buf = escapeAppend(b.buf, key)
	b.buf = append(b.buf, '"', ':')
}
