package value

// AttrID names an attribute. Kept as a lightweight string wrapper in the
// same spirit as the teacher's Keyword (datalog/types.go) but without its
// interning machinery, which has no use here.
type AttrID string

func (a AttrID) String() string { return string(a) }

// Attribute is the immutable metadata for a triple-kind column: its
// identifier, whether its value type is a reference (entity ids pointing at
// other entities), and whether it is indexed by value.
type Attribute struct {
	ID      AttrID
	IsRef   bool
	IsIndex bool
}

// IsRefType reports whether values of this attribute are entity ids.
func (a Attribute) IsRefType() bool { return a.IsRef }

// ShouldIndex reports whether a by-value index exists for this attribute.
func (a Attribute) ShouldIndex() bool { return a.IsIndex }

// Validity is a monotonic read timestamp: every triple scan is
// parameterized by one and returns facts visible as of that validity.
type Validity int64

// NewValidity wraps a raw timestamp (e.g. a Unix nanosecond count) as a
// Validity, mirroring the teacher's NewTxFromTime helper for Tx.
func NewValidity(ts int64) Validity { return Validity(ts) }
