package vpack

// Kind identifies the VPack type carried by a Value.
type Kind int

const (
	KindNone Kind = iota
	KindNull
	KindBool
	KindDouble
	KindExternal
	KindSmallInt
	KindInt
	KindUInt
	KindUTCDate
	KindString
	KindArray
	KindObject
	KindBinary
	KindIllegal
	KindMinKey
	KindMaxKey
	KindBCD
	KindCustom
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "None"
	case KindNull:
		return "Null"
	case KindBool:
		return "Bool"
	case KindDouble:
		return "Double"
	case KindExternal:
		return "External"
	case KindSmallInt:
		return "SmallInt"
	case KindInt:
		return "Int"
	case KindUInt:
		return "UInt"
	case KindUTCDate:
		return "UTCDate"
	case KindString:
		return "String"
	case KindArray:
		return "Array"
	case KindObject:
		return "Object"
	case KindBinary:
		return "Binary"
	case KindIllegal:
		return "Illegal"
	case KindMinKey:
		return "MinKey"
	case KindMaxKey:
		return "MaxKey"
	case KindBCD:
		return "BCD"
	case KindCustom:
		return "Custom"
	default:
		return "Unknown"
	}
}

// Value is a tagged union of everything the scalar encoder can write.
// Arrays and Objects additionally carry an Unindexed preference consulted
// when the container is opened.
type Value struct {
	Kind Kind

	Bool   bool
	Int    int64
	UInt   uint64
	Double float64
	Str    string
	Bytes  []byte // Binary payload, or External's raw pointer bytes

	Unindexed bool // only meaningful for Kind == KindArray / KindObject
}

func Null() Value               { return Value{Kind: KindNull} }
func Bool(v bool) Value         { return Value{Kind: KindBool, Bool: v} }
func Double(v float64) Value    { return Value{Kind: KindDouble, Double: v} }
func Int(v int64) Value         { return Value{Kind: KindInt, Int: v} }
func UInt(v uint64) Value       { return Value{Kind: KindUInt, UInt: v} }
func SmallInt(v int64) Value    { return Value{Kind: KindSmallInt, Int: v} }
func UTCDate(v int64) Value     { return Value{Kind: KindUTCDate, Int: v} }
func String(v string) Value     { return Value{Kind: KindString, Str: v} }
func Binary(v []byte) Value     { return Value{Kind: KindBinary, Bytes: v} }
func External(v []byte) Value   { return Value{Kind: KindExternal, Bytes: v} }
func Illegal() Value            { return Value{Kind: KindIllegal} }
func MinKey() Value              { return Value{Kind: KindMinKey} }
func MaxKey() Value              { return Value{Kind: KindMaxKey} }
func BCD() Value                 { return Value{Kind: KindBCD} }
func Array(unindexed bool) Value  { return Value{Kind: KindArray, Unindexed: unindexed} }
func Object(unindexed bool) Value { return Value{Kind: KindObject, Unindexed: unindexed} }

// ValuePair carries a zero-copy (bytes, kind) pair for caller-owned data.
// Only String, Binary and Custom are meaningful kinds.
type ValuePair struct {
	Kind  Kind
	Bytes []byte
}

// AttributeTranslator resolves integer-encoded key placeholders
// (SmallInt or UInt values used as keys) to attribute name strings. It is modeled as
// a process-wide, read-only dependency: install it once with
// SetAttributeTranslator before any build that relies on it, and never
// mutate it while a build is in progress.
type AttributeTranslator interface {
	TranslateIDToString(id uint64) (string, bool)
}

var attributeTranslator AttributeTranslator

// SetAttributeTranslator installs the process-wide attribute translator
// used by findAttrName to resolve attribute-translation indirections.
// Passing nil disables translation; builders that encounter an
// indirection with no translator installed fail with ErrBuilderUnexpectedValue.
func SetAttributeTranslator(t AttributeTranslator) {
	attributeTranslator = t
}
