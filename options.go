package vpack

// Options configures a Builder. The zero value builds fully indexed
// arrays and objects, does not check attribute uniqueness, and allows
// External values — the most permissive combination; set the individual
// fields to opt into stricter or more compact behavior.
type Options struct {
	// BuildUnindexedArrays makes array Close try the compact encoding
	// (head 0x13) before falling back to the indexed one.
	BuildUnindexedArrays bool

	// BuildUnindexedObjects makes object Close try the compact encoding
	// (head 0x14) before falling back to the indexed one, for objects
	// with more than one key. Single-key objects always try compact
	// first regardless of this setting.
	BuildUnindexedObjects bool

	// CheckAttributeUniqueness compares key names on cuckoo-slot
	// collision during object Close and raises DuplicateAttributeName.
	CheckAttributeUniqueness bool

	// DisallowExternals refuses AddExternal / Value{Kind: KindExternal}.
	DisallowExternals bool
}
