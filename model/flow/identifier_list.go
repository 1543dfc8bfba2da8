package flow

// IdentifierList defines a sortable list of identifiers.
type IdentifierList []Identifier

// Contains returns whether this identifier list contains the target
// identifier.
func (il IdentifierList) Contains(target Identifier) bool {
	for _, id := range il {
		if target == id {
			return true
		}
	}
	return false
}

// Copy returns a copy of the receiver.
func (il IdentifierList) Copy() IdentifierList {
	dup := make(IdentifierList, 0, len(il))
	dup = append(dup, il...)
	return dup
}

// Strings converts the identifier list to a list of hex strings.
func (il IdentifierList) Strings() []string {
	var list []string
	for _, id := range il {
		list = append(list, id.String())
	}
	return list
}
