package domain

// Entity holds the registry data resolved for one LEI. All fields may be
// empty: a cached Entity with every field empty is the "known empty"
// sentinel for an LEI the registry has no record of.
type Entity struct {
	LegalName string `json:"legalName"`
	BIC       string `json:"bic"`
	Country   string `json:"country"`
}

// IsEmpty reports whether the entity carries no registry data at all.
func (e Entity) IsEmpty() bool {
	return e.LegalName == "" && e.BIC == "" && e.Country == ""
}

// LEILength is the fixed length of a Legal Entity Identifier.
const LEILength = 20

// ValidLEI reports whether s is a well-formed LEI: exactly 20
// case-sensitive alphanumeric characters.
func ValidLEI(s string) bool {
	if len(s) != LEILength {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
		case c >= 'A' && c <= 'Z':
		case c >= 'a' && c <= 'z':
		default:
			return false
		}
	}
	return true
}
