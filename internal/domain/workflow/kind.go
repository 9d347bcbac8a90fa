package workflow

// Kind identifies which registry a record belongs to
type Kind string

const (
	KindIssuingCompany      Kind = "issuing_company"
	KindPhysicalShareholder Kind = "physical_shareholder"
	KindLegalShareholder    Kind = "legal_shareholder"
	KindSocialAct           Kind = "social_act"
	KindTransaction         Kind = "transaction"
)

var validKinds = []Kind{
	KindIssuingCompany,
	KindPhysicalShareholder,
	KindLegalShareholder,
	KindSocialAct,
	KindTransaction,
}

// Kinds returns every workflow-managed record kind
func Kinds() []Kind {
	out := make([]Kind, len(validKinds))
	copy(out, validKinds)
	return out
}

// IsValid returns true if the kind is workflow-managed
func (k Kind) IsValid() bool {
	for _, v := range validKinds {
		if v == k {
			return true
		}
	}
	return false
}

// String returns the string representation of the kind
func (k Kind) String() string {
	return string(k)
}

// ParseKind converts a path segment into a Kind
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.IsValid() {
		return "", ErrUnknownKind
	}
	return k, nil
}
