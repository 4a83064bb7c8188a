package wallet

// Address identifies an account. It is compared byte for byte and never
// normalized, so checksummed and lowercase forms are different addresses.
type Address string

// IsZero reports whether no account is set
func (a Address) IsZero() bool {
	return a == ""
}

// Short returns the display form: first 6 characters, an ellipsis, last 4.
// Addresses too short to truncate are returned unchanged.
func (a Address) Short() string {
	s := string(a)
	if len(s) <= 10 {
		return s
	}
	return s[:6] + "…" + s[len(s)-4:]
}

// String implements fmt.Stringer
func (a Address) String() string {
	return string(a)
}

// ParseAccounts converts a raw provider account list into addresses,
// keeping order and dropping empty entries.
func ParseAccounts(raw []string) []Address {
	out := make([]Address, 0, len(raw))
	for _, s := range raw {
		if s == "" {
			continue
		}
		out = append(out, Address(s))
	}
	return out
}
