package domain

// Option labels one of the four quiz choices.
type Option string

const (
	OptionA Option = "A"
	OptionB Option = "B"
	OptionC Option = "C"
	OptionD Option = "D"
)

// ParseOption accepts exactly "A", "B", "C" or "D".
func ParseOption(raw string) (Option, error) {
	o := Option(raw)
	if !o.Valid() {
		return "", ErrInvalidOption
	}
	return o, nil
}

func (o Option) Valid() bool {
	switch o {
	case OptionA, OptionB, OptionC, OptionD:
		return true
	}
	return false
}
