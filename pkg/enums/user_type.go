package enums

import "fmt"

// UserType separates staff at the physical location from online shoppers.
type UserType string

const (
	UserTypePhysical UserType = "physical"
	UserTypeOnline   UserType = "online"
)

var validUserTypes = []UserType{
	UserTypePhysical,
	UserTypeOnline,
}

// String implements fmt.Stringer.
func (u UserType) String() string {
	return string(u)
}

// IsValid reports whether the value is a known UserType.
func (u UserType) IsValid() bool {
	for _, candidate := range validUserTypes {
		if candidate == u {
			return true
		}
	}
	return false
}

// ParseUserType converts raw input into a UserType, defaulting to online.
func ParseUserType(value string) (UserType, error) {
	if value == "" {
		return UserTypeOnline, nil
	}
	for _, candidate := range validUserTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid user type %q", value)
}
