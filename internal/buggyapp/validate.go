package buggyapp

import (
	"slices"
	"strconv"
	"strings"
	"unicode"

	"github.com/kuitang/buggy-e2e/internal/datagen"
	"github.com/kuitang/buggy-e2e/internal/errs"
	"github.com/kuitang/buggy-e2e/internal/pages"
)

// Messages that only the stand-in produces; the rest are shared with the page objects.
const (
	MsgUserExists            = "UsernameExistsException: User already exists"
	MsgPolicyPrefix          = "Password did not conform with policy: "
	MsgInvalidPasswordPrefix = "InvalidPasswordException: "
	MsgPasswordTooShort      = "Password not long enough"
	MsgTooManyAttempts       = "Too many login attempts"
	MsgLoginRequired         = "Login required"
)

const (
	MinPasswordLength        = 8
	MinCurrentPasswordLength = 6
	MaxNameLength            = 100
	MaxAddressLength         = 255
)

// Genders accepted by the profile form. Empty is also accepted.
var Genders = []string{"Male", "Female"}

// Languages offered by the profile form.
var Languages = []string{"English", "Hindi", "French", "Spanish"}

// rejectedHobbies are offered by the form but refused on save.
var rejectedHobbies = []string{"Knitting"}

// HobbyOptions returns the hobby choices rendered in the profile form.
func HobbyOptions() []string {
	return append(slices.Clone(datagen.Hobbies), rejectedHobbies...)
}

func invalid(msg string) error {
	return errs.New(errs.InvalidArgument, msg)
}

// PasswordPolicy returns the policy violation for pw, without a prefix, or "".
func PasswordPolicy(pw string) string {
	if len(pw) < MinPasswordLength {
		return MsgPasswordTooShort
	}
	var lower, upper, symbol, digit bool
	for _, r := range pw {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case !unicode.IsSpace(r):
			symbol = true
		}
	}
	switch {
	case !lower:
		return "Password must have lowercase characters"
	case !upper:
		return "Password must have uppercase characters"
	case !symbol:
		return "Password must have symbol characters"
	case !digit:
		return "Password must have numeric characters"
	}
	return ""
}

// RegisterRequest is the body of POST /api/register.
type RegisterRequest struct {
	Username        string `json:"username"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// ValidateRegister checks a registration before the username is looked up.
func ValidateRegister(req RegisterRequest) error {
	required := []struct {
		field string
		value string
	}{
		{"Login", req.Username},
		{"First Name", req.FirstName},
		{"Last Name", req.LastName},
		{"Password", req.Password},
		{"Confirm Password", req.ConfirmPassword},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return invalid(f.field + " is required")
		}
	}
	if req.Password != req.ConfirmPassword {
		return invalid(pages.MsgPasswordsDoNotMatch)
	}
	if msg := PasswordPolicy(req.Password); msg != "" {
		return invalid(MsgInvalidPasswordPrefix + MsgPolicyPrefix + msg)
	}
	return nil
}

// Profile is the stored profile of a user.
type Profile struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Gender    string `json:"gender"`
	Age       string `json:"age"`
	Address   string `json:"address"`
	Phone     string `json:"phone"`
	Hobby     string `json:"hobby"`
	Language  string `json:"language"`
}

// ProfileRequest is the body of PUT /api/profile.
type ProfileRequest struct {
	Profile
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

// WantsPasswordChange reports whether any password field was filled.
func (r ProfileRequest) WantsPasswordChange() bool {
	return r.CurrentPassword != "" || r.NewPassword != "" || r.ConfirmPassword != ""
}

// ValidateProfile checks the profile fields, first failure wins.
func ValidateProfile(p Profile) error {
	if len(p.FirstName) > MaxNameLength {
		return invalid(pages.MsgFirstNameTooLong)
	}
	if len(p.LastName) > MaxNameLength {
		return invalid(pages.MsgLastNameTooLong)
	}
	if p.Gender != "" && !slices.Contains(Genders, p.Gender) {
		return invalid(pages.MsgUnknownError)
	}
	if err := validateAge(p.Age); err != nil {
		return err
	}
	if len(p.Address) > MaxAddressLength {
		return invalid(pages.MsgAddressTooLong)
	}
	if p.Hobby != "" && !slices.Contains(datagen.Hobbies, p.Hobby) {
		return invalid(pages.MsgUnknownError)
	}
	if p.Language != "" && !slices.Contains(Languages, p.Language) {
		return invalid(pages.MsgUnknownError)
	}
	return nil
}

// validateAge accepts an empty age or a whole number in range. Anything that
// only parses as a float, padded integers included, gets a candy.
func validateAge(age string) error {
	if age == "" {
		return nil
	}
	if n, err := strconv.Atoi(age); err == nil {
		if n < pages.MinAge || n > pages.MaxAge {
			return invalid(pages.MsgOutsideAgeRange)
		}
		return nil
	}
	if _, err := strconv.ParseFloat(strings.TrimSpace(age), 64); err == nil {
		return invalid(pages.MsgGetACandy)
	}
	return invalid(pages.MsgUnknownError)
}

// ValidatePasswordChange checks everything that does not need the stored hash
// first, then matches is called to verify the current password.
func ValidatePasswordChange(req ProfileRequest, matches func(string) bool) error {
	if len(req.CurrentPassword) < MinCurrentPasswordLength {
		return invalid(pages.MsgCurrentPasswordLength)
	}
	if !matches(req.CurrentPassword) {
		return errs.New(errs.Unauthenticated, pages.MsgIncorrectCurrentPassword)
	}
	if msg := PasswordPolicy(req.NewPassword); msg != "" {
		return invalid(MsgPolicyPrefix + msg)
	}
	if req.NewPassword != req.ConfirmPassword {
		return invalid(pages.MsgPasswordsDoNotMatch)
	}
	return nil
}
