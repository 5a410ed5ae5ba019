package buggyapp

import (
	"strings"
	"testing"

	"pgregory.net/rapid"

	"github.com/kuitang/buggy-e2e/internal/datagen"
	"github.com/kuitang/buggy-e2e/internal/errs"
	"github.com/kuitang/buggy-e2e/internal/pages"
)

func testPasswordPolicy_AcceptsGenerated(t *rapid.T) {
	g := datagen.NewSeeded(rapid.Uint64().Draw(t, "seed"))
	pw := g.Password(rapid.IntRange(MinPasswordLength, 32).Draw(t, "length"))
	if msg := PasswordPolicy(pw); msg != "" {
		t.Fatalf("generated password %q rejected: %s", pw, msg)
	}
}

func TestPasswordPolicy_AcceptsGenerated(t *testing.T) {
	t.Parallel()
	rapid.Check(t, testPasswordPolicy_AcceptsGenerated)
}

func TestPasswordPolicy_Order(t *testing.T) {
	t.Parallel()
	cases := map[string]string{
		"Ab1@":         MsgPasswordTooShort,
		"123456789":    "Password must have lowercase characters",
		"123456789a":   "Password must have uppercase characters",
		"123456789aB":  "Password must have symbol characters",
		"Abcdefgh@":    "Password must have numeric characters",
		"123456789Go@": "",
	}
	for pw, want := range cases {
		if got := PasswordPolicy(pw); got != want {
			t.Fatalf("PasswordPolicy(%q): got=%q want=%q", pw, got, want)
		}
	}
}

func TestPasswordPolicy_ProfileMessagesMatchPage(t *testing.T) {
	t.Parallel()
	pairs := map[string]string{
		"123456789":   pages.MsgNewPasswordLowercase,
		"123456789a":  pages.MsgNewPasswordUppercase,
		"123456789aB": pages.MsgNewPasswordSymbol,
		"Abcdefgh@":   pages.MsgNewPasswordNumeric,
	}
	for pw, want := range pairs {
		if got := MsgPolicyPrefix + PasswordPolicy(pw); got != want {
			t.Fatalf("profile message for %q: got=%q want=%q", pw, got, want)
		}
	}
}

func TestValidateRegister(t *testing.T) {
	t.Parallel()
	valid := RegisterRequest{Username: "new", FirstName: "F", LastName: "L", Password: "Abcdef1@", ConfirmPassword: "Abcdef1@"}
	if err := ValidateRegister(valid); err != nil {
		t.Fatalf("valid registration rejected: %v", err)
	}

	cases := []struct {
		name string
		edit func(*RegisterRequest)
		want string
	}{
		{"missing username", func(r *RegisterRequest) { r.Username = " " }, "Login is required"},
		{"missing confirm", func(r *RegisterRequest) { r.ConfirmPassword = "" }, "Confirm Password is required"},
		{"mismatch", func(r *RegisterRequest) { r.ConfirmPassword = "Abcdef1@y" }, pages.MsgPasswordsDoNotMatch},
		{"short", func(r *RegisterRequest) { r.Password, r.ConfirmPassword = "Ab1@", "Ab1@" },
			"InvalidPasswordException: Password did not conform with policy: Password not long enough"},
	}
	for _, tc := range cases {
		req := valid
		tc.edit(&req)
		err := ValidateRegister(req)
		if !errs.Is(err, errs.InvalidArgument) || errs.MessageOf(err) != tc.want {
			t.Fatalf("%s: got=%v want=%q", tc.name, err, tc.want)
		}
	}
}

func TestValidateProfile(t *testing.T) {
	t.Parallel()
	long := strings.Repeat("Krishna ", 33)
	cases := []struct {
		name string
		p    Profile
		want string
	}{
		{"valid", Profile{FirstName: "F", LastName: "L", Gender: "Male", Age: "30", Hobby: "Reading", Language: "English"}, ""},
		{"all empty", Profile{}, ""},
		{"first name too long", Profile{FirstName: long}, pages.MsgFirstNameTooLong},
		{"last name too long", Profile{FirstName: "F", LastName: long}, pages.MsgLastNameTooLong},
		{"gender", Profile{Gender: "Prefer Not to say"}, pages.MsgUnknownError},
		{"age float", Profile{Age: "2.0"}, pages.MsgGetACandy},
		{"age padded", Profile{Age: "  2  "}, pages.MsgGetACandy},
		{"age word", Profile{Age: "age"}, pages.MsgUnknownError},
		{"age negative", Profile{Age: "-1"}, pages.MsgOutsideAgeRange},
		{"age 96", Profile{Age: "96"}, pages.MsgOutsideAgeRange},
		{"age 95", Profile{Age: "95"}, ""},
		{"address too long", Profile{Address: strings.Repeat("A205 Tower 100, ", 20)}, pages.MsgAddressTooLong},
		{"phone symbols", Profile{Phone: "+++(0)++++"}, ""},
		{"hobby knitting", Profile{Hobby: "Knitting"}, pages.MsgUnknownError},
		{"language", Profile{Language: "Klingon"}, pages.MsgUnknownError},
	}
	for _, tc := range cases {
		err := ValidateProfile(tc.p)
		if tc.want == "" {
			if err != nil {
				t.Fatalf("%s: unexpected error %v", tc.name, err)
			}
			continue
		}
		if errs.MessageOf(err) != tc.want {
			t.Fatalf("%s: got=%v want=%q", tc.name, err, tc.want)
		}
	}
}

func testValidateProfile_AgeInRangeAccepted(t *rapid.T) {
	g := datagen.NewSeeded(rapid.Uint64().Draw(t, "seed"))
	p := Profile{
		FirstName: g.Name(),
		LastName:  g.Name(),
		Gender:    g.Gender(),
		Address:   g.Address(),
		Phone:     g.PhoneNumber(),
		Hobby:     g.Hobby(),
		Language:  "English",
	}
	p.Age = rapid.StringMatching(`[0-9]|[1-8][0-9]|9[0-5]`).Draw(t, "age")
	if err := ValidateProfile(p); err != nil {
		t.Fatalf("generated profile %+v rejected: %v", p, err)
	}
}

func TestValidateProfile_AgeInRangeAccepted(t *testing.T) {
	t.Parallel()
	rapid.Check(t, testValidateProfile_AgeInRangeAccepted)
}

func TestValidatePasswordChange_Order(t *testing.T) {
	t.Parallel()
	current := "123456789Go@"
	matches := func(pw string) bool { return pw == current }

	cases := []struct {
		name    string
		cur     string
		newPw   string
		confirm string
		want    string
	}{
		{"blank current", "", "12345678Go@", "12345678Go@", pages.MsgCurrentPasswordLength},
		{"short current", "abc", "12345678Go@", "12345678Go@", pages.MsgCurrentPasswordLength},
		{"wrong current", "12345678", "12345678Go@", "12345678Go@", pages.MsgIncorrectCurrentPassword},
		{"numeric only", current, "123456789", "123456789", pages.MsgNewPasswordLowercase},
		{"no uppercase", current, "123456789a", "123456789a", pages.MsgNewPasswordUppercase},
		{"no symbol", current, "123456789aB", "123456789aB", pages.MsgNewPasswordSymbol},
		{"no number", current, "Abcdefgh@", "Abcdefgh@", pages.MsgNewPasswordNumeric},
		{"mismatch", current, "Abcdefg1@", "Abcdefg1@x", pages.MsgPasswordsDoNotMatch},
		{"valid", current, current, current, ""},
	}
	for _, tc := range cases {
		err := ValidatePasswordChange(ProfileRequest{CurrentPassword: tc.cur, NewPassword: tc.newPw, ConfirmPassword: tc.confirm}, matches)
		if tc.want == "" {
			if err != nil {
				t.Fatalf("%s: unexpected error %v", tc.name, err)
			}
			continue
		}
		if errs.MessageOf(err) != tc.want {
			t.Fatalf("%s: got=%v want=%q", tc.name, err, tc.want)
		}
	}
}
