package pages

import (
	"strconv"

	"github.com/playwright-community/playwright-go"

	"github.com/kuitang/buggy-e2e/internal/datagen"
)

// Messages shown by the profile page.
const (
	MsgProfileSaved             = "The profile has been saved successful"
	MsgFirstNameTooLong         = "first name is too long"
	MsgLastNameTooLong          = "last name is too long"
	MsgOutsideAgeRange          = "Age must be in the range from 0 to 95"
	MsgAddressTooLong           = "address is too long"
	MsgUnknownError             = "Unknown error"
	MsgGetACandy                = "Get a candy ;)"
	MsgPasswordsDoNotMatch      = "Passwords do not match"
	MsgCurrentPasswordLength    = "minimum field size of 6, ChangePasswordInput.PreviousPassword."
	MsgIncorrectCurrentPassword = "NotAuthorizedException: Access Token has expired"
	MsgNewPasswordLowercase     = "Password did not conform with policy: Password must have lowercase characters"
	MsgNewPasswordUppercase     = "Password did not conform with policy: Password must have uppercase characters"
	MsgNewPasswordSymbol        = "Password did not conform with policy: Password must have symbol characters"
	MsgNewPasswordNumeric       = "Password did not conform with policy: Password must have numeric characters"
)

const (
	// DefaultLanguage is selected when ProfileInput.Language is unset.
	DefaultLanguage = "English"

	MinAge = 0
	MaxAge = 95
)

// ProfileInput is the basic and additional info of the profile form.
// Unset fields are generated. The zero value fills everything and saves.
type ProfileInput struct {
	FirstName Optional[string]
	LastName  Optional[string]
	Gender    Optional[string]
	Age       Optional[string] // a string so that malformed ages can be typed
	Address   Optional[string]
	Phone     Optional[string]
	Hobby     Optional[string]
	Language  Optional[string]
	SkipSave  bool
}

// ProfileValues are the concrete values entered into the form.
type ProfileValues struct {
	FirstName string
	LastName  string
	Gender    string
	Age       string
	Address   string
	Phone     string
	Hobby     string
	Language  string
	Save      bool
}

// ResolveProfile fills the unset fields of in from g.
func ResolveProfile(in ProfileInput, g *datagen.Generator) ProfileValues {
	return ProfileValues{
		FirstName: in.FirstName.OrElse(g.Name),
		LastName:  in.LastName.OrElse(g.Name),
		Gender:    in.Gender.OrElse(g.Gender),
		Age: in.Age.OrElse(func() string {
			return strconv.Itoa(g.Age(MinAge, MaxAge))
		}),
		Address:  in.Address.OrElse(g.Address),
		Phone:    in.Phone.OrElse(g.PhoneNumber),
		Hobby:    in.Hobby.OrElse(g.Hobby),
		Language: in.Language.OrElse(func() string { return DefaultLanguage }),
		Save:     !in.SkipSave,
	}
}

// PasswordInput is the change-password section of the profile form.
//
// Confirm is tri-state: unset becomes New, any non-empty value also becomes
// New, and an explicit "" stays "". A mismatched confirmation therefore can
// only be produced by leaving it empty or by filling the field directly.
type PasswordInput struct {
	Current  Optional[string]
	New      Optional[string]
	Confirm  Optional[string]
	SkipSave bool
}

// PasswordValues are the concrete values entered into the form.
type PasswordValues struct {
	Current string
	New     string
	Confirm string
	Save    bool
}

// ResolvePassword fills the unset fields of in from g and applies the confirm rule.
func ResolvePassword(in PasswordInput, g *datagen.Generator) PasswordValues {
	gen := func() string { return g.Password(datagen.DefaultPasswordLength) }
	v := PasswordValues{
		Current: in.Current.OrElse(gen),
		New:     in.New.OrElse(gen),
		Save:    !in.SkipSave,
	}
	if confirm, ok := in.Confirm.Get(); ok && confirm == "" {
		v.Confirm = ""
	} else {
		v.Confirm = v.New
	}
	return v
}

// ProfilePage is the profile form of the logged-in user.
type ProfilePage struct {
	*Base

	FirstNameInput Element
	LastNameInput  Element

	GenderInput   Element
	AgeInput      Element
	AddressInput  Element
	PhoneInput    Element
	HobbyDropdown Element

	CurrentPasswordInput Element
	NewPasswordInput     Element
	ConfirmPasswordInput Element
	LanguageDropdown     Element

	SaveButton   Element
	CancelButton Element

	MessageProfileSaved             Element
	MessageFirstNameTooLong         Element
	MessageLastNameTooLong          Element
	MessageOutsideAgeRange          Element
	MessageAddressTooLong           Element
	MessageUnknownError             Element
	MessageGetACandy                Element
	MessagePasswordsDoNotMatch      Element
	MessageCurrentPasswordLength    Element
	MessageIncorrectCurrentPassword Element
	MessageNewPasswordLowercase     Element
	MessageNewPasswordUppercase     Element
	MessageNewPasswordSymbol        Element
	MessageNewPasswordNumeric       Element
}

func NewProfilePage(base *Base) *ProfilePage {
	return &ProfilePage{
		Base: base,

		FirstNameInput: ByLabel("First Name", false),
		LastNameInput:  ByLabel("Last Name", false),

		GenderInput:   ByLabel("Gender", false),
		AgeInput:      ByLabel("Age", true),
		AddressInput:  ByLabel("Address", false),
		PhoneInput:    ByLabel("Phone", false),
		HobbyDropdown: CSS("hobby dropdown", "#hobby"),

		CurrentPasswordInput: ByLabel("Current Password", true),
		NewPasswordInput:     ByLabel("New Pasword", true), // sic, matches the application's label
		ConfirmPasswordInput: ByLabel("Confirm Password", true),
		LanguageDropdown:     CSS("language dropdown", "#language"),

		SaveButton:   ByRole(*playwright.AriaRoleButton, "Save"),
		CancelButton: ByRole(*playwright.AriaRoleLink, "Cancel"),

		MessageProfileSaved:             ByText(MsgProfileSaved, true),
		MessageFirstNameTooLong:         ByText(MsgFirstNameTooLong, true),
		MessageLastNameTooLong:          ByText(MsgLastNameTooLong, true),
		MessageOutsideAgeRange:          ByText(MsgOutsideAgeRange, true),
		MessageAddressTooLong:           ByText(MsgAddressTooLong, true),
		MessageUnknownError:             ByText(MsgUnknownError, true),
		MessageGetACandy:                ByText(MsgGetACandy, true),
		MessagePasswordsDoNotMatch:      ByText(MsgPasswordsDoNotMatch, true),
		MessageCurrentPasswordLength:    ByText(MsgCurrentPasswordLength, true),
		MessageIncorrectCurrentPassword: ByText(MsgIncorrectCurrentPassword, true),
		MessageNewPasswordLowercase:     ByText(MsgNewPasswordLowercase, true),
		MessageNewPasswordUppercase:     ByText(MsgNewPasswordUppercase, true),
		MessageNewPasswordSymbol:        ByText(MsgNewPasswordSymbol, true),
		MessageNewPasswordNumeric:       ByText(MsgNewPasswordNumeric, true),
	}
}

// Open navigates to the profile route and waits for the saved values to load.
func (p *ProfilePage) Open() error {
	if err := p.Goto(p.cfg.Routes.Profile); err != nil {
		return err
	}
	return p.WaitForLoader(LoaderOptions{})
}

// UpdateProfile fills the profile fields and saves unless in.SkipSave is set.
// It returns the values it entered.
func (p *ProfilePage) UpdateProfile(in ProfileInput) (ProfileValues, error) {
	v := ResolveProfile(in, datagen.Default())
	p.log.Info("profile_update",
		"first_name", v.FirstName,
		"last_name", v.LastName,
		"gender", v.Gender,
		"age", v.Age,
		"address", v.Address,
		"phone", v.Phone,
		"hobby", v.Hobby,
		"language", v.Language,
		"save", v.Save,
	)

	fields := []struct {
		el    Element
		value string
	}{
		{p.FirstNameInput, v.FirstName},
		{p.LastNameInput, v.LastName},
		{p.GenderInput, v.Gender},
		{p.AgeInput, v.Age},
		{p.AddressInput, v.Address},
		{p.PhoneInput, v.Phone},
	}
	for _, f := range fields {
		if err := p.Fill(f.el, f.value); err != nil {
			return v, err
		}
	}
	if err := p.SelectOptionByLabel(p.HobbyDropdown, v.Hobby); err != nil {
		return v, err
	}
	if err := p.SelectOptionByLabel(p.LanguageDropdown, v.Language); err != nil {
		return v, err
	}
	if !v.Save {
		return v, nil
	}
	return v, p.Click(p.SaveButton)
}

// UpdatePassword fills the change-password fields and saves unless in.SkipSave is set.
func (p *ProfilePage) UpdatePassword(in PasswordInput) (PasswordValues, error) {
	v := ResolvePassword(in, datagen.Default())

	fields := []struct {
		el    Element
		value string
	}{
		{p.CurrentPasswordInput, v.Current},
		{p.NewPasswordInput, v.New},
		{p.ConfirmPasswordInput, v.Confirm},
	}
	for _, f := range fields {
		if err := p.Fill(f.el, f.value); err != nil {
			return v, err
		}
	}
	if !v.Save {
		return v, nil
	}
	return v, p.Click(p.SaveButton)
}
