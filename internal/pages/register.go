package pages

import (
	"github.com/playwright-community/playwright-go"

	"github.com/kuitang/buggy-e2e/internal/datagen"
)

// RegisterPasswordLength is the length of generated registration passwords.
const RegisterPasswordLength = 10

// MsgRegistered is shown after a successful registration.
const MsgRegistered = "Registration is successful"

// RegisterInput is the registration form. Unset fields are generated.
type RegisterInput struct {
	Username        Optional[string]
	FirstName       Optional[string]
	LastName        Optional[string]
	Password        Optional[string]
	ConfirmPassword Optional[string] // unset or empty means "same as Password"
}

// RegisterValues are the concrete values typed into the form.
type RegisterValues struct {
	Username        string
	FirstName       string
	LastName        string
	Password        string
	ConfirmPassword string
}

// ResolveRegister fills the unset fields of in from g.
func ResolveRegister(in RegisterInput, g *datagen.Generator) RegisterValues {
	v := RegisterValues{
		Username:  in.Username.OrElse(g.Name),
		FirstName: in.FirstName.OrElse(g.Name),
		LastName:  in.LastName.OrElse(g.Name),
		Password: in.Password.OrElse(func() string {
			return g.Password(RegisterPasswordLength)
		}),
	}
	v.ConfirmPassword, _ = in.ConfirmPassword.Get()
	if v.ConfirmPassword == "" {
		v.ConfirmPassword = v.Password
	}
	return v
}

// RegisterPage is the sign-up form.
type RegisterPage struct {
	*Base

	UsernameInput        Element
	FirstNameInput       Element
	LastNameInput        Element
	PasswordInput        Element
	ConfirmPasswordInput Element
	RegisterButton       Element
}

func NewRegisterPage(base *Base) *RegisterPage {
	return &RegisterPage{
		Base:                 base,
		UsernameInput:        ByLabel("Login", false),
		FirstNameInput:       ByLabel("First Name", false),
		LastNameInput:        ByLabel("Last Name", false),
		PasswordInput:        ByLabel("Password", true),
		ConfirmPasswordInput: ByLabel("Confirm Password", true),
		RegisterButton:       ByRole(*playwright.AriaRoleButton, "Register"),
	}
}

func (p *RegisterPage) Open() error {
	return p.Goto(p.cfg.Routes.Register)
}

// Register fills and submits the form, returning the values it typed.
func (p *RegisterPage) Register(in RegisterInput) (RegisterValues, error) {
	v := ResolveRegister(in, datagen.Default())

	fields := []struct {
		el    Element
		value string
	}{
		{p.UsernameInput, v.Username},
		{p.FirstNameInput, v.FirstName},
		{p.LastNameInput, v.LastName},
		{p.PasswordInput, v.Password},
		{p.ConfirmPasswordInput, v.ConfirmPassword},
	}
	for _, f := range fields {
		if err := p.Fill(f.el, f.value); err != nil {
			return v, err
		}
	}
	return v, p.Click(p.RegisterButton)
}

// ValidateMessage asserts that text is shown somewhere on the page.
func (p *RegisterPage) ValidateMessage(text string) error {
	msg := ByText(text, false)
	if err := p.AssertVisible(msg); err != nil {
		return err
	}
	return p.AssertTextContains(msg, text)
}
