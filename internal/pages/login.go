package pages

import "github.com/playwright-community/playwright-go"

// MsgInvalidLogin is shown next to the login form after a rejected login.
const MsgInvalidLogin = "Invalid username/password"

// LoginPage is the login form in the site header.
type LoginPage struct {
	*Base

	UsernameInput Element
	PasswordInput Element
	LoginButton   Element
	RegisterLink  Element
	ErrorMessage  Element
}

func NewLoginPage(base *Base) *LoginPage {
	return &LoginPage{
		Base:          base,
		UsernameInput: CSS("username input", `input[name="login"]`),
		PasswordInput: CSS("password input", `input[name="password"]`),
		LoginButton:   ByRole(*playwright.AriaRoleButton, "Login"),
		RegisterLink:  ByRole(*playwright.AriaRoleLink, "Register"),
		ErrorMessage:  ByText(MsgInvalidLogin, false),
	}
}

// Open navigates to the home route, where the login form lives.
func (p *LoginPage) Open() error {
	return p.Goto(p.cfg.Routes.Home)
}

// Login fills the credentials and submits. It does not wait for the outcome.
func (p *LoginPage) Login(username, password string) error {
	if err := p.Fill(p.UsernameInput, username); err != nil {
		return err
	}
	if err := p.Fill(p.PasswordInput, password); err != nil {
		return err
	}
	return p.Click(p.LoginButton)
}

// ValidateUserLoggedOut asserts that the login form and the Register link are shown.
func (p *LoginPage) ValidateUserLoggedOut() error {
	for _, el := range []Element{p.UsernameInput, p.PasswordInput, p.LoginButton, p.RegisterLink} {
		if err := p.AssertVisible(el); err != nil {
			return err
		}
	}
	return nil
}

// ValidateLoginRejected asserts the invalid-credentials message is shown.
func (p *LoginPage) ValidateLoginRejected() error {
	return p.AssertTextContains(p.ErrorMessage, MsgInvalidLogin)
}
