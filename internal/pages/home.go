package pages

import (
	"regexp"

	"github.com/playwright-community/playwright-go"
)

// LogoutHref is the href of the Logout link; logout is handled by script.
const LogoutHref = "javascript:void(0)"

var greetingPattern = regexp.MustCompile(`Hi,`)

// HomePage is the landing page as seen by a logged-in user.
type HomePage struct {
	*Base

	Greeting    Element
	ProfileLink Element
	LogoutLink  Element
}

func NewHomePage(base *Base) *HomePage {
	return &HomePage{
		Base:        base,
		Greeting:    ByTextPattern(greetingPattern),
		ProfileLink: ByRole(*playwright.AriaRoleLink, "Profile"),
		LogoutLink:  ByRole(*playwright.AriaRoleLink, "Logout"),
	}
}

func (p *HomePage) Open() error {
	return p.Goto(p.cfg.Routes.Home)
}

func (p *HomePage) ValidateGreeting() error {
	return p.AssertVisible(p.Greeting)
}

// ValidateProfileLink asserts the Profile link is shown and points at the profile route.
func (p *HomePage) ValidateProfileLink() error {
	if err := p.AssertVisible(p.ProfileLink); err != nil {
		return err
	}
	return p.AssertAttribute(p.ProfileLink, "href", p.cfg.Routes.Profile)
}

func (p *HomePage) ValidateLogoutLink() error {
	if err := p.AssertVisible(p.LogoutLink); err != nil {
		return err
	}
	return p.AssertAttribute(p.LogoutLink, "href", LogoutHref)
}

func (p *HomePage) Logout() error {
	return p.Click(p.LogoutLink)
}

// OpenProfile follows the Profile link and waits for the profile data to load.
func (p *HomePage) OpenProfile() error {
	if err := p.Click(p.ProfileLink); err != nil {
		return err
	}
	return p.WaitForLoader(LoaderOptions{})
}
