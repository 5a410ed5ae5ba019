package pages

import (
	"fmt"
	"regexp"

	"github.com/playwright-community/playwright-go"
)

// Element is a named locator factory. The locator is rebuilt against the
// live page on every use, so an Element never holds a stale DOM handle.
type Element struct {
	Name   string
	locate func(playwright.Page) playwright.Locator
}

// Locator resolves e against page.
func (e Element) Locator(page playwright.Page) playwright.Locator {
	return e.locate(page)
}

func (e Element) String() string {
	return e.Name
}

// CSS locates by selector.
func CSS(name, selector string) Element {
	return Element{
		Name: name,
		locate: func(p playwright.Page) playwright.Locator {
			return p.Locator(selector)
		},
	}
}

// ByRole locates by ARIA role and accessible name.
func ByRole(role playwright.AriaRole, name string) Element {
	return Element{
		Name: fmt.Sprintf("%s %q", role, name),
		locate: func(p playwright.Page) playwright.Locator {
			return p.GetByRole(role, playwright.PageGetByRoleOptions{Name: name})
		},
	}
}

// ByLabel locates a form control by its label text.
func ByLabel(label string, exact bool) Element {
	return Element{
		Name: fmt.Sprintf("%s input", label),
		locate: func(p playwright.Page) playwright.Locator {
			return p.GetByLabel(label, playwright.PageGetByLabelOptions{Exact: playwright.Bool(exact)})
		},
	}
}

// ByText locates the first element containing text.
func ByText(text string, exact bool) Element {
	return Element{
		Name: fmt.Sprintf("text %q", text),
		locate: func(p playwright.Page) playwright.Locator {
			return p.GetByText(text, playwright.PageGetByTextOptions{Exact: playwright.Bool(exact)}).First()
		},
	}
}

// ByTextPattern locates the first element whose text matches re.
func ByTextPattern(re *regexp.Regexp) Element {
	return Element{
		Name: fmt.Sprintf("text /%s/", re),
		locate: func(p playwright.Page) playwright.Locator {
			return p.GetByText(re).First()
		},
	}
}
