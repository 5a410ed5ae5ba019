// Package pages implements the page objects used by the browser suite.
//
// Every page object embeds *Base, which owns the playwright.Page, the run
// configuration and the bounded wait/act/assert primitives. Page objects only
// declare their Elements and compose those primitives into flows.
package pages

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/kuitang/buggy-e2e/internal/config"
	"github.com/kuitang/buggy-e2e/internal/errs"
	"github.com/kuitang/buggy-e2e/internal/logutil"
	"github.com/kuitang/buggy-e2e/internal/obs"
)

// DefaultLoaderSelector matches the application's spinner image.
const DefaultLoaderSelector = `img[src="/img/spin.gif"]`

// actualValueTimeout bounds the extra read used to report the actual value of a failed assertion.
const actualValueTimeout = 1000

// maxActualChars caps the page text quoted in assertion errors.
const maxActualChars = 200

// LoaderOptions configures WaitForLoader. Zero fields take the configured defaults.
type LoaderOptions struct {
	Selector         string
	AppearTimeout    time.Duration
	DisappearTimeout time.Duration
}

// Base holds the page shared by all page objects of one test.
type Base struct {
	page   playwright.Page
	cfg    *config.Config
	expect playwright.PlaywrightAssertions
	log    *slog.Logger
}

// NewBase binds page to cfg. Log lines carry the correlation fields of ctx.
func NewBase(ctx context.Context, page playwright.Page, cfg *config.Config) *Base {
	return &Base{
		page:   page,
		cfg:    cfg,
		expect: playwright.NewPlaywrightAssertions(msFloat(cfg.Timeouts.Element)),
		log:    obs.From(ctx).With("pkg", "pages"),
	}
}

// Page returns the underlying playwright page.
func (b *Base) Page() playwright.Page {
	return b.page
}

// Config returns the run configuration.
func (b *Base) Config() *config.Config {
	return b.cfg
}

// Goto navigates to url, resolved against the base URL, then waits for the loader.
func (b *Base) Goto(url string) error {
	target := b.cfg.URL(url)
	b.log.Info("page_goto", "url", target)

	_, err := b.page.Goto(target, playwright.PageGotoOptions{
		Timeout: playwright.Float(msFloat(b.cfg.Timeouts.Navigation)),
	})
	if err != nil {
		return errs.FromPlaywright(errs.Navigation, target, err)
	}
	return b.WaitForLoader(LoaderOptions{})
}

// Click waits for el to be visible, then clicks it.
func (b *Base) Click(el Element) error {
	b.log.Info("page_click", "element", el.Name)
	if err := b.WaitForLocator(el, nil, 0); err != nil {
		return err
	}
	if err := el.Locator(b.page).Click(); err != nil {
		return errs.FromPlaywright(errs.Interaction, el.Name, err)
	}
	return nil
}

// Fill waits for el to be visible, then replaces its value with text.
func (b *Base) Fill(el Element, text string) error {
	b.log.Info("page_fill", "element", el.Name, "value", logutil.RedactValue(el.Name, text))
	if err := b.WaitForLocator(el, nil, 0); err != nil {
		return err
	}
	if err := el.Locator(b.page).Fill(text); err != nil {
		return errs.FromPlaywright(errs.Interaction, el.Name, err)
	}
	return nil
}

// SelectOptionByLabel waits for the select el to be visible, then picks the option labelled label.
func (b *Base) SelectOptionByLabel(el Element, label string) error {
	b.log.Info("page_select", "element", el.Name, "label", label)
	if err := b.WaitForLocator(el, nil, 0); err != nil {
		return err
	}
	_, err := el.Locator(b.page).SelectOption(playwright.SelectOptionValues{
		Labels: playwright.StringSlice(label),
	})
	if err != nil {
		return errs.FromPlaywright(errs.Interaction, el.Name, err)
	}
	return nil
}

// AssertVisible waits for el and asserts it is visible.
func (b *Base) AssertVisible(el Element) error {
	b.log.Info("page_assert_visible", "element", el.Name)
	if err := b.WaitForLocator(el, nil, 0); err != nil {
		return err
	}
	if err := b.expect.Locator(el.Locator(b.page)).ToBeVisible(); err != nil {
		return assertionError(el, "to be visible", "visible", "hidden", err)
	}
	return nil
}

// AssertTextContains waits for el and asserts its text contains text.
func (b *Base) AssertTextContains(el Element, text string) error {
	b.log.Info("page_assert_text", "element", el.Name, "expected", text)
	if err := b.WaitForLocator(el, nil, 0); err != nil {
		return err
	}
	loc := el.Locator(b.page)
	if err := b.expect.Locator(loc).ToContainText(text); err != nil {
		actual, _ := loc.TextContent(playwright.LocatorTextContentOptions{Timeout: playwright.Float(actualValueTimeout)})
		return assertionError(el, "to contain text", text, logutil.TruncateForLog(actual, maxActualChars), err)
	}
	return nil
}

// AssertInputValue waits for el and asserts its input value equals value.
func (b *Base) AssertInputValue(el Element, value string) error {
	b.log.Info("page_assert_value", "element", el.Name, "expected", logutil.RedactValue(el.Name, value))
	if err := b.WaitForLocator(el, nil, 0); err != nil {
		return err
	}
	loc := el.Locator(b.page)
	if err := b.expect.Locator(loc).ToHaveValue(value); err != nil {
		actual, _ := loc.InputValue(playwright.LocatorInputValueOptions{Timeout: playwright.Float(actualValueTimeout)})
		return assertionError(el, "to have value",
			logutil.RedactValue(el.Name, value), logutil.RedactValue(el.Name, actual), err)
	}
	return nil
}

// AssertAttribute waits for el and asserts attribute name equals value.
func (b *Base) AssertAttribute(el Element, name, value string) error {
	b.log.Info("page_assert_attribute", "element", el.Name, "attribute", name, "expected", value)
	if err := b.WaitForLocator(el, nil, 0); err != nil {
		return err
	}
	loc := el.Locator(b.page)
	if err := b.expect.Locator(loc).ToHaveAttribute(name, value); err != nil {
		actual, _ := loc.GetAttribute(name, playwright.LocatorGetAttributeOptions{Timeout: playwright.Float(actualValueTimeout)})
		return assertionError(el, "to have attribute "+name, value, actual, err)
	}
	return nil
}

// WaitForLoader waits for the loader to appear and then to disappear.
// A loader that never appears is not an error; one that appears and stays is a Timeout.
func (b *Base) WaitForLoader(opts LoaderOptions) error {
	if opts.Selector == "" {
		opts.Selector = DefaultLoaderSelector
	}
	if opts.AppearTimeout <= 0 {
		opts.AppearTimeout = b.cfg.Timeouts.LoaderAppear
	}
	if opts.DisappearTimeout <= 0 {
		opts.DisappearTimeout = b.cfg.Timeouts.LoaderDisappear
	}

	loader := b.page.Locator(opts.Selector).First()
	err := loader.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(msFloat(opts.AppearTimeout)),
	})
	if errors.Is(err, playwright.ErrTimeout) {
		b.log.Debug("page_loader_absent", "selector", opts.Selector)
		return nil
	}
	if err != nil {
		return errs.FromPlaywright(errs.Interaction, "loader", err)
	}

	start := time.Now()
	err = loader.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateHidden,
		Timeout: playwright.Float(msFloat(opts.DisappearTimeout)),
	})
	if err != nil {
		return errs.FromPlaywright(errs.Timeout, "loader", err)
	}
	b.log.Debug("page_loader_done", "selector", opts.Selector, "dur_ms", time.Since(start).Milliseconds())
	return nil
}

// WaitForLocator waits for el to reach state. A nil state means visible and
// a zero timeout means the configured element timeout.
func (b *Base) WaitForLocator(el Element, state *playwright.WaitForSelectorState, timeout time.Duration) error {
	if state == nil {
		state = playwright.WaitForSelectorStateVisible
	}
	if timeout <= 0 {
		timeout = b.cfg.Timeouts.Element
	}
	err := el.Locator(b.page).WaitFor(playwright.LocatorWaitForOptions{
		State:   state,
		Timeout: playwright.Float(msFloat(timeout)),
	})
	return errs.FromPlaywright(errs.Interaction, el.Name, err)
}

func assertionError(el Element, what, expected, actual string, cause error) error {
	return &errs.Error{
		Code:    errs.Assertion,
		Element: el.Name,
		Message: fmt.Sprintf("expected %s %q, got %q", what, expected, actual),
		Err:     cause,
	}
}

func msFloat(d time.Duration) float64 {
	return float64(d.Milliseconds())
}
