package pages

import (
	"fmt"

	"github.com/playwright-community/playwright-go"

	"github.com/kuitang/buggy-e2e/internal/config"
)

// BrowserType picks the engine named by cfg.
func BrowserType(pw *playwright.Playwright, cfg config.BrowserConfig) (playwright.BrowserType, error) {
	switch cfg.Name {
	case "", "chromium":
		return pw.Chromium, nil
	case "firefox":
		return pw.Firefox, nil
	case "webkit":
		return pw.WebKit, nil
	}
	return nil, fmt.Errorf("unknown browser %q", cfg.Name)
}

// Launch starts the configured browser.
func Launch(pw *playwright.Playwright, cfg config.BrowserConfig) (playwright.Browser, error) {
	bt, err := BrowserType(pw, cfg)
	if err != nil {
		return nil, err
	}
	opts := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(cfg.Headless),
	}
	if cfg.SlowMo > 0 {
		opts.SlowMo = playwright.Float(float64(cfg.SlowMo.Milliseconds()))
	}
	browser, err := bt.Launch(opts)
	if err != nil {
		return nil, fmt.Errorf("launch %s: %w", bt.Name(), err)
	}
	return browser, nil
}
