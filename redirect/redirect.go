// Package redirect opens redirect actions through a host-supplied launcher
// and turns return URLs back into submittable detail payloads.
package redirect

import (
	"context"
	"log/slog"
	"net/url"

	"github.com/utafrali/checkout-go/checkout"
	checkouterrors "github.com/utafrali/checkout-go/pkg/errors"
)

// Launcher is the host port that actually opens the redirect target, for
// example a browser tab, a webview or a headless HTTP client in tests.
type Launcher interface {
	Launch(ctx context.Context, u *url.URL) error
}

// LauncherFunc adapts a function to the Launcher interface.
type LauncherFunc func(ctx context.Context, u *url.URL) error

// Launch implements Launcher.
func (f LauncherFunc) Launch(ctx context.Context, u *url.URL) error {
	return f(ctx, u)
}

// Dispatcher validates redirect actions and hands their target to the
// launcher.
type Dispatcher struct {
	launcher Launcher
	logger   *slog.Logger
}

// NewDispatcher creates a dispatcher around the given launcher.
func NewDispatcher(launcher Launcher, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{launcher: launcher, logger: logger}
}

// Launch opens the redirect target of the action. The action must carry an
// absolute URL.
func (d *Dispatcher) Launch(ctx context.Context, action *checkout.Action) error {
	if action == nil || action.URL == "" {
		return checkouterrors.RedirectParse("redirect action does not contain a url")
	}
	target, err := url.Parse(action.URL)
	if err != nil || !target.IsAbs() {
		return checkouterrors.RedirectParse("redirect action url is malformed: " + action.URL)
	}

	d.logger.Info("launching redirect",
		slog.String("host", target.Host),
		slog.String("payment_method", action.PaymentMethodType))

	if err := d.launcher.Launch(ctx, target); err != nil {
		return checkouterrors.Wrap("redirect could not be launched", err)
	}
	return nil
}

// ParseReturnURL extracts the detail payload from the URL the shopper
// returned on. Recognised query parameters take precedence in this order:
// payload alone, then redirectResult alone, then the PaRes and MD pair.
// Any other non-empty query is passed through verbatim under
// returnUrlQueryString.
func ParseReturnURL(returnURL string) (map[string]any, error) {
	parsed, err := url.Parse(returnURL)
	if err != nil {
		return nil, checkouterrors.RedirectParse("return url is malformed: " + returnURL)
	}
	query := parsed.Query()

	if v := query.Get(checkout.DetailKeyPayload); v != "" {
		return map[string]any{checkout.DetailKeyPayload: v}, nil
	}
	if v := query.Get(checkout.DetailKeyRedirectResult); v != "" {
		return map[string]any{checkout.DetailKeyRedirectResult: v}, nil
	}
	paRes := query.Get(checkout.DetailKeyPaymentResult)
	md := query.Get(checkout.DetailKeyMD)
	if paRes != "" && md != "" {
		return map[string]any{
			checkout.DetailKeyPaymentResult: paRes,
			checkout.DetailKeyMD:            md,
		}, nil
	}
	if parsed.RawQuery != "" {
		return map[string]any{checkout.DetailKeyReturnURLQueryString: parsed.RawQuery}, nil
	}
	return nil, checkouterrors.RedirectParse("return url carries no recognisable parameters: " + returnURL)
}
