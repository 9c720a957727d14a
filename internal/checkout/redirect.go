package checkout

import (
	"errors"
	"fmt"
	"net/url"
)

// Navigator abstracts how the hosted payment page is opened.  OpenWindow
// returns false when the surface blocked the new window, in which case the
// run falls back to navigating the current one.
type Navigator interface {
	OpenWindow(url string) bool
	Navigate(url string)
}

var ErrNoPaymentPage = errors.New("checkout: no hosted payment page configured")

// HostedURL builds the hosted payment page address with the devotee's
// details prefilled, so the gateway form does not ask for them again.
func HostedURL(page, name, email, contact string) (string, error) {
	if page == "" {
		return "", ErrNoPaymentPage
	}
	u, err := url.Parse(page)
	if err != nil {
		return "", err
	}
	// url.Parse accepts relative strings; a misconfigured page must fail
	// the run, not become a redirect target.
	if !u.IsAbs() || u.Host == "" {
		return "", fmt.Errorf("payment page %q is not an absolute URL", page)
	}
	q := u.Query()
	q.Set("prefill[name]", name)
	q.Set("prefill[email]", email)
	q.Set("prefill[contact]", contact)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// ProceedHosted hands the run off to a hosted payment page instead of the
// embedded widget.  This is the weaker fallback for deployments without
// gateway API credentials: no callback ever arrives, so the run ends at
// StateRedirected and the payment is reconciled out of band.
func (o *Orchestrator) ProceedHosted(nav Navigator, page string) error {
	o.mu.Lock()
	if !o.mounted {
		o.mu.Unlock()
		return ErrNotOpen
	}
	if o.state != StateSelectionPending {
		o.mu.Unlock()
		return ErrBadState
	}
	if o.selection == "" {
		o.mu.Unlock()
		return ErrNoSelection
	}
	d := o.devotee
	o.mu.Unlock()

	target, err := HostedURL(page, d.Name, d.Email, d.ContactNo)

	o.mu.Lock()
	if !o.mounted || o.state != StateSelectionPending {
		o.mu.Unlock()
		return nil
	}
	if err != nil {
		o.failLocked(ReasonOrderCreation)
		o.mu.Unlock()
		return err
	}
	o.state = StateRedirected
	o.mu.Unlock()

	if !nav.OpenWindow(target) {
		// Popup blocked; take over the current window instead.
		nav.Navigate(target)
	}
	return nil
}
