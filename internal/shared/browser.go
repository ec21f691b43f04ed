package shared

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
)

var getRuntime = func() string { return runtime.GOOS }

// openCommand is replaced in tests to avoid spawning a browser.
var openCommand = func(name string, args ...string) error {
	return exec.Command(name, args...).Start()
}

// ResolveLink makes a resource link absolute. Access links of uploads are served relative to
// the backend, external links are used as they are. Only http and https are accepted.
func ResolveLink(baseURL, link string) (string, error) {
	ref, err := url.Parse(link)
	if err != nil || link == "" {
		return "", fmt.Errorf("%w: link %q", ErrInvalidArgument, link)
	}
	if !ref.IsAbs() {
		base, err := url.Parse(baseURL)
		if err != nil || !base.IsAbs() {
			return "", fmt.Errorf("%w: base url %q", ErrInvalidConfig, baseURL)
		}
		ref = base.ResolveReference(ref)
	}
	if ref.Scheme != "http" && ref.Scheme != "https" {
		return "", fmt.Errorf("%w: unsupported link scheme %q", ErrInvalidArgument, ref.Scheme)
	}
	return ref.String(), nil
}

// OpenLink resolves link against baseURL and opens it in the default system browser.
func OpenLink(baseURL, link string) error {
	target, err := ResolveLink(baseURL, link)
	if err != nil {
		return err
	}

	var name string
	var args []string
	switch rt := getRuntime(); rt {
	case "darwin":
		name, args = "open", []string{target}
	case "linux", "freebsd", "openbsd":
		name, args = "xdg-open", []string{target}
	case "windows":
		name, args = "rundll32", []string{"url.dll,FileProtocolHandler", target}
	default:
		return fmt.Errorf("unsupported platform: %s", rt)
	}

	if err := openCommand(name, args...); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	return nil
}
