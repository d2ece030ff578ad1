package fixture

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/coderberry/fixturama/internal/ir"
)

var (
	methodPattern = regexp.MustCompile(`^([\p{L}_][\p{L}\p{M}\p{N}_:/]*)[#.]([\p{L}_][\p{L}\p{M}\p{N}_]*[?!]?)$`)
	envPattern    = regexp.MustCompile(`^(?:env:([A-Za-z_][A-Za-z0-9_]*)|ENV\[["']?([A-Za-z_][A-Za-z0-9_]*)["']?\])$`)
	constPattern  = regexp.MustCompile(`^const:([\p{L}_][\p{L}\p{M}\p{N}_:]*)$`)
	httpMethods   = map[string]bool{
		"GET": true, "HEAD": true, "POST": true, "PUT": true,
		"PATCH": true, "DELETE": true, "OPTIONS": true,
	}
)

// ParseDescriptor parses a target descriptor into a Target.
func ParseDescriptor(desc string) (ir.Target, error) {
	switch {
	case strings.HasPrefix(desc, "http:"):
		return parseHTTPDescriptor(desc)
	case strings.HasPrefix(desc, "const:"):
		m := constPattern.FindStringSubmatch(desc)
		if m == nil {
			return ir.Target{}, fmt.Errorf("invalid constant descriptor %q", desc)
		}
		return ir.Target{Kind: ir.TargetConst, Name: m[1], Descriptor: desc}, nil
	case strings.HasPrefix(desc, "env:"), strings.HasPrefix(desc, "ENV["):
		m := envPattern.FindStringSubmatch(desc)
		if m == nil {
			return ir.Target{}, fmt.Errorf("invalid environment descriptor %q", desc)
		}
		name := m[1]
		if name == "" {
			name = m[2]
		}
		return ir.Target{Kind: ir.TargetEnv, Name: name, Descriptor: desc}, nil
	}

	m := methodPattern.FindStringSubmatch(desc)
	if m == nil {
		return ir.Target{}, fmt.Errorf("unrecognized target descriptor %q (want Type#method, env:NAME, const:NAME or http:METHOD url)", desc)
	}
	return ir.Target{Kind: ir.TargetMethod, Name: m[1] + "#" + m[2], Descriptor: desc}, nil
}

// parseHTTPDescriptor parses "http:METHOD url". The URL may omit its
// scheme.
func parseHTTPDescriptor(desc string) (ir.Target, error) {
	method, rawURL, ok := strings.Cut(strings.TrimSpace(strings.TrimPrefix(desc, "http:")), " ")
	rawURL = strings.TrimSpace(rawURL)
	if !ok || rawURL == "" {
		return ir.Target{}, fmt.Errorf("invalid http descriptor %q (want http:METHOD url)", desc)
	}
	method = strings.ToUpper(method)
	if !httpMethods[method] {
		return ir.Target{}, fmt.Errorf("invalid http descriptor %q: unknown method %q", desc, method)
	}

	if !strings.Contains(rawURL, "://") {
		rawURL = "http://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return ir.Target{}, fmt.Errorf("invalid http descriptor %q: %w", desc, err)
	}
	if u.Host == "" {
		return ir.Target{}, fmt.Errorf("invalid http descriptor %q: missing host", desc)
	}

	target := ir.HTTPTarget(method, u)
	target.Descriptor = desc
	return target, nil
}
