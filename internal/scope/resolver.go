// Package scope implements the role-scope resolver (C6): the single choke
// point through which every data-touching tool determines which user id it
// is allowed to read. No other package re-implements this check.
package scope

import (
	"context"
	"regexp"
	"strconv"

	"pensionadvisor/internal/identity"
)

// Context describes how the effective target id was derived.
type Context string

const (
	Self    Context = "self"
	Client  Context = "client"
	Unknown Context = "unknown"
)

// idPatterns is tried in order; the first match wins. Grounded on spec.md
// §4.6's literal ordering; the bare-number pattern comes last.
var idPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)user\s+id\s+(\d+)`),
	regexp.MustCompile(`(?i)for\s+user\s+id\s+(\d+)`),
	regexp.MustCompile(`(?i)user\s+(\d+)`),
	regexp.MustCompile(`(?i)client\s+(\d+)`),
	regexp.MustCompile(`(?i)for\s+user\s+(\d+)`),
	regexp.MustCompile(`(\d+)`),
}

// extractCandidateID pulls the first user-id-looking number out of a query,
// per the ordered pattern list. Returns (0, false) if nothing matches.
func extractCandidateID(query string) (int, bool) {
	for _, p := range idPatterns {
		m := p.FindStringSubmatch(query)
		if m == nil {
			continue
		}
		id, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		return id, true
	}
	return 0, false
}

// Resolver resolves (callerID, query) to the effective target user id.
type Resolver struct {
	Lookup identity.Lookup
}

// Resolve implements the full C6 algorithm.
func (r *Resolver) Resolve(ctx context.Context, callerID int, query string) (effectiveID int, effectiveCtx Context, err error) {
	caller, ok, err := r.Lookup.User(ctx, callerID)
	if err != nil {
		return 0, Unknown, err
	}
	if !ok {
		return callerID, Unknown, nil
	}

	candidate, found := extractCandidateID(query)
	if found && candidate == callerID {
		// A query that only names the caller's own id is a self-query.
		found = false
	}

	switch caller.Role {
	case identity.RoleResident:
		// Residents always see their own data; any extracted id is ignored.
		return callerID, Self, nil

	case identity.RoleAdvisor:
		if !found {
			return callerID, Self, nil
		}
		isClient, err := r.Lookup.IsClient(ctx, callerID, candidate)
		if err != nil {
			return 0, Unknown, err
		}
		if isClient {
			return candidate, Client, nil
		}
		// Never leak whether a non-client id exists: fall back silently.
		return callerID, Self, nil

	case identity.RoleRegulator:
		if found {
			return candidate, Client, nil
		}
		return callerID, Self, nil

	default:
		return callerID, Unknown, nil
	}
}
