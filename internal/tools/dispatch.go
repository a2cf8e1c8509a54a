// Package tools implements the C7 tool set: ten callable units the
// specialist reasoners invoke by name with a free-text "Action Input" line.
// Coercion is centralized here exactly as spec.md §4.7 and §9 require — no
// tool re-implements digit extraction or embedded-query unwrapping itself.
package tools

import (
	"context"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	jsonrepair "github.com/RealAlexandreAI/json-repair"

	"pensionadvisor/internal/reqctx"
)

var firstDigitRun = regexp.MustCompile(`\d+`)

// CoerceInt extracts the first run of digits from raw, however it arrives:
// a float64 (json.Unmarshal's native number type), a string, or already an
// int. Used for the user_id argument.
func CoerceInt(raw any) (int, bool) {
	switch v := raw.(type) {
	case nil:
		return 0, false
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	case string:
		m := firstDigitRun.FindString(v)
		if m == "" {
			return 0, false
		}
		n, err := strconv.Atoi(m)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// ResolveUserID implements the fallback chain spec.md §4.7 requires: the
// explicit argument, else the ambient request context, else "not
// authenticated". Every per-user tool calls this before anything else.
func ResolveUserID(ctx context.Context, explicit any) (int, bool) {
	if id, ok := CoerceInt(explicit); ok {
		return id, true
	}
	if id, ok := reqctx.UserID(ctx); ok {
		return id, true
	}
	return 0, false
}

// ParsedArgs is the normalized shape every tool reads its input from,
// regardless of how the LLM formatted the Action Input line.
type ParsedArgs struct {
	UserID any
	Query  string
	Raw    map[string]any
}

// ParseActionInput implements the free-text tool dispatch contract: the
// input may be bare JSON, a bare integer, or a stringified object
// containing {user_id, query}. Malformed JSON is repaired first via
// github.com/RealAlexandreAI/json-repair before a second parse attempt,
// matching the teacher's pkg/core/utils.RepairJSON fallback chain.
func ParseActionInput(raw string) ParsedArgs {
	trimmed := strings.TrimSpace(raw)

	// Bare integer: "520"
	if _, err := strconv.Atoi(trimmed); err == nil {
		return ParsedArgs{UserID: trimmed}
	}

	if strings.HasPrefix(trimmed, "{") {
		var obj map[string]any
		if err := json.Unmarshal([]byte(trimmed), &obj); err != nil {
			if repaired, rerr := jsonrepair.RepairJSON(trimmed); rerr == nil {
				_ = json.Unmarshal([]byte(repaired), &obj)
			}
		}
		if obj != nil {
			args := ParsedArgs{Raw: obj}
			if uid, ok := obj["user_id"]; ok {
				args.UserID = uid
			}
			if q, ok := obj["query"].(string); ok {
				args.Query = q
			} else if q, ok := obj["input"].(string); ok {
				// A specialist may nest an already-stringified object under
				// "input"; detect and unwrap one level, per spec.md §4.7.
				if strings.HasPrefix(strings.TrimSpace(q), "{") {
					inner := ParseActionInput(q)
					if args.UserID == nil {
						args.UserID = inner.UserID
					}
					args.Query = inner.Query
				} else {
					args.Query = q
				}
			}
			return args
		}
	}

	// Fall back to treating the whole thing as the query text.
	return ParsedArgs{Query: trimmed}
}

// errorResult is the {"error": "..."} shape every tool returns on failure,
// per spec.md §6's stable error envelope.
func errorResult(msg string) map[string]any {
	return map[string]any{"error": msg}
}

const errNotAuthenticated = "User not authenticated"
