package gitcache

import (
	"errors"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/transport"
)

// ErrorKind classifies failures reported by the underlying git transport.
type ErrorKind int

const (
	KindGeneric ErrorKind = iota
	KindAuth
	KindNotFound
	KindNetwork
)

// classifyGitError maps a transport error to a kind once, at the boundary.
// Typed go-git errors are preferred; unrecognized errors fall back to text
// inspection and finally to KindGeneric.
func classifyGitError(err error) ErrorKind {
	if err == nil {
		return KindGeneric
	}

	if errors.Is(err, transport.ErrAuthenticationRequired) || errors.Is(err, transport.ErrAuthorizationFailed) {
		return KindAuth
	}
	if errors.Is(err, transport.ErrRepositoryNotFound) {
		return KindNotFound
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "authentication"), strings.Contains(msg, "authorization"):
		return KindAuth
	case strings.Contains(msg, "repository not found"), strings.Contains(msg, "not found"):
		return KindNotFound
	case strings.Contains(msg, "network is unreachable"),
		strings.Contains(msg, "temporary failure"),
		strings.Contains(msg, "no such host"),
		strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "i/o timeout"):
		return KindNetwork
	default:
		return KindGeneric
	}
}

// guidance returns actionable advice for a classified failure, or an empty
// string when none applies.
func guidance(kind ErrorKind) string {
	switch kind {
	case KindAuth:
		return "Note: for private repositories, ensure your SSH keys are configured or use a personal access token."
	case KindNotFound:
		return "The repository URL may be incorrect or the repository may not exist."
	case KindNetwork:
		return "Network error. Please check your internet connection and try again."
	default:
		return ""
	}
}

// describeGitError wraps the underlying error text with a prefix and, for
// recognized kinds, appends guidance. Unrecognized errors pass through with
// just the generic prefix, never swallowed.
func describeGitError(prefix string, err error) string {
	msg := prefix + ": " + err.Error()
	if hint := guidance(classifyGitError(err)); hint != "" {
		msg += "\n" + hint
	}
	return msg
}
