package routing

import (
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
)

// PathClass is the bucket a request falls into for authentication purposes
type PathClass int

const (
	ProtectedStandard PathClass = iota
	Public
	WebSocketPublic
	WebSocketProtected
	ProtectedAdmin
)

// String returns the class name used in logs and metrics
func (c PathClass) String() string {
	switch c {
	case Public:
		return "public"
	case WebSocketPublic:
		return "websocket_public"
	case WebSocketProtected:
		return "websocket_protected"
	case ProtectedAdmin:
		return "protected_admin"
	default:
		return "protected_standard"
	}
}

// Bypass reports whether requests of this class skip credential checks entirely
func (c PathClass) Bypass() bool {
	return c == Public || c == WebSocketPublic
}

// Rule maps requests to a PathClass. A rule matches when the upgrade condition
// holds and the path starts with one of Prefixes or contains one of Segments.
// A rule with neither prefixes nor segments matches any path.
type Rule struct {
	Class            PathClass
	Prefixes         []string
	Segments         []string
	WebSocketUpgrade bool
}

func (r Rule) matches(path string, upgrade bool) bool {
	if r.WebSocketUpgrade && !upgrade {
		return false
	}
	if len(r.Prefixes) == 0 && len(r.Segments) == 0 {
		return true
	}
	for _, prefix := range r.Prefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	for _, segment := range r.Segments {
		if strings.Contains(path, segment) {
			return true
		}
	}
	return false
}

// Public namespaces of the gateway
var (
	WebSocketPublicPrefixes = []string{
		"/notification/notification-websocket",
		"/notification-websocket",
		"/notification/chat-websocket",
		"/chat-websocket",
	}

	PublicPrefixes = []string{
		"/authentication",
		"/account/api/v1/verification/user",
		"/api/v1/verification/user",
	}

	AdminSegments = []string{"/admin", "/cache"}
)

// DefaultRules returns the gateway rule table. Extra public prefixes are
// appended to the built-in public namespaces.
func DefaultRules(extraPublic ...string) []Rule {
	public := make([]string, 0, len(PublicPrefixes)+len(extraPublic))
	public = append(public, PublicPrefixes...)
	public = append(public, extraPublic...)

	return []Rule{
		{Class: WebSocketPublic, Prefixes: WebSocketPublicPrefixes},
		{Class: Public, Prefixes: public},
		{Class: WebSocketProtected, WebSocketUpgrade: true},
		{Class: ProtectedAdmin, Segments: AdminSegments},
	}
}

// Classifier assigns a PathClass to requests using an ordered rule table.
// It is immutable once built and safe for concurrent use.
type Classifier struct {
	rules []Rule
}

// NewClassifier creates a Classifier. The first matching rule wins;
// requests matching no rule are ProtectedStandard.
func NewClassifier(rules []Rule) *Classifier {
	copied := make([]Rule, len(rules))
	for i, rule := range rules {
		copied[i] = Rule{
			Class:            rule.Class,
			Prefixes:         append([]string(nil), rule.Prefixes...),
			Segments:         append([]string(nil), rule.Segments...),
			WebSocketUpgrade: rule.WebSocketUpgrade,
		}
	}
	return &Classifier{rules: copied}
}

// Classify returns the PathClass of an inbound request
func (c *Classifier) Classify(r *http.Request) PathClass {
	return c.ClassifyPath(r.URL.Path, websocket.IsWebSocketUpgrade(r))
}

// ClassifyPath returns the PathClass of a path. upgrade tells whether the
// request asks for a WebSocket upgrade.
func (c *Classifier) ClassifyPath(path string, upgrade bool) PathClass {
	for _, rule := range c.rules {
		if rule.matches(path, upgrade) {
			return rule.Class
		}
	}
	return ProtectedStandard
}
