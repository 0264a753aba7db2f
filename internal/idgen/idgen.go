// Package idgen produces entity identifiers, URL slugs and share keys.
//
// Identifiers and share keys are drawn from a cryptographically strong source
// (crypto/rand by default). When that source fails the generator degrades to
// a seeded math/rand/v2 PCG so the service keeps working; callers still check
// share keys for uniqueness.
package idgen

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	mrand "math/rand/v2"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/formvault/internal/common"
	"github.com/google/uuid"
)

// MaxShareKeyAttempts bounds ShareKey so a broken random source surfaces as
// common.ErrShareKeyExhausted instead of an endless loop.
const MaxShareKeyAttempts = 10

// shareKeyBytes encodes to 8 base64url characters.
const shareKeyBytes = 6

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

var nonSlugRun = regexp.MustCompile(`[^a-z0-9]+`)

type Generator struct {
	strong io.Reader

	mu   sync.Mutex
	weak *mrand.Rand
}

// New returns a generator backed by crypto/rand.
func New() *Generator {
	now := uint64(time.Now().UnixNano())
	return NewWithSources(rand.Reader, now)
}

// NewWithSources lets tests pin both the strong reader and the fallback seed.
func NewWithSources(strong io.Reader, seed uint64) *Generator {
	return &Generator{
		strong: strong,
		weak:   mrand.New(mrand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// ID returns prefix + "-" + a random UUID, e.g. "form-1b4e...".
func (g *Generator) ID(prefix string) string {
	if prefix == "" {
		prefix = "id"
	}
	id, err := uuid.NewRandomFromReader(g.strong)
	if err != nil {
		id, _ = uuid.NewRandomFromReader(weakReader{g})
	}
	return fmt.Sprintf("%s-%s", prefix, id.String())
}

// Slug slugifies input, falling back to "form-" + six random base36
// characters when nothing usable is left.
func (g *Generator) Slug(input string) string {
	if s := Slugify(input); s != "" {
		return s
	}
	b := g.bytes(6)
	var sb strings.Builder
	sb.WriteString("form-")
	for _, c := range b {
		sb.WriteByte(base36[int(c)%len(base36)])
	}
	return sb.String()
}

// ShareKey draws a fresh 8-character base64url key that is not in existing.
func (g *Generator) ShareKey(existing map[string]struct{}) (string, error) {
	for attempt := 0; attempt < MaxShareKeyAttempts; attempt++ {
		key := base64.RawURLEncoding.EncodeToString(g.bytes(shareKeyBytes))
		if _, taken := existing[key]; !taken {
			return key, nil
		}
	}
	return "", common.ErrShareKeyExhausted
}

// Slugify lower-cases input, collapses every run of characters outside
// [a-z0-9] into one "-" and strips leading/trailing separators. It returns ""
// when nothing is left.
func Slugify(input string) string {
	s := strings.ToLower(strings.TrimSpace(input))
	s = nonSlugRun.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

func (g *Generator) bytes(n int) []byte {
	b := make([]byte, n)
	if _, err := io.ReadFull(g.strong, b); err == nil {
		return b
	}
	g.fillWeak(b)
	return b
}

func (g *Generator) fillWeak(b []byte) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i := range b {
		b[i] = byte(g.weak.UintN(256))
	}
}

type weakReader struct{ g *Generator }

func (r weakReader) Read(p []byte) (int, error) {
	r.g.fillWeak(p)
	return len(p), nil
}
