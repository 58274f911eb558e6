package middleware

import (
	"context"
	"regexp"

	"github.com/cauceflow/cauce/pkg/domain"
	"github.com/cauceflow/cauce/pkg/ports"
)

const mask = "***"

type piiStore struct {
	next     ports.SessionStore
	patterns []*regexp.Regexp
}

// NewPIIMask creates a middleware that masks the values of variables whose
// name matches any of the patterns before the session is persisted.
//
// Masking is lossy: a masked variable reads back as the mask, so patterns
// should only cover values the flow never interpolates after collecting
// them (card data, one-time codes).
func NewPIIMask(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.SessionStore) ports.SessionStore {
		return &piiStore{next: next, patterns: patterns}
	}
}

func (m *piiStore) Save(ctx context.Context, id domain.Identity, s *domain.Session) error {
	cloned := *s
	cloned.Variables = deepCopyMap(s.Variables)
	maskMap(cloned.Variables, m.patterns)
	return m.next.Save(ctx, id, &cloned)
}

func (m *piiStore) Load(ctx context.Context, id domain.Identity) (*domain.Session, error) {
	return m.next.Load(ctx, id)
}

func (m *piiStore) Delete(ctx context.Context, id domain.Identity) error {
	return m.next.Delete(ctx, id)
}

func (m *piiStore) List(ctx context.Context) ([]domain.Identity, error) {
	return m.next.List(ctx)
}

func deepCopyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if sub, ok := v.(map[string]any); ok {
			out[k] = deepCopyMap(sub)
		} else {
			out[k] = v
		}
	}
	return out
}

func maskMap(m map[string]any, patterns []*regexp.Regexp) {
	for k, v := range m {
		for _, p := range patterns {
			if p.MatchString(k) {
				m[k] = mask
				break
			}
		}
		if sub, ok := v.(map[string]any); ok {
			maskMap(sub, patterns)
		}
	}
}
