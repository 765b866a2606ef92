package middleware

import (
	"context"
	"regexp"

	"github.com/aretw0/thicket/pkg/domain"
	"github.com/aretw0/thicket/pkg/ports"
)

const maskedValue = "***"

type maskingMiddleware struct {
	next     ports.ConfigStore
	patterns []*regexp.Regexp
}

// NewMaskingMiddleware creates a middleware that masks the values of
// attribute keys matching the patterns before a configuration is written.
// Masking is one-way: reads return the masked values. Useful when
// configurations are fed from inventory systems that tag entries with
// owner emails, hostnames or other values that must not reach the store.
func NewMaskingMiddleware(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.ConfigStore) ports.ConfigStore {
		return &maskingMiddleware{next: next, patterns: patterns}
	}
}

func (m *maskingMiddleware) PutConfiguration(ctx context.Context, tenant string, cfg *domain.Configuration) error {
	// Deep copy so the caller's in-memory configuration is untouched.
	masked := &domain.Configuration{
		ID:         cfg.ID,
		Name:       cfg.Name,
		Attributes: deepCopyMap(cfg.Attributes),
	}
	maskMap(masked.Attributes, m.patterns)

	return m.next.PutConfiguration(ctx, tenant, masked)
}

func (m *maskingMiddleware) Configuration(ctx context.Context, tenant, configID string) (*domain.Configuration, error) {
	return m.next.Configuration(ctx, tenant, configID)
}

func (m *maskingMiddleware) SelectedConfiguration(ctx context.Context, tenant, projectID string) (*domain.Configuration, error) {
	return m.next.SelectedConfiguration(ctx, tenant, projectID)
}

func (m *maskingMiddleware) ListConfigurations(ctx context.Context, tenant, projectID string) ([]string, error) {
	return m.next.ListConfigurations(ctx, tenant, projectID)
}

func deepCopyMap(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	dst := make(map[string]any, len(src))
	for k, v := range src {
		if nested, ok := v.(map[string]any); ok {
			dst[k] = deepCopyMap(nested)
			continue
		}
		dst[k] = v
	}
	return dst
}

func maskMap(attrs map[string]any, patterns []*regexp.Regexp) {
	for k, v := range attrs {
		if nested, ok := v.(map[string]any); ok {
			maskMap(nested, patterns)
			continue
		}
		for _, p := range patterns {
			if p.MatchString(k) {
				attrs[k] = maskedValue
				break
			}
		}
	}
}
