package numbering

import (
	"context"
	"fmt"
	"sync"
)

// MockGenerator is a test implementation of Generator.
// Use in unit tests to avoid database dependencies.
type MockGenerator struct {
	GenerateNumberFunc    func(ctx context.Context, docType DocumentType) (string, error)
	PreviewNextNumberFunc func(ctx context.Context, docType DocumentType) (string, string, error)

	mu     sync.Mutex
	issued map[DocumentType]int64
}

// GenerateNumber implements Generator. Without a custom func it issues
// predictable per-type numbers (PREFIX-000001, PREFIX-000002, ...).
func (m *MockGenerator) GenerateNumber(ctx context.Context, docType DocumentType) (string, error) {
	if m.GenerateNumberFunc != nil {
		return m.GenerateNumberFunc(ctx, docType)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.issued == nil {
		m.issued = make(map[DocumentType]int64)
	}
	m.issued[docType]++
	return fmt.Sprintf("%s-%06d", docType.FallbackPrefix(), m.issued[docType]), nil
}

// PreviewNextNumber implements Generator.
func (m *MockGenerator) PreviewNextNumber(ctx context.Context, docType DocumentType) (string, string, error) {
	if m.PreviewNextNumberFunc != nil {
		return m.PreviewNextNumberFunc(ctx, docType)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	next := fmt.Sprintf("%s-%06d", docType.FallbackPrefix(), m.issued[docType]+1)
	sample := fmt.Sprintf("%s-%06d", docType.FallbackPrefix(), 1)
	return sample, next, nil
}

// Ensure compile-time interface compliance.
var _ Generator = (*MockGenerator)(nil)
