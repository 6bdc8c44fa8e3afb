// Package pdf renders printable carnês.
package pdf

import (
	"context"
	"io"
	"strings"
)

// BookletData is everything a printed carnê carries.
type BookletData struct {
	MemberName  string
	MemberPhone string
	Number      string
	Year        int
	Amount      string

	Slips []SlipData
}

// SlipData is one detachable monthly slip.
type SlipData struct {
	Number  int
	DueDate string
	Amount  string
	Status  string
	PaidAt  string
}

type Provider interface {
	GenerateBooklet(ctx context.Context, data BookletData) (io.Reader, error)
}

// NoOpProvider renders nothing. Stand-in for tests.
type NoOpProvider struct{}

func (p *NoOpProvider) GenerateBooklet(ctx context.Context, data BookletData) (io.Reader, error) {
	return strings.NewReader(""), nil
}
