package checkout

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/gsaan/gsaan-backend/pkg/logger"
	"github.com/gsaan/gsaan-backend/pkg/util"
)

const (
	suffixLength       = 4
	defaultMaxAttempts = 5
)

var ErrNumberExhausted = errors.New("could not allocate a unique order number")

// NumberPattern matches PREFIX-YYYYMMDD-XXXX.
var NumberPattern = regexp.MustCompile(`^[A-Z]+-\d{8}-[A-Z0-9]{4}$`)

// ExistsFunc reports whether an order number is already taken.
type ExistsFunc func(ctx context.Context, number string) (bool, error)

// NumberGenerator issues order numbers of the form PREFIX-YYYYMMDD-XXXX. The
// suffix is random and not guaranteed unique, so Generate checks candidates
// against the order store and retries on collision.
type NumberGenerator struct {
	Prefix      string
	Location    *time.Location
	Now         func() time.Time
	Suffix      func() (string, error)
	MaxAttempts int
}

func NewNumberGenerator(prefix string, loc *time.Location) *NumberGenerator {
	if loc == nil {
		loc = time.UTC
	}
	return &NumberGenerator{
		Prefix:   prefix,
		Location: loc,
		Now:      time.Now,
		Suffix: func() (string, error) {
			return util.RandomCode(suffixLength, util.Base36Upper)
		},
		MaxAttempts: defaultMaxAttempts,
	}
}

// Next returns one candidate dated now without checking uniqueness.
func (g *NumberGenerator) Next() (string, error) {
	return g.nextAt(g.Now())
}

func (g *NumberGenerator) nextAt(at time.Time) (string, error) {
	suffix, err := g.Suffix()
	if err != nil {
		return "", fmt.Errorf("order number suffix: %w", err)
	}
	date := at.In(g.Location).Format("20060102")
	return fmt.Sprintf("%s-%s-%s", g.Prefix, date, suffix), nil
}

// Generate draws candidates dated now until exists reports a free one.
func (g *NumberGenerator) Generate(ctx context.Context, exists ExistsFunc) (string, error) {
	return g.GenerateAt(ctx, g.Now(), exists)
}

// GenerateAt is Generate with every candidate dated at.
func (g *NumberGenerator) GenerateAt(ctx context.Context, at time.Time, exists ExistsFunc) (string, error) {
	attempts := g.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		number, err := g.nextAt(at)
		if err != nil {
			return "", err
		}
		if exists == nil {
			return number, nil
		}

		taken, err := exists(ctx, number)
		if err != nil {
			return "", fmt.Errorf("check order number: %w", err)
		}
		if !taken {
			return number, nil
		}

		logger.Warn("Order number collision, retrying", map[string]interface{}{
			"order_number": number,
			"attempt":      attempt,
			"max_attempts": attempts,
		})
	}

	logger.Error("Order number space exhausted for today", ErrNumberExhausted, map[string]interface{}{
		"prefix":   g.Prefix,
		"attempts": attempts,
	})
	return "", ErrNumberExhausted
}
