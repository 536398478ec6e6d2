// Package refgen generates invoice and return reference numbers.
//
// The scheme is a fixed prefix, the last 8 digits of a millisecond timestamp
// and 3 random uppercase base-36 characters, e.g. INV45821733K7Q.
// The timestamp part keeps numbers roughly chronological, the random suffix
// makes same-millisecond collisions unlikely without any shared counter.
package refgen

import (
	"fmt"
	"math/rand"
	"time"
)

const (
	// PrefixInvoice is the reference prefix for committed invoices.
	PrefixInvoice = "INV"

	// PrefixReturn is the reference prefix for return records.
	PrefixReturn = "RET"

	base36Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

	timestampDigits = 8
	suffixLength    = 3
)

// Generator produces reference numbers. The zero value is not usable;
// construct with New. Clock and randomness are injectable for tests.
type Generator struct {
	now  func() time.Time
	intN func(n int) int
}

// New creates a Generator backed by the system clock and math/rand.
func New() *Generator {
	return &Generator{
		now:  time.Now,
		intN: rand.Intn,
	}
}

// NewWithSource creates a Generator with explicit clock and random source.
// Use in tests to get deterministic references.
func NewWithSource(now func() time.Time, intN func(n int) int) *Generator {
	return &Generator{now: now, intN: intN}
}

// InvoiceNumber returns a fresh invoice reference.
func (g *Generator) InvoiceNumber() string {
	return g.generate(PrefixInvoice)
}

// ReturnNumber returns a fresh return reference.
func (g *Generator) ReturnNumber() string {
	return g.generate(PrefixReturn)
}

func (g *Generator) generate(prefix string) string {
	ms := g.now().UnixMilli()

	// Last 8 digits of the millisecond timestamp.
	tail := ms % 100_000_000
	if tail < 0 {
		tail = -tail
	}

	suffix := make([]byte, suffixLength)
	for i := range suffix {
		suffix[i] = base36Alphabet[g.intN(len(base36Alphabet))]
	}

	return fmt.Sprintf("%s%0*d%s", prefix, timestampDigits, tail, suffix)
}
