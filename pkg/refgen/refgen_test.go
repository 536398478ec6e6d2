package refgen

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedGenerator(ms int64, picks ...int) *Generator {
	i := 0
	return NewWithSource(
		func() time.Time { return time.UnixMilli(ms) },
		func(n int) int {
			p := picks[i%len(picks)]
			i++
			return p % n
		},
	)
}

func TestInvoiceNumber_Format(t *testing.T) {
	// 1700000045821 ms -> last 8 digits are 00045821.
	g := fixedGenerator(1700000045821, 0, 10, 35)

	num := g.InvoiceNumber()

	require.Len(t, num, len("INV")+8+3)
	assert.True(t, strings.HasPrefix(num, "INV"))
	assert.Equal(t, "00045821", num[3:11])
	assert.Equal(t, "0AZ", num[11:])
}

func TestReturnNumber_Prefix(t *testing.T) {
	g := fixedGenerator(1700000045821, 1)

	num := g.ReturnNumber()

	assert.True(t, strings.HasPrefix(num, "RET"))
	assert.Len(t, num, len("RET")+8+3)
}

func TestGenerate_TimestampTailPadded(t *testing.T) {
	// A timestamp whose last 8 digits start with zeros must keep its width.
	g := fixedGenerator(1700000000007, 0)

	num := g.InvoiceNumber()

	assert.Equal(t, "00000007", num[3:11])
}

func TestGenerate_SuffixAlphabet(t *testing.T) {
	g := New()

	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		num := g.InvoiceNumber()
		require.Len(t, num, 14)
		suffix := num[11:]
		for _, c := range suffix {
			assert.Contains(t, base36Alphabet, string(c))
		}
		seen[num] = true
	}

	// Same-millisecond duplicates should be rare with a 36^3 suffix space.
	assert.Greater(t, len(seen), 90)
}
