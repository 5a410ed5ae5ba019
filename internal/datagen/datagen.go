// Package datagen produces random form values for the page objects.
//
// Package-level functions draw from a shared, concurrency-safe source.
// Use NewSeeded when a test needs a reproducible sequence.
package datagen

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
)

// DefaultPasswordLength is the length used when callers do not specify one.
const DefaultPasswordLength = 12

const (
	upperChars   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	lowerChars   = "abcdefghijklmnopqrstuvwxyz"
	digitChars   = "0123456789"
	specialChars = "!@#$%^&*()_+[]{}"
	allChars     = upperChars + lowerChars + digitChars + specialChars
)

var (
	syllables = []string{"ra", "vi", "an", "ka", "me", "sa", "ni", "ro", "ti", "la", "de", "yu", "ar"}
	genders   = []string{"Male", "Female"}
	streets   = []string{"Main St", "High St", "Park Ave", "Broadway", "Maple St", "Oak St"}
	cities    = []string{"New York", "Los Angeles", "Chicago", "Houston", "San Francisco", "Boston"}
	states    = []string{"NY", "CA", "IL", "TX", "MA", "FL"}
)

// Hobbies lists the hobby options the profile form accepts.
// The form also offers Knitting, which the application rejects, so it is left out.
var Hobbies = []string{
	"Hiking",
	"Reading",
	"Working",
	"Learning",
	"Video Games",
	"Biking",
	"Movies",
	"Reading Comics",
	"Drawing",
	"Jogging",
	"Bird-watching",
	"Other",
}

// Generator produces random form values. It is safe for concurrent use.
type Generator struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// New returns a generator seeded from the runtime's random source.
func New() *Generator {
	return &Generator{rnd: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
}

// NewSeeded returns a generator whose sequence is fully determined by seed.
func NewSeeded(seed uint64) *Generator {
	return &Generator{rnd: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (g *Generator) intN(n int) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rnd.IntN(n)
}

func (g *Generator) pick(items []string) string {
	return items[g.intN(len(items))]
}

func (g *Generator) char(set string) byte {
	return set[g.intN(len(set))]
}

// Name returns two or three syllables with the first letter capitalised.
func (g *Generator) Name() string {
	n := 2 + g.intN(2)
	var b strings.Builder
	for range n {
		b.WriteString(g.pick(syllables))
	}
	name := b.String()
	return strings.ToUpper(name[:1]) + name[1:]
}

// Password returns an upper, a lower, a digit and a special character, in that
// order, padded with random characters to length. Lengths of four or less
// yield exactly the four mandatory characters.
func (g *Generator) Password(length int) string {
	b := make([]byte, 0, max(length, 4))
	b = append(b,
		g.char(upperChars),
		g.char(lowerChars),
		g.char(digitChars),
		g.char(specialChars),
	)
	for len(b) < length {
		b = append(b, g.char(allChars))
	}
	return string(b)
}

// Age returns a uniform integer in [lo, hi]. Reversed bounds are swapped.
func (g *Generator) Age(lo, hi int) int {
	if lo > hi {
		lo, hi = hi, lo
	}
	return lo + g.intN(hi-lo+1)
}

// PhoneNumber returns ten random digits.
func (g *Generator) PhoneNumber() string {
	b := make([]byte, 10)
	for i := range b {
		b[i] = g.char(digitChars)
	}
	return string(b)
}

// Gender returns Male or Female.
func (g *Generator) Gender() string {
	return g.pick(genders)
}

// Address returns "<number> <street>, <city>, <state> <zip>".
func (g *Generator) Address() string {
	return fmt.Sprintf("%d %s, %s, %s %d",
		1+g.intN(9999),
		g.pick(streets),
		g.pick(cities),
		g.pick(states),
		10000+g.intN(90000),
	)
}

// Hobby returns one of Hobbies.
func (g *Generator) Hobby() string {
	return g.pick(Hobbies)
}

var defaultGenerator = New()

// Default returns the shared generator behind the package-level functions.
func Default() *Generator { return defaultGenerator }

// Package-level helpers draw from Default.

func Name() string               { return defaultGenerator.Name() }
func Password(length int) string { return defaultGenerator.Password(length) }
func Age(lo, hi int) int         { return defaultGenerator.Age(lo, hi) }
func PhoneNumber() string        { return defaultGenerator.PhoneNumber() }
func Gender() string             { return defaultGenerator.Gender() }
func Address() string            { return defaultGenerator.Address() }
func Hobby() string              { return defaultGenerator.Hobby() }
