package matchcode

import (
	"encoding/base32"
	"strings"

	"github.com/samborkent/uuidv7"
)

// CodeLength is the length of one battle code as shown to players.
const CodeLength = 8

// BattleCodeCount is how many codes a finalized match carries, one per
// sub-match reported to the verification service.
const BattleCodeCount = 3

var encoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// Generate returns one battle code derived from a fresh uuidv7.
func Generate() string {
	id := uuidv7.New()
	encoded := encoding.EncodeToString(id[:])
	return strings.ToUpper(encoded[:CodeLength])
}

// GenerateSet returns n distinct battle codes.
func GenerateSet(n int) []string {
	seen := map[string]bool{}
	codes := make([]string, 0, n)
	for len(codes) < n {
		code := Generate()
		if seen[code] {
			continue
		}
		seen[code] = true
		codes = append(codes, code)
	}
	return codes
}
