package validator

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// lookalikes maps typographic and symbolic look-alike tokens to the ASCII
// token a programmer means by them.
var lookalikes = strings.NewReplacer(
	"⇒", "=>",
	"→", "=>",
	"⟹", "=>",
	"⟶", "=>",
	"➔", "=>",
	"➜", "=>",
	"↦", "=>",
	"“", `"`,
	"”", `"`,
	"„", `"`,
	"‘", "'",
	"’", "'",
	"‚", "'",
	"−", "-",
	"–", "-",
	"—", "-",
	"≠", "!=",
	"≤", "<=",
	"≥", ">=",
	"×", "*",
	"÷", "/",
)

// Normalize prepares text for comparison:
//   - Unicode compatibility forms are folded (NFKC), so full-width letters,
//     non-breaking spaces and the ellipsis character become ASCII
//   - look-alike arrows, quotes, dashes and comparison symbols become
//     their ASCII tokens
//   - leading and trailing whitespace is trimmed and internal runs of
//     whitespace collapse to one space
func Normalize(s string) string {
	s = norm.NFKC.String(s)
	s = lookalikes.Replace(s)
	return strings.Join(strings.Fields(s), " ")
}
