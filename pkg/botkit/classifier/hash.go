package classifier

import "regexp"

// Hash pattern families in priority order. 0x-prefixed hex beats bare hex
// beats Base58 beats Base64 when multiple families could match.
var (
	hexPrefixedPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{64}$`)
	hexBarePattern     = regexp.MustCompile(`^[0-9a-fA-F]{64}$`)
	base58Pattern      = regexp.MustCompile(`^[1-9A-HJ-NP-Za-km-z]{32,88}$`)
	base64Pattern      = regexp.MustCompile(`^[A-Za-z0-9+/]{44,48}={0,2}$`)

	tokenSplitter = regexp.MustCompile(`[^A-Za-z0-9+/=]+`)
)

// DetectTransactionHash scans the message for a transaction-hash-looking
// token and returns exactly one, or empty when none matches. The message
// is split into candidate tokens first so a bare-hex token is never
// confused with the tail of an 0x-prefixed one.
func DetectTransactionHash(message string) string {
	tokens := tokenSplitter.Split(message, -1)

	families := []*regexp.Regexp{
		hexPrefixedPattern,
		hexBarePattern,
		base58Pattern,
		base64Pattern,
	}

	for _, family := range families {
		for _, token := range tokens {
			if token == "" {
				continue
			}
			if family.MatchString(token) {
				return token
			}
		}
	}
	return ""
}
