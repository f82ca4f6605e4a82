// Package lexicon holds the keyword sets the deterministic routing rules
// match against. The bot serves a bilingual (Korean/English) exchange, so
// every set carries both languages.
package lexicon

import "strings"

var greetingKeywords = []string{
	"hi", "hello", "hey", "good morning", "good evening", "thanks",
	"thank you", "bye", "goodbye",
	"안녕", "안녕하세요", "하이", "헬로", "감사", "감사합니다", "고마워",
	"고맙습니다", "잘가", "수고", "반가워",
}

var priceKeywords = []string{
	"price", "quote", "current rate", "how much is", "market cap",
	"시세", "가격", "현재가", "얼마", "시가총액", "환율", "현재 가격",
}

var dateTimeKeywords = []string{
	"what time", "what day", "today's date", "current time",
	"몇시", "몇 시", "오늘 날짜", "며칠", "무슨 요일", "지금 시간", "현재 시간",
}

var eventKeywords = []string{
	"event", "airdrop", "listing", "announcement", "promotion", "campaign",
	"이벤트", "에어드랍", "에어드롭", "상장", "공지", "프로모션", "출시 예정",
}

var faqKeywords = []string{
	"withdraw", "withdrawal", "deposit", "fee", "fees", "limit", "kyc",
	"verification", "verify", "account", "wallet", "transfer", "otp",
	"sign up", "register", "login", "staking", "referral",
	"출금", "입금", "수수료", "한도", "인증", "계정", "계좌", "지갑", "이체",
	"송금", "가입", "회원가입", "로그인", "스테이킹", "보안", "레퍼럴", "신분증",
}

// faqIntentKeywords is the narrower set that vetoes transaction-hash
// detection: a hash-looking substring inside a procedural question must
// not hijack routing.
var faqIntentKeywords = []string{
	"withdraw", "withdrawal", "deposit", "how do i", "how to",
	"출금", "입금", "방법", "어떻게",
}

var anaphoraKeywords = []string{
	"that", "this", "it", "those", "these", "the one", "above",
	"그거", "이거", "저거", "그것", "이것", "아까", "방금", "위에", "그건",
}

// containsAny matches Korean keywords as substrings (no spacing between
// particles) but English keywords only on word boundaries, so "hi" does
// not fire inside "which" or "it" inside "deposit".
func containsAny(message string, keywords []string) bool {
	lowered := strings.ToLower(message)
	for _, kw := range keywords {
		if isASCIIWord(kw) {
			if containsWord(lowered, kw) {
				return true
			}
			continue
		}
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}

func isASCIIWord(kw string) bool {
	for i := 0; i < len(kw); i++ {
		if kw[i] >= 0x80 {
			return false
		}
	}
	return true
}

func containsWord(lowered, kw string) bool {
	for from := 0; ; {
		i := strings.Index(lowered[from:], kw)
		if i == -1 {
			return false
		}
		i += from
		end := i + len(kw)
		if (i == 0 || !isLetterByte(lowered[i-1])) &&
			(end == len(lowered) || !isLetterByte(lowered[end])) {
			return true
		}
		from = i + 1
	}
}

func isLetterByte(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func HasGreeting(message string) bool { return containsAny(message, greetingKeywords) }

// IsPureGreeting reports whether the message is a short standalone
// greeting rather than a greeting followed by a real question.
func IsPureGreeting(message string) bool {
	trimmed := strings.TrimSpace(message)
	if len([]rune(trimmed)) > 20 {
		return false
	}
	return HasGreeting(trimmed)
}

func HasPriceIntent(message string) bool    { return containsAny(message, priceKeywords) }
func HasDateTimeIntent(message string) bool { return containsAny(message, dateTimeKeywords) }
func HasEventIntent(message string) bool    { return containsAny(message, eventKeywords) }
func HasFAQKeyword(message string) bool     { return containsAny(message, faqKeywords) }
func HasFAQIntent(message string) bool      { return containsAny(message, faqIntentKeywords) }
func HasAnaphora(message string) bool       { return containsAny(message, anaphoraKeywords) }

// HasIndependentTopic reports whether the message carries a topic keyword
// of its own, i.e. it can be classified without pulling in the previous
// user turn.
func HasIndependentTopic(message string) bool {
	return HasPriceIntent(message) || HasDateTimeIntent(message) ||
		HasEventIntent(message) || HasFAQKeyword(message)
}
