package catalog

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/CarLinkRental/CarLinkRental/internal/common/errs"
)

var (
	phonePattern        = regexp.MustCompile(`^\+\d{7,15}$`)
	registrationPattern = regexp.MustCompile(`^[A-Z0-9]{6,12}$`)
)

// NormalizeName 名称规范化：去掉首尾空白，按空白分词后逐词首字母大写、
// 其余小写。唯一性检查一律针对规范化后的值。
// 例：" san jose " -> "San Jose"。
func NormalizeName(raw string) string {
	words := strings.Fields(raw)
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + strings.ToLower(w[size:])
	}
	return strings.Join(words, " ")
}

// NormalizePhone 电话规范化：仅保留数字和开头的 '+'，
// 结果必须匹配 ^\+\d{7,15}$。
func NormalizePhone(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	var b strings.Builder
	if strings.HasPrefix(raw, "+") {
		b.WriteByte('+')
	}
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	normalized := b.String()
	if !phonePattern.MatchString(normalized) {
		return "", &errs.ValidationError{Field: "phone_number", Reason: "must normalize to +<7..15 digits>"}
	}
	return normalized, nil
}

// NormalizeRegistration 车牌登记号规范化：去空白、转大写，
// 必须匹配 ^[A-Z0-9]{6,12}$。
func NormalizeRegistration(raw string) (string, error) {
	normalized := strings.ToUpper(strings.TrimSpace(raw))
	if !registrationPattern.MatchString(normalized) {
		return "", &errs.ValidationError{Field: "registration_number", Reason: "must match [A-Z0-9]{6,12}"}
	}
	return normalized, nil
}
