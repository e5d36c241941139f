package i18n

import (
	"strings"
	"sync"

	"golang.org/x/text/language"
)

// Translator retrieves localized messages for violation kinds and decode
// issue codes. data provides optional parameters such as "min", "max",
// "got", "enum" or "target", substituted for {name} placeholders.
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

var dictionaries = map[string]map[string]string{
	"en": {
		"type_mismatch":            "expected a {expected} value",
		"enum_violation":           "{got} is not a valid {enum}",
		"range_violation":          "{got} is outside the range {min}..{max}",
		"required_field_missing":   "required field is missing",
		"dangling_reference":       "no entity named {target}",
		"structural_edit_rejected": "structural edit rejected",
		"duplicate_name":           "name {name} is already used",
		"pattern_violation":        "{got} does not match the expected format",
		"invalid_type":             "invalid type",
		"unknown_key":              "unknown key",
		"duplicate_key":            "duplicate key",
		"parse_error":              "parse error",
		"truncated":                "truncated",
	},
	"ja": {
		"type_mismatch":            "{expected} 型の値が必要です",
		"enum_violation":           "{got} は {enum} として不正です",
		"range_violation":          "{got} は範囲 {min}..{max} の外です",
		"required_field_missing":   "必須項目が未入力です",
		"dangling_reference":       "エンティティ {target} が存在しません",
		"structural_edit_rejected": "構造の変更は許可されていません",
		"duplicate_name":           "名前 {name} は既に使われています",
		"pattern_violation":        "{got} の形式が不正です",
		"invalid_type":             "型が不正です",
		"unknown_key":              "未知のキーです",
		"duplicate_key":            "キーが重複しています",
		"parse_error":              "解析エラー",
		"truncated":                "打ち切られました",
	},
}

func (t dictTranslator) Message(code string, data map[string]string) string {
	msg, ok := dictionaries[t.lang][code]
	if !ok {
		return code
	}
	if len(data) == 0 || !strings.Contains(msg, "{") {
		return msg
	}
	pairs := make([]string, 0, len(data)*2)
	for k, v := range data {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(msg)
}

var supported = []language.Tag{language.English, language.Japanese}

var matcher = language.NewMatcher(supported)

var (
	mu                           = sync.RWMutex{}
	currentTranslator Translator = dictTranslator{lang: "en"}
)

// Match returns the supported language closest to lang ("en" or "ja").
// Unparseable input falls back to "en".
func Match(lang string) string {
	tag, err := language.Parse(lang)
	if err != nil {
		return "en"
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return "en"
	}
	base, _ := supported[idx].Base()
	return base.String()
}

// SetLanguage switches the built-in Translator language. Any BCP 47 tag is
// accepted and matched against the supported languages ("ja-JP" -> "ja").
func SetLanguage(lang string) {
	mu.Lock()
	defer mu.Unlock()
	currentTranslator = dictTranslator{lang: Match(lang)}
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	mu.Lock()
	defer mu.Unlock()
	if tr == nil {
		currentTranslator = dictTranslator{lang: "en"}
		return
	}
	currentTranslator = tr
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string {
	mu.RLock()
	tr := currentTranslator
	mu.RUnlock()
	return tr.Message(code, data)
}
