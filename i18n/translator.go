// Package i18n localizes the messages attached to runtime parse issues.
package i18n

import "sync/atomic"

// Translator retrieves localized messages for issue codes. data carries
// optional details such as "expected" or "got".
type Translator interface {
	Message(code string, data map[string]string) string
}

var messages = map[string]map[string]string{
	"en": {
		"invalid_type":          "invalid type",
		"required":              "required field missing",
		"duplicate_key":         "duplicate key",
		"discriminator_missing": "discriminator missing",
		"discriminator_unknown": "unknown discriminator",
		"parse_error":           "parse error",
		"overflow":              "number out of range",
		"truncated":             "unexpected end of input",
		"invalid_number":        "invalid number",
	},
	"ja": {
		"invalid_type":          "型が不正です",
		"required":              "必須フィールドが不足しています",
		"duplicate_key":         "キーが重複しています",
		"discriminator_missing": "識別子がありません",
		"discriminator_unknown": "未知の識別子です",
		"parse_error":           "解析エラー",
		"overflow":              "数値が範囲外です",
		"truncated":             "入力が途中で終わっています",
		"invalid_number":        "数値が不正です",
	},
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, _ map[string]string) string {
	if msg, ok := messages[t.lang][code]; ok {
		return msg
	}
	return code
}

type holder struct{ tr Translator }

var current atomic.Pointer[holder]

func init() { current.Store(&holder{dictTranslator{lang: "en"}}) }

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if _, ok := messages[lang]; !ok {
		lang = "en"
	}
	current.Store(&holder{dictTranslator{lang: lang}})
}

// SetTranslator replaces the Translator implementation; nil restores English.
func SetTranslator(tr Translator) {
	if tr == nil {
		tr = dictTranslator{lang: "en"}
	}
	current.Store(&holder{tr})
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string { return current.Load().tr.Message(code, data) }
