package i18n

import (
	"sort"
	"strings"
)

// Translator retrieves localized messages for Issue codes.
// data provides optional metadata to embed in the message (for example,
// "raw" or "valid").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	msg := t.lookup(code)
	if len(data) == 0 {
		return msg
	}
	return fill(msg, data)
}

// fill replaces {name} placeholders from data in key order, so a value that
// itself looks like a placeholder renders the same way every time.
func fill(msg string, data map[string]string) string {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		msg = strings.ReplaceAll(msg, "{"+k+"}", data[k])
	}
	return msg
}

func (t dictTranslator) lookup(code string) string {
	switch t.lang {
	case "ja":
		switch code {
		case "schema_definition":
			return "スキーマ定義が不正です"
		case "include_cycle":
			return "インクルードが循環しています"
		case "unknown_wire_type":
			return "未知のワイヤ型です"
		case "invalid_storage":
			return "格納型が読み取り型と一致しません"
		case "negative_length":
			return "長さが負です"
		case "length_unresolved":
			return "長さを解決できません"
		case "overrun":
			return "入力の終端を超えて読み取ろうとしました"
		case "non_finite":
			return "有限でない浮動小数点数です"
		case "size_mismatch":
			return "読み取りサイズが一致しません"
		case "unknown_enum":
			return "未知の列挙値です"
		case "verify_failed":
			return "データの検証に失敗しました"
		case "discriminator_unknown":
			return "未知のサブタイプです"
		case "max_depth":
			return "入れ子が深すぎます"
		case "missing_type":
			return "型定義が見つかりません"
		case "ordering_conflict":
			return "スニペットの順序が矛盾しています"
		case "column_mismatch":
			return "列数が一致しません"
		case "not_dumpable":
			return "ダンプできない値です"
		case "format_error":
			return "生成コードの整形に失敗しました"
		case "invalid_type":
			return "型が不正です"
		}
	default: // "en"
		switch code {
		case "schema_definition":
			return "invalid schema definition"
		case "include_cycle":
			return "include cycle"
		case "unknown_wire_type":
			return "unknown wire type"
		case "invalid_storage":
			return "storage type does not match read type"
		case "negative_length":
			return "negative length"
		case "length_unresolved":
			return "length cannot be resolved"
		case "overrun":
			return "read past end of input"
		case "non_finite":
			return "non-finite float"
		case "size_mismatch":
			return "byte count mismatch"
		case "unknown_enum":
			return "unknown enum value"
		case "verify_failed":
			return "data verification failed"
		case "discriminator_unknown":
			return "unknown subtype"
		case "max_depth":
			return "nesting too deep"
		case "missing_type":
			return "missing type definition"
		case "ordering_conflict":
			return "snippet ordering conflict"
		case "column_mismatch":
			return "column count mismatch"
		case "not_dumpable":
			return "value is not dumpable"
		case "format_error":
			return "generated code does not format"
		case "invalid_type":
			return "invalid type"
		}
	}
	return code
}

var currentTranslator Translator = dictTranslator{lang: "en"}

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	currentTranslator = dictTranslator{lang: lang}
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		currentTranslator = dictTranslator{lang: "en"}
		return
	}
	currentTranslator = tr
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string { return currentTranslator.Message(code, data) }
