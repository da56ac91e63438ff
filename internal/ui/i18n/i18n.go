// Пакет i18n — интернационализация UI учёта документов.
// Каталоги переводов — плоские JSON-файлы locales/<lang>.json.
// Язык запроса определяет Middleware: cookie "lang" → Accept-Language → "en".
package i18n

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"golang.org/x/text/language"
)

// DefaultLanguage — язык по умолчанию и запасной каталог.
const DefaultLanguage = "en"

// Languages — коды поддерживаемых языков (порядок совпадает с SupportedTags).
var Languages = []string{"en", "ru"}

var (
	// SupportedTags — теги поддерживаемых языков для сопоставления Accept-Language.
	SupportedTags = []language.Tag{
		language.English,
		language.Russian,
	}

	matcher = language.NewMatcher(SupportedTags)
)

type contextKey string

const contextKeyLang contextKey = "i18n_lang"

// Bundle — каталоги переводов всех языков.
type Bundle struct {
	mu       sync.RWMutex
	catalogs map[string]map[string]string // lang → key → translation
	logger   *slog.Logger
}

// NewBundle создаёт пустой Bundle.
func NewBundle(logger *slog.Logger) *Bundle {
	return &Bundle{
		catalogs: make(map[string]map[string]string),
		logger:   logger.With(slog.String("component", "i18n")),
	}
}

// LoadMessages загружает JSON-каталог {"key": "translation"} для языка.
func (b *Bundle) LoadMessages(lang string, data []byte) error {
	var messages map[string]string
	if err := json.Unmarshal(data, &messages); err != nil {
		return fmt.Errorf("i18n: ошибка парсинга каталога %s: %w", lang, err)
	}

	b.mu.Lock()
	b.catalogs[lang] = messages
	b.mu.Unlock()

	b.logger.Debug("Каталог загружен",
		slog.String("lang", lang),
		slog.Int("keys", len(messages)),
	)
	return nil
}

// Translate возвращает перевод ключа. Если ключа нет в каталоге языка,
// используется английский, затем сам ключ.
func (b *Bundle) Translate(lang, key string) string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if msg, ok := b.catalogs[lang][key]; ok {
		return msg
	}
	if msg, ok := b.catalogs[DefaultLanguage][key]; ok {
		return msg
	}
	return key
}

// Translatef — Translate с подстановкой аргументов.
// Формат-строки приходят из каталогов во время выполнения.
func (b *Bundle) Translatef(lang, key string, args ...any) string {
	msg := b.Translate(lang, key)
	if len(args) == 0 {
		return msg
	}
	return formatFunc(msg, args...)
}

// Keys возвращает ключи каталога языка (для проверки полноты переводов).
func (b *Bundle) Keys(lang string) []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	keys := make([]string, 0, len(b.catalogs[lang]))
	for k := range b.catalogs[lang] {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// formatFunc — fmt.Sprintf через переменную: go vet не проверяет
// формат-строки, загружаемые из каталогов.
//
//nolint:govet // формат-строки из JSON
var formatFunc = fmt.Sprintf

// WithLang помещает язык в контекст.
func WithLang(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, contextKeyLang, lang)
}

// LangFromContext извлекает язык из контекста. По умолчанию "en".
func LangFromContext(ctx context.Context) string {
	if lang, ok := ctx.Value(contextKeyLang).(string); ok && lang != "" {
		return lang
	}
	return DefaultLanguage
}

// IsSupported сообщает, поддерживается ли код языка.
func IsSupported(lang string) bool {
	return slices.Contains(Languages, lang)
}

// MatchLanguage определяет лучший поддерживаемый язык по Accept-Language.
func MatchLanguage(acceptLanguage string) string {
	_, idx := language.MatchStrings(matcher, acceptLanguage)
	return Languages[idx]
}
