package i18n

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func loadedBundle(t *testing.T) *Bundle {
	t.Helper()
	b := NewBundle(testLogger)
	if err := LoadFromEmbedFS(b, testLogger); err != nil {
		t.Fatalf("LoadFromEmbedFS() ошибка: %v", err)
	}
	return b
}

func TestCatalogsComplete(t *testing.T) {
	b := loadedBundle(t)
	en := b.Keys("en")
	if len(en) == 0 {
		t.Fatal("английский каталог пуст")
	}
	for _, lang := range Languages {
		if got := b.Keys(lang); !slices.Equal(got, en) {
			t.Errorf("ключи каталога %s не совпадают с en", lang)
		}
	}
}

func TestTranslate(t *testing.T) {
	b := NewBundle(testLogger)
	_ = b.LoadMessages("en", []byte(`{"a":"A","only_en":"E","n":"%d days"}`))
	_ = b.LoadMessages("ru", []byte(`{"a":"А","n":"%d дн."}`))

	tests := []struct {
		lang, key, expected string
	}{
		{"ru", "a", "А"},
		{"en", "a", "A"},
		{"ru", "only_en", "E"},
		{"ru", "missing", "missing"},
		{"de", "a", "A"},
	}
	for _, tt := range tests {
		if got := b.Translate(tt.lang, tt.key); got != tt.expected {
			t.Errorf("Translate(%s, %s) = %q, ожидается %q", tt.lang, tt.key, got, tt.expected)
		}
	}

	if got := b.Translatef("ru", "n", 5); got != "5 дн." {
		t.Errorf("Translatef = %q", got)
	}
}

func TestLoadMessages_InvalidJSON(t *testing.T) {
	b := NewBundle(testLogger)
	if err := b.LoadMessages("en", []byte(`{`)); err == nil {
		t.Error("ожидалась ошибка разбора")
	}
}

func TestMatchLanguage(t *testing.T) {
	tests := []struct {
		header   string
		expected string
	}{
		{"ru-RU,ru;q=0.9,en;q=0.8", "ru"},
		{"en-US,en;q=0.9", "en"},
		{"de-DE", "en"},
		{"", "en"},
	}
	for _, tt := range tests {
		if got := MatchLanguage(tt.header); got != tt.expected {
			t.Errorf("MatchLanguage(%q) = %s, ожидается %s", tt.header, got, tt.expected)
		}
	}
}

func TestMiddleware(t *testing.T) {
	tests := []struct {
		name     string
		cookie   string
		accept   string
		expected string
	}{
		{"cookie важнее заголовка", "ru", "en-US", "ru"},
		{"неизвестный cookie игнорируется", "fr", "ru", "ru"},
		{"заголовок", "", "ru-RU", "ru"},
		{"по умолчанию", "", "", "en"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			h := Middleware()(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
				got = LangFromContext(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/ui/rooms", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: LangCookieName, Value: tt.cookie})
			}
			if tt.accept != "" {
				req.Header.Set("Accept-Language", tt.accept)
			}
			h.ServeHTTP(httptest.NewRecorder(), req)

			if got != tt.expected {
				t.Errorf("язык = %s, ожидается %s", got, tt.expected)
			}
		})
	}
}

func TestLangFromContext_Default(t *testing.T) {
	if got := LangFromContext(context.Background()); got != DefaultLanguage {
		t.Errorf("LangFromContext() = %s, ожидается %s", got, DefaultLanguage)
	}
}
