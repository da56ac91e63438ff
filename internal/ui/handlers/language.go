// language.go — переключение языка UI.
package handlers

import (
	"net/http"
	"net/url"
	"time"

	"github.com/tran-matt/room-doc-tracker/internal/ui/i18n"
)

// langCookieMaxAge — срок хранения выбранного языка.
const langCookieMaxAge = 365 * 24 * time.Hour

// HandleSetLanguage обрабатывает POST /ui/set-language.
// Сохраняет язык (lang=en|ru, иначе язык по умолчанию) в cookie и
// возвращает на страницу, с которой пришёл запрос.
func HandleSetLanguage(w http.ResponseWriter, r *http.Request) {
	lang := r.FormValue("lang")
	if !i18n.IsSupported(lang) {
		lang = i18n.DefaultLanguage
	}

	http.SetCookie(w, &http.Cookie{
		Name:     i18n.LangCookieName,
		Value:    lang,
		Path:     "/",
		MaxAge:   int(langCookieMaxAge.Seconds()),
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(langCookieMaxAge),
	})

	http.Redirect(w, r, backTo(r), http.StatusSeeOther)
}

// backTo возвращает путь страницы из Referer. Ссылки на другие хосты
// не принимаются.
func backTo(r *http.Request) string {
	const fallback = "/ui/rooms"

	ref, err := url.Parse(r.Header.Get("Referer"))
	if err != nil || ref.Path == "" || (ref.Host != "" && ref.Host != r.Host) {
		return fallback
	}
	if ref.RawQuery != "" {
		return ref.Path + "?" + ref.RawQuery
	}
	return ref.Path
}
