// Пакет static — встроенные статические ресурсы UI: таблица стилей,
// сценарий диалогов и изображение-заглушка для документов без миниатюры.
package static

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed css/app.css js/app.js img/placeholder.svg
var content embed.FS

// FileSystem возвращает http.FileSystem для раздачи /static/*.
func FileSystem() http.FileSystem {
	return http.FS(content)
}

// FS возвращает fs.FS для прямого доступа к встроенным файлам.
func FS() fs.FS {
	return content
}
