// Пакет openapi — встроенный OpenAPI 3 контракт JSON API.
// Контракт используется для валидации запросов и отдаётся клиентам
// на /api/v1/openapi.json.
package openapi

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed openapi.yaml
var specYAML []byte

var (
	loadOnce sync.Once
	loaded   *openapi3.T
	loadErr  error
)

// Spec загружает и валидирует контракт. Результат кэшируется.
func Spec() (*openapi3.T, error) {
	loadOnce.Do(func() {
		loader := openapi3.NewLoader()
		doc, err := loader.LoadFromData(specYAML)
		if err != nil {
			loadErr = fmt.Errorf("ошибка загрузки OpenAPI контракта: %w", err)
			return
		}
		if err := doc.Validate(context.Background()); err != nil {
			loadErr = fmt.Errorf("некорректный OpenAPI контракт: %w", err)
			return
		}
		loaded = doc
	})
	return loaded, loadErr
}

// JSON возвращает контракт в JSON.
func JSON() ([]byte, error) {
	doc, err := Spec()
	if err != nil {
		return nil, err
	}
	return json.Marshal(doc)
}
