// validation.go — валидация запросов JSON API по встроенному OpenAPI контракту.
package middleware

import (
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/gorillamux"

	apierrors "github.com/tran-matt/room-doc-tracker/internal/api/errors"
)

// OpenAPIValidator проверяет параметры и JSON-тела запросов по контракту.
// Запросы к путям вне контракта пропускаются без проверки.
// Тела multipart/form-data не проверяются: загрузка файла читается потоково.
type OpenAPIValidator struct {
	router routers.Router
	logger *slog.Logger
}

// NewOpenAPIValidator создаёт валидатор по загруженному контракту.
func NewOpenAPIValidator(doc *openapi3.T, logger *slog.Logger) (*OpenAPIValidator, error) {
	router, err := gorillamux.NewRouter(doc)
	if err != nil {
		return nil, err
	}
	return &OpenAPIValidator{
		router: router,
		logger: logger.With(slog.String("component", "openapi_validator")),
	}, nil
}

// Middleware возвращает HTTP middleware валидации.
func (v *OpenAPIValidator) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route, pathParams, err := v.router.FindRoute(r)
			if err != nil {
				// Маршрут вне контракта (openapi.json) или неподдерживаемый метод —
				// решение принимает основной роутер
				next.ServeHTTP(w, r)
				return
			}

			input := &openapi3filter.RequestValidationInput{
				Request:    r,
				PathParams: pathParams,
				Route:      route,
				Options: &openapi3filter.Options{
					AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
					ExcludeRequestBody: isMultipart(r),
					MultiError:         false,
				},
			}

			if err := openapi3filter.ValidateRequest(r.Context(), input); err != nil {
				v.logger.Debug("Запрос не прошёл валидацию",
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.String("error", err.Error()),
				)
				apierrors.ValidationError(w, validationMessage(err))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && strings.HasPrefix(mediaType, "multipart/")
}

// validationMessage формирует краткое сообщение об ошибке валидации.
func validationMessage(err error) string {
	var reqErr *openapi3filter.RequestError
	if errors.As(err, &reqErr) {
		if reqErr.Parameter != nil {
			return "некорректный параметр " + reqErr.Parameter.Name + ": " + reqErr.Reason
		}
		if reqErr.RequestBody != nil {
			var schemaErr *openapi3.SchemaError
			if errors.As(reqErr.Err, &schemaErr) {
				field := strings.Join(schemaErr.JSONPointer(), ".")
				if field != "" {
					return "некорректное поле " + field + ": " + schemaErr.Reason
				}
				return "некорректное тело запроса: " + schemaErr.Reason
			}
			return "некорректное тело запроса"
		}
		return reqErr.Error()
	}
	return err.Error()
}
