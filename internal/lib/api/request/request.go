package request

import (
	"github.com/go-playground/validator/v10"
	"mime"
	"net/http"
	"reflect"
	"strings"
	"sync"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator reports field errors under the json name of the field.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return fld.Name
			}
			return name
		})
	})

	return validate
}

func IsMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "multipart/form-data"
}

// BodyLimit is the largest request body accepted for an upload of maxUploadBytes.
// It leaves room for base64 expansion and multipart framing.
func BodyLimit(maxUploadBytes int64) int64 {
	return maxUploadBytes/3*4 + 4 + 1<<20
}
