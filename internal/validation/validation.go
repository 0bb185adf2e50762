// Package validation checks request payloads with go-playground/validator and
// renders failures as Turkish messages keyed by JSON field name.
package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/locales/tr"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	tr_translations "github.com/go-playground/validator/v10/translations/tr"
)

var (
	validate   *validator.Validate
	translator ut.Translator

	usernameTag   = "username"
	usernameRegex = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
	notBlankTag   = "notblank"
	maxBytesTag   = "maxbytes"
)

// labels are the Turkish display names of request fields.
var labels = map[string]string{
	"username":          "Kullanıcı adı",
	"email":             "E-posta",
	"password":          "Şifre",
	"university":        "Üniversite",
	"faculty":           "Fakülte",
	"department":        "Bölüm",
	"email_or_username": "E-posta veya kullanıcı adı",
	"title":             "Başlık",
	"content":           "İçerik",
	"category":          "Kategori",
	"suspend_days":      "Askı süresi",
	"reason":            "Sebep",
	"mute_hours":        "Susturma süresi",
	"warning_message":   "Uyarı mesajı",
}

func init() {
	validate = validator.New()

	_tr := tr.New()
	uni := ut.New(_tr, _tr)
	translator, _ = uni.GetTranslator("tr")
	_ = tr_translations.RegisterDefaultTranslations(validate, translator)

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation(usernameTag, func(fl validator.FieldLevel) bool {
		return usernameRegex.MatchString(fl.Field().String())
	})
	_ = validate.RegisterValidation(notBlankTag, func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	// maxbytes bounds the encoded length, which max does not for non-ASCII text.
	_ = validate.RegisterValidation(maxBytesTag, func(fl validator.FieldLevel) bool {
		limit, err := strconv.Atoi(fl.Param())
		if err != nil {
			return false
		}
		return len(fl.Field().String()) <= limit
	})

	registerTranslation("required", "{0} alanı zorunludur")
	registerTranslation(notBlankTag, "{0} boş olamaz")
	registerTranslation("email", "Geçerli bir e-posta adresi girin")
	registerTranslation(usernameTag, "{0} sadece harf, rakam ve alt çizgi içerebilir")
	registerSizedTranslation("min", "{0} en az {1} karakter olmalıdır", "{0} en az {1} olmalıdır")
	registerSizedTranslation("gte", "{0} en az {1} karakter olmalıdır", "{0} en az {1} olmalıdır")
	registerSizedTranslation("max", "{0} en fazla {1} karakter olabilir", "{0} en fazla {1} olabilir")
	registerSizedTranslation("lte", "{0} en fazla {1} karakter olabilir", "{0} en fazla {1} olabilir")
	registerSizedTranslation(maxBytesTag, "{0} en fazla {1} bayt olabilir", "{0} en fazla {1} bayt olabilir")
}

func label(fe validator.FieldError) string {
	if l, ok := labels[fe.Field()]; ok {
		return l
	}
	return fe.Field()
}

func registerTranslation(tag, text string) {
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, label(fe))
			return s
		},
	)
}

// registerSizedTranslation registers separate texts for string lengths and numeric bounds.
func registerSizedTranslation(tag, stringText, numberText string) {
	stringKey, numberKey := tag+"-string", tag+"-number"
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error {
			if err := t.Add(stringKey, stringText, true); err != nil {
				return err
			}
			return t.Add(numberKey, numberText, true)
		},
		func(t ut.Translator, fe validator.FieldError) string {
			key := numberKey
			if fe.Kind() == reflect.String {
				key = stringKey
			}
			s, _ := t.T(key, label(fe), fe.Param())
			return s
		},
	)
}

// Errors holds Turkish messages keyed by JSON field name.
type Errors struct {
	Fields map[string]string
	first  string
}

// Error returns the message of the first failing field in struct order.
func (e *Errors) Error() string {
	return e.Fields[e.first]
}

// Struct validates v and returns *Errors when any rule fails.
func Struct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := &Errors{Fields: make(map[string]string, len(verrs))}
	for _, fe := range verrs {
		if _, exists := out.Fields[fe.Field()]; exists {
			continue
		}
		if out.first == "" {
			out.first = fe.Field()
		}
		out.Fields[fe.Field()] = fe.Translate(translator)
	}
	return out
}
