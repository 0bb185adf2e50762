package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signup struct {
	Username string `json:"username" validate:"required,min=3,max=30,username"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,maxbytes=72"`
}

type warning struct {
	Message string `json:"warning_message" validate:"notblank"`
	Hours   int    `json:"mute_hours" validate:"gte=1"`
}

func TestStruct_Valid(t *testing.T) {
	assert.NoError(t, Struct(signup{Username: "ayse_92", Email: "ayse@example.com", Password: "gizli123"}))
}

func TestStruct_Messages(t *testing.T) {
	err := Struct(signup{Username: "a!", Email: "not-an-email", Password: "123"})
	require.Error(t, err)

	var verrs *Errors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "Kullanıcı adı en az 3 karakter olmalıdır", verrs.Fields["username"])
	assert.Equal(t, "Geçerli bir e-posta adresi girin", verrs.Fields["email"])
	assert.Equal(t, "Şifre en az 6 karakter olmalıdır", verrs.Fields["password"])
	assert.Equal(t, "Kullanıcı adı en az 3 karakter olmalıdır", err.Error())
}

func TestStruct_CustomTags(t *testing.T) {
	err := Struct(signup{Username: "ayşe.k", Email: "ayse@example.com", Password: "gizli123"})
	var verrs *Errors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "Kullanıcı adı sadece harf, rakam ve alt çizgi içerebilir", verrs.Fields["username"])

	err = Struct(warning{Message: "   ", Hours: 0})
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "Uyarı mesajı boş olamaz", verrs.Fields["warning_message"])
	assert.Equal(t, "Susturma süresi en az 1 olmalıdır", verrs.Fields["mute_hours"])
}

func TestStruct_MaxBytes(t *testing.T) {
	assert.NoError(t, Struct(signup{Username: "ayse_92", Email: "ayse@example.com", Password: strings.Repeat("ğ", 36)}))

	err := Struct(signup{Username: "ayse_92", Email: "ayse@example.com", Password: strings.Repeat("ğ", 40)})
	var verrs *Errors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "Şifre en fazla 72 bayt olabilir", verrs.Fields["password"])
}

func TestStruct_Required(t *testing.T) {
	err := Struct(signup{})
	var verrs *Errors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "Kullanıcı adı alanı zorunludur", verrs.Fields["username"])
	assert.Len(t, verrs.Fields, 3)
}
