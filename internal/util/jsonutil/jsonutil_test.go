package jsonutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractObject(t *testing.T) {
	obj, err := ExtractObject(`Sure! Here is the config: {"a":1,"b":{"c":2}} hope it helps`)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1,"b":{"c":2}}`, obj)
}

func TestExtractObjectBracesInStrings(t *testing.T) {
	obj, err := ExtractObject(`{"cmd":"echo {not a block}","n":1}`)
	require.NoError(t, err)
	assert.Equal(t, `{"cmd":"echo {not a block}","n":1}`, obj)
}

func TestExtractObjectNone(t *testing.T) {
	_, err := ExtractObject("plain prose without structure")
	assert.ErrorIs(t, err, ErrNoJSONObject)

	_, err = ExtractObject(`{"unbalanced":`)
	assert.ErrorIs(t, err, ErrNoJSONObject)
}

func TestUnmarshalFlex(t *testing.T) {
	type out struct {
		Name string `json:"name"`
	}

	var direct out
	require.NoError(t, UnmarshalFlex([]byte(`{"name":"web"}`), &direct))
	assert.Equal(t, "web", direct.Name)

	var wrapped out
	require.NoError(t, UnmarshalFlex([]byte("The answer is {\"name\":\"web\"}!"), &wrapped))
	assert.Equal(t, "web", wrapped.Name)

	var none out
	assert.Error(t, UnmarshalFlex([]byte("no json here"), &none))
}

func TestStripCodeFences(t *testing.T) {
	assert.Equal(t, "API_KEY=", StripCodeFences("```\nAPI_KEY=\n```"))
	assert.Equal(t, "API_KEY=", StripCodeFences("```env\nAPI_KEY=\n```"))
	assert.Equal(t, "API_KEY=", StripCodeFences("  API_KEY=\n"))
}

func TestMarshalNoEscape(t *testing.T) {
	out, err := MarshalNoEscape(map[string]string{"html": "<h1>&</h1>"})
	require.NoError(t, err)
	assert.Equal(t, `{"html":"<h1>&</h1>"}`, string(out))
}
