package dom

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm/wcx"
)

func greeting() *wcx.Definition {
	return &wcx.Definition{
		Name:     "hello-card",
		Props:    []string{"name"},
		Template: wcx.MustTemplate(`<p>Hello ${props.name}</p>`),
	}
}

func TestBuilderRegistersIntoDocument(t *testing.T) {
	doc := NewDocument()
	b := wcx.New(wcx.WithElements(doc.CustomElements()))

	_, err := b.Define(greeting())
	require.NoError(t, err)
	assert.Equal(t, []string{"hello-card"}, doc.CustomElements().Names())

	el := doc.CreateElement("hello-card")
	require.True(t, el.Upgraded())
	require.NoError(t, el.SetAttribute("name", "Ada"))
	assert.Empty(t, el.RenderLog(), "detached element must not render")

	require.NoError(t, doc.Append(el))
	assert.Equal(t, "<style></style><p>Hello Ada</p>", el.ShadowHTML())

	require.NoError(t, el.SetAttribute("name", "Grace"))
	require.NoError(t, el.SetAttribute("name", "Grace"))
	assert.Len(t, el.RenderLog(), 2)
	assert.Contains(t, el.ShadowHTML(), "Hello Grace")
}

func TestDefineTwiceFails(t *testing.T) {
	doc := NewDocument()
	class := wcx.NewElementClass(greeting())
	require.NoError(t, doc.CustomElements().Define("hello-card", class))
	assert.Error(t, doc.CustomElements().Define("hello-card", class))
}

func TestRegisterIsIdempotent(t *testing.T) {
	doc := NewDocument()
	b := wcx.New(wcx.WithElements(doc.CustomElements()))
	def := greeting()

	ok, err := b.Register(def)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = b.Register(def)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDefineUpgradesConnectedElements(t *testing.T) {
	doc := NewDocument()
	el := doc.CreateElement("hello-card")
	require.NoError(t, el.SetAttribute("name", "Lin"))
	require.NoError(t, doc.Append(el))
	assert.False(t, el.Upgraded())

	require.NoError(t, doc.CustomElements().Define("hello-card", wcx.NewElementClass(greeting())))
	assert.True(t, el.Upgraded())
	assert.Contains(t, el.ShadowHTML(), "Hello Lin")
}

func TestRemoveAttribute(t *testing.T) {
	doc := NewDocument()
	require.NoError(t, doc.CustomElements().Define("hello-card", wcx.NewElementClass(greeting())))
	el := doc.CreateElement("hello-card")
	require.NoError(t, el.SetAttribute("name", "X"))
	require.NoError(t, doc.Append(el))

	require.NoError(t, el.RemoveAttribute("name"))
	require.NoError(t, el.RemoveAttribute("name"))
	_, ok := el.Attribute("name")
	assert.False(t, ok)
	assert.Equal(t, "<style></style><p>Hello </p>", el.ShadowHTML())
	assert.Len(t, el.RenderLog(), 2)
}

func TestUnobservedAttributeDoesNotRender(t *testing.T) {
	doc := NewDocument()
	require.NoError(t, doc.CustomElements().Define("hello-card", wcx.NewElementClass(greeting())))
	el := doc.CreateElement("hello-card")
	require.NoError(t, doc.Append(el))
	require.NoError(t, el.SetAttribute("class", "big"))
	assert.Len(t, el.RenderLog(), 1)
}

func TestImportIntoDocument(t *testing.T) {
	doc := NewDocument()
	b := wcx.New(wcx.WithElements(doc.CustomElements()))

	src := wcx.ClassifySource(`{"name":"json-card","props":["v"],"template":"<b>${props.v}</b>"}`)
	def, err := b.Import(context.Background(), src, wcx.ImportOptions{})
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", def.Version)

	el := doc.CreateElement("json-card")
	require.NoError(t, el.SetAttribute("v", "7"))
	require.NoError(t, doc.Append(el))
	assert.Equal(t, "<style></style><b>7</b>", el.ShadowHTML())
	assert.Len(t, doc.Elements(), 1)
}

func TestAppendForeignElement(t *testing.T) {
	a, b := NewDocument(), NewDocument()
	el := a.CreateElement("x-y")
	assert.Error(t, b.Append(el))
}
