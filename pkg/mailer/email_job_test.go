package mailer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderWelcome(t *testing.T) {
	job := &EmailJob{
		To:       "alice@example.com",
		Template: TemplateWelcome,
		Data:     map[string]any{"FullName": "Alice Liddell", "Username": "alice"},
	}

	subject, text, html, err := Render(job)
	require.NoError(t, err)
	assert.Equal(t, "Welcome to StreamHive", subject)
	assert.Contains(t, text, "Alice Liddell")
	assert.Contains(t, text, "@alice")
	assert.Contains(t, html, "Alice Liddell")
	assert.Contains(t, html, "@alice")
}

func TestRenderLiteral(t *testing.T) {
	job := &EmailJob{To: "x@example.com", Subject: "s", Text: "t", HTML: "<p>h</p>"}

	subject, text, html, err := Render(job)
	require.NoError(t, err)
	assert.Equal(t, "s", subject)
	assert.Equal(t, "t", text)
	assert.Equal(t, "<p>h</p>", html)
}

func TestRenderUnknownTemplate(t *testing.T) {
	_, _, _, err := Render(&EmailJob{Template: "nope"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope")
}

func TestRenderEscapesData(t *testing.T) {
	job := &EmailJob{
		Template: TemplateWelcome,
		Data:     map[string]any{"FullName": "<script>x</script>", "Username": "alice"},
	}

	_, _, html, err := Render(job)
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>")
}
