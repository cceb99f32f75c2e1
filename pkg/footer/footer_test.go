package footer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRenderIncludesLinksAndMutedStaffEntrance(testingT *testing.T) {
	html, renderErr := Render(Config{
		ElementID:  "site-footer",
		BaseClass:  "footer",
		BrandText:  "Taha Barakat",
		Year:       2026,
		LinkClass:  "footer-link",
		MutedClass: "footer-link-muted",
		Links: []Link{
			{Label: "Home", URL: "/"},
			{Label: "Admin", URL: "/admin/login", Muted: true},
		},
	})
	require.NoError(testingT, renderErr)

	rendered := string(html)
	require.Contains(testingT, rendered, `id="site-footer"`)
	require.Contains(testingT, rendered, "&copy; 2026 Taha Barakat")
	require.Contains(testingT, rendered, `<a class="footer-link" href="/">Home</a>`)
	require.Contains(testingT, rendered, `<a class="footer-link-muted" href="/admin/login">Admin</a>`)
}

func TestRenderEscapesBrandText(testingT *testing.T) {
	html, renderErr := Render(Config{BrandText: "<script>alert(1)</script>"})
	require.NoError(testingT, renderErr)
	require.False(testingT, strings.Contains(string(html), "<script>"))
}
