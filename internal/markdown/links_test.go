package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractLinks(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []Link
	}{
		{
			name: "inline image and autolink",
			body: "Read [handlers](./handlers.md#middleware).\n\n![Flow](/images/flow.png)\n\n<https://docs.rs/volga>\n",
			want: []Link{
				{Kind: LinkKindInline, Destination: "./handlers.md#middleware"},
				{Kind: LinkKindImage, Destination: "/images/flow.png"},
				{Kind: LinkKindAuto, Destination: "https://docs.rs/volga"},
			},
		},
		{
			name: "reference definitions come last sorted by label",
			body: "See [routing][r] and [tls][t].\n\n[t]: ./advanced/tls.md\n[r]: ./route-params.md\n",
			want: []Link{
				{Kind: LinkKindInline, Destination: "./route-params.md"},
				{Kind: LinkKindInline, Destination: "./advanced/tls.md"},
				{Kind: LinkKindReferenceDefinition, Destination: "./route-params.md"},
				{Kind: LinkKindReferenceDefinition, Destination: "./advanced/tls.md"},
			},
		},
		{
			name: "code is skipped",
			body: "Use `[x](./inline.md)`.\n\n```rust\nlet s = \"[y](./fence.md)\";\n```\n\nThen [z](./real.md).\n",
			want: []Link{{Kind: LinkKindInline, Destination: "./real.md"}},
		},
		{
			name: "no links",
			body: "# Quick Start\n\nPlain text.\n",
			want: []Link{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractLinks([]byte(tt.body))
			if len(tt.want) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}
