package nlu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
		ok   bool
	}{
		{
			name: "bare object",
			raw:  `{"a":1}`,
			want: `{"a":1}`,
			ok:   true,
		},
		{
			name: "object wrapped in prose",
			raw:  "Sure! Here is the JSON you asked for: {\"a\":1} Hope that helps.",
			want: `{"a":1}`,
			ok:   true,
		},
		{
			name: "nested braces",
			raw:  `prefix {"outer":{"inner":2}} suffix`,
			want: `{"outer":{"inner":2}}`,
			ok:   true,
		},
		{
			name: "braces inside string values",
			raw:  `{"note":"use {ice} twice"}`,
			want: `{"note":"use {ice} twice"}`,
			ok:   true,
		},
		{
			name: "array",
			raw:  "```json\n[{\"a\":1},{\"a\":2}]\n```",
			want: `[{"a":1},{"a":2}]`,
			ok:   true,
		},
		{
			name: "array of objects wrapped in prose",
			raw:  "Here are the tasks: [{\"activity\":\"walk\"},{\"activity\":\"stretch\"}] as requested.",
			want: `[{"activity":"walk"},{"activity":"stretch"}]`,
			ok:   true,
		},
		{
			name: "object before array wins",
			raw:  `{"items":[1,2]} trailing [3,4]`,
			want: `{"items":[1,2]}`,
			ok:   true,
		},
		{
			name: "typographic quotes normalized",
			raw:  "{“severity”: “mild”}",
			want: `{"severity": "mild"}`,
			ok:   true,
		},
		{
			name: "no json at all",
			raw:  "I could not determine the symptoms.",
			ok:   false,
		},
		{
			name: "unbalanced",
			raw:  `{"a":1`,
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := extractJSON(tt.raw)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestDecodeJSONNeutralOnGarbage(t *testing.T) {
	var info ReminderInfo
	assert.False(t, decodeJSON("not json", &info))
	assert.Zero(t, info)

	assert.True(t, decodeJSON(`The fields are {"activity":"stretch","total_days":3}`, &info))
	assert.Equal(t, "stretch", info.Activity)
	assert.Equal(t, 3, info.TotalDays)
}
