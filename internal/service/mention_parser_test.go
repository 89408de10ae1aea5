package service

import (
	"reflect"
	"testing"

	"sales_crm/internal/domain"
)

func TestParseMentions(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []domain.Mention
	}{
		{
			name:    "employee mention",
			content: "ping @[Bob](emp:42)",
			want:    []domain.Mention{{Type: domain.MentionTypeEmployee, RefID: 42}},
		},
		{
			name:    "deal mention",
			content: "check #[BigDeal](deal:7)",
			want:    []domain.Mention{{Type: domain.MentionTypeDeal, RefID: 7}},
		},
		{
			name:    "duplicates collapsed, first-occurrence order",
			content: "hello @[Bob](emp:42) and @[Bob](emp:42) again #[BigDeal](deal:7)",
			want: []domain.Mention{
				{Type: domain.MentionTypeEmployee, RefID: 42},
				{Type: domain.MentionTypeDeal, RefID: 7},
			},
		},
		{
			name:    "same id different types are distinct",
			content: "@[A](emp:5) #[B](deal:5)",
			want: []domain.Mention{
				{Type: domain.MentionTypeEmployee, RefID: 5},
				{Type: domain.MentionTypeDeal, RefID: 5},
			},
		},
		{
			name:    "malformed syntax does not match",
			content: "@[Bob](emp:abc) @[Bob(emp:42) @Bob #deal:7",
			want:    nil,
		},
		{
			name:    "empty display name still matches",
			content: "@[](emp:1)",
			want:    []domain.Mention{{Type: domain.MentionTypeEmployee, RefID: 1}},
		},
		{
			name:    "no mentions",
			content: "plain text",
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseMentions(tt.content)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("got=%v want=%v", got, tt.want)
			}
		})
	}
}

func TestSanitizeText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"strips tags", "<b>hello</b> world", "hello world"},
		{"trims whitespace", "  hi  ", "hi"},
		{"only tags becomes empty", "<script>x</script>", "x"},
		{"tag-only input", "<br/>", ""},
		{"plain text untouched", "hello", "hello"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeText(tt.input); got != tt.want {
				t.Fatalf("got=%q want=%q", got, tt.want)
			}
		})
	}
}

func TestNormalizeChannelName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercase and hyphenate", "  Team Chat!! ", "team-chat"},
		{"strip disallowed", "a!", "a"},
		{"keep hyphen underscore digits", "dev_ops-2", "dev_ops-2"},
		{"collapse inner whitespace", "big   sales\tteam", "big-sales-team"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeChannelName(tt.input); got != tt.want {
				t.Fatalf("got=%q want=%q", got, tt.want)
			}
		})
	}
}
