package service

import (
	"regexp"
	"strconv"
	"strings"

	"sales_crm/internal/domain"
)

// Синтаксис упоминаний в тексте сообщения:
//   @[Имя](emp:42)    → упоминание сотрудника
//   #[Сделка](deal:7) → упоминание сделки
var mentionRegex = regexp.MustCompile(`(?:@\[([^\]]*)\]\(emp:(\d+)\))|(?:#\[([^\]]*)\]\(deal:(\d+)\))`)

var htmlTagRegex = regexp.MustCompile(`<[^>]*>`)

var channelNameDisallowed = regexp.MustCompile(`[^a-z0-9\-_]`)
var whitespaceRegex = regexp.MustCompile(`\s+`)

// ParseMentions извлекает упоминания из текста сообщения.
// Дубликаты по паре (тип, id) схлопываются, порядок — по первому вхождению.
// Некорректный синтаксис просто не матчится, ошибок не бывает.
func ParseMentions(content string) []domain.Mention {
	var mentions []domain.Mention
	seen := make(map[string]struct{})

	for _, match := range mentionRegex.FindAllStringSubmatch(content, -1) {
		var mentionType, rawID string
		if match[2] != "" {
			mentionType, rawID = domain.MentionTypeEmployee, match[2]
		} else if match[4] != "" {
			mentionType, rawID = domain.MentionTypeDeal, match[4]
		} else {
			continue
		}

		key := mentionType + ":" + rawID
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		refID, err := strconv.ParseInt(rawID, 10, 64)
		if err != nil {
			continue
		}
		mentions = append(mentions, domain.Mention{Type: mentionType, RefID: refID})
	}

	return mentions
}

// SanitizeText убирает HTML-теги и обрезает пробелы по краям
func SanitizeText(text string) string {
	return strings.TrimSpace(htmlTagRegex.ReplaceAllString(text, ""))
}

// truncateRunes обрезает строку до n символов по границе руны:
// срез по байтовому индексу мог бы разорвать многобайтовый символ
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// NormalizeChannelName приводит имя канала к виду "team-chat":
// нижний регистр, пробелы → дефисы, недопустимые символы отбрасываются
func NormalizeChannelName(name string) string {
	clean := strings.ToLower(SanitizeText(name))
	clean = whitespaceRegex.ReplaceAllString(clean, "-")
	return channelNameDisallowed.ReplaceAllString(clean, "")
}
