package repository

import "strings"

// NormalizeName убирает лишние пробелы в названии категории.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

// likePattern строит шаблон ILIKE для поиска подстроки с экранированием спецсимволов.
func likePattern(query string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + replacer.Replace(strings.TrimSpace(query)) + "%"
}
