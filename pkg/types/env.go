package types

import "os"

// Getenv lê uma variável de ambiente; vazio cai no fallback
func Getenv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}
