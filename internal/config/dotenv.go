package config

import (
	"os"

	"github.com/joho/godotenv"
)

// LoadDotEnv загружает переменные из .env, если файл существует.
// Уже заданные переменные окружения не перезаписываются.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}
