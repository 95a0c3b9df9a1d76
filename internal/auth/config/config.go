package config

import "time"

type Config struct {
	JWTSecret string
	TokenTTL  time.Duration
	// Куда отправлять после входа и неавторизованных пользователей
	HomePath  string
	LoginPath string
	// Cookie Secure flag
	SecureCookie bool
}
