package config

type Config struct {
	ServerAddr string
	AdminRoute string
	SessionKey string
	// Cookie Secure flag, включать за HTTPS
	SecureCookie bool
}
