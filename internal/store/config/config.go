package config

type Config struct {
	DBDsn   string
	Migrate bool
}
