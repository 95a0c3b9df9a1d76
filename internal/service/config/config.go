package config

import (
	"time"

	"github.com/iurnickita/shopadmin/internal/model"
)

type Config struct {
	PackageRepoURL string
	PluginTimeout  time.Duration
	Location       *time.Location
	// Статусы, не попадающие в блок "состояние заказов"
	OrderExcludes model.StatusSet
	// Статусы, не попадающие в продажи
	SalesExcludes model.StatusSet
}
